package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Handler returns a slog.Handler that writes records into the session log.
// Components built against log.Logger can then be pointed at the session
// file without knowing about this package's write methods.
//
// Attribute handling: an attribute with key "error" carrying an error value
// becomes the indented detail lines; every other attribute is appended to
// the message as key=value.
func (s *Session) Handler(min slog.Level) slog.Handler {
	return &handler{session: s, min: min}
}

type handler struct {
	session *Session
	min     slog.Level
	attrs   []slog.Attr
	groups  []string
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)

	var logErr error
	appendAttr := func(a slog.Attr) {
		if a.Key == "error" {
			if err, ok := a.Value.Any().(error); ok {
				logErr = err
				return
			}
		}
		key := a.Key
		if len(h.groups) > 0 {
			key = strings.Join(h.groups, ".") + "." + key
		}
		fmt.Fprintf(&b, " %s=%v", key, a.Value)
	}

	for _, a := range h.attrs {
		appendAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(a)
		return true
	})

	return h.session.LogEvent(r.Level, b.String(), logErr)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &nh
}

func (h *handler) WithGroup(name string) slog.Handler {
	nh := *h
	nh.groups = append(append([]string{}, h.groups...), name)
	return &nh
}
