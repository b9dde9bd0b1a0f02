package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrClosed indicates a write was attempted after Close.
var ErrClosed = errors.New("session is closed")

// Speaker identifies the author of a chat turn.
type Speaker string

// Speakers recorded in the chat transcript.
const (
	SpeakerUser      Speaker = "User"
	SpeakerAssistant Speaker = "Assistant"
)

// Session is an open logging session. It is safe for concurrent use; all
// writes are serialized by an internal mutex.
type Session struct {
	id       string
	loc      *time.Location
	logPath  string
	chatPath string

	mu       sync.Mutex
	logFile  *os.File
	chatFile *os.File
	closed   bool

	// now is swappable in tests for deterministic timestamps.
	now func() time.Time
}

// Open creates the session directory if needed and opens the session's log
// and chat files for append. The session id is derived from the start
// timestamp in the given time zone, millisecond precision.
func Open(dir string, loc *time.Location) (*Session, error) {
	if loc == nil {
		loc = time.Local
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}

	start := time.Now().In(loc)
	id := fmt.Sprintf("%s%03d", start.Format("20060102_1504_05"), start.Nanosecond()/1e6)

	logPath := filepath.Join(dir, id+"_log.txt")
	chatPath := filepath.Join(dir, id+"_chat.txt")

	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening session log file: %w", err)
	}
	chatFile, err := os.OpenFile(chatPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("opening session chat file: %w", err)
	}

	return &Session{
		id:       id,
		loc:      loc,
		logPath:  logPath,
		chatPath: chatPath,
		logFile:  logFile,
		chatFile: chatFile,
		now:      time.Now,
	}, nil
}

// ID returns the timestamp-derived session identifier.
func (s *Session) ID() string { return s.id }

// LogPath returns the path of the session log file.
func (s *Session) LogPath() string { return s.logPath }

// ChatPath returns the path of the chat transcript file.
func (s *Session) ChatPath() string { return s.chatPath }

// LogEvent appends one event line to the session log. When err is non-nil
// its description and cause chain follow on indented lines, so a line
// starting at column zero is always exactly one event.
func (s *Session) LogEvent(level slog.Level, msg string, err error) error {
	now := s.now().In(s.loc)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s [%s] %s",
		now.Format("2006-01-02 15:04:05.000"), now.Format("MST"), level.String(), msg)
	if err != nil {
		fmt.Fprintf(&b, "\n    %s", err.Error())
		for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
			fmt.Fprintf(&b, "\n    caused by: %s", cause.Error())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(s.logFile, b.String())
}

// LogChatTurn appends one turn to the chat transcript. Newlines in the text
// are escaped so every turn occupies exactly one line.
func (s *Session) LogChatTurn(speaker Speaker, text string) error {
	now := s.now().In(s.loc)

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", `\n`)
	line := fmt.Sprintf("[%s %s] %s: %s",
		now.Format("2006-01-02 15:04:05"), now.Format("MST"), speaker, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(s.chatFile, line)
}

// writeLocked appends line + "\n" to f. Callers hold s.mu. Writes go
// straight to the file descriptor; there is no userspace buffer to lose.
func (s *Session) writeLocked(f *os.File, line string) error {
	if s.closed {
		return ErrClosed
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Close syncs and releases both files. It is idempotent and safe to call
// from deferred cleanup on every exit path.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, f := range []*os.File{s.logFile, s.chatFile} {
		if err := f.Sync(); err != nil {
			errs = append(errs, err)
		}
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
