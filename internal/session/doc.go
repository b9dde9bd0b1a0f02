// Package session implements the per-run audit trail of the assistant.
//
// A Session owns two append-only files in the session directory, both named
// after the session's start timestamp:
//
//   - <id>_log.txt: operational events, one line per event in the form
//     "<YYYY-MM-DD HH:MM:SS.mmm> <TZ> [<LEVEL>] <message>", with error
//     details on subsequent indented lines
//   - <id>_chat.txt: the conversation transcript, one line per turn in the
//     form "[<YYYY-MM-DD HH:MM:SS> <TZ>] <Speaker>: <text>"
//
// Lifecycle is Uninitialized -> Open -> Closed: Open creates the files,
// Close flushes and releases them and is idempotent. Writes are unbuffered
// and serialized by a mutex, so concurrent callers never interleave lines
// and nothing is lost on crash. A write failure is returned to the caller
// and treated as fatal: the logging contract is write or fail loudly.
//
// Handler bridges the session log into log/slog so components that accept a
// log.Logger write their events into the same file.
package session
