package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openTestSession(t *testing.T) *Session {
	t.Helper()
	sess, err := Open(t.TempDir(), time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestOpen_CreatesBothFiles(t *testing.T) {
	sess := openTestSession(t)

	assert.NotEmpty(t, sess.ID())
	assert.FileExists(t, sess.LogPath())
	assert.FileExists(t, sess.ChatPath())
	assert.Contains(t, sess.LogPath(), sess.ID()+"_log.txt")
	assert.Contains(t, sess.ChatPath(), sess.ID()+"_chat.txt")
}

var logLineRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3} UTC \[(INFO|WARN|ERROR|DEBUG)\] .+$`)

func TestLogEvent_Format(t *testing.T) {
	sess := openTestSession(t)

	require.NoError(t, sess.LogEvent(slog.LevelInfo, "ingested 3 documents", nil))
	require.NoError(t, sess.LogEvent(slog.LevelWarn, "skipped empty notes.txt", nil))

	lines := readLines(t, sess.LogPath())
	require.Len(t, lines, 2)
	assert.Regexp(t, logLineRe, lines[0])
	assert.Contains(t, lines[0], "[INFO] ingested 3 documents")
	assert.Contains(t, lines[1], "[WARN] skipped empty notes.txt")
}

func TestLogEvent_ErrorChainIndented(t *testing.T) {
	sess := openTestSession(t)

	cause := errors.New("connection refused")
	err := fmt.Errorf("embedding failed: %w", cause)
	require.NoError(t, sess.LogEvent(slog.LevelError, "document skipped", err))

	lines := readLines(t, sess.LogPath())
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "[ERROR] document skipped")
	assert.Equal(t, "    embedding failed: connection refused", lines[1])
	assert.Equal(t, "    caused by: connection refused", lines[2])
}

var chatLineRe = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} UTC\] (User|Assistant): .+$`)

func TestLogChatTurn_Format(t *testing.T) {
	sess := openTestSession(t)

	require.NoError(t, sess.LogChatTurn(SpeakerUser, "What is RAG?"))
	require.NoError(t, sess.LogChatTurn(SpeakerAssistant, "Retrieval-augmented generation."))

	lines := readLines(t, sess.ChatPath())
	require.Len(t, lines, 2)
	assert.Regexp(t, chatLineRe, lines[0])
	assert.Contains(t, lines[0], "User: What is RAG?")
	assert.Contains(t, lines[1], "Assistant: Retrieval-augmented generation.")
}

func TestLogChatTurn_MultilineTextStaysOneLine(t *testing.T) {
	sess := openTestSession(t)

	require.NoError(t, sess.LogChatTurn(SpeakerAssistant, "- point one\n- point two\r\n- point three"))

	lines := readLines(t, sess.ChatPath())
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `- point one\n- point two\n- point three`)
}

func TestClose_IdempotentAndRejectsWrites(t *testing.T) {
	sess := openTestSession(t)

	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())

	assert.ErrorIs(t, sess.LogEvent(slog.LevelInfo, "too late", nil), ErrClosed)
	assert.ErrorIs(t, sess.LogChatTurn(SpeakerUser, "too late"), ErrClosed)
}

func TestConcurrentWrites_OneLinePerCall(t *testing.T) {
	sess := openTestSession(t)

	const goroutines = 8
	const perGoroutine = 25

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				require.NoError(t, sess.LogEvent(slog.LevelInfo, fmt.Sprintf("event g%d i%d", g, i), nil))
				require.NoError(t, sess.LogChatTurn(SpeakerUser, fmt.Sprintf("turn g%d i%d", g, i)))
			}
		}(g)
	}
	wg.Wait()

	logLines := readLines(t, sess.LogPath())
	require.Len(t, logLines, goroutines*perGoroutine)
	for _, line := range logLines {
		assert.Regexp(t, logLineRe, line)
	}

	chatLines := readLines(t, sess.ChatPath())
	require.Len(t, chatLines, goroutines*perGoroutine)
	for _, line := range chatLines {
		assert.Regexp(t, chatLineRe, line)
	}
}

func TestHandler_BridgesSlog(t *testing.T) {
	sess := openTestSession(t)
	logger := slog.New(sess.Handler(slog.LevelInfo))

	logger.Debug("filtered out")
	logger.Info("query answered", "chunks", 3)
	logger.With("component", "ingest").Error("document skipped", "error", errors.New("boom"))

	lines := readLines(t, sess.LogPath())
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "[INFO] query answered chunks=3")
	assert.Contains(t, lines[1], "[ERROR] document skipped component=ingest")
	assert.Equal(t, "    boom", lines[2])
}
