// Package assistant orchestrates one question-and-answer turn: retrieve
// relevant chunks, assemble the grounded prompt, call the model and record
// both sides of the exchange in the session transcript.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docsage/docsage/internal/knowledge"
	"github.com/docsage/docsage/internal/llm"
	"github.com/docsage/docsage/internal/session"
)

// Canned replies for turns that never reach the model.
const (
	replyEmptyQuestion  = "Please ask a valid question."
	replyNoDocuments    = "No relevant documents found. Ingest some documents first with `docsage ingest`."
	replyProviderFailed = "The model provider could not be reached. Please check your API key and try again."
)

// Retriever fetches ranked chunks for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]knowledge.Result, error)
}

// PromptBuilder renders the grounded prompt.
type PromptBuilder interface {
	Build(question string, results []knowledge.Result) string
}

// Transcript records chat turns and session events. *session.Session
// satisfies it.
type Transcript interface {
	LogChatTurn(speaker session.Speaker, text string) error
	LogEvent(level slog.Level, msg string, err error) error
}

// Reply is the outcome of one turn.
type Reply struct {
	Answer  string
	Sources []string
}

// Assistant answers questions grounded in the ingested corpus.
type Assistant struct {
	retriever  Retriever
	prompts    PromptBuilder
	model      llm.Generator
	transcript Transcript
	logger     *slog.Logger
	timeout    time.Duration
}

// New wires an Assistant. transcript and logger may be nil.
func New(retriever Retriever, prompts PromptBuilder, model llm.Generator, transcript Transcript, logger *slog.Logger, timeout time.Duration) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		retriever:  retriever,
		prompts:    prompts,
		model:      model,
		transcript: transcript,
		logger:     logger,
		timeout:    timeout,
	}
}

// Answer runs one turn. It never returns an error for expected failure
// modes: an empty index, a provider outage or a cancelled context all
// produce a user-facing reply and leave the session usable for the next
// question. Only transcript write failures surface as errors.
func (a *Assistant) Answer(ctx context.Context, question string) (Reply, error) {
	turnID := uuid.NewString()

	if strings.TrimSpace(question) == "" {
		return a.finish(turnID, question, Reply{Answer: replyEmptyQuestion})
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	results, err := a.retriever.Retrieve(ctx, question)
	switch {
	case errors.Is(err, knowledge.ErrEmptyCollection):
		a.logEvent(slog.LevelWarn, "query against empty collection", nil)
		return a.finish(turnID, question, Reply{Answer: replyNoDocuments})
	case errors.Is(err, context.Canceled):
		return a.abort(turnID, question, err)
	case err != nil:
		a.logger.Error("retrieval failed", "turn", turnID, "error", err)
		a.logEvent(slog.LevelError, "retrieval failed", err)
		return a.finish(turnID, question, Reply{Answer: replyProviderFailed})
	}

	prompt := a.prompts.Build(question, results)
	answer, err := a.model.Generate(ctx, prompt)
	switch {
	case errors.Is(err, context.Canceled):
		return a.abort(turnID, question, err)
	case err != nil:
		a.logger.Error("generation failed", "turn", turnID, "error", err)
		a.logEvent(slog.LevelError, "generation failed", err)
		return a.finish(turnID, question, Reply{Answer: replyProviderFailed})
	}

	a.logger.Debug("turn answered", "turn", turnID, "chunks", len(results))
	return a.finish(turnID, question, Reply{
		Answer:  answer,
		Sources: uniqueSources(results),
	})
}

// finish records both sides of the turn in the transcript.
func (a *Assistant) finish(turnID, question string, reply Reply) (Reply, error) {
	if a.transcript == nil {
		return reply, nil
	}
	if err := a.transcript.LogChatTurn(session.SpeakerUser, question); err != nil {
		return reply, fmt.Errorf("failed to record question: %w", err)
	}
	if err := a.transcript.LogChatTurn(session.SpeakerAssistant, reply.Answer); err != nil {
		return reply, fmt.Errorf("failed to record answer: %w", err)
	}
	return reply, nil
}

// abort records an interrupted turn and propagates the cancellation.
func (a *Assistant) abort(turnID, question string, err error) (Reply, error) {
	a.logEvent(slog.LevelWarn, "turn aborted", err)
	if a.transcript != nil {
		_ = a.transcript.LogChatTurn(session.SpeakerUser, question)
		_ = a.transcript.LogChatTurn(session.SpeakerAssistant, "(aborted)")
	}
	return Reply{}, fmt.Errorf("turn aborted: %w", err)
}

func (a *Assistant) logEvent(level slog.Level, msg string, err error) {
	if a.transcript == nil {
		return
	}
	if logErr := a.transcript.LogEvent(level, msg, err); logErr != nil {
		a.logger.Error("failed to write session log", "error", logErr)
	}
}

// uniqueSources lists each source document once, in rank order.
func uniqueSources(results []knowledge.Result) []string {
	seen := make(map[string]bool, len(results))
	var sources []string
	for _, res := range results {
		if seen[res.Chunk.DocumentID] {
			continue
		}
		seen[res.Chunk.DocumentID] = true
		sources = append(sources, res.Chunk.DocumentID)
	}
	return sources
}
