package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/docsage/docsage/internal/assistant"
	"github.com/docsage/docsage/internal/llm"
	"github.com/docsage/docsage/internal/rag"
	"github.com/docsage/docsage/internal/session"
	"github.com/docsage/docsage/internal/ui"
)

// runChat starts the interactive question loop.
func runChat() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	loc, err := rt.cfg.Location()
	if err != nil {
		return err
	}
	sess, err := session.Open(rt.cfg.LogDir, loc)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			slog.Warn("session close error", "error", closeErr)
		}
	}()

	// Loop-level diagnostics go to the durable session log through its
	// slog bridge.
	sessLogger := slog.New(sess.Handler(slog.LevelInfo))

	// Bring the knowledge store up to date with the data directory before
	// taking questions, recording the pass in this session's log. A failed
	// pass is logged and the loop still starts, since the store may already
	// hold an earlier corpus.
	if _, err := ingestCorpus(ctx, rt, sessLogger); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		sessLogger.Error("startup ingestion failed", "error", err)
	}

	model, err := llm.New(rt.cfg, rt.g)
	if err != nil {
		return err
	}

	retriever := rag.NewRetriever(rt.store, rt.cfg.RetrievalK)
	prompts := rag.NewPromptBuilder(rt.cfg.ContextBudget)
	asst := assistant.New(retriever, prompts, model, sess, slog.Default(), rt.cfg.RequestTimeout())

	console := ui.NewConsole(os.Stdin, os.Stdout)
	console.Banner(AppVersion, rt.cfg.Model())
	sessLogger.Info("chat session started", "model", rt.cfg.Model())

	for {
		if ctx.Err() != nil {
			break
		}
		console.Prompt()
		line, ok := console.Scan()
		if !ok {
			break
		}

		question := strings.TrimSpace(line)
		if question == "quit" || question == "exit" {
			break
		}

		reply, err := asst.Answer(ctx, question)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			console.Error(err.Error())
			continue
		}
		console.Answer(reply.Answer, reply.Sources)
	}

	console.Goodbye()
	sessLogger.Info("chat session ended")
	return nil
}
