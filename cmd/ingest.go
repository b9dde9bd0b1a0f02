package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/docsage/docsage/internal/rag"
	"github.com/docsage/docsage/internal/session"
)

// ingestCorpus loads the data directory and embeds every new or changed
// document into the knowledge store. Progress and per-document failures
// are reported through logger, which callers point at the durable session
// log.
func ingestCorpus(ctx context.Context, rt *runtime, logger *slog.Logger) (*rag.IngestResult, error) {
	loader := rag.NewLoader(rt.cfg.DataDir, logger)
	docs, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	chunker, err := rag.NewChunker(rt.cfg.ChunkSize, rt.cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	ingestor := rag.NewIngestor(rt.store, chunker, rt.cfg.SkipUnchanged, logger)
	result, err := ingestor.Ingest(ctx, docs)
	if err != nil {
		return nil, err
	}

	logger.Info("ingestion complete",
		"added", result.DocumentsAdded,
		"skipped", result.DocumentsSkipped,
		"failed", result.DocumentsFailed,
		"chunks", result.ChunksAdded)
	return result, nil
}

// runIngest runs one ingestion pass and records it in a session log.
func runIngest() error {
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

	logger := slog.New(sess.Handler(slog.LevelInfo))
	result, err := ingestCorpus(ctx, rt, logger)
	if err != nil {
		logger.Error("ingestion failed", "error", err)
		return err
	}

	if result.DocumentsAdded+result.DocumentsSkipped+result.DocumentsFailed == 0 {
		fmt.Printf("No .txt documents found in %s\n", rt.cfg.DataDir)
		return nil
	}

	fmt.Printf("Ingested %d document(s) (%d chunks) in %s\n",
		result.DocumentsAdded, result.ChunksAdded, result.Duration.Round(10*time.Millisecond))
	if result.DocumentsSkipped > 0 {
		fmt.Printf("Skipped %d unchanged or empty document(s)\n", result.DocumentsSkipped)
	}
	if result.DocumentsFailed > 0 {
		fmt.Printf("Failed to ingest %d document(s), see %s for details\n",
			result.DocumentsFailed, sess.LogPath())
	}

	total, err := rt.store.Count(ctx)
	if err == nil {
		fmt.Printf("Collection now holds %d chunk(s)\n", total)
	}
	return nil
}
