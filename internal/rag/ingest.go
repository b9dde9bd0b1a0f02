package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docsage/docsage/internal/knowledge"
)

// ChunkStore is the slice of the knowledge store the Ingestor needs.
type ChunkStore interface {
	// AddDocument persists a document and its embedded chunks atomically.
	AddDocument(ctx context.Context, doc knowledge.Document, chunks []knowledge.Chunk) error

	// DocumentHash returns the stored content hash for a document id, or
	// "" when the document has never been ingested.
	DocumentHash(ctx context.Context, docID string) (string, error)
}

// IngestResult summarizes one ingest run.
type IngestResult struct {
	DocumentsAdded   int
	DocumentsSkipped int
	DocumentsFailed  int
	ChunksAdded      int
	Duration         time.Duration
}

// Ingestor pushes loaded documents through the chunker into the store.
type Ingestor struct {
	store         ChunkStore
	chunker       *Chunker
	skipUnchanged bool
	logger        *slog.Logger
}

// NewIngestor creates an Ingestor. When skipUnchanged is true, documents
// whose content hash matches the stored hash are not re-embedded. logger
// may be nil.
func NewIngestor(store ChunkStore, chunker *Chunker, skipUnchanged bool, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		store:         store,
		chunker:       chunker,
		skipUnchanged: skipUnchanged,
		logger:        logger,
	}
}

// Ingest processes each document independently. A failing document is
// logged and counted, and the run continues, so one bad file never blocks
// the rest of the corpus. The error return is reserved for context
// cancellation.
func (ing *Ingestor) Ingest(ctx context.Context, docs []SourceDocument) (*IngestResult, error) {
	start := time.Now()
	result := &IngestResult{}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("ingest interrupted: %w", err)
		}

		if ing.skipUnchanged {
			stored, err := ing.store.DocumentHash(ctx, doc.ID)
			if err != nil {
				ing.logger.Error("failed to check document hash", "document", doc.ID, "error", err)
				result.DocumentsFailed++
				continue
			}
			if stored == doc.ContentHash {
				ing.logger.Debug("document unchanged, skipping", "document", doc.ID)
				result.DocumentsSkipped++
				continue
			}
		}

		chunks := ing.chunker.Split(doc.ID, doc.Text)
		if len(chunks) == 0 {
			result.DocumentsSkipped++
			continue
		}

		err := ing.store.AddDocument(ctx, knowledge.Document{
			ID:          doc.ID,
			ContentHash: doc.ContentHash,
			IngestedAt:  time.Now(),
		}, chunks)
		if err != nil {
			ing.logger.Error("failed to ingest document", "document", doc.ID, "error", err)
			result.DocumentsFailed++
			continue
		}

		ing.logger.Info("ingested document", "document", doc.ID, "chunks", len(chunks))
		result.DocumentsAdded++
		result.ChunksAdded += len(chunks)
	}

	result.Duration = time.Since(start)
	return result, nil
}
