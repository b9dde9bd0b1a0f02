package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"
)

// ErrEmptyCollection indicates a search against a collection with no
// indexed chunks.
var ErrEmptyCollection = errors.New("no chunks indexed")

// Querier defines the database operations the Store needs. The interface is
// defined here, by the consumer, so the Store depends on an abstraction
// rather than the pgx implementation in postgres.go.
type Querier interface {
	// UpsertDocument inserts or updates a document row.
	UpsertDocument(ctx context.Context, arg UpsertDocumentParams) error

	// GetDocumentHash returns the stored content hash for a document id,
	// or "" when the document is unknown.
	GetDocumentHash(ctx context.Context, id string) (string, error)

	// DeleteDocument removes a document and, via cascade, its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// DeleteDocumentChunks removes all chunks belonging to a document.
	DeleteDocumentChunks(ctx context.Context, documentID string) error

	// InsertChunk inserts or replaces one chunk with its embedding.
	InsertChunk(ctx context.Context, arg InsertChunkParams) error

	// SearchChunks performs a cosine similarity search.
	SearchChunks(ctx context.Context, arg SearchChunksParams) ([]SearchChunksRow, error)

	// CountChunks counts all indexed chunks.
	CountChunks(ctx context.Context) (int64, error)
}

// Store manages chunk persistence and semantic search.
// It is safe for concurrent use by multiple goroutines.
type Store struct {
	queries  Querier
	embedder ai.Embedder
	logger   *slog.Logger
}

// New creates a Store. logger may be nil, in which case slog.Default is used.
func New(querier Querier, embedder ai.Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		queries:  querier,
		embedder: embedder,
		logger:   logger,
	}
}

// AddDocument stores a document and its chunks, replacing any chunks from a
// prior ingest of the same document id.
//
// All embeddings are generated before the first write, so an embedding
// failure leaves no partial state behind: the document either lands with a
// full chunk set or not at all.
func (s *Store) AddDocument(ctx context.Context, doc Document, chunks []Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("document %q has no chunks", doc.ID)
	}

	input := make([]*ai.Document, len(chunks))
	for i, c := range chunks {
		input[i] = ai.DocumentFromText(c.Text, nil)
	}
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{Input: input})
	if err != nil {
		return fmt.Errorf("failed to embed chunks of %q: %w", doc.ID, err)
	}
	if len(resp.Embeddings) != len(chunks) {
		return fmt.Errorf("embedder returned %d embeddings for %d chunks of %q",
			len(resp.Embeddings), len(chunks), doc.ID)
	}
	vectors := make([]pgvector.Vector, len(chunks))
	for i, e := range resp.Embeddings {
		if len(e.Embedding) == 0 {
			return fmt.Errorf("empty embedding returned for chunk %q", chunks[i].ID)
		}
		vectors[i] = pgvector.NewVector(e.Embedding)
	}

	err = s.queries.UpsertDocument(ctx, UpsertDocumentParams{
		ID:          doc.ID,
		ContentHash: doc.ContentHash,
		IngestedAt:  pgtype.Timestamptz{Time: doc.IngestedAt, Valid: !doc.IngestedAt.IsZero()},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert document %q: %w", doc.ID, err)
	}

	if err := s.queries.DeleteDocumentChunks(ctx, doc.ID); err != nil {
		return fmt.Errorf("failed to clear prior chunks of %q: %w", doc.ID, err)
	}

	for i, c := range chunks {
		err := s.queries.InsertChunk(ctx, InsertChunkParams{
			ID:         c.ID,
			DocumentID: c.DocumentID,
			Seq:        int32(c.Seq),
			Content:    c.Text,
			Embedding:  &vectors[i],
		})
		if err != nil {
			return fmt.Errorf("failed to insert chunk %q: %w", c.ID, err)
		}
	}

	s.logger.Debug("added document", "id", doc.ID, "chunks", len(chunks))
	return nil
}

// DocumentHash returns the stored content hash for a document id, or ""
// when the document has never been ingested.
func (s *Store) DocumentHash(ctx context.Context, docID string) (string, error) {
	hash, err := s.queries.GetDocumentHash(ctx, docID)
	if err != nil {
		return "", fmt.Errorf("failed to read hash of %q: %w", docID, err)
	}
	return hash, nil
}

// Search returns the chunks most similar to the query, ranked by descending
// cosine similarity with ties broken by insertion order. It fails with
// ErrEmptyCollection when nothing is indexed.
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(opts)

	queryCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	resp, err := s.embedder.Embed(queryCtx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(query, nil)},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("query embedding timeout: %w", err)
		}
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, errors.New("empty embedding returned for query")
	}
	queryEmbedding := pgvector.NewVector(resp.Embeddings[0].Embedding)

	rows, err := s.queries.SearchChunks(queryCtx, SearchChunksParams{
		QueryEmbedding: &queryEmbedding,
		ResultLimit:    int32(cfg.topK),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search query timeout: %w", err)
		}
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if len(rows) == 0 {
		// With cosine distance a non-empty collection always yields hits,
		// so zero rows means nothing has been indexed.
		return nil, ErrEmptyCollection
	}

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, Result{
			Chunk: Chunk{
				ID:         row.ID,
				DocumentID: row.DocumentID,
				Seq:        int(row.Seq),
				Text:       row.Content,
			},
			Similarity: row.Similarity,
		})
	}
	return results, nil
}

// Delete removes a document and all of its chunks.
func (s *Store) Delete(ctx context.Context, docID string) error {
	if err := s.queries.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete document %q: %w", docID, err)
	}
	s.logger.Debug("deleted document", "id", docID)
	return nil
}

// Count returns the number of indexed chunks.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.queries.CountChunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return n, nil
}
