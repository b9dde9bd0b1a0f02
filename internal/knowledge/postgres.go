package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"
)

// DBTX abstracts the pgx execution surface so Queries works against a pool
// or a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries is the pgx implementation of Querier.
type Queries struct {
	db DBTX
}

// NewQueries wraps a pool or transaction.
func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

// UpsertDocumentParams carries one documents row.
type UpsertDocumentParams struct {
	ID          string
	ContentHash string
	IngestedAt  pgtype.Timestamptz
}

// InsertChunkParams carries one chunks row with its embedding.
type InsertChunkParams struct {
	ID         string
	DocumentID string
	Seq        int32
	Content    string
	Embedding  *pgvector.Vector
}

// SearchChunksParams carries a similarity query.
type SearchChunksParams struct {
	QueryEmbedding *pgvector.Vector
	ResultLimit    int32
}

// SearchChunksRow is one similarity search hit.
type SearchChunksRow struct {
	ID         string
	DocumentID string
	Seq        int32
	Content    string
	Similarity float32
}

const upsertDocument = `
INSERT INTO documents (id, content_hash, ingested_at)
VALUES ($1, $2, COALESCE($3, now()))
ON CONFLICT (id) DO UPDATE SET
    content_hash = EXCLUDED.content_hash,
    ingested_at  = EXCLUDED.ingested_at
`

func (q *Queries) UpsertDocument(ctx context.Context, arg UpsertDocumentParams) error {
	_, err := q.db.Exec(ctx, upsertDocument, arg.ID, arg.ContentHash, arg.IngestedAt)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

const getDocumentHash = `
SELECT content_hash FROM documents WHERE id = $1
`

func (q *Queries) GetDocumentHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := q.db.QueryRow(ctx, getDocumentHash, id).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get document hash: %w", err)
	}
	return hash, nil
}

const deleteDocument = `
DELETE FROM documents WHERE id = $1
`

func (q *Queries) DeleteDocument(ctx context.Context, id string) error {
	if _, err := q.db.Exec(ctx, deleteDocument, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

const deleteDocumentChunks = `
DELETE FROM chunks WHERE document_id = $1
`

func (q *Queries) DeleteDocumentChunks(ctx context.Context, documentID string) error {
	if _, err := q.db.Exec(ctx, deleteDocumentChunks, documentID); err != nil {
		return fmt.Errorf("delete document chunks: %w", err)
	}
	return nil
}

const insertChunk = `
INSERT INTO chunks (id, document_id, seq, content, embedding)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
    document_id = EXCLUDED.document_id,
    seq         = EXCLUDED.seq,
    content     = EXCLUDED.content,
    embedding   = EXCLUDED.embedding
`

func (q *Queries) InsertChunk(ctx context.Context, arg InsertChunkParams) error {
	_, err := q.db.Exec(ctx, insertChunk,
		arg.ID, arg.DocumentID, arg.Seq, arg.Content, arg.Embedding)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

// searchChunks ranks by cosine distance; insert_seq breaks similarity ties
// in favour of earlier-inserted chunks.
const searchChunks = `
SELECT id, document_id, seq, content,
       1 - (embedding <=> $1) AS similarity
FROM chunks
ORDER BY embedding <=> $1 ASC, insert_seq ASC
LIMIT $2
`

func (q *Queries) SearchChunks(ctx context.Context, arg SearchChunksParams) ([]SearchChunksRow, error) {
	rows, err := q.db.Query(ctx, searchChunks, arg.QueryEmbedding, arg.ResultLimit)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	var items []SearchChunksRow
	for rows.Next() {
		var row SearchChunksRow
		if err := rows.Scan(&row.ID, &row.DocumentID, &row.Seq, &row.Content, &row.Similarity); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return items, nil
}

const countChunks = `
SELECT count(*) FROM chunks
`

func (q *Queries) CountChunks(ctx context.Context) (int64, error) {
	var n int64
	if err := q.db.QueryRow(ctx, countChunks).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}
