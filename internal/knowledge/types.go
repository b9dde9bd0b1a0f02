package knowledge

import "time"

// VectorDimension is the embedding dimension of the chunks table. Every
// embedder wired into the Store must produce vectors of this size; the
// schema rejects anything else.
const VectorDimension = 768

// Document identifies one ingested source file.
type Document struct {
	ID          string    // source file name
	ContentHash string    // sha256 hex of the raw text, drives idempotent re-ingest
	IngestedAt  time.Time // set at ingest time
}

// Chunk is one bounded segment of a document, the unit of embedding and
// retrieval. Seq is strictly increasing within a document.
type Chunk struct {
	ID         string
	DocumentID string
	Seq        int
	Text       string
}

// Result is a single search hit with its cosine similarity score.
type Result struct {
	Chunk      Chunk
	Similarity float32
}

// SearchOption configures search behavior using the functional options
// pattern.
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK    int
	timeout time.Duration
}

// WithTopK sets the maximum number of results to return. Default is 5.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithTimeout bounds the embedding call and the similarity query.
// Default is 10 seconds.
func WithTimeout(d time.Duration) SearchOption {
	return func(c *searchConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{
		topK:    5,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
