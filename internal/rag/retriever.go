package rag

import (
	"context"
	"fmt"

	"github.com/docsage/docsage/internal/knowledge"
)

// Searcher is the slice of the knowledge store the Retriever needs.
type Searcher interface {
	Search(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Result, error)
}

// Retriever fetches the chunks most relevant to a question.
type Retriever struct {
	store Searcher
	topK  int
}

// NewRetriever creates a Retriever returning at most topK chunks per query.
func NewRetriever(store Searcher, topK int) *Retriever {
	return &Retriever{store: store, topK: topK}
}

// Retrieve returns up to topK chunks ranked by similarity. A wrapped
// knowledge.ErrEmptyCollection still matches errors.Is, so callers can tell
// an empty index apart from a failed search.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]knowledge.Result, error) {
	results, err := r.store.Search(ctx, question, knowledge.WithTopK(r.topK))
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	return results, nil
}
