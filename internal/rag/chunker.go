package rag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/docsage/docsage/internal/knowledge"
)

// ErrInvalidOverlap indicates a chunk overlap that is negative or not
// smaller than the chunk size.
var ErrInvalidOverlap = errors.New("chunk overlap must be non-negative and smaller than chunk size")

// Default chunking geometry, in runes.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// boundaryMarkers are tried in order when looking for a natural break near
// the end of a chunk. Earlier entries are stronger boundaries.
var boundaryMarkers = []string{"\n\n", "\n", ". ", " "}

// Chunker splits document text into overlapping chunks sized for the
// embedding model. All offsets are measured in runes so multi-byte text
// never splits mid-character.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker validates the geometry and returns a Chunker. size must be
// positive and overlap must satisfy 0 <= overlap < size.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidOverlap, size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split divides text into chunks of at most the configured size. Consecutive
// chunks share exactly the configured overlap, so stripping the first
// overlap runes from every chunk after the first reconstructs the original
// text. Chunk ends prefer paragraph, line, sentence and word boundaries, in
// that order, when one falls within the trailing half of the chunk.
//
// Text no longer than the chunk size yields a single chunk. Empty text
// yields no chunks.
func (c *Chunker) Split(docID, text string) []knowledge.Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= c.size {
		return []knowledge.Chunk{newChunk(docID, 0, text)}
	}

	var chunks []knowledge.Chunk
	start := 0
	for seq := 0; ; seq++ {
		end := start + c.size
		if end >= len(runes) {
			chunks = append(chunks, newChunk(docID, seq, string(runes[start:])))
			break
		}

		if adjusted := c.boundaryBefore(runes, start, end); adjusted > start+c.overlap {
			end = adjusted
		}

		chunks = append(chunks, newChunk(docID, seq, string(runes[start:end])))
		start = end - c.overlap
	}
	return chunks
}

// boundaryBefore scans the trailing half of runes[start:end] for the latest
// natural break and returns the rune offset just past it, or 0 when none is
// found.
func (c *Chunker) boundaryBefore(runes []rune, start, end int) int {
	window := string(runes[start+c.size/2 : end])
	for _, marker := range boundaryMarkers {
		if i := strings.LastIndex(window, marker); i >= 0 {
			prefix := len([]rune(window[:i+len(marker)]))
			return start + c.size/2 + prefix
		}
	}
	return 0
}

func newChunk(docID string, seq int, text string) knowledge.Chunk {
	return knowledge.Chunk{
		ID:         fmt.Sprintf("%s_chunk_%d", docID, seq),
		DocumentID: docID,
		Seq:        seq,
		Text:       text,
	}
}
