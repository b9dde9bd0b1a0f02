package rag

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// SourceDocument is a text file read from the data directory, ready for
// chunking. ID is the file name, which keeps chunk ids and citations
// human-readable.
type SourceDocument struct {
	ID          string
	Text        string
	ContentHash string
}

// Loader reads .txt files from a single directory.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a Loader for dir. logger may be nil.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dir: dir, logger: logger}
}

// Load returns every non-empty .txt file in the directory, sorted by file
// name. Files that are empty or not valid UTF-8 are skipped with a warning,
// and an unreadable file is logged and skipped so the rest of the corpus
// still loads. Subdirectories are ignored.
//
// Files are read through os.Root so a symlink inside the data directory
// cannot escape it.
func (l *Loader) Load() ([]SourceDocument, error) {
	absDir, err := filepath.Abs(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}

	root, err := os.OpenRoot(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory %q: %w", l.dir, err)
	}
	defer func() {
		_ = root.Close()
	}()

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory %q: %w", l.dir, err)
	}

	var docs []SourceDocument
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".txt") {
			continue
		}

		content, err := root.ReadFile(name)
		if err != nil {
			l.logger.Error("failed to read document", "file", name, "error", err)
			continue
		}
		if len(content) == 0 {
			l.logger.Warn("skipping empty document", "file", name)
			continue
		}
		if !utf8.Valid(content) {
			l.logger.Warn("skipping document with invalid UTF-8", "file", name)
			continue
		}

		sum := sha256.Sum256(content)
		docs = append(docs, SourceDocument{
			ID:          name,
			Text:        string(content),
			ContentHash: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}
