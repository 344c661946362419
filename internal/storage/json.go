package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ronak0808/CDP-chatbot/internal/fileid"
	"github.com/ronak0808/CDP-chatbot/internal/models"
)

// JSONSource stores each collection as <dir>/<key>_docs.json in the interchange schema
// {"platform": key, "sections": [{"title", "content"}]}.
type JSONSource struct {
	dir string
}

// NewJSONSource opens a JSON document directory, creating it if needed.
func NewJSONSource(dir string) (*JSONSource, error) {
	if dir == "" {
		return nil, fmt.Errorf("docs path is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create docs directory: %w", err)
	}
	return &JSONSource{dir: dir}, nil
}

// Dir returns the documents directory.
func (s *JSONSource) Dir() string {
	return s.dir
}

// Path returns the document file of key.
func (s *JSONSource) Path(key string) string {
	return fileid.DocPath(s.dir, key)
}

// FetchSections reads and decodes the document file of key.
func (s *JSONSource) FetchSections(ctx context.Context, key string) ([]models.Section, error) {
	if err := fileid.ValidateKey(key); err != nil {
		return nil, fmt.Errorf("%q: %w", key, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.Path(key), err)
	}
	var doc models.CollectionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.Path(key), err)
	}
	if doc.Sections == nil {
		return []models.Section{}, nil
	}
	return doc.Sections, nil
}

// PersistSections writes the document file of key with two-space indentation. The file is
// written to a temporary name and renamed so readers never observe a partial document.
func (s *JSONSource) PersistSections(ctx context.Context, key string, sections []models.Section) error {
	if err := fileid.ValidateKey(key); err != nil {
		return fmt.Errorf("%q: %w", key, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if sections == nil {
		sections = []models.Section{}
	}
	data, err := json.MarshalIndent(models.CollectionDocument{Platform: key, Sections: sections}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+fileid.FileName(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.Path(key), err)
	}
	return nil
}

// Keys lists the collections that have a document file in the directory.
func (s *JSONSource) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if key, ok := fileid.CollectionKey(filepath.Join(s.dir, e.Name())); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for JSONSource.
func (s *JSONSource) Close() error {
	return nil
}
