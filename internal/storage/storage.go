// Package storage defines where collection sections are read from and written to.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ronak0808/CDP-chatbot/internal/models"
)

// ErrNotFound is returned by FetchSections when the source has no record of a collection.
// A collection that exists with zero sections is not an error.
var ErrNotFound = errors.New("collection not found")

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Source is a keyed document store for raw collection sections.
type Source interface {
	// FetchSections returns the ordered sections of key, or ErrNotFound.
	FetchSections(ctx context.Context, key string) ([]models.Section, error)
	// PersistSections replaces the stored sections of key. Repeating a call is harmless.
	PersistSections(ctx context.Context, key string, sections []models.Section) error
	// Keys lists every collection the source holds, sorted.
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Open returns the Source for backend. docsPath is used by the json backend and
// databasePath by the sqlite backend.
func Open(backend, docsPath, databasePath string) (Source, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONSource(docsPath)
	case BackendSQLite:
		return NewSQLiteSource(databasePath)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: json, sqlite)", backend)
	}
}
