package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ronak0808/CDP-chatbot/internal/fileid"
	"github.com/ronak0808/CDP-chatbot/internal/models"
)

// SQLiteSource implements Source using SQLite.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLiteSource opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteSource(dbPath string) (*SQLiteSource, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteSource{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		key TEXT PRIMARY KEY,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sections (
		collection_key TEXT NOT NULL,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		PRIMARY KEY (collection_key, position),
		FOREIGN KEY (collection_key) REFERENCES collections(key) ON DELETE CASCADE
	);
	`
	_, err := db.Exec(schema)
	return err
}

// FetchSections returns the sections of key ordered by position.
func (s *SQLiteSource) FetchSections(ctx context.Context, key string) ([]models.Section, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections WHERE key = ?`, key).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", key, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT title, content FROM sections WHERE collection_key = ? ORDER BY position`, key,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections of %s: %w", key, err)
	}
	defer rows.Close()

	sections := make([]models.Section, 0)
	for rows.Next() {
		var sec models.Section
		if err := rows.Scan(&sec.Title, &sec.Content); err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// PersistSections replaces the sections of key in one transaction.
func (s *SQLiteSource) PersistSections(ctx context.Context, key string, sections []models.Section) error {
	if err := fileid.ValidateKey(key); err != nil {
		return fmt.Errorf("%q: %w", key, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO collections (key, updated_at) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET updated_at = excluded.updated_at`,
		key, time.Now(),
	); err != nil {
		return fmt.Errorf("failed to upsert collection %s: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE collection_key = ?`, key); err != nil {
		return fmt.Errorf("failed to clear sections of %s: %w", key, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sections (collection_key, position, title, content) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, sec := range sections {
		if _, err := stmt.ExecContext(ctx, key, i, sec.Title, sec.Content); err != nil {
			return fmt.Errorf("failed to insert section %d of %s: %w", i, key, err)
		}
	}
	return tx.Commit()
}

// Keys returns every stored collection key in ascending order.
func (s *SQLiteSource) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM collections ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// CountSections returns the total number of stored sections.
func (s *SQLiteSource) CountSections(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sections`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
