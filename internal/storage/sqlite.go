// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the book catalog.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/jeranaias/bookshelf-tui/internal/record"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// SQLITE STORE
// =============================================================================

// SQLiteStore is a Backend over a single SQLite file.
type SQLiteStore struct {
	path      string
	db        *sql.DB
	catalogID string
	mu        sync.Mutex
}

var _ Backend = (*SQLiteStore)(nil)

// NewSQLiteStore returns a store for the database at path. Call Open before use.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// CatalogID returns the id generated when the catalog was first created.
func (s *SQLiteStore) CatalogID() string {
	return s.catalogID
}

// Open creates the database directory and schema if needed.
func (s *SQLiteStore) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if s.path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return fmt.Errorf("%w: %s: %v", ErrDatabaseError, pragma, err)
		}
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return err
	}

	catalogID, err := ensureCatalogID(ctx, db)
	if err != nil {
		db.Close()
		return err
	}

	s.db = db
	s.catalogID = catalogID
	return nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("%w: schema: %v", ErrDatabaseError, err)
	}
	if _, err := db.ExecContext(ctx, InitMetadata); err != nil {
		return fmt.Errorf("%w: metadata: %v", ErrDatabaseError, err)
	}
	return nil
}

func ensureCatalogID(ctx context.Context, db *sql.DB) (string, error) {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO metadata (key, value) VALUES ('catalog_id', ?)`,
		uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	var id string
	if err := db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = 'catalog_id'`).Scan(&id); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return id, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Save checkpoints the write-ahead log into the main database file.
func (s *SQLiteStore) Save(ctx context.Context) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("%w: checkpoint: %v", ErrDatabaseError, err)
	}
	_, err = db.ExecContext(ctx,
		`UPDATE metadata SET value = ? WHERE key = 'last_saved'`,
		strconv.FormatInt(time.Now().Unix(), 10))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

func (s *SQLiteStore) handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrNotOpen
	}
	return s.db, nil
}

// =============================================================================
// WRITES
// =============================================================================

// Insert stores b. A zero id is replaced by the next id after the largest
// stored one and written back to b.
func (s *SQLiteStore) Insert(ctx context.Context, b *record.Book) (record.BookID, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}
	err = withTx(ctx, db, func(tx *sql.Tx) error {
		if b.ID == 0 {
			var next int64
			if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM books`).Scan(&next); err != nil {
				return err
			}
			b.ID = record.BookID(next)
		}
		return writeBook(ctx, tx, b)
	})
	if err != nil {
		return 0, err
	}
	return b.ID, nil
}

// InsertMany stores every book in a single transaction.
func (s *SQLiteStore) InsertMany(ctx context.Context, books []*record.Book) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	return withTx(ctx, db, func(tx *sql.Tx) error {
		for _, b := range books {
			if b.ID == 0 {
				return fmt.Errorf("book %q has no id", b.Title)
			}
			if err := writeBook(ctx, tx, b); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update overwrites an existing book.
func (s *SQLiteStore) Update(ctx context.Context, b *record.Book) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	return withTx(ctx, db, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM books WHERE id = ?`, int64(b.ID)).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: id %d", ErrNotFound, b.ID)
		}
		if err != nil {
			return err
		}
		return writeBook(ctx, tx, b)
	})
}

// Remove deletes the listed ids.
func (s *SQLiteStore) Remove(ctx context.Context, ids ...record.BookID) error {
	if len(ids) == 0 {
		return nil
	}
	db, err := s.handle()
	if err != nil {
		return err
	}
	return withTx(ctx, db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `DELETE FROM books WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, id := range ids {
			if _, err := stmt.ExecContext(ctx, int64(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceMerged writes the merged survivors and deletes the absorbed ids in
// one transaction, so a failed merge leaves the catalog untouched.
func (s *SQLiteStore) ReplaceMerged(ctx context.Context, survivors []*record.Book, absorbed []record.BookID) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	return withTx(ctx, db, func(tx *sql.Tx) error {
		for _, b := range survivors {
			if err := writeBook(ctx, tx, b); err != nil {
				return err
			}
		}
		for _, id := range absorbed {
			if _, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, int64(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrDatabaseError, err)
	}
	return nil
}

func writeBook(ctx context.Context, tx *sql.Tx, b *record.Book) error {
	var seriesName, seriesIndex sql.NullString
	if b.Series != nil {
		seriesName = sql.NullString{String: b.Series.Name, Valid: true}
		if b.Series.Index != nil {
			seriesIndex = sql.NullString{String: strconv.FormatFloat(*b.Series.Index, 'g', -1, 64), Valid: true}
		}
	}

	id := int64(b.ID)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO books (id, title, series_name, series_index, description, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			series_name = excluded.series_name,
			series_index = excluded.series_index,
			description = excluded.description,
			updated_at = excluded.updated_at`,
		id, nullString(b.Title), seriesName, seriesIndex, nullString(b.Description), time.Now().Unix())
	if err != nil {
		return err
	}

	for _, table := range []string{"authors", "named_tags", "free_tags", "variants"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE book_id = ?", id); err != nil {
			return err
		}
	}

	for i, name := range b.Authors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO authors (book_id, position, name) VALUES (?, ?, ?)`, id, i, name); err != nil {
			return err
		}
	}
	for name, value := range b.NamedTags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO named_tags (book_id, name, value) VALUES (?, ?, ?)`, id, name, value); err != nil {
			return err
		}
	}
	for _, tag := range b.FreeTags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO free_tags (book_id, tag) VALUES (?, ?)`, id, tag); err != nil {
			return err
		}
	}
	for i, v := range b.Variants {
		authors, err := json.Marshal(v.Authors)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO variants (book_id, position, format, path, title, authors, language,
				identifier, description, file_size, hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, string(v.Format), v.Path, nullString(v.Title), string(authors), nullString(v.Language),
			nullString(v.Identifier), nullString(v.Description), v.FileSize, nullString(v.Hash))
		if err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
