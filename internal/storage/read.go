// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the book catalog.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/jeranaias/bookshelf-tui/internal/record"
)

// =============================================================================
// READS
// =============================================================================

// Get loads one book.
func (s *SQLiteStore) Get(ctx context.Context, id record.BookID) (*record.Book, error) {
	books, err := s.load(ctx, &id)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return books[0], nil
}

// GetAll loads every book ordered by id.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]*record.Book, error) {
	return s.load(ctx, nil)
}

// MaxID returns the largest stored id, or zero for an empty catalog.
func (s *SQLiteStore) MaxID(ctx context.Context) (record.BookID, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM books`).Scan(&id); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return record.BookID(id), nil
}

// Paths maps every stored variant path to the book that owns it.
func (s *SQLiteStore) Paths(ctx context.Context) (map[string]record.BookID, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT path, book_id FROM variants`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	paths := make(map[string]record.BookID)
	for rows.Next() {
		var path string
		var id int64
		if err := rows.Scan(&path, &id); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		paths[path] = record.BookID(id)
	}
	return paths, rows.Err()
}

// load reads one book when id is set, otherwise all of them.
func (s *SQLiteStore) load(ctx context.Context, id *record.BookID) ([]*record.Book, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	filter := func(col string) (string, []any) {
		if id == nil {
			return "", nil
		}
		return " WHERE " + col + " = ?", []any{int64(*id)}
	}

	where, args := filter("id")
	rows, err := db.QueryContext(ctx,
		`SELECT id, title, series_name, series_index, description FROM books`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	var books []*record.Book
	byID := make(map[int64]*record.Book)
	for rows.Next() {
		var (
			bookID                                    int64
			title, seriesName, seriesIdx, description sql.NullString
		)
		if err := rows.Scan(&bookID, &title, &seriesName, &seriesIdx, &description); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		b := &record.Book{
			ID:          record.BookID(bookID),
			Title:       title.String,
			Description: description.String,
		}
		if seriesName.Valid {
			b.Series = &record.Series{Name: seriesName.String}
			if seriesIdx.Valid {
				if v, err := strconv.ParseFloat(seriesIdx.String, 64); err == nil {
					b.Series.Index = &v
				}
			}
		}
		books = append(books, b)
		byID[bookID] = b
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if len(books) == 0 {
		return nil, nil
	}

	where, args = filter("book_id")
	children := []struct {
		query string
		scan  func(rows *sql.Rows) error
	}{
		{
			`SELECT book_id, name FROM authors` + where + ` ORDER BY book_id, position`,
			func(rows *sql.Rows) error {
				var bookID int64
				var name string
				if err := rows.Scan(&bookID, &name); err != nil {
					return err
				}
				if b := byID[bookID]; b != nil {
					b.Authors = append(b.Authors, name)
				}
				return nil
			},
		},
		{
			`SELECT book_id, name, value FROM named_tags` + where,
			func(rows *sql.Rows) error {
				var bookID int64
				var name, value string
				if err := rows.Scan(&bookID, &name, &value); err != nil {
					return err
				}
				if b := byID[bookID]; b != nil {
					b.SetTag(name, value)
				}
				return nil
			},
		},
		{
			`SELECT book_id, tag FROM free_tags` + where + ` ORDER BY book_id, tag`,
			func(rows *sql.Rows) error {
				var bookID int64
				var tag string
				if err := rows.Scan(&bookID, &tag); err != nil {
					return err
				}
				if b := byID[bookID]; b != nil {
					b.AddFreeTag(tag)
				}
				return nil
			},
		},
		{
			`SELECT book_id, format, path, title, authors, language, identifier, description, file_size, hash
			 FROM variants` + where + ` ORDER BY book_id, position`,
			func(rows *sql.Rows) error {
				var (
					bookID                                 int64
					format, path                           string
					title, authors, lang, ident, desc, sum sql.NullString
					size                                   sql.NullInt64
				)
				if err := rows.Scan(&bookID, &format, &path, &title, &authors, &lang, &ident, &desc, &size, &sum); err != nil {
					return err
				}
				v := record.Variant{
					Format:      record.Format(format),
					Path:        path,
					Title:       title.String,
					Language:    lang.String,
					Identifier:  ident.String,
					Description: desc.String,
					FileSize:    size.Int64,
					Hash:        sum.String,
				}
				if authors.Valid && authors.String != "" {
					if err := json.Unmarshal([]byte(authors.String), &v.Authors); err != nil {
						return err
					}
				}
				if b := byID[bookID]; b != nil {
					b.Variants = append(b.Variants, v)
				}
				return nil
			},
		},
	}

	for _, child := range children {
		if err := queryEach(ctx, db, child.query, args, child.scan); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}
	return books, nil
}

func queryEach(ctx context.Context, db *sql.DB, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
