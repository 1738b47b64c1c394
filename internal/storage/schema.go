// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the book catalog.
package storage

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// Schema is the SQLite layout of a catalog. Child tables cascade on book
// deletion.
const Schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS books (
    id INTEGER PRIMARY KEY,
    title TEXT,
    series_name TEXT,
    series_index TEXT,          -- text so NaN survives a round trip
    description TEXT,
    updated_at INTEGER NOT NULL -- Unix timestamp
);

CREATE TABLE IF NOT EXISTS authors (
    book_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY(book_id, position),
    FOREIGN KEY(book_id) REFERENCES books(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_authors_name ON authors(name);

CREATE TABLE IF NOT EXISTS named_tags (
    book_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY(book_id, name),
    FOREIGN KEY(book_id) REFERENCES books(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS free_tags (
    book_id INTEGER NOT NULL,
    tag TEXT NOT NULL,
    PRIMARY KEY(book_id, tag),
    FOREIGN KEY(book_id) REFERENCES books(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS variants (
    book_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    format TEXT NOT NULL,
    path TEXT NOT NULL,
    title TEXT,
    authors TEXT,               -- JSON array
    language TEXT,
    identifier TEXT,
    description TEXT,
    file_size INTEGER,
    hash TEXT,
    PRIMARY KEY(book_id, position),
    FOREIGN KEY(book_id) REFERENCES books(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_variants_path ON variants(path);
CREATE INDEX IF NOT EXISTS idx_variants_hash ON variants(hash);
`

// InitMetadata seeds the metadata table. Existing keys are kept.
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
INSERT OR IGNORE INTO metadata (key, value) VALUES ('last_saved', '0');
`
