// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the catalog out in portable formats.
//
// # Formats
//
//   - JSON Lines: one book per line, readable back with ReadJSONL
//   - Markdown: one section per book, also used by the detail pane
//
// Either format can be wrapped in a zstd stream.
//
// # Usage
//
//	opts := &export.Options{Format: "jsonl", Compress: true}
//	err := export.ToFile(export.FileName("library", opts), lib.AllRecords(), opts)
package export
