// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across bookshelf packages.
//
// # Files
//
//   - AtomicWriteFile, AtomicWrite: crash-safe file replacement
//
// # Text
//
//   - TruncateWidth, FitWidth, StringWidth: cell-width aware layout for the
//     table view, where East Asian wide runes take two columns
//   - SingleLine: flatten multi-line metadata for a single row
package util
