// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package browser provides the Bubble Tea model that shows the catalog as
// a scrolling table.
//
// The table draws the rows of the app's cursor window. A colon opens the
// command line (see package commands), a slash opens a fuzzy title filter,
// enter shows the selected book rendered with glamour, and ? shows the
// command reference. Watcher batches arrive as FilesChangedMsg and are
// imported on the update goroutine, so the app is never touched
// concurrently.
package browser
