// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cursor tracks a scrolling window and an optional selected row over
// a list whose length changes over time.
//
// A Cursor holds positions only. The owner reports the list length with
// RefreshHeight and the viewport size with RefreshWindowSize; the cursor
// keeps the offset inside [0, height-window] and the selection below height.
//
// All arithmetic saturates, so a zero-sized window or an empty list never
// panics.
//
// # Usage
//
//	c := cursor.New(20, lib.Len())
//	c.SelectDown()
//	start, end := c.Range()
//	rows := lib.Window(start, end)
package cursor
