// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cursor tracks a scrolling window and an optional selected row.
package cursor

// Cursor is the scroll offset and selection of a viewport.
type Cursor struct {
	offset     int
	windowSize int
	height     int

	selected     int
	hasSelection bool
}

// New returns a cursor at the top with nothing selected.
func New(windowSize, height int) *Cursor {
	return &Cursor{windowSize: max(windowSize, 0), height: max(height, 0)}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Offset returns the index of the first visible row.
func (c *Cursor) Offset() int { return c.offset }

// WindowSize returns the number of visible rows.
func (c *Cursor) WindowSize() int { return c.windowSize }

// Height returns the length of the underlying list.
func (c *Cursor) Height() int { return c.height }

// Selected returns the selected row, if any.
func (c *Cursor) Selected() (int, bool) {
	return c.selected, c.hasSelection
}

// RelativeSelected returns the selected row relative to the window.
func (c *Cursor) RelativeSelected() (int, bool) {
	if !c.hasSelection {
		return 0, false
	}
	return satSub(c.selected, c.offset), true
}

// Range returns the visible rows as a half-open interval.
func (c *Cursor) Range() (start, end int) {
	return c.offset, min(c.offset+c.windowSize, c.height)
}

// AtTop reports whether the first row is visible.
func (c *Cursor) AtTop() bool { return c.offset == 0 }

// AtEnd reports whether the last row is visible.
func (c *Cursor) AtEnd() bool { return c.offset >= c.maxOffset() }

// =============================================================================
// SIZE CHANGES
// =============================================================================

// RefreshWindowSize sets the viewport height. The offset is clamped to the
// new bounds; the selection is left alone.
func (c *Cursor) RefreshWindowSize(n int) {
	c.windowSize = max(n, 0)
	c.offset = min(c.offset, c.maxOffset())
}

// RefreshHeight records a new list length. A selection past the end moves to
// the last row; an empty list clears the selection and the offset.
func (c *Cursor) RefreshHeight(n int) {
	c.height = max(n, 0)
	if c.height == 0 {
		c.offset = 0
		c.hasSelection = false
		c.selected = 0
		return
	}
	if c.hasSelection && c.selected >= c.height {
		c.selected = c.height - 1
	}
	c.offset = min(c.offset, c.maxOffset())
	c.ensureVisible()
}

// =============================================================================
// SCROLLING
// =============================================================================

// ScrollUp moves the window up by n rows. A selection moves with it.
func (c *Cursor) ScrollUp(n int) {
	c.scrollTo(satSub(c.offset, max(n, 0)))
}

// ScrollDown moves the window down by n rows. A selection moves with it.
func (c *Cursor) ScrollDown(n int) {
	c.scrollTo(c.offset + min(max(n, 0), c.height))
}

// PageUp scrolls up one window. At the top a selection jumps to the first row.
func (c *Cursor) PageUp() {
	before := c.offset
	c.ScrollUp(c.windowSize)
	if c.offset == before && c.hasSelection {
		c.selected = 0
	}
}

// PageDown scrolls down one window. At the end a selection jumps to the last row.
func (c *Cursor) PageDown() {
	before := c.offset
	c.ScrollDown(c.windowSize)
	if c.offset == before && c.hasSelection {
		c.selected = satSub(c.height, 1)
	}
}

// Home shows the first row and selects it if a selection exists.
func (c *Cursor) Home() {
	c.offset = 0
	if c.hasSelection {
		c.selected = 0
	}
}

// End shows the last row and selects it if a selection exists.
func (c *Cursor) End() {
	c.offset = c.maxOffset()
	if c.hasSelection {
		c.selected = satSub(c.height, 1)
	}
}

// scrollTo sets the offset and shifts the selection by the distance moved so
// it stays on the same screen row.
func (c *Cursor) scrollTo(target int) {
	target = clamp(target, 0, c.maxOffset())
	delta := target - c.offset
	c.offset = target
	if c.hasSelection {
		c.selected = clamp(c.selected+delta, 0, satSub(c.height, 1))
	}
}

// =============================================================================
// SELECTION
// =============================================================================

// SelectUp moves the selection up one row. Without a selection the last
// visible row is selected.
func (c *Cursor) SelectUp() {
	if c.height == 0 {
		return
	}
	if !c.hasSelection {
		_, end := c.Range()
		c.setSelection(satSub(max(end, c.offset+1), 1))
		return
	}
	c.setSelection(satSub(c.selected, 1))
}

// SelectDown moves the selection down one row. Without a selection the first
// visible row is selected.
func (c *Cursor) SelectDown() {
	if c.height == 0 {
		return
	}
	if !c.hasSelection {
		c.setSelection(c.offset)
		return
	}
	c.setSelection(c.selected + 1)
}

// Select selects index and scrolls it into view. It reports false and
// changes nothing when index is out of bounds.
func (c *Cursor) Select(index int) bool {
	if index < 0 || index >= c.height {
		return false
	}
	c.setSelection(index)
	return true
}

// Deselect clears the selection.
func (c *Cursor) Deselect() {
	c.hasSelection = false
	c.selected = 0
}

func (c *Cursor) setSelection(index int) {
	c.selected = clamp(index, 0, satSub(c.height, 1))
	c.hasSelection = true
	c.ensureVisible()
}

// ensureVisible scrolls the minimum distance that shows the selection.
func (c *Cursor) ensureVisible() {
	if !c.hasSelection || c.windowSize == 0 {
		return
	}
	switch {
	case c.selected < c.offset:
		c.offset = c.selected
	case c.selected >= c.offset+c.windowSize:
		c.offset = c.selected - c.windowSize + 1
	}
	c.offset = clamp(c.offset, 0, c.maxOffset())
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Cursor) maxOffset() int {
	return satSub(c.height, c.windowSize)
}

// satSub returns a-b, or zero when b > a.
func satSub(a, b int) int {
	if b > a {
		return 0
	}
	return a - b
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
