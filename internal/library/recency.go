// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package library is the in-memory book index.
package library

import (
	"container/list"

	"github.com/jeranaias/bookshelf-tui/internal/record"
)

// recency orders ids from most to least recently used.
type recency struct {
	capacity int
	ll       *list.List
	elems    map[record.BookID]*list.Element
}

func newRecency(capacity int) *recency {
	return &recency{
		capacity: capacity,
		ll:       list.New(),
		elems:    make(map[record.BookID]*list.Element),
	}
}

func (r *recency) touch(id record.BookID) {
	if e, ok := r.elems[id]; ok {
		r.ll.MoveToFront(e)
		return
	}
	r.elems[id] = r.ll.PushFront(id)
}

func (r *recency) remove(id record.BookID) {
	if e, ok := r.elems[id]; ok {
		r.ll.Remove(e)
		delete(r.elems, id)
	}
}

func (r *recency) oldest() (record.BookID, bool) {
	e := r.ll.Back()
	if e == nil {
		return 0, false
	}
	return e.Value.(record.BookID), true
}

func (r *recency) reset() {
	r.ll.Init()
	clear(r.elems)
}
