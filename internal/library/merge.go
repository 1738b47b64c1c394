// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package library is the in-memory book index.
package library

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/jeranaias/bookshelf-tui/internal/record"
)

// MergePair records that Absorbed was folded into Survivor.
type MergePair struct {
	Survivor record.BookID
	Absorbed record.BookID
}

// MergeSimilar folds together books with the same lower-cased title and
// author list. Books missing either field are left alone. The first book of
// each group survives and keeps its position; later ones are merged into it
// and removed. Pairs are returned in the order the merges happened.
func (l *Library) MergeSimilar() []MergePair {
	var (
		pairs      []MergePair
		first      = make(map[[2]string]int)
		cloned     = make(map[int]bool)
		tombstones = roaring.New()
	)

	for pos, b := range l.books {
		key, ok := b.MergeKey()
		if !ok {
			continue
		}
		spos, dup := first[key]
		if !dup {
			first[key] = pos
			continue
		}

		survivor := l.books[spos]
		if !cloned[spos] {
			survivor = survivor.Clone()
			l.books[spos] = survivor
			cloned[spos] = true
		}
		survivor.Merge(b)
		tombstones.Add(uint32(pos))
		pairs = append(pairs, MergePair{Survivor: survivor.ID, Absorbed: b.ID})
	}

	if len(pairs) == 0 {
		return nil
	}
	l.compact(func(pos int, _ *record.Book) bool {
		return tombstones.Contains(uint32(pos))
	})
	for _, p := range pairs {
		l.touch(p.Survivor)
	}
	l.logger.Debug("merged similar books", "absorbed", len(pairs), "remaining", len(l.books))
	return pairs
}
