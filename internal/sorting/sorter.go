// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sorting orders books by a list of column keys.
package sorting

import (
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/bookshelf-tui/internal/record"
)

// DefaultThreshold is the collection size at which sorting goes parallel.
const DefaultThreshold = 2500

// minChunk keeps chunks large enough to be worth a goroutine.
const minChunk = 256

// Sorter sorts books, switching to a parallel merge sort for large inputs.
type Sorter struct {
	// Threshold is the smallest length sorted in parallel. Zero or less
	// means DefaultThreshold.
	Threshold int
	// Workers bounds the number of concurrent chunks. Zero or less means
	// GOMAXPROCS.
	Workers int
}

// New returns a Sorter with the given threshold and worker count.
func New(threshold, workers int) *Sorter {
	return &Sorter{Threshold: threshold, Workers: workers}
}

func (s *Sorter) threshold() int {
	if s == nil || s.Threshold <= 0 {
		return DefaultThreshold
	}
	return s.Threshold
}

func (s *Sorter) workers() int {
	if s == nil || s.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return s.Workers
}

// Sort orders books in place by keys.
func (s *Sorter) Sort(books []*record.Book, keys []Key) {
	if len(keys) == 0 || len(books) < 2 {
		return
	}
	if len(books) < s.threshold() {
		SortSequential(books, keys)
		return
	}
	SortParallel(books, keys, s.workers())
}

// SortSequential is a stable sort on the calling goroutine.
func SortSequential(books []*record.Book, keys []Key) {
	slices.SortStableFunc(books, func(a, b *record.Book) int {
		return Compare(a, b, keys)
	})
}

// SortParallel stable-sorts chunks concurrently and merges neighbouring runs
// until one remains. Ties keep their input order, so the result equals
// SortSequential on the same input.
func SortParallel(books []*record.Book, keys []Key, workers int) {
	n := len(books)
	if n < 2 {
		return
	}
	if workers < 1 {
		workers = 1
	}

	chunk := max((n+workers-1)/workers, minChunk)
	var runs [][2]int
	for lo := 0; lo < n; lo += chunk {
		runs = append(runs, [2]int{lo, min(lo+chunk, n)})
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for _, r := range runs {
		part := books[r[0]:r[1]]
		g.Go(func() error {
			SortSequential(part, keys)
			return nil
		})
	}
	_ = g.Wait()

	src := books
	dst := make([]*record.Book, n)
	for len(runs) > 1 {
		next := make([][2]int, 0, (len(runs)+1)/2)
		var mg errgroup.Group
		mg.SetLimit(workers)
		for i := 0; i < len(runs); i += 2 {
			if i+1 == len(runs) {
				r := runs[i]
				copy(dst[r[0]:r[1]], src[r[0]:r[1]])
				next = append(next, r)
				continue
			}
			left, right := runs[i], runs[i+1]
			mg.Go(func() error {
				mergeRuns(dst[left[0]:right[1]], src[left[0]:left[1]], src[right[0]:right[1]], keys)
				return nil
			})
			next = append(next, [2]int{left[0], right[1]})
		}
		_ = mg.Wait()
		src, dst = dst, src
		runs = next
	}

	if &src[0] != &books[0] {
		copy(books, src)
	}
}

// mergeRuns merges two sorted runs into out, taking from left on ties.
func mergeRuns(out, left, right []*record.Book, keys []Key) {
	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if Compare(right[j], left[i], keys) < 0 {
			out[k] = right[j]
			j++
		} else {
			out[k] = left[i]
			i++
		}
		k++
	}
	k += copy(out[k:], left[i:])
	copy(out[k:], right[j:])
}
