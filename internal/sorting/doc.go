// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sorting orders books by a list of column keys.
//
// The first key is the primary order and later keys break ties. Collections
// smaller than the sorter's threshold are sorted on the calling goroutine;
// larger ones are split into chunks that are sorted concurrently and then
// merged. Both paths are stable and produce the same order.
//
// # Usage
//
//	keys, err := sorting.ParseKeys([]string{"authors", "-title"})
//	s := sorting.New(sorting.DefaultThreshold, 0)
//	s.Sort(books, keys)
package sorting
