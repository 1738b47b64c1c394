// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scan finds book files on disk and watches directories for new ones.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jeranaias/bookshelf-tui/internal/extract"
)

// shouldIgnore reports whether a directory is skipped while walking.
func shouldIgnore(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".")
}

// Walk returns the book files under root in lexical order. Hidden
// directories are skipped and unreadable entries are ignored. A root that
// is itself a book file is returned as is.
func Walk(ctx context.Context, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if extract.Supported(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && shouldIgnore(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if extract.Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}

// WalkAll walks every root and returns the combined, de-duplicated list.
func WalkAll(ctx context.Context, roots []string) ([]string, error) {
	var all []string
	for _, root := range roots {
		paths, err := Walk(ctx, root)
		if err != nil {
			return nil, err
		}
		all = append(all, paths...)
	}
	slices.Sort(all)
	return slices.Compact(all), nil
}
