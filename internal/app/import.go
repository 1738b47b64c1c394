// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jeranaias/bookshelf-tui/internal/extract"
	"github.com/jeranaias/bookshelf-tui/internal/record"
	"github.com/jeranaias/bookshelf-tui/internal/scan"
)

// ImportFailure is a file whose metadata could not be read.
type ImportFailure struct {
	Path string
	Err  error
}

// ImportReport summarizes one Import call.
type ImportReport struct {
	// BatchID tags the import's log lines.
	BatchID   string
	Scanned   int
	Added     int
	Updated   int
	Unchanged int
	// Failures lists files that were skipped or added with only a file
	// name title.
	Failures []ImportFailure
}

func (r *ImportReport) String() string {
	s := fmt.Sprintf("imported %d new, %d updated, %d unchanged", r.Added, r.Updated, r.Unchanged)
	if len(r.Failures) > 0 {
		s += fmt.Sprintf(", %d with errors", len(r.Failures))
	}
	return s
}

type extracted struct {
	book *record.Book
	err  error
}

// Import scans paths for book files, extracts their metadata in parallel and
// adds them to the catalog. Files already in the catalog are re-read and
// their variant replaced when the content changed; a known file that can no
// longer be read keeps its stored variant. Unreadable files are
// added with a file name title; unsupported ones are skipped.
func (a *App) Import(ctx context.Context, paths []string) (*ImportReport, error) {
	report := &ImportReport{BatchID: uuid.NewString()}
	logger := a.logger.With("batch", report.BatchID)

	files, err := scan.WalkAll(ctx, paths)
	if err != nil {
		return report, fmt.Errorf("failed to scan: %w", err)
	}
	report.Scanned = len(files)
	if len(files) == 0 {
		return report, nil
	}

	known, err := a.store.Paths(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to read catalog paths: %w", err)
	}

	results := make([]extracted, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := extract.Extract(path)
			results[i] = extracted{book: b, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	warn := rate.Sometimes{First: 5, Interval: time.Second}
	var added []*record.Book
	for i, res := range results {
		if res.err != nil {
			report.Failures = append(report.Failures, ImportFailure{Path: files[i], Err: res.err})
			warn.Do(func() {
				logger.Warn("metadata extraction failed", "path", files[i], "err", res.err)
			})
			if errors.Is(res.err, extract.ErrUnsupportedFormat) {
				continue
			}
		}

		variant := res.book.Variants[0]
		if id, ok := known[variant.Path]; ok {
			if res.err != nil {
				// Keep the stored metadata rather than a file name stub.
				continue
			}
			changed, err := a.refreshVariant(ctx, id, variant)
			if err != nil {
				return report, err
			}
			if changed {
				report.Updated++
			} else {
				report.Unchanged++
			}
			continue
		}

		res.book.ID = a.nextID
		a.nextID++
		known[variant.Path] = res.book.ID
		added = append(added, res.book)
	}

	if len(added) > 0 {
		if err := a.store.InsertMany(ctx, added); err != nil {
			return report, fmt.Errorf("failed to save imported books: %w", err)
		}
		a.lib.InsertMany(added)
		report.Added = len(added)
	}

	a.lib.Sort(a.sortKeys)
	a.refresh()
	logger.Info("import finished",
		"scanned", report.Scanned,
		"added", report.Added,
		"updated", report.Updated,
		"unchanged", report.Unchanged,
		"failed", len(report.Failures))
	return report, nil
}

// refreshVariant replaces the stored variant at v.Path on book id when its
// content hash differs. It reports whether anything changed.
func (a *App) refreshVariant(ctx context.Context, id record.BookID, v record.Variant) (bool, error) {
	current, ok := a.lib.Peek(id)
	if !ok {
		var err error
		current, err = a.store.Get(ctx, id)
		if err != nil {
			return false, fmt.Errorf("failed to load book %d: %w", id, err)
		}
	}

	updated := current.Clone()
	found := false
	for i, old := range updated.Variants {
		if old.Path != v.Path {
			continue
		}
		if old.Hash == v.Hash && old.Hash != "" {
			return false, nil
		}
		updated.Variants[i] = v
		found = true
		break
	}
	if !found {
		updated.Variants = append(updated.Variants, v)
	}

	if err := a.store.Update(ctx, updated); err != nil {
		return false, fmt.Errorf("failed to save book %d: %w", id, err)
	}
	a.lib.Insert(updated)
	return true, nil
}
