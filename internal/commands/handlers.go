// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jeranaias/bookshelf-tui/internal/config"
	"github.com/jeranaias/bookshelf-tui/internal/export"
	"github.com/jeranaias/bookshelf-tui/internal/record"
	"github.com/jeranaias/bookshelf-tui/internal/search"
	"github.com/jeranaias/bookshelf-tui/internal/sorting"
	"github.com/jeranaias/bookshelf-tui/internal/util"
)

// ErrUsage is wrapped by handlers when arguments don't fit the command.
var ErrUsage = errors.New("usage")

// =============================================================================
// ARGUMENT HELPERS
// =============================================================================

// modeFlags maps search flags to the mode of the pair that follows.
var modeFlags = map[string]search.Mode{
	"-r": search.ModeRegex,
	"-e": search.ModeExactSubstring,
	"-x": search.ModeExactString,
}

// ParseSearches turns "[flag] column pattern" groups into descriptions.
// A flag applies to the next pair only; unflagged pairs match fuzzily.
func ParseSearches(args []string) ([]search.Description, error) {
	return ParseSearchesMode(args, search.ModeFuzzy)
}

// ParseSearchesMode is ParseSearches with def as the unflagged mode.
func ParseSearchesMode(args []string, def search.Mode) ([]search.Description, error) {
	var descs []search.Description
	mode := def
	for i := 0; i < len(args); i++ {
		if m, ok := modeFlags[args[i]]; ok {
			mode = m
			continue
		}
		if i+1 >= len(args) {
			return nil, fmt.Errorf("%w: column %q has no pattern", ErrUsage, args[i])
		}
		descs = append(descs, search.Description{
			Mode:    mode,
			Column:  record.ParseColumn(args[i]),
			Pattern: args[i+1],
		})
		mode = def
		i++
	}
	if len(descs) == 0 {
		return nil, fmt.Errorf("%w: expected <column> <pattern>", ErrUsage)
	}
	return descs, nil
}

// pairEdits builds one edit per column/value pair.
func pairEdits(cmd string, args []string, mk func(string) record.Edit) ([]record.ColumnEdit, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("%w: %s takes <column> <value> pairs", ErrUsage, cmd)
	}
	edits := make([]record.ColumnEdit, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		edits = append(edits, record.ColumnEdit{
			Column: record.ParseColumn(args[i]),
			Edit:   mk(args[i+1]),
		})
	}
	return edits, nil
}

func describe(b *record.Book) string {
	title, ok := b.Value(record.Title)
	if !ok {
		return "book " + b.ID.String()
	}
	return fmt.Sprintf("%q", util.TruncateWidth(title, 40))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// =============================================================================
// SEARCH HANDLERS
// =============================================================================

func handleFind(ctx *Context, args []string) (Result, error) {
	descs, err := ParseSearches(args)
	if err != nil {
		return Result{}, err
	}
	n, err := ctx.App.Filter(descs)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: plural(n, "matching book")}, nil
}

func handleJump(ctx *Context, args []string) (Result, error) {
	descs, err := ParseSearches(args)
	if err != nil {
		return Result{}, err
	}
	b, err := ctx.App.Jump(descs)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "jumped to " + describe(b)}, nil
}

func handleClear(ctx *Context, _ []string) (Result, error) {
	if !ctx.App.Filtered() {
		return Result{Message: "no filter active"}, nil
	}
	ctx.App.ClearFilter()
	return Result{Message: "filter cleared"}, nil
}

// =============================================================================
// EDIT HANDLERS
// =============================================================================

func handleEdit(ctx *Context, args []string) (Result, error) {
	edits, err := pairEdits(":edit", args, record.Replace)
	if err != nil {
		return Result{}, err
	}
	b, err := ctx.App.Edit(ctx.Ctx, edits...)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "edited " + describe(b)}, nil
}

func handleAppend(ctx *Context, args []string) (Result, error) {
	edits, err := pairEdits(":append", args, record.Append)
	if err != nil {
		return Result{}, err
	}
	b, err := ctx.App.Edit(ctx.Ctx, edits...)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "edited " + describe(b)}, nil
}

func handleDeleteField(ctx *Context, args []string) (Result, error) {
	edits := make([]record.ColumnEdit, 0, len(args))
	for _, name := range args {
		edits = append(edits, record.ColumnEdit{Column: record.ParseColumn(name), Edit: record.Delete()})
	}
	b, err := ctx.App.Edit(ctx.Ctx, edits...)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("cleared %s on %s", strings.Join(args, ", "), describe(b))}, nil
}

func handleDelete(ctx *Context, _ []string) (Result, error) {
	b, err := ctx.App.DeleteSelected(ctx.Ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "deleted " + describe(b)}, nil
}

func handleMerge(ctx *Context, _ []string) (Result, error) {
	pairs, err := ctx.App.Merge(ctx.Ctx)
	if err != nil {
		return Result{}, err
	}
	if len(pairs) == 0 {
		return Result{Message: "nothing to merge"}, nil
	}
	return Result{Message: "merged " + plural(len(pairs), "duplicate")}, nil
}

// =============================================================================
// VIEW HANDLERS
// =============================================================================

func handleSort(ctx *Context, args []string) (Result, error) {
	keys, err := sorting.ParseKeys(args)
	if err != nil {
		return Result{}, err
	}
	ctx.App.Sort(keys)
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return Result{Message: "sorted by " + strings.Join(names, ", ")}, nil
}

func handleColumn(ctx *Context, args []string) (Result, error) {
	if len(args) < 2 {
		return Result{}, fmt.Errorf("%w: :column add|remove <name>", ErrUsage)
	}
	var errs []error
	for _, name := range args[1:] {
		var err error
		if strings.EqualFold(args[0], "add") {
			err = ctx.App.AddColumn(name)
		} else {
			err = ctx.App.RemoveColumn(name)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Result{}, err
	}
	return Result{Message: "columns: " + strings.Join(ctx.App.Columns(), ", ")}, nil
}

// =============================================================================
// LIBRARY HANDLERS
// =============================================================================

func handleImport(ctx *Context, args []string) (Result, error) {
	paths := make([]string, 0, len(args))
	for _, p := range args {
		expanded, err := config.ExpandHome(p)
		if err != nil {
			return Result{}, err
		}
		paths = append(paths, expanded)
	}
	report, err := ctx.App.Import(ctx.Ctx, paths)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: report.String()}, nil
}

func handleWrite(ctx *Context, _ []string) (Result, error) {
	if err := ctx.App.Save(ctx.Ctx); err != nil {
		return Result{}, err
	}
	return Result{Message: "catalog written"}, nil
}

func handleExport(ctx *Context, args []string) (Result, error) {
	opts := export.DefaultOptions()
	var path string
	for _, arg := range args {
		switch arg {
		case "--zstd", "-z":
			opts.Compress = true
		case "--markdown", "--md":
			opts.Format = "markdown"
		default:
			if path != "" {
				return Result{}, fmt.Errorf("%w: :export takes one file", ErrUsage)
			}
			path = arg
		}
	}
	if path == "" {
		return Result{}, fmt.Errorf("%w: :export <file>", ErrUsage)
	}
	path, err := config.ExpandHome(path)
	if err != nil {
		return Result{}, err
	}
	if filepath.Ext(path) == "" {
		path = export.FileName(path, opts)
	}
	n, err := ctx.App.ExportFile(path, opts)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("exported %s to %s", plural(n, "book"), path)}, nil
}

// =============================================================================
// GENERAL HANDLERS
// =============================================================================

func handleHelp(_ *Context, args []string) (Result, error) {
	res := Result{Action: ActionHelp}
	if len(args) > 0 {
		res.HelpTopic = args[0]
	}
	return res, nil
}

func handleQuit(_ *Context, _ []string) (Result, error) {
	return Result{Action: ActionQuit}, nil
}

func handleWriteQuit(ctx *Context, args []string) (Result, error) {
	if _, err := handleWrite(ctx, args); err != nil {
		return Result{}, err
	}
	return Result{Message: "catalog written", Action: ActionQuit}, nil
}
