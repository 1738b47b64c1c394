// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// library_cmd.go - Non-interactive catalog subcommands.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jeranaias/bookshelf-tui/internal/app"
	"github.com/jeranaias/bookshelf-tui/internal/commands"
	"github.com/jeranaias/bookshelf-tui/internal/config"
	"github.com/jeranaias/bookshelf-tui/internal/export"
	"github.com/jeranaias/bookshelf-tui/internal/library"
	"github.com/jeranaias/bookshelf-tui/internal/record"
	"github.com/jeranaias/bookshelf-tui/internal/search"
	"github.com/jeranaias/bookshelf-tui/internal/sorting"
	"github.com/jeranaias/bookshelf-tui/internal/util"
)

// Env is what a subcommand runs against.
type Env struct {
	App *app.App
	// Config is the effective configuration; config falls back to App's.
	Config *config.Config
	Out    io.Writer
	// Width is the output width in cells; 0 prints tab-separated rows.
	Width int
}

// Run dispatches a catalog subcommand.
func Run(ctx context.Context, cmd Command, args Args, env *Env) error {
	switch cmd {
	case CmdImport:
		return HandleImport(ctx, env, args)
	case CmdList:
		return HandleList(ctx, env, args)
	case CmdFind:
		return HandleFind(ctx, env, args)
	case CmdMerge:
		return HandleMerge(ctx, env, args)
	case CmdExport:
		return HandleExport(ctx, env, args)
	case CmdConfig:
		return HandleConfig(env, args)
	case CmdVersion:
		return HandleVersion(env.Out, args)
	case CmdHelp:
		PrintUsage(env.Out)
		if len(args.Raw) > 0 {
			return &ValidationError{
				Field:  "command",
				Value:  args.Raw[0],
				Reason: "unknown command",
			}
		}
		return nil
	}
	return NewCommandError(cmd.String(), "not a catalog command", nil)
}

// =============================================================================
// IMPORT
// =============================================================================

// HandleImport imports the given paths, or the configured import
// directories when none are given.
func HandleImport(ctx context.Context, env *Env, args Args) error {
	p := NewArgParser(args.Raw)
	paths := p.PositionalFrom(0)
	if len(paths) == 0 {
		dirs, err := env.App.Config().ImportPaths()
		if err != nil {
			return NewCommandError("import", "invalid import directories", err)
		}
		paths = dirs
	}
	if len(paths) == 0 {
		return &ValidationError{
			Field:   "path",
			Reason:  "nothing to import",
			Example: "bookshelf import ~/Books",
		}
	}
	for i, path := range paths {
		expanded, err := config.ExpandHome(path)
		if err != nil {
			return NewCommandError("import", "cannot expand path", err)
		}
		paths[i] = expanded
	}

	report, err := env.App.Import(ctx, paths)
	if err != nil {
		return NewCommandError("import", "import failed", err)
	}

	if args.JSON {
		data := ImportData{
			BatchID:   report.BatchID,
			Scanned:   report.Scanned,
			Added:     report.Added,
			Updated:   report.Updated,
			Unchanged: report.Unchanged,
		}
		for _, f := range report.Failures {
			data.Failures = append(data.Failures, ImportFailure{Path: f.Path, Error: f.Err.Error()})
		}
		return NewJSONResponse("import", data).Write(env.Out)
	}

	fmt.Fprintf(env.Out, "%s %s\n", SuccessStyle.Render("Imported:"), report.String())
	for _, f := range report.Failures {
		fmt.Fprintf(env.Out, "  %s %s: %v\n", WarningStyle.Render("!"), f.Path, f.Err)
	}
	return nil
}

// =============================================================================
// LIST / FIND
// =============================================================================

// listOptions are the flags list and find share.
type listOptions struct {
	keys    []sorting.Key
	columns []string
	limit   int
}

func parseListOptions(p *ArgParser, a *app.App) (listOptions, error) {
	var opts listOptions

	if raw := p.FlagList("sort"); len(raw) > 0 {
		keys, err := sorting.ParseKeys(raw)
		if err != nil {
			return opts, &ValidationError{
				Field:   "--sort",
				Value:   strings.Join(raw, ","),
				Reason:  err.Error(),
				Example: "--sort authors,-series",
			}
		}
		opts.keys = keys
	}

	opts.columns = p.FlagList("columns")
	if len(opts.columns) == 0 {
		opts.columns = a.Columns()
	}

	if !p.HasFlag("limit") {
		return opts, nil
	}
	limit, err := p.FlagInt("limit")
	if err != nil || limit < 0 {
		return opts, &ValidationError{
			Field:   "--limit",
			Value:   p.Flag("limit"),
			Reason:  "must be a non-negative number",
			Example: "--limit 20",
		}
	}
	opts.limit = limit
	return opts, nil
}

// HandleList prints the catalog.
func HandleList(ctx context.Context, env *Env, args Args) error {
	p := NewArgParser(args.Raw)
	opts, err := parseListOptions(p, env.App)
	if err != nil {
		return err
	}
	return printView(env, args, "list", opts)
}

// HandleFind prints the books matching every search pair. Options must come
// before the first search pair so that patterns may start with a dash.
// --mode sets how unflagged pairs match.
func HandleFind(ctx context.Context, env *Env, args Args) error {
	optArgs, searchArgs := splitLeadingOptions(args.Raw, "sort", "columns", "limit", "mode")
	p := NewArgParser(optArgs)
	opts, err := parseListOptions(p, env.App)
	if err != nil {
		return err
	}

	mode, ok := search.ParseMode(p.Flag("mode"))
	if !ok {
		return &ValidationError{
			Field:   "--mode",
			Value:   p.Flag("mode"),
			Reason:  "must be fuzzy, regex, substring or exact",
			Example: "bookshelf find --mode substring title dune",
		}
	}

	descs, err := commands.ParseSearchesMode(searchArgs, mode)
	if err != nil {
		return &ValidationError{
			Field:   "search",
			Value:   strings.Join(searchArgs, " "),
			Reason:  err.Error(),
			Example: "bookshelf find authors herbert -r title '^Dune'",
		}
	}
	if _, err := env.App.Filter(descs); err != nil {
		if errors.Is(err, app.ErrNoMatches) || errors.Is(err, library.ErrInternalInconsistency) {
			return err
		}
		return NewCommandError("find", "invalid search", err)
	}
	return printView(env, args, "find", opts)
}

// splitLeadingOptions separates "--name value" pairs at the front of raw
// from the rest. Only the named options are recognized.
func splitLeadingOptions(raw []string, names ...string) (opts, rest []string) {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}

	i := 0
	for i < len(raw) {
		name, ok := strings.CutPrefix(raw[i], "--")
		if !ok || name == "" {
			break
		}
		if base, _, hasValue := strings.Cut(name, "="); hasValue {
			if !known[base] {
				break
			}
			opts = append(opts, raw[i])
			i++
			continue
		}
		if !known[name] || i+1 >= len(raw) {
			break
		}
		opts = append(opts, raw[i], raw[i+1])
		i += 2
	}
	if i < len(raw) && raw[i] == "--" {
		i++
	}
	return opts, raw[i:]
}

func printView(env *Env, args Args, command string, opts listOptions) error {
	if opts.keys != nil {
		env.App.Sort(opts.keys)
	}
	books := env.App.Books()
	if opts.limit > 0 && len(books) > opts.limit {
		books = books[:opts.limit]
	}

	if args.JSON {
		if books == nil {
			books = []*record.Book{}
		}
		return NewJSONResponse(command, books).Write(env.Out)
	}

	columns := make([]record.Column, len(opts.columns))
	for i, name := range opts.columns {
		columns[i] = record.ParseColumn(name)
	}
	writeTable(env.Out, env.Width, opts.columns, columns, books)
	return nil
}

// writeTable prints books as aligned columns, or as tab-separated values
// when width is zero.
func writeTable(w io.Writer, width int, names []string, columns []record.Column, books []*record.Book) {
	if len(columns) == 0 {
		return
	}

	if width <= 0 {
		fmt.Fprintln(w, strings.Join(names, "\t"))
		cells := make([]string, len(columns))
		for _, b := range books {
			for i, c := range columns {
				v, _ := b.Value(c)
				cells[i] = strings.ReplaceAll(util.SingleLine(v), "\t", " ")
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
		return
	}

	widths := tableWidths(width, len(columns))
	var sb strings.Builder
	for i, name := range names {
		sb.WriteString(util.FitWidth(name, widths[i]))
		if i < len(names)-1 {
			sb.WriteByte(' ')
		}
	}
	fmt.Fprintln(w, TitleStyle.Render(strings.TrimRight(sb.String(), " ")))
	fmt.Fprintln(w, RenderSeparator(width))

	for _, b := range books {
		sb.Reset()
		for i, c := range columns {
			v, ok := b.Value(c)
			if !ok {
				v = "-"
			}
			sb.WriteString(util.FitWidth(util.SingleLine(v), widths[i]))
			if i < len(columns)-1 {
				sb.WriteByte(' ')
			}
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}
	fmt.Fprintln(w, DimStyle.Render(fmt.Sprintf("%d books", len(books))))
}

// tableWidths splits width between n columns separated by one space; the
// last column takes the remainder.
func tableWidths(width, n int) []int {
	widths := make([]int, n)
	avail := max(width-(n-1), n)
	each := avail / n
	for i := range widths {
		widths[i] = each
	}
	widths[n-1] += avail - each*n
	return widths
}

// =============================================================================
// MERGE / EXPORT / VERSION
// =============================================================================

// HandleMerge merges duplicate books.
func HandleMerge(ctx context.Context, env *Env, args Args) error {
	pairs, err := env.App.Merge(ctx)
	if err != nil {
		return NewCommandError("merge", "merge failed", err)
	}

	if args.JSON {
		data := MergeData{Merged: len(pairs)}
		for _, p := range pairs {
			data.Pairs = append(data.Pairs, MergePair{Survivor: uint64(p.Survivor), Absorbed: uint64(p.Absorbed)})
		}
		return NewJSONResponse("merge", data).Write(env.Out)
	}

	if len(pairs) == 0 {
		fmt.Fprintln(env.Out, DimStyle.Render("No duplicates found."))
		return nil
	}
	fmt.Fprintf(env.Out, "%s %d duplicates\n", SuccessStyle.Render("Merged:"), len(pairs))
	for _, p := range pairs {
		fmt.Fprintf(env.Out, "  %d -> %d\n", p.Absorbed, p.Survivor)
	}
	return nil
}

// HandleExport writes the catalog to --out or, without it, to the output.
func HandleExport(ctx context.Context, env *Env, args Args) error {
	p := NewArgParser(args.Raw, "zstd", "z", "markdown", "md", "no-variants")
	opts := export.DefaultOptions()
	if p.BoolFlag("markdown") || p.BoolFlag("md") {
		opts.Format = "markdown"
	}
	opts.Compress = p.BoolFlag("zstd") || p.BoolFlag("z")
	opts.IncludeVariants = !p.BoolFlag("no-variants")

	out := p.FlagOrDefault("out", p.Positional(0))
	if out == "" {
		if opts.Compress && env.Width > 0 {
			return &ValidationError{
				Field:   "--out",
				Reason:  "refusing to write compressed output to a terminal",
				Example: "bookshelf export --zstd --out books.jsonl.zst",
			}
		}
		if _, err := env.App.Export(env.Out, opts); err != nil {
			return NewCommandError("export", "export failed", err)
		}
		return nil
	}

	out, err := config.ExpandHome(out)
	if err != nil {
		return NewCommandError("export", "cannot expand path", err)
	}
	if filepath.Ext(out) == "" {
		out = export.FileName(out, opts)
	}
	n, err := env.App.ExportFile(out, opts)
	if err != nil {
		return NewCommandError("export", "export failed", err)
	}

	if args.JSON {
		return NewJSONResponse("export", ExportData{Path: out, Books: n}).Write(env.Out)
	}
	fmt.Fprintf(env.Out, "%s %d books to %s\n", SuccessStyle.Render("Exported:"), n, out)
	return nil
}

// HandleVersion prints version information.
func HandleVersion(w io.Writer, args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Write(w)
	}
	PrintVersion(w)
	return nil
}
