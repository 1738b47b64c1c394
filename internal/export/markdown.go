// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/jeranaias/bookshelf-tui/internal/record"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter writes each book as a Markdown section.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export writes books as Markdown.
func (e *MarkdownExporter) Export(w io.Writer, books []*record.Book) error {
	var sb strings.Builder
	sb.WriteString("# Library\n\n")
	for _, b := range books {
		sb.WriteString(BookMarkdown(b, e.options.IncludeVariants))
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// BookMarkdown renders one book as a Markdown section.
func BookMarkdown(b *record.Book, includeVariants bool) string {
	var sb strings.Builder

	title := b.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(&sb, "## %s\n\n", escapeMarkdown(title))

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "- **%s:** %s\n", name, escapeMarkdown(value))
		}
	}
	field("ID", b.ID.String())
	field("Authors", strings.Join(b.Authors, ", "))
	if b.Series != nil {
		field("Series", b.Series.String())
	}
	field("Tags", strings.Join(b.FreeTags, ", "))
	for _, k := range slices.Sorted(maps.Keys(b.NamedTags)) {
		field(k, b.NamedTags[k])
	}

	if b.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", b.Description)
	}

	if includeVariants && len(b.Variants) > 0 {
		sb.WriteString("\n| Format | Path | Size |\n|---|---|---|\n")
		for _, v := range b.Variants {
			fmt.Fprintf(&sb, "| %s | `%s` | %s |\n", v.Format, v.Path, formatSize(v.FileSize))
		}
	}
	return sb.String()
}

// escapeMarkdown escapes characters that would change Markdown structure.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"_", `\_`,
		"`", "\\`",
		"#", `\#`,
		"|", `\|`,
		"[", `\[`,
		"]", `\]`,
	)
	return r.Replace(s)
}

func formatSize(n int64) string {
	switch {
	case n <= 0:
		return "-"
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}
