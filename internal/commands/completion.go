// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeranaias/bookshelf-tui/internal/search"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completion is a single candidate for the token being typed.
type Completion struct {
	Value       string
	Display     string
	Description string
	Score       int
}

// maxCompletions caps how many candidates are offered.
const maxCompletions = 20

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry

	// ColumnsFn returns the column names the library knows.
	ColumnsFn func() []string

	// FilesFn returns paths matching prefix. Nil reads the filesystem.
	FilesFn func(prefix string) []string
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry, columns func() []string) *Completer {
	return &Completer{registry: registry, ColumnsFn: columns}
}

// Complete returns candidates for the last token of input. The colon
// prefix is optional.
func (c *Completer) Complete(input string) []Completion {
	input = strings.TrimPrefix(strings.TrimLeft(input, " \t"), ":")

	if partial := GetPartialCommand(input); partial != "" || input == "" {
		return c.completeCommands(partial)
	}

	parts := splitCommandLine(input)
	cmd := c.registry.Get(parts[0])
	if cmd == nil {
		return nil
	}
	argIndex, partial := GetPartialArg(input)
	args := parts[1:]
	if partial != "" {
		args = args[:len(args)-1]
	}
	return c.completeArg(cmd, positional(cmd, args, argIndex), partial)
}

// Apply replaces the token being typed in input with comp.
func Apply(input string, comp Completion) string {
	prefix := ""
	if strings.HasPrefix(strings.TrimLeft(input, " \t"), ":") {
		prefix = ":"
		input = strings.TrimPrefix(strings.TrimLeft(input, " \t"), ":")
	}
	if strings.HasSuffix(input, " ") || input == "" {
		return prefix + input + quoteIfNeeded(comp.Value)
	}
	cut := strings.LastIndexAny(input, " \t")
	if cut < 0 {
		return prefix + comp.Value + " "
	}
	return prefix + input[:cut+1] + quoteIfNeeded(comp.Value)
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}

// positional maps the raw argument index to an argument definition index.
// Search flags are skipped, and repeating commands cycle through Args.
func positional(cmd *Command, args []string, argIndex int) int {
	n := 0
	for i := 0; i < argIndex && i < len(args); i++ {
		if _, flag := modeFlags[args[i]]; flag {
			continue
		}
		n++
	}
	if cmd.Repeat && len(cmd.Args) > 0 {
		return n % len(cmd.Args)
	}
	return n
}

// completeCommands returns command names matching partial.
func (c *Completer) completeCommands(partial string) []Completion {
	partial = normalizeName(partial)

	var completions []Completion
	for _, cmd := range c.registry.All() {
		if cmd.Hidden {
			continue
		}
		names := append([]string{cmd.Name}, cmd.Aliases...)
		for _, name := range names {
			if !strings.HasPrefix(name, partial) {
				continue
			}
			completions = append(completions, Completion{
				Value:       strings.TrimPrefix(cmd.Name, ":"),
				Display:     cmd.Name,
				Description: cmd.Description,
				Score:       calculateScore(name, partial),
			})
			break
		}
	}
	sortCompletions(completions)
	return completions
}

// completeArg returns completions for a command argument.
func (c *Completer) completeArg(cmd *Command, argIndex int, partial string) []Completion {
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}

	arg := cmd.Args[argIndex]
	switch arg.Type {
	case ArgTypeColumn:
		return c.completeColumns(partial, "")
	case ArgTypeSortKey:
		if rest, ok := strings.CutPrefix(partial, "-"); ok {
			return c.completeColumns(rest, "-")
		}
		return c.completeColumns(partial, "")
	case ArgTypeFile:
		return c.completeFiles(partial)
	case ArgTypeEnum:
		return completeFromList(arg.Values, partial)
	default:
		return nil
	}
}

// completeColumns ranks library columns against partial with the fuzzy
// scorer used for searching.
func (c *Completer) completeColumns(partial, prefix string) []Completion {
	if c.ColumnsFn == nil {
		return nil
	}
	var completions []Completion
	for _, name := range c.ColumnsFn() {
		score, ok := search.FuzzyScore(partial, name)
		if !ok {
			continue
		}
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(partial)) {
			score += 50
		}
		completions = append(completions, Completion{
			Value:   prefix + name,
			Display: prefix + name,
			Score:   score,
		})
	}
	sortCompletions(completions)
	return limit(completions)
}

// completeFiles returns completions for file paths.
func (c *Completer) completeFiles(partial string) []Completion {
	if c.FilesFn != nil {
		return completeFromList(c.FilesFn(partial), partial)
	}
	return defaultFileCompletion(partial)
}

// defaultFileCompletion lists directory entries matching the typed prefix.
func defaultFileCompletion(partial string) []Completion {
	dir := filepath.Dir(partial)
	prefix := filepath.Base(partial)
	if partial == "" || strings.HasSuffix(partial, string(os.PathSeparator)) {
		dir = partial
		if dir == "" {
			dir = "."
		}
		prefix = ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	prefix = strings.ToLower(prefix)
	var completions []Completion
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(strings.ToLower(name), prefix) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}

		path := name
		if partial != "" {
			path = filepath.Join(dir, name)
		}
		score := calculateScore(name, prefix)
		desc := "file"
		if entry.IsDir() {
			path += string(os.PathSeparator)
			score += 5
			desc = "directory"
		}
		completions = append(completions, Completion{
			Value:       path,
			Display:     name,
			Description: desc,
			Score:       score,
		})
	}

	sortCompletions(completions)
	return limit(completions)
}

func completeFromList(values []string, partial string) []Completion {
	var completions []Completion
	lower := strings.ToLower(partial)
	for _, value := range values {
		if strings.HasPrefix(strings.ToLower(value), lower) {
			completions = append(completions, Completion{
				Value:   value,
				Display: value,
				Score:   calculateScore(value, lower),
			})
		}
	}
	sortCompletions(completions)
	return limit(completions)
}

// calculateScore calculates a match score for completion ranking.
// Higher score = better match.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	score := 100
	if value == partial {
		return score + 100
	}
	if strings.HasPrefix(value, partial) {
		score += 50
		score += 20 - len(value)
	}
	score -= len(value) / 2
	return score
}

// sortCompletions sorts completions by score (descending), then alphabetically.
func sortCompletions(completions []Completion) {
	sort.Slice(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}

func limit(completions []Completion) []Completion {
	if len(completions) > maxCompletions {
		return completions[:maxCompletions]
	}
	return completions
}

// =============================================================================
// COMPLETION NAVIGATION
// =============================================================================

// CompletionState holds the state for cycling through completions.
type CompletionState struct {
	// OriginalInput is the line before completion started
	OriginalInput string

	Completions []Completion

	// Selected index (-1 for none)
	Selected int

	Visible bool
}

// NewCompletionState creates a new completion state.
func NewCompletionState() *CompletionState {
	return &CompletionState{Selected: -1}
}

// Update replaces the candidates and selects the first.
func (cs *CompletionState) Update(input string, completions []Completion) {
	cs.OriginalInput = input
	cs.Completions = completions
	cs.Selected = 0
	cs.Visible = len(completions) > 0
}

// Next moves to the next completion.
func (cs *CompletionState) Next() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected = (cs.Selected + 1) % len(cs.Completions)
}

// Prev moves to the previous completion.
func (cs *CompletionState) Prev() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected--
	if cs.Selected < 0 {
		cs.Selected = len(cs.Completions) - 1
	}
}

// Accept returns OriginalInput with the selected completion applied.
func (cs *CompletionState) Accept() string {
	sel := cs.GetSelected()
	if sel == nil {
		return cs.OriginalInput
	}
	return Apply(cs.OriginalInput, *sel)
}

// Clear clears the completion state.
func (cs *CompletionState) Clear() {
	cs.OriginalInput = ""
	cs.Completions = nil
	cs.Selected = -1
	cs.Visible = false
}

// GetSelected returns the currently selected completion, or nil.
func (cs *CompletionState) GetSelected() *Completion {
	if cs.Selected < 0 || cs.Selected >= len(cs.Completions) {
		return nil
	}
	return &cs.Completions[cs.Selected]
}
