// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jeranaias/bookshelf-tui/internal/app"
)

// ErrUnknownCommand is returned for command names nothing is registered under.
var ErrUnknownCommand = errors.New("unknown command")

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a colon command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., ":find")
	Name string

	// Aliases are alternative names (e.g., ":f")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., ":sort <column> [-column]...")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Repeat makes Args cycle for completion, for commands taking
	// column/value pairs.
	Repeat bool

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) (Result, error)

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Required indicates if the argument must be provided
	Required bool

	// Type determines completion behavior
	Type ArgType

	// Description explains the argument
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString  ArgType = iota // Free-form string
	ArgTypeColumn                 // Column name known to the library
	ArgTypeSortKey                // Column name with optional - prefix
	ArgTypeFile                   // File path
	ArgTypeEnum                   // One of predefined values
)

// =============================================================================
// EXECUTION CONTEXT AND RESULT
// =============================================================================

// Context carries what a handler acts on.
type Context struct {
	Ctx context.Context
	App *app.App

	// Registry is the registry the command was found in, for :help.
	Registry *Registry
}

// Action tells the UI what to do after a command ran.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionHelp
)

// Result is the outcome of a successful command.
type Result struct {
	// Message is shown in the status bar.
	Message string

	Action Action

	// HelpTopic narrows ActionHelp to one command.
	HelpTopic string
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias. The leading colon is optional.
func (r *Registry) Get(name string) *Command {
	name = normalizeName(name)
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	slices.SortFunc(cmds, func(a, b *Command) int { return strings.Compare(a.Name, b.Name) })
	return cmds
}

// ByCategory returns commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// Execute parses input and runs the command it names.
func (r *Registry) Execute(ctx context.Context, a *app.App, input string) (Result, error) {
	parsed := Parse(input)
	if parsed.CommandName == "" {
		return Result{}, nil
	}
	cmd := r.Get(parsed.CommandName)
	if cmd == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownCommand, parsed.CommandName)
	}
	if err := ValidateArgs(cmd, parsed.Args); err != nil {
		return Result{}, err
	}
	return cmd.Handler(&Context{Ctx: ctx, App: a, Registry: r}, parsed.Args)
}

// HelpMarkdown renders the command reference, or one command's entry when
// topic names a command.
func (r *Registry) HelpMarkdown(topic string) string {
	var b strings.Builder
	if topic != "" {
		if cmd := r.Get(topic); cmd != nil {
			writeCommandHelp(&b, cmd)
			return b.String()
		}
	}

	b.WriteString("# Commands\n\n")
	b.WriteString("Press `:` to open the command line. Find and jump take column/pattern pairs; " +
		"prefix a pair with `-r` (regex), `-e` (exact substring) or `-x` (exact string), " +
		"otherwise the pattern is matched fuzzily.\n\n")
	for _, category := range categoryOrder {
		cmds := r.ByCategory()[category]
		if len(cmds) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", category)
		b.WriteString("| Command | Aliases | Description |\n|---|---|---|\n")
		for _, cmd := range cmds {
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.Name
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s |\n", usage, strings.Join(cmd.Aliases, " "), cmd.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString(keyHelp)
	return b.String()
}

func writeCommandHelp(b *strings.Builder, cmd *Command) {
	fmt.Fprintf(b, "# %s\n\n%s\n\n", cmd.Name, cmd.Description)
	if cmd.Usage != "" {
		fmt.Fprintf(b, "    %s\n\n", cmd.Usage)
	}
	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(b, "Aliases: %s\n\n", strings.Join(cmd.Aliases, ", "))
	}
	for _, arg := range cmd.Args {
		req := "optional"
		if arg.Required {
			req = "required"
		}
		fmt.Fprintf(b, "- **%s** (%s): %s\n", arg.Name, req, arg.Description)
	}
}

var categoryOrder = []string{"Search", "Edit", "View", "Library", "General"}

const keyHelp = `## Keys

| Key | Action |
|---|---|
| ` + "`j` `k` `↑` `↓`" + ` | Select next or previous book |
| ` + "`PgUp` `PgDn`" + ` | Page up or down |
| ` + "`g` `G`" + ` | First or last book |
| ` + "`ctrl+u` `ctrl+d`" + ` | Scroll half a page |
| ` + "`/`" + ` | Quick fuzzy filter on title |
| ` + "`enter`" + ` | Toggle the detail pane |
| ` + "`esc`" + ` | Clear the filter or close a pane |
| ` + "`?`" + ` | Toggle this help |
| ` + "`q`" + ` | Quit |
`

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if !strings.HasPrefix(name, ":") {
		name = ":" + name
	}
	return name
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	searchArgs := []ArgDef{
		{Name: "column", Required: true, Type: ArgTypeColumn, Description: "Column to search"},
		{Name: "pattern", Required: true, Type: ArgTypeString, Description: "Text to look for"},
	}
	editArgs := []ArgDef{
		{Name: "column", Required: true, Type: ArgTypeColumn, Description: "Column to change"},
		{Name: "value", Required: true, Type: ArgTypeString, Description: "New value"},
	}

	// Search commands
	r.Register(&Command{
		Name:        ":find",
		Aliases:     []string{":f"},
		Description: "Show only books matching every pattern",
		Usage:       ":find [-r|-e|-x] <column> <pattern>...",
		Args:        searchArgs,
		Repeat:      true,
		Category:    "Search",
		Handler:     handleFind,
	})
	r.Register(&Command{
		Name:        ":jump",
		Aliases:     []string{":j"},
		Description: "Select the first book matching every pattern",
		Usage:       ":jump [-r|-e|-x] <column> <pattern>...",
		Args:        searchArgs,
		Repeat:      true,
		Category:    "Search",
		Handler:     handleJump,
	})
	r.Register(&Command{
		Name:        ":clear",
		Aliases:     []string{":nofind"},
		Description: "Remove the active filter",
		Category:    "Search",
		Handler:     handleClear,
	})

	// Edit commands
	r.Register(&Command{
		Name:        ":edit",
		Aliases:     []string{":e"},
		Description: "Replace column values of the selected book",
		Usage:       ":edit <column> <value>...",
		Args:        editArgs,
		Repeat:      true,
		Category:    "Edit",
		Handler:     handleEdit,
	})
	r.Register(&Command{
		Name:        ":append",
		Aliases:     []string{":a"},
		Description: "Append to column values of the selected book",
		Usage:       ":append <column> <value>...",
		Args:        editArgs,
		Repeat:      true,
		Category:    "Edit",
		Handler:     handleAppend,
	})
	r.Register(&Command{
		Name:        ":delete-field",
		Aliases:     []string{":df"},
		Description: "Clear columns of the selected book",
		Usage:       ":delete-field <column>...",
		Args:        []ArgDef{{Name: "column", Required: true, Type: ArgTypeColumn, Description: "Column to clear"}},
		Repeat:      true,
		Category:    "Edit",
		Handler:     handleDeleteField,
	})
	r.Register(&Command{
		Name:        ":delete",
		Aliases:     []string{":d"},
		Description: "Delete the selected book from the catalog",
		Category:    "Edit",
		Handler:     handleDelete,
	})
	r.Register(&Command{
		Name:        ":merge",
		Aliases:     []string{":m"},
		Description: "Merge books with the same title and authors",
		Category:    "Edit",
		Handler:     handleMerge,
	})

	// View commands
	r.Register(&Command{
		Name:        ":sort",
		Aliases:     []string{":s"},
		Description: "Sort by columns; prefix a column with - to reverse it",
		Usage:       ":sort <column> [-column]...",
		Args:        []ArgDef{{Name: "key", Required: true, Type: ArgTypeSortKey, Description: "Column, - for descending"}},
		Repeat:      true,
		Category:    "View",
		Handler:     handleSort,
	})
	r.Register(&Command{
		Name:        ":column",
		Aliases:     []string{":c"},
		Description: "Show or hide a table column",
		Usage:       ":column add|remove <name>",
		Args: []ArgDef{
			{Name: "action", Required: true, Type: ArgTypeEnum, Values: []string{"add", "remove"}, Description: "add or remove"},
			{Name: "name", Required: true, Type: ArgTypeColumn, Description: "Column name"},
		},
		Category: "View",
		Handler:  handleColumn,
	})

	// Library commands
	r.Register(&Command{
		Name:        ":import",
		Aliases:     []string{":i", ":add"},
		Description: "Import book files or directories",
		Usage:       ":import <path>...",
		Args:        []ArgDef{{Name: "path", Required: true, Type: ArgTypeFile, Description: "File or directory"}},
		Repeat:      true,
		Category:    "Library",
		Handler:     handleImport,
	})
	r.Register(&Command{
		Name:        ":write",
		Aliases:     []string{":w"},
		Description: "Flush the catalog to disk",
		Category:    "Library",
		Handler:     handleWrite,
	})
	r.Register(&Command{
		Name:        ":export",
		Description: "Export the current view as JSON Lines or Markdown",
		Usage:       ":export <file> [--zstd] [--markdown]",
		Args:        []ArgDef{{Name: "file", Required: true, Type: ArgTypeFile, Description: "Output file"}},
		Category:    "Library",
		Handler:     handleExport,
	})

	// General
	r.Register(&Command{
		Name:        ":help",
		Aliases:     []string{":h", ":?"},
		Description: "Show help for all commands or one command",
		Usage:       ":help [command]",
		Args:        []ArgDef{{Name: "command", Type: ArgTypeString, Description: "Command name"}},
		Category:    "General",
		Handler:     handleHelp,
	})
	r.Register(&Command{
		Name:        ":quit",
		Aliases:     []string{":q"},
		Description: "Exit bookshelf",
		Category:    "General",
		Handler:     handleQuit,
	})
	r.Register(&Command{
		Name:        ":wq",
		Aliases:     []string{":x"},
		Description: "Flush the catalog and exit",
		Category:    "General",
		Handler:     handleWriteQuit,
	})
}
