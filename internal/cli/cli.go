// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line parsing for bookshelf.

package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the subcommand to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdImport
	CmdList
	CmdFind
	CmdMerge
	CmdExport
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the subcommand name.
func (c Command) String() string {
	switch c {
	case CmdImport:
		return "import"
	case CmdList:
		return "list"
	case CmdFind:
		return "find"
	case CmdMerge:
		return "merge"
	case CmdExport:
		return "export"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "tui"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string // --config: read this file instead of ~/.bookshelf
	JSON       bool   // Output in JSON format
	Quiet      bool   // Only log errors
	Verbose    bool   // Log at debug level
	LogLevel   string // --log-level overrides the configured level

	// Raw holds the subcommand's own arguments
	Raw []string
}

const usageText = `bookshelf - a terminal catalog for your e-books

Usage:
  bookshelf                         Browse the catalog (default)
  bookshelf import [path...]        Import files or directories
                                    (default: library.import_dirs)
  bookshelf list [options]          Print the catalog
    --sort <keys>                   Comma-separated columns, -col descending
    --columns <cols>                Columns to print
    --limit <n>                     Stop after n books
  bookshelf find [options] [-r|-e|-x] <column> <pattern>...
                                    Print books matching every pattern
    --mode <mode>                   fuzzy, regex, substring or exact for
                                    pairs without a flag (default: fuzzy)
  bookshelf merge                   Merge books with the same title and authors
  bookshelf export [options]        Export the catalog
    --out <file>                    Write to file instead of stdout
    --markdown                      Markdown instead of JSON Lines
    --zstd                          Compress with zstd
    --no-variants                   Leave out per-file metadata
  bookshelf config [show|path]      Print the configuration or its location
  bookshelf config write            Save the configuration to ~/.bookshelf
    --format <toml|json>            File format (default: toml)
    --force                         Replace an existing file
  bookshelf version                 Show version information
  bookshelf help                    Show this help

Global flags:
  --config <file>                   Configuration file (TOML or JSON)
  --json                            Machine-readable output
  --log-level <level>               debug, info, warn or error
  -v, --verbose                     Same as --log-level debug
  -q, --quiet                       Same as --log-level error

Search patterns match fuzzily; -r makes the next pattern a regular
expression, -e an exact substring and -x an exact value.

Configuration lives in ~/.bookshelf/config.toml.

Version: %s
`

// PrintUsage writes the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "bookshelf version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s\n", runtime.Version())
}

// Parse parses command-line arguments (without the program name).
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	args.Raw = remaining[1:]

	switch cmd {
	case "tui", "browse":
		return CmdTUI, args
	case "import", "add":
		return CmdImport, args
	case "list", "ls":
		return CmdList, args
	case "find", "f":
		return CmdFind, args
	case "merge":
		return CmdMerge, args
	case "export":
		return CmdExport, args
	case "config":
		return CmdConfig, args
	case "version", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		args.Raw = remaining
		return CmdHelp, args
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var (
		remaining []string
		args      Args
	)

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch arg {
		case "--json":
			args.JSON = true
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--config", "--log-level":
			if i+1 < len(argv) {
				i++
				if arg == "--config" {
					args.ConfigPath = argv[i]
				} else {
					args.LogLevel = argv[i]
				}
			}
		default:
			if v, ok := strings.CutPrefix(arg, "--config="); ok {
				args.ConfigPath = v
			} else if v, ok := strings.CutPrefix(arg, "--log-level="); ok {
				args.LogLevel = v
			} else {
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, args
}

// EffectiveLogLevel resolves the log level flags against the configured one.
func (a Args) EffectiveLogLevel(configured string) string {
	switch {
	case a.LogLevel != "":
		return a.LogLevel
	case a.Verbose:
		return "debug"
	case a.Quiet:
		return "error"
	}
	return configured
}
