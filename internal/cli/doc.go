// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive
// subcommands of bookshelf.
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	if cmd == cli.CmdTUI {
//	    // start the browser
//	}
//	err := cli.Run(ctx, cmd, args, &cli.Env{App: a, Out: os.Stdout})
//	os.Exit(cli.GetExitCode(err))
//
// # Commands
//
//   - import: add files or directories to the catalog
//   - list: print the catalog, optionally sorted
//   - find: print books matching search pairs
//   - merge: fold duplicate books together
//   - export: write JSON Lines or Markdown, optionally zstd-compressed
//   - config: show, locate or write the configuration file
//   - version, help
//
// All commands support the --json flag.
package cli
