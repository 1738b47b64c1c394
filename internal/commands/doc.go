// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the colon command system for the TUI.
//
// The command line accepts vi-style commands that act on the catalog
// through *app.App. Arguments are split with shell-like quoting.
//
// # Key Types
//
//   - Registry: commands and their aliases, plus Execute
//   - Context: what a handler acts on
//   - Result: status message and follow-up action for the UI
//   - Completer: tab completion for command names, columns and paths
//
// # Built-in Commands
//
//   - :find, :jump, :clear: search by column/pattern pairs
//   - :edit, :append, :delete-field, :delete, :merge: change the catalog
//   - :sort, :column: change the view
//   - :import, :write, :export: move books in and out
//   - :help, :quit, :wq
//
// # Usage
//
//	res, err := registry.Execute(ctx, app, `find -r title "^Dune" authors herbert`)
//
// Search patterns match fuzzily unless the pair is preceded by -r (regex),
// -e (exact substring) or -x (exact string).
package commands
