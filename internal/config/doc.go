// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - LibraryConfig: Catalog location, index capacity, import directories
//   - SortConfig: Parallel sort threshold, workers, default keys
//   - UIConfig: Visible columns and help bar
//   - LogConfig: Log level and file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (BOOKSHELF_*)
//   - ~/.bookshelf/config.toml
//   - ~/.bookshelf/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	db, _ := cfg.DatabasePath()
package config
