// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for bookshelf.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.bookshelf/config.toml
//   - ~/.bookshelf/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"

	"github.com/jeranaias/bookshelf-tui/internal/sorting"
	"github.com/jeranaias/bookshelf-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete bookshelf configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Library LibraryConfig `toml:"library" json:"library"`
	Sort    SortConfig    `toml:"sort" json:"sort"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Log     LogConfig     `toml:"log" json:"log"`

	// Unknown lists keys present in the file that no field decoded;
	// callers log them once a logger exists.
	Unknown []string `toml:"-" json:"-"`
}

// LibraryConfig controls where the catalog lives and how it is fed.
type LibraryConfig struct {
	// DatabasePath is the SQLite catalog (empty = ~/.bookshelf/library.db)
	DatabasePath string `toml:"database_path" json:"database_path"`
	// Capacity bounds the in-memory index; the least recently used book is
	// evicted from memory when it is reached.
	Capacity int `toml:"capacity" json:"capacity"`
	// ImportDirs are scanned by `bookshelf import` with no arguments and
	// watched by the TUI when Watch is set.
	ImportDirs []string `toml:"import_dirs" json:"import_dirs"`
	Watch      bool     `toml:"watch" json:"watch"`
	// WatchDebounceMs coalesces bursts of filesystem events.
	WatchDebounceMs int `toml:"watch_debounce_ms" json:"watch_debounce_ms"`
}

// SortConfig tunes the sort engine.
type SortConfig struct {
	// ParallelThreshold is the record count at which sorting goes parallel.
	ParallelThreshold int `toml:"parallel_threshold" json:"parallel_threshold"`
	// Workers caps sort goroutines (0 = GOMAXPROCS).
	Workers int `toml:"workers" json:"workers"`
	// DefaultKeys are applied after the catalog loads, e.g. ["authors", "series"].
	DefaultKeys []string `toml:"default_keys" json:"default_keys"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	// Columns are the visible table columns in display order.
	Columns  []string `toml:"columns" json:"columns"`
	ShowHelp bool     `toml:"show_help" json:"show_help"`
}

// LogConfig controls the application log.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	// Path is the TUI log file (empty = ~/.bookshelf/bookshelf.log)
	Path string `toml:"path" json:"path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

const (
	// CurrentVersion is written into saved config files.
	CurrentVersion = "1"

	DefaultCapacity        = 100_000
	DefaultWatchDebounceMs = 500
)

// Default returns a Config with all default values.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Library: LibraryConfig{
			Capacity:        DefaultCapacity,
			WatchDebounceMs: DefaultWatchDebounceMs,
		},
		Sort: SortConfig{
			ParallelThreshold: sorting.DefaultThreshold,
			DefaultKeys:       []string{"authors", "series", "title"},
		},
		UI: UIConfig{
			Columns:  []string{"title", "authors", "series", "tags"},
			ShowHelp: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the bookshelf configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".bookshelf"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// DatabasePath resolves the catalog location, defaulting into ConfigDir.
func (c *Config) DatabasePath() (string, error) {
	if c.Library.DatabasePath != "" {
		return ExpandHome(c.Library.DatabasePath)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "library.db"), nil
}

// LogPath resolves the TUI log file location, defaulting into ConfigDir.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return ExpandHome(c.Log.Path)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bookshelf.log"), nil
}

// ImportPaths returns ImportDirs with ~ expanded.
func (c *Config) ImportPaths() ([]string, error) {
	out := make([]string, 0, len(c.Library.ImportDirs))
	for _, dir := range c.Library.ImportDirs {
		p, err := ExpandHome(dir)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ExpandHome replaces a leading ~ with the home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		cfg.Unknown = keys
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
// Keys the file omits keep their Default values.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Library
	if cfg.Library.Capacity == 0 {
		cfg.Library.Capacity = defaults.Library.Capacity
	}
	if cfg.Library.WatchDebounceMs == 0 {
		cfg.Library.WatchDebounceMs = defaults.Library.WatchDebounceMs
	}

	// Sort
	if cfg.Sort.ParallelThreshold == 0 {
		cfg.Sort.ParallelThreshold = defaults.Sort.ParallelThreshold
	}
	if cfg.Sort.DefaultKeys == nil {
		cfg.Sort.DefaultKeys = defaults.Sort.DefaultKeys
	}

	// UI
	if len(cfg.UI.Columns) == 0 {
		cfg.UI.Columns = defaults.UI.Columns
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	err := util.AtomicWrite(path, 0o644, func(w io.Writer) error {
		fmt.Fprintln(w, "# bookshelf configuration file")
		fmt.Fprintln(w, "# Generated by bookshelf - edit with care")
		fmt.Fprintln(w, "")
		return toml.NewEncoder(w).Encode(cfg)
	})
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Library.Capacity < 1 {
		errs = append(errs, ValidationError{
			Field:   "library.capacity",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Library.Capacity),
		})
	}
	if c.Library.WatchDebounceMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "library.watch_debounce_ms",
			Message: "must not be negative",
		})
	}
	if c.Sort.ParallelThreshold < 1 {
		errs = append(errs, ValidationError{
			Field:   "sort.parallel_threshold",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Sort.ParallelThreshold),
		})
	}
	if c.Sort.Workers < 0 || c.Sort.Workers > 4*runtime.NumCPU() {
		errs = append(errs, ValidationError{
			Field:   "sort.workers",
			Message: fmt.Sprintf("must be between 0 and %d, got %d", 4*runtime.NumCPU(), c.Sort.Workers),
		})
	}
	if _, err := sorting.ParseKeys(c.Sort.DefaultKeys); err != nil {
		errs = append(errs, ValidationError{Field: "sort.default_keys", Message: err.Error()})
	}
	for _, col := range c.UI.Columns {
		if strings.TrimSpace(col) == "" {
			errs = append(errs, ValidationError{Field: "ui.columns", Message: "column names must not be empty"})
			break
		}
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown level %q (want debug, info, warn or error)", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - BOOKSHELF_DB: overrides library.database_path
//   - BOOKSHELF_CAPACITY: overrides library.capacity
//   - BOOKSHELF_LOG_LEVEL: overrides log.level
//   - BOOKSHELF_SORT_THRESHOLD: overrides sort.parallel_threshold
//
// Unparseable numbers are ignored.
func (c *Config) ApplyEnvOverrides() {
	if db := os.Getenv("BOOKSHELF_DB"); db != "" {
		c.Library.DatabasePath = db
	}
	if capacity := os.Getenv("BOOKSHELF_CAPACITY"); capacity != "" {
		if n, err := strconv.Atoi(capacity); err == nil {
			c.Library.Capacity = n
		}
	}
	if level := os.Getenv("BOOKSHELF_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if threshold := os.Getenv("BOOKSHELF_SORT_THRESHOLD"); threshold != "" {
		if n, err := strconv.Atoi(threshold); err == nil {
			c.Sort.ParallelThreshold = n
		}
	}
}

// =============================================================================
// UTILITY
// =============================================================================

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Library.ImportDirs = append([]string(nil), c.Library.ImportDirs...)
	clone.Sort.DefaultKeys = append([]string(nil), c.Sort.DefaultKeys...)
	clone.UI.Columns = append([]string(nil), c.UI.Columns...)
	return &clone
}

// String renders the config as TOML, as `bookshelf config show` prints it.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
