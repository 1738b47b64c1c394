// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the slog loggers used by bookshelf.
//
// The interactive program owns the terminal, so it logs to a file. CLI
// subcommands log to stderr, coloured when stderr is a terminal.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// TimeFormat is time.TimeOnly plus milliseconds.
const TimeFormat = "15:04:05.000"

// ParseLevel maps a config level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NewLevel returns a LevelVar set from a config level name, falling back to
// info for unknown names.
func NewLevel(s string) *slog.LevelVar {
	lv := &slog.LevelVar{}
	level, _ := ParseLevel(s)
	lv.Set(level)
	return lv
}

// New returns a tint logger writing to w.
func New(w io.Writer, level slog.Leveler, color bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:       level,
		TimeFormat:  TimeFormat,
		NoColor:     !color,
		ReplaceAttr: dropEmpty,
	}))
}

// Stderr returns the CLI logger.
func Stderr(level slog.Leveler) *slog.Logger {
	return New(colorable.NewColorable(os.Stderr), level, isatty.IsTerminal(os.Stderr.Fd()))
}

// File opens path for appending and returns a logger writing to it along
// with the file to close on exit.
func File(path string, level slog.Leveler) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(f, level, false), f, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// dropEmpty removes zero-valued attributes so log lines stay short.
func dropEmpty(groups []string, a slog.Attr) slog.Attr {
	var skip bool
	switch t := a.Value.Any().(type) {
	case string:
		skip = t == ""
	case time.Duration:
		skip = t == 0
	case nil:
		skip = true
	}
	if skip {
		return slog.Attr{}
	}
	return a
}
