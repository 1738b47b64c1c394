// bookshelf - a terminal catalog for your e-books.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/bookshelf-tui/internal/app"
	"github.com/jeranaias/bookshelf-tui/internal/cli"
	"github.com/jeranaias/bookshelf-tui/internal/config"
	"github.com/jeranaias/bookshelf-tui/internal/logging"
	"github.com/jeranaias/bookshelf-tui/internal/scan"
	"github.com/jeranaias/bookshelf-tui/internal/storage"
	"github.com/jeranaias/bookshelf-tui/internal/ui/browser"
	"github.com/jeranaias/bookshelf-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])
	cli.ConfigureColors()

	switch cmd {
	case cli.CmdVersion, cli.CmdHelp:
		err := cli.Run(context.Background(), cmd, args, &cli.Env{Out: os.Stdout})
		cli.DisplayError(os.Stderr, err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cmd, args)
	stop()

	cli.DisplayError(os.Stderr, err, args.JSON)
	os.Exit(cli.GetExitCode(err))
}

func run(ctx context.Context, cmd cli.Command, args cli.Args) error {
	cfg, err := loadConfig(args.ConfigPath)
	if err != nil {
		return err
	}

	if cmd == cli.CmdConfig {
		return cli.Run(ctx, cmd, args, &cli.Env{Config: cfg, Out: os.Stdout})
	}

	if cmd == cli.CmdTUI && !cli.CanRunTUI() {
		return &cli.ValidationError{
			Field:   "terminal",
			Reason:  "the browser needs an interactive terminal",
			Example: "bookshelf list",
		}
	}

	level := logging.NewLevel(args.EffectiveLogLevel(cfg.Log.Level))
	logger, closer, err := openLogger(cmd, cfg, level)
	if err != nil {
		return err
	}
	defer closer.Close()

	for _, key := range cfg.Unknown {
		logger.Warn("unknown config key ignored", "key", key)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}
	store := storage.NewSQLiteStore(dbPath)
	if err := store.Open(ctx); err != nil {
		return err
	}

	a := app.New(cfg, store, logger)
	defer func() {
		// Saving must not be skipped because ctx was cancelled.
		if cerr := a.Close(context.Background()); cerr != nil {
			logger.Error("failed to close catalog", "err", cerr)
		}
	}()
	if err := a.Open(ctx); err != nil {
		return err
	}

	if cmd == cli.CmdTUI {
		return runTUI(ctx, a, cfg, logger)
	}

	env := &cli.Env{App: a, Out: os.Stdout}
	if cli.IsStdoutTTY() {
		env.Width = cli.GetTerminalWidth()
	}
	return cli.Run(ctx, cmd, args, env)
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// openLogger logs to a file while the browser owns the terminal and to
// stderr otherwise.
func openLogger(cmd cli.Command, cfg *config.Config, level slog.Leveler) (*slog.Logger, io.Closer, error) {
	if cmd != cli.CmdTUI {
		return logging.Stderr(level), io.NopCloser(nil), nil
	}
	path, err := cfg.LogPath()
	if err != nil {
		return nil, nil, err
	}
	return logging.File(path, level)
}

func runTUI(ctx context.Context, a *app.App, cfg *config.Config, logger *slog.Logger) error {
	opts := browser.Options{
		Theme:  styles.NewTheme(),
		Logger: logger,
	}

	if cfg.Library.Watch {
		roots, err := cfg.ImportPaths()
		if err != nil {
			return err
		}
		if len(roots) > 0 {
			debounce := time.Duration(cfg.Library.WatchDebounceMs) * time.Millisecond
			watcher, err := scan.Start(roots, debounce, logger.With("component", "watcher"))
			if err != nil {
				logger.Warn("live import disabled", "err", err)
			} else {
				defer watcher.Close()
				opts.Changes = watcher.Changes()
			}
		}
	}

	p := tea.NewProgram(
		browser.New(ctx, a, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("browser failed: %w", err)
	}
	if m, ok := final.(browser.Model); ok {
		return m.Err()
	}
	return nil
}
