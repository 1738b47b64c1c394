// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - The config subcommand.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Print the effective configuration as TOML
//   path                Print the configuration file location
//   write               Save the effective configuration to ~/.bookshelf
//
// Flags:
//   --format toml|json  File format for write (default: toml)
//   --force             Let write replace an existing file
//   --json              Output in JSON format

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/jeranaias/bookshelf-tui/internal/config"
)

// ConfigPathData is the --json payload of config path and config write.
type ConfigPathData struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// HandleConfig shows, locates or writes the configuration.
func HandleConfig(env *Env, args Args) error {
	cfg := env.Config
	if cfg == nil && env.App != nil {
		cfg = env.App.Config()
	}
	if cfg == nil {
		cfg = config.Default()
	}

	p := NewArgParser(args.Raw, "force")
	switch sub := strings.ToLower(p.Positional(0)); sub {
	case "", "show":
		if args.JSON {
			return NewJSONResponse("config show", cfg).Write(env.Out)
		}
		fmt.Fprint(env.Out, cfg.String())
		return nil

	case "path":
		return handleConfigPath(env, args)

	case "write", "save":
		return handleConfigWrite(env, args, cfg, p.FlagOrDefault("format", "toml"), p.BoolFlag("force"))

	default:
		return &ValidationError{
			Field:   "config subcommand",
			Value:   sub,
			Reason:  "must be show, path or write",
			Example: "bookshelf config path",
		}
	}
}

func handleConfigPath(env *Env, args Args) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return NewCommandError("config", "cannot locate config", err)
	}
	exists := fileExists(path)

	if args.JSON {
		return NewJSONResponse("config path", ConfigPathData{Path: path, Exists: exists}).Write(env.Out)
	}
	fmt.Fprintln(env.Out, path)
	if !exists {
		fmt.Fprintln(env.Out, DimStyle.Render("(not created yet, defaults apply)"))
	}
	return nil
}

func handleConfigWrite(env *Env, args Args, cfg *config.Config, format string, force bool) error {
	var (
		path string
		err  error
	)
	switch strings.ToLower(format) {
	case "toml":
		path, err = config.ConfigPathTOML()
	case "json":
		path, err = config.ConfigPathJSON()
	default:
		return &ValidationError{
			Field:   "--format",
			Value:   format,
			Reason:  "must be toml or json",
			Example: "bookshelf config write --format json",
		}
	}
	if err != nil {
		return NewCommandError("config", "cannot locate config", err)
	}
	if fileExists(path) && !force {
		return &ValidationError{
			Field:   "config",
			Value:   path,
			Reason:  "file exists, pass --force to replace it",
			Example: "bookshelf config write --force",
		}
	}

	if strings.EqualFold(format, "json") {
		if err = config.EnsureConfigDir(); err == nil {
			err = config.SaveJSON(cfg, path)
		}
	} else {
		err = config.Save(cfg)
	}
	if err != nil {
		return NewCommandError("config", "cannot write config", err)
	}

	if args.JSON {
		return NewJSONResponse("config write", ConfigPathData{Path: path, Exists: true}).Write(env.Out)
	}
	fmt.Fprintf(env.Out, "%s %s\n", SuccessStyle.Render("Wrote:"), path)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
