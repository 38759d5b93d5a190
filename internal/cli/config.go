// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for kpresent.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Display the effective configuration
//   get <key>           Print one value
//   set <key> <value>   Set a value in the config file
//   keys                List every key
//   path                Show configuration file path
//   init                Write a default config file
//
// Examples:
//   kpresent config set generation.default_slides 8
//   kpresent config set remote.provider openrouter
//   kpresent config set server.cors_origins http://localhost:3000,http://localhost:5173
//   kpresent config get remote.api_key --show-secrets
//
// Secrets (remote.api_key, server.auth_token) are redacted unless
// --show-secrets is given.

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nhancris/KPresent/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(s Streams, args Args) error {
	sub := args.Cmd.Subcommand()
	switch sub {
	case "", "show":
		return handleConfigShow(s, args)
	case "get":
		return handleConfigGet(s, args)
	case "set":
		return handleConfigSet(s, args)
	case "keys":
		return handleConfigKeys(s, args)
	case "path":
		return handleConfigPath(s, args)
	case "init":
		return handleConfigInit(s, args)
	}
	return NewValidationErrorWithExample("subcommand", sub, "unknown config subcommand", "kpresent config show")
}

// configPath is --config or the default TOML path.
func configPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return config.ExpandPath(args.ConfigPath), nil
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return "", errConfig{err}
	}
	return path, nil
}

// redacted returns a copy of cfg with credentials masked.
func redacted(cfg *config.Config) *config.Config {
	safe := cfg.Clone()
	if safe.Remote.APIKey != "" {
		safe.Remote.APIKey = config.Redacted
	}
	if safe.Server.AuthToken != "" {
		safe.Server.AuthToken = config.Redacted
	}
	return safe
}

func handleConfigShow(s Streams, args Args) error {
	cfg, err := loadConfig(args, s.Err)
	if err != nil {
		return err
	}
	if !args.Cmd.BoolFlag("show-secrets") {
		cfg = redacted(cfg)
	}
	if args.JSON {
		return NewJSONResponse("config", cfg).Print(s.Out)
	}
	for _, key := range config.GetAllKeys() {
		v, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Fprintf(s.Out, "%-28s %s\n", key, formatValue(v))
	}
	return nil
}

func handleConfigGet(s Streams, args Args) error {
	key := args.Cmd.Positional(1)
	if key == "" {
		return ErrMissingArgument("key", "kpresent config get generation.default_mode")
	}
	cfg, err := loadConfig(args, s.Err)
	if err != nil {
		return err
	}
	v, err := cfg.Get(key)
	if err != nil {
		return NewValidationErrorWithExample("key", key, err.Error(), "kpresent config keys")
	}
	out := formatValue(v)
	if config.IsSecret(key) && out != "" && !args.Cmd.BoolFlag("show-secrets") {
		out = config.Redacted
	}
	if args.JSON {
		return NewJSONResponse("config get", map[string]string{"key": key, "value": out}).Print(s.Out)
	}
	fmt.Fprintln(s.Out, out)
	return nil
}

// handleConfigSet edits the file alone, so environment overrides are
// never written back.
func handleConfigSet(s Streams, args Args) error {
	const usage = "kpresent config set generation.default_slides 8"
	key, value := args.Cmd.Positional(1), args.Cmd.Positional(2)
	if key == "" || args.Cmd.PositionalCount() < 3 {
		return ErrMissingArgument("key and value", usage)
	}
	path, err := configPath(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		var lerr error
		if strings.HasSuffix(strings.ToLower(path), ".json") {
			lerr = config.LoadJSON(cfg, path)
		} else {
			lerr = config.LoadTOML(cfg, path)
		}
		if lerr != nil {
			return errConfig{lerr}
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return NewValidationErrorWithExample("key", key, err.Error(), usage)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return errConfig{err}
	}
	if err := saveConfig(cfg, path); err != nil {
		return err
	}

	shown := value
	if config.IsSecret(key) {
		shown = config.Redacted
	}
	if args.JSON {
		return NewJSONResponse("config set", map[string]string{"key": key, "value": shown, "path": path}).Print(s.Out)
	}
	fmt.Fprintf(s.Out, "%s %s = %s\n", GetStyleForTTY(SuccessStyle).Render("Set"), key, shown)
	return nil
}

func saveConfig(cfg *config.Config, path string) error {
	var err error
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		err = config.SaveJSON(cfg, path)
	} else {
		err = config.SaveTOML(cfg, path)
	}
	if err != nil {
		return errConfig{err}
	}
	return nil
}

func handleConfigKeys(s Streams, args Args) error {
	keys := config.GetAllKeys()
	if args.JSON {
		return NewJSONResponse("config keys", keys).Print(s.Out)
	}
	for _, k := range keys {
		fmt.Fprintln(s.Out, k)
	}
	return nil
}

func handleConfigPath(s Streams, args Args) error {
	path, err := configPath(args)
	if err != nil {
		return err
	}
	_, statErr := os.Stat(path)
	exists := statErr == nil
	if args.JSON {
		return NewJSONResponse("config path", map[string]interface{}{"path": path, "exists": exists}).Print(s.Out)
	}
	fmt.Fprintln(s.Out, path)
	if !exists {
		fmt.Fprintln(s.Err, GetStyleForTTY(DimStyle).Render("(not created yet, run: kpresent config init)"))
	}
	return nil
}

func handleConfigInit(s Streams, args Args) error {
	path, err := configPath(args)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr == nil && !args.Cmd.BoolFlag("force") {
		return NewValidationErrorWithExample("path", path, "config file already exists", "kpresent config init --force")
	} else if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
		return errConfig{statErr}
	}
	if err := saveConfig(config.Default(), path); err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("config init", map[string]string{"path": path}).Print(s.Out)
	}
	fmt.Fprintf(s.Out, "%s %s\n", GetStyleForTTY(SuccessStyle).Render("Wrote"), path)
	return nil
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case []string:
		return strings.Join(t, ",")
	case string:
		return t
	}
	return fmt.Sprint(v)
}
