// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Config command implementation for sidediff.
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//   show (default)      Display the effective configuration
//   get <key>           Print one value
//   set <key> <value>   Set a value in the active config file
//   init                Write a default ./sidediff.toml
//   path                Show the active configuration file path
//   keys                List every configuration key
//
// Examples:
//   sidediff config                          Show current config (default)
//   sidediff config get highlight.style
//   sidediff config set diff.tab_size 4
//   sidediff config set coverage.comment_markers "#,//,--"
//   sidediff config init
//   sidediff config show --json
//
// Flags:
//   --config FILE       Operate on FILE instead of the search path
//   --json              Output in JSON format

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/sidediff/internal/config"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(args)
	case "get":
		return handleConfigGet(args)
	case "set":
		return handleConfigSet(args)
	case "init":
		return handleConfigInit(args)
	case "path":
		return handleConfigPath(args)
	case "keys":
		return handleConfigKeys(args)
	default:
		return &ValidationError{
			Field:   "config subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown subcommand",
			Example: "sidediff config [show|get|set|init|path|keys]",
		}
	}
}

// activeConfigPath returns the file config commands read and write: the
// --config file, else the first existing search path, else the local file.
func activeConfigPath(args Args) (path string, exists bool) {
	if args.ConfigFile != "" {
		_, err := os.Stat(args.ConfigFile)
		return args.ConfigFile, err == nil
	}
	for _, p := range config.SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return config.LocalFileName, false
}

// loadFileConfig loads the active config file without flag overrides, or
// the defaults when it does not exist yet.
func loadFileConfig(args Args) (*config.Config, string, error) {
	path, exists := activeConfigPath(args)
	if !exists {
		cfg := config.Default()
		cfg.ApplyEnvOverrides()
		return cfg, path, nil
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return nil, path, &ConfigError{Path: path, Err: err}
	}
	return cfg, path, nil
}

func handleConfigShow(args Args) error {
	cfg, path, err := loadFileConfig(args)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("config show", ConfigData{Path: path, Config: cfg}).Encode(args.stdout())
	}

	w := args.stdout()
	fmt.Fprintln(w, TitleStyle.Render("sidediff Configuration"))
	fmt.Fprintln(w, RenderSeparator(41))

	section := ""
	for _, key := range config.GetAllKeys() {
		prefix, name, _ := strings.Cut(key, ".")
		if prefix != section {
			section = prefix
			fmt.Fprintf(w, "\n[%s]\n", section)
		}
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s%s\n", RenderLabel(name+":", 18), ValueStyle.Render(formatConfigValue(value)))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, RenderSeparator(41))
	fmt.Fprintf(w, "Config file: %s\n", DimStyle.Render(path))
	return nil
}

func handleConfigGet(args Args) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "sidediff config get highlight.style")
	}
	cfg, _, err := loadFileConfig(args)
	if err != nil {
		return err
	}
	value, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return &ValidationError{Field: "key", Value: args.ConfigKey, Reason: err.Error()}
	}

	if args.JSON {
		return NewJSONResponse("config get", map[string]interface{}{
			"key":   args.ConfigKey,
			"value": value,
		}).Encode(args.stdout())
	}
	fmt.Fprintln(args.stdout(), formatConfigValue(value))
	return nil
}

func handleConfigSet(args Args) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "sidediff config set diff.tab_size 4")
	}

	path, exists := activeConfigPath(args)
	cfg := config.Default()
	if exists {
		var err error
		if strings.HasSuffix(path, ".json") {
			err = config.LoadJSON(cfg, path)
		} else {
			err = config.LoadTOML(cfg, path)
		}
		if err != nil {
			return &ConfigError{Path: path, Err: err}
		}
	}

	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return &ValidationError{Field: "key", Value: args.ConfigKey, Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid value for %s: %w", args.ConfigKey, err)
	}

	if err := saveConfig(cfg, path); err != nil {
		return &ConfigError{Path: path, Err: err}
	}

	if args.JSON {
		return NewJSONResponse("config set", map[string]interface{}{
			"key":   args.ConfigKey,
			"value": args.ConfigVal,
			"path":  path,
		}).Encode(args.stdout())
	}
	fmt.Fprintf(args.stdout(), "%s %s = %s (%s)\n",
		SuccessStyle.Render("[OK]"), args.ConfigKey, args.ConfigVal, DimStyle.Render(path))
	return nil
}

func handleConfigInit(args Args) error {
	path := args.ConfigFile
	if path == "" {
		path = config.LocalFileName
	}
	if _, err := os.Stat(path); err == nil {
		return &CommandError{Command: "config", Action: "init", Reason: path + " already exists"}
	}

	if err := saveConfig(config.Default(), path); err != nil {
		return &ConfigError{Path: path, Err: err}
	}

	if args.JSON {
		return NewJSONResponse("config init", map[string]interface{}{"path": path}).Encode(args.stdout())
	}
	fmt.Fprintf(args.stdout(), "%s Wrote default configuration to %s\n", SuccessStyle.Render("[OK]"), path)
	return nil
}

func handleConfigPath(args Args) error {
	path, exists := activeConfigPath(args)
	if args.JSON {
		return NewJSONResponse("config path", map[string]interface{}{
			"path":   path,
			"exists": exists,
		}).Encode(args.stdout())
	}

	fmt.Fprintln(args.stdout(), path)
	if !exists {
		fmt.Fprintf(args.stderr(), "%s (file does not exist - defaults are used)\n", DimStyle.Render("Note"))
	}
	return nil
}

func handleConfigKeys(args Args) error {
	keys := config.GetAllKeys()
	if args.JSON {
		return NewJSONResponse("config keys", keys).Encode(args.stdout())
	}
	for _, key := range keys {
		fmt.Fprintln(args.stdout(), key)
	}
	return nil
}

func saveConfig(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}

func formatConfigValue(v interface{}) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ",")
	case string:
		if val == "" {
			return `""`
		}
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
