// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration commands: init, show, get, set, path.
//
// get/set speak the dot-notation grammar implemented in
// internal/config/values.go (defaults.*, output.*, profiles.<name>.uri).
// get prints the bare value so scripts can capture it without parsing.

package cli

import (
	"fmt"

	"github.com/jeranaias/owui/internal/config"
)

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

// HandleConfigCommand routes config subcommands.
func HandleConfigCommand(args Args) error {
	parser := NewArgParser(args.Raw, "json", "force")

	switch parser.Subcommand() {
	case "init":
		return configInit(args, parser)
	case "show", "":
		return configShow(args, parser)
	case "get":
		return configGet(args, parser)
	case "set":
		return configSet(args, parser)
	case "path":
		return configPath(args, parser)
	default:
		return NewUsageErrorWithExample(
			fmt.Sprintf("unknown config subcommand: %s", parser.Subcommand()),
			"owui config show",
		)
	}
}

// =============================================================================
// CONFIG INIT
// =============================================================================

// configInit writes a fresh config file from interactive answers.
func configInit(args Args, parser *ArgParser) error {
	path, err := config.Path()
	if err != nil {
		return err
	}

	if config.Exists() && !parser.BoolFlag("force") {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	fmt.Println(TitleStyle.Render("OpenWebUI CLI Configuration Setup"))
	fmt.Println()

	uri, err := PromptLine("Server URI", config.DefaultURI)
	if err != nil {
		return promptOutcome(err)
	}
	if err := config.ValidateURI(uri); err != nil {
		return err
	}

	model, err := PromptLine("Default model (optional)", "")
	if err != nil {
		return promptOutcome(err)
	}

	format, err := PromptLine("Default output format (text/json/yaml)", config.DefaultFormat)
	if err != nil {
		return promptOutcome(err)
	}
	if !config.ValidFormat(format) {
		return fmt.Errorf("format must be 'text', 'json', or 'yaml', got %q", format)
	}

	cfg := config.Default()
	cfg.Profiles[config.DefaultProfileName] = config.ProfileConfig{URI: uri}
	cfg.Defaults.Model = model
	cfg.Defaults.Format = format

	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("%s Configuration saved to %s\n", SuccessStyle.Render("[OK]"), path)
	fmt.Println()
	fmt.Println(HeaderStyle.Render("Next steps:"))
	fmt.Println("  1. Run 'owui auth login' to authenticate")
	fmt.Println("  2. Run 'owui models list' to see available models")
	fmt.Println(`  3. Run 'owui chat send -m <model> -p "Hello"' to chat`)
	return nil
}

// =============================================================================
// CONFIG SHOW
// =============================================================================

func configShow(args Args, parser *ArgParser) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	if !config.Exists() {
		return fmt.Errorf("no config file found at %s (run 'owui config init' first)", path)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("config show", cfg).Print()
	}
	if f := args.Format; f == "json" || f == "yaml" {
		return printStructured(cfg, f)
	}

	fmt.Printf("%s %s\n\n", HeaderStyle.Render("Config file:"), path)

	rows := make([][]string, 0, len(cfg.Profiles))
	for name, profile := range cfg.Profiles {
		def := ""
		if name == cfg.DefaultProfile {
			def = "*"
		}
		rows = append(rows, []string{name, profile.URI, def})
	}
	fmt.Print(RenderTable([]string{"PROFILE", "URI", "DEFAULT"}, rows))
	fmt.Println()

	fmt.Println(HeaderStyle.Render("Defaults:"))
	model := cfg.Defaults.Model
	if model == "" {
		model = "(not set)"
	}
	fmt.Printf("  %s %s\n", RenderLabel("Model"), ValueStyle.Render(model))
	fmt.Printf("  %s %s\n", RenderLabel("Format"), ValueStyle.Render(cfg.Defaults.Format))
	fmt.Printf("  %s %s\n", RenderLabel("Stream"), ValueStyle.Render(fmt.Sprintf("%v", cfg.Defaults.Stream)))
	fmt.Printf("  %s %s\n", RenderLabel("Timeout"), ValueStyle.Render(fmt.Sprintf("%ds", cfg.Defaults.Timeout)))
	return nil
}

// =============================================================================
// CONFIG GET / SET
// =============================================================================

// configGet prints one value, bare, for scripting.
func configGet(args Args, parser *ArgParser) error {
	key := parser.Positional(1)
	if key == "" {
		return ErrMissingArgument("config key", "owui config get defaults.model")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	value, err := cfg.GetValue(key)
	if err != nil {
		return fmt.Errorf("could not get %s: %w", key, err)
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("config get", map[string]string{"key": key, "value": value}).Print()
	}
	fmt.Println(value)
	return nil
}

func configSet(args Args, parser *ArgParser) error {
	key := parser.Positional(1)
	value := parser.Positional(2)
	if key == "" || value == "" {
		return ErrMissingArgument("key and value", "owui config set defaults.model llama3.2")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := cfg.SetValue(key, value); err != nil {
		return fmt.Errorf("could not set %s: %w", key, err)
	}
	if err := config.Save(cfg); err != nil {
		return err
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("config set", map[string]string{"key": key, "value": value}).Print()
	}
	fmt.Printf("%s Set %s = %s\n", SuccessStyle.Render("[OK]"), key, value)
	return nil
}

// =============================================================================
// CONFIG PATH
// =============================================================================

// configPath prints the config file location, bare, for scripting.
func configPath(args Args, parser *ArgParser) error {
	path, err := config.Path()
	if err != nil {
		return err
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("config path", map[string]interface{}{
			"path":   path,
			"exists": config.Exists(),
		}).Print()
	}
	fmt.Println(path)
	return nil
}
