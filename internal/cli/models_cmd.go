// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models_cmd.go - Model catalog commands: list, info, pull, delete.

package cli

import (
	"fmt"
	"strconv"

	"github.com/jeranaias/owui/internal/config"
)

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

// HandleModelsCommand routes models subcommands.
func HandleModelsCommand(args Args) error {
	parser := NewArgParser(args.Raw, "json", "force")

	switch parser.Subcommand() {
	case "list", "ls", "":
		// Bare "owui models" lists, matching what people type first.
		return modelsList(args, parser)
	case "info", "show":
		return modelsInfo(args, parser)
	case "pull":
		return modelsPull(args, parser)
	case "delete", "rm":
		return modelsDelete(args, parser)
	default:
		return NewUsageErrorWithExample(
			fmt.Sprintf("unknown models subcommand: %s", parser.Subcommand()),
			"owui models list",
		)
	}
}

// =============================================================================
// MODELS LIST
// =============================================================================

func modelsList(args Args, parser *ArgParser) error {
	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	providerFilter := parser.Flag("provider")
	models, err := inv.Client.ListModels(ctx, providerFilter)
	if err != nil {
		return err
	}

	jsonMode := args.JSON || parser.BoolFlag("json")
	switch {
	case jsonMode:
		return NewJSONResponse("models list", models).Print()
	case inv.Eff.Format != config.DefaultFormat:
		return printStructured(models, inv.Eff.Format)
	}

	if len(models) == 0 {
		if providerFilter != "" {
			fmt.Println(DimStyle.Render(fmt.Sprintf("No models match provider %q.", providerFilter)))
		} else {
			fmt.Println(DimStyle.Render("No models available on this server."))
		}
		return nil
	}

	rows := make([][]string, 0, len(models))
	for _, m := range models {
		rows = append(rows, []string{m.ID, m.DisplayName(), m.ProviderName()})
	}
	fmt.Print(RenderTable([]string{"ID", "NAME", "PROVIDER"}, rows))
	statusLine(args, "%d model(s)", len(models))
	return nil
}

// =============================================================================
// MODELS INFO
// =============================================================================

func modelsInfo(args Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return ErrMissingArgument("model ID", "owui models info llama3.2")
	}

	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	model, err := inv.Client.GetModel(ctx, id)
	if err != nil {
		return err
	}

	jsonMode := args.JSON || parser.BoolFlag("json")
	switch {
	case jsonMode:
		return NewJSONResponse("models info", model).Print()
	case inv.Eff.Format != config.DefaultFormat:
		return printStructured(model, inv.Eff.Format)
	}

	fmt.Printf("%s %s\n", RenderLabel("ID"), ValueStyle.Render(model.ID))
	fmt.Printf("%s %s\n", RenderLabel("Name"), ValueStyle.Render(model.DisplayName()))
	if p := model.ProviderName(); p != "" {
		fmt.Printf("%s %s\n", RenderLabel("Provider"), ValueStyle.Render(p))
	}
	if model.Parameters != "" {
		fmt.Printf("%s %s\n", RenderLabel("Parameters"), ValueStyle.Render(model.Parameters))
	}
	if model.ContextLength > 0 {
		fmt.Printf("%s %s\n", RenderLabel("Context"), ValueStyle.Render(strconv.Itoa(model.ContextLength)))
	}
	return nil
}

// =============================================================================
// MODELS PULL
// =============================================================================

// modelsPull asks the server to download a model. Unless --force, a
// model the server already has is reported and left alone.
func modelsPull(args Args, parser *ArgParser) error {
	name := parser.Positional(1)
	if name == "" {
		return ErrMissingArgument("model name", "owui models pull llama3.2")
	}

	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	if !parser.BoolFlag("force") {
		// Probe failures (404 and friends) mean "not present" here;
		// real auth/network problems will resurface on the pull itself.
		if existing, perr := inv.Client.GetModel(ctx, name); perr == nil && existing != nil {
			if args.JSON || parser.BoolFlag("json") {
				return NewJSONResponse("models pull", map[string]interface{}{
					"model":  name,
					"pulled": false,
					"reason": "already available",
				}).Print()
			}
			fmt.Println(DimStyle.Render(fmt.Sprintf("Model %s is already available. Use --force to pull again.", name)))
			return nil
		}
	}

	statusLine(args, "Pulling model %s (large models can take minutes; raise --timeout if needed)", name)
	if err := inv.Client.PullModel(ctx, name); err != nil {
		return err
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("models pull", map[string]interface{}{
			"model":  name,
			"pulled": true,
		}).Print()
	}
	fmt.Printf("%s Pulled model %s\n", SuccessStyle.Render("[OK]"), name)
	return nil
}

// =============================================================================
// MODELS DELETE
// =============================================================================

func modelsDelete(args Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return ErrMissingArgument("model ID", "owui models delete llama3.2")
	}

	jsonMode := args.JSON || parser.BoolFlag("json")
	confirmed, err := RequireConfirmation(parser.BoolFlag("force"), fmt.Sprintf("delete model %s", id), jsonMode)
	if err != nil {
		return err
	}
	if !confirmed {
		ShowCancellationMessage()
		return nil
	}

	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	if err := inv.Client.DeleteModel(ctx, id); err != nil {
		return err
	}

	if jsonMode {
		return NewJSONResponse("models delete", map[string]string{"deleted": id}).Print()
	}
	fmt.Printf("%s Deleted model %s\n", SuccessStyle.Render("[OK]"), id)
	return nil
}

// printStructured renders v in the requested format on stdout.
func printStructured(v interface{}, format string) error {
	out, err := RenderStructured(v, format)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
