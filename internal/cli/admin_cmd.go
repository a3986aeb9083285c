// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// admin_cmd.go - Administrative commands. Stats only: the server's
// other admin surfaces are not exposed here.

package cli

import (
	"fmt"
	"sort"

	"github.com/jeranaias/owui/internal/config"
)

// HandleAdminCommand routes admin subcommands.
func HandleAdminCommand(args Args) error {
	parser := NewArgParser(args.Raw, "json")

	switch parser.Subcommand() {
	case "stats":
		return adminStats(args, parser)
	case "":
		return NewUsageErrorWithExample("admin requires a subcommand: stats", "owui admin stats")
	default:
		return NewUsageErrorWithExample(
			fmt.Sprintf("unknown admin subcommand: %s", parser.Subcommand()),
			"owui admin stats",
		)
	}
}

// adminStats fetches and prints server usage statistics. Accounts
// without the admin role get an auth error from the client layer.
func adminStats(args Args, parser *ArgParser) error {
	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	stats, err := inv.Client.GetAdminStats(ctx)
	if err != nil {
		return err
	}

	jsonMode := args.JSON || parser.BoolFlag("json")
	switch {
	case jsonMode:
		return NewJSONResponse("admin stats", stats).Print()
	case inv.Eff.Format != config.DefaultFormat:
		return printStructured(stats, inv.Eff.Format)
	}

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println(TitleStyle.Render("Server Statistics"))
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, stats.StatValue(k)})
	}
	fmt.Print(RenderTable([]string{"METRIC", "VALUE"}, rows))
	return nil
}
