// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// owui - a command-line client for OpenWebUI servers.
package main

import (
	"os"

	"github.com/jeranaias/owui/internal/cli"
)

// main parses the command line, dispatches to exactly one handler, and
// exits with the code the returned error maps to. Handlers never call
// os.Exit themselves; the exit-code contract lives in cli.GetExitCode.
func main() {
	cmd, args := cli.Parse()

	err := args.Err
	if err == nil {
		switch cmd {
		case cli.CmdChat:
			err = cli.HandleChatCommand(args)
		case cli.CmdAuth:
			err = cli.HandleAuthCommand(args)
		case cli.CmdModels:
			err = cli.HandleModelsCommand(args)
		case cli.CmdRAG:
			err = cli.HandleRAGCommand(args)
		case cli.CmdConfig:
			err = cli.HandleConfigCommand(args)
		case cli.CmdAdmin:
			err = cli.HandleAdminCommand(args)
		case cli.CmdVersion:
			err = cli.HandleVersionCommand(args)
		case cli.CmdHelp:
			err = cli.HandleHelpCommand(args)
		default:
			err = cli.HandleUnknownCommand(args)
		}
	}

	cli.DisplayError(err, args.JSON)
	os.Exit(cli.GetExitCode(err))
}
