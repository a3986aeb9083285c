// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for owui.
//
// This package implements all owui commands against an OpenWebUI server,
// covering chat completions (streaming and buffered), authentication,
// model management, RAG files and collections, configuration, and the
// local chat history store.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed global flags plus the remaining command arguments
//   - ArgParser: Subcommand/flag parsing for individual handlers
//   - UsageError: Argument validation failure (exit code 2)
//
// # Usage
//
// Parse and execute commands:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdChat:
//	    err = cli.HandleChatCommand(args)
//	case cli.CmdAuth:
//	    err = cli.HandleAuthCommand(args)
//	// ... other commands
//	}
//	os.Exit(cli.GetExitCode(err))
//
// # Commands Overview
//
//   - chat: send messages, browse the local history store
//   - auth: login/logout, token storage, identity checks
//   - models: list, inspect, pull, and delete server models
//   - rag: file uploads, knowledge collections, vector search
//   - config: profiles, defaults, output preferences
//   - admin: server statistics (admin role required)
//
// All commands support --json for machine-readable output. Handlers
// return errors instead of exiting; main owns the single os.Exit call
// and maps errors to exit codes through GetExitCode.
package cli
