// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for owui.

package cli

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota
	CmdAuth
	CmdModels
	CmdRAG
	CmdConfig
	CmdAdmin
	CmdVersion
	CmdHelp
	CmdUnknown
)

// Args holds parsed global flags plus everything after the command word.
type Args struct {
	// Global flags
	Profile  string // -P / --profile
	URI      string // -U / --uri
	Token    string // --token
	Format   string // -f / --format
	Timeout  int    // -t / --timeout (seconds)
	Quiet    bool   // -q / --quiet
	Verbose  bool   // --verbose / --debug
	JSON     bool   // --json
	NoStream bool   // --no-stream

	// ShowVersion is set by --version / -v
	ShowVersion bool

	// Unknown holds an unrecognized command word
	Unknown string

	// Err records a global flag the loop could not parse
	Err error

	// Raw args remaining after the command word
	Raw []string
}

const usageText = `owui - command-line client for OpenWebUI

Interact with an OpenWebUI instance from the command line: send chat
messages (streamed or buffered), manage models, upload RAG files and
search collections, and administer profiles and credentials.

Usage:
  owui auth <subcommand>       Authentication and token storage
  owui chat <subcommand>       Chat operations and local history
  owui models <subcommand>     Model management
  owui rag <subcommand>        RAG files, collections, and search
  owui config <subcommand>     CLI configuration
  owui admin stats             Server statistics (admin role)
  owui version                 Show version

Auth Commands:
  owui auth login              Sign in and store the token
    --email ADDRESS            Account email (prompted when absent)
    --password SECRET          Account password (prompted when absent)
  owui auth logout             Remove the stored token
  owui auth whoami             Show the signed-in user
  owui auth token              Show the stored token (masked)
    --show                     Print the token in full
  owui auth refresh            Refresh the session token

Chat Commands:
  owui chat send               Send a message
    -m, --model NAME           Model to use (falls back to defaults.model)
    -p, --prompt TEXT          User prompt (or pipe via stdin)
    -s, --system TEXT          System prompt
    --chat-id ID               Continue an existing server conversation
    --file ID                  Attach a RAG file (repeatable)
    --collection ID            Attach a RAG collection (repeatable)
    --history-file PATH        Prior messages as JSON
    -T, --temperature N        Sampling temperature (0.0-2.0)
    --max-tokens N             Response token cap
    --no-stream                Wait for the complete response
    --save                     Record the exchange in local history
    --json                     Emit {"content": ...} instead of text
  owui chat list               List saved conversations
  owui chat show <id>          Show a saved conversation
  owui chat export <id>        Export a conversation as JSON
    --output PATH              Write to a file instead of stdout
    --markdown                 Export as Markdown
  owui chat search <query>     Search saved conversations
  owui chat delete <id>        Delete a saved conversation
    --force                    Skip confirmation
  owui chat clear              Delete all saved conversations
    --force                    Skip confirmation

Model Commands:
  owui models list             List available models
    --provider NAME            Filter by provider (case-insensitive)
  owui models info <id>        Show model details
  owui models pull <name>      Pull a model from its registry
    --force                    Skip the existence probe
  owui models delete <id>      Delete a model
    --force                    Skip confirmation

RAG Commands:
  owui rag files list          List uploaded files
  owui rag files upload <path...>  Upload files
    --collection ID            Add uploads to a collection
  owui rag files delete <id>   Delete a file
    --force                    Skip confirmation
  owui rag collections list    List knowledge collections
  owui rag collections create <name>  Create a collection
    -d, --description TEXT     Collection description
  owui rag collections delete <id>  Delete a collection
    --force                    Skip confirmation
  owui rag search <query>      Vector search within a collection
    -c, --collection ID        Collection to search (required)
    -k, --top-k N              Number of results (default: 5)

Config Commands:
  owui config init             Interactive first-run setup
    --force                    Overwrite an existing config file
  owui config show             Show the current configuration
  owui config get <key>        Read one value (dot notation)
  owui config set <key> <value>  Write one value (dot notation)
  owui config path             Print the config file location

  Keys: defaults.model, defaults.format, defaults.stream,
        defaults.timeout, output.colors, output.progress_bars,
        output.timestamps, profiles.<name>.uri

Global Flags:
  -P, --profile NAME  Use a named profile from the config file
  -U, --uri URI       Server URI (overrides profile and config)
  --token TOKEN       Bearer token (overrides env and stored token)
  -f, --format FMT    Output format: text, json, yaml
  -t, --timeout SECS  Request timeout in seconds
  -q, --quiet         Suppress non-essential output
  --verbose, --debug  Debug output on stderr
  --json              Machine-readable output
  -v, --version       Show version

Environment:
  OPENWEBUI_TOKEN     Bearer token (beats the stored token)
  OPENWEBUI_URI       Server URI (beats profile and config)
  OPENWEBUI_PROFILE   Profile name (beats default_profile)

Exit Codes:
  0  success (including a user-interrupted stream)
  1  general error
  2  usage error
  3  authentication error
  4  network error
  5  server error

Examples:
  # First-time setup
  owui config init
  owui auth login

  # Chat
  owui chat send -m llama3.2 -p "What is Go?"
  cat notes.txt | owui chat send -m llama3.2
  owui chat send -m llama3.2 -p "Summarize" --file f1 --collection docs
  owui chat send -m llama3.2 -p "hi" --no-stream --json

  # Models and RAG
  owui models list --provider ollama
  owui rag files upload report.pdf --collection research
  owui rag search "quarterly numbers" -c research -k 10

  # Profiles
  owui -P staging chat send -m llama3.2 -p "ping"
  owui --uri http://10.0.0.5:8080 auth login

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("owui version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
// Global flags may appear anywhere; the first non-flag word selects the
// command and everything after it stays in Args.Raw for the handler.
func Parse() (Command, Args) {
	args := os.Args[1:]

	remaining, parsedArgs := parseGlobalFlags(args)

	if parsedArgs.ShowVersion {
		return CmdVersion, parsedArgs
	}

	if len(remaining) == 0 {
		return CmdHelp, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "chat":
		return CmdChat, parsedArgs

	case "auth":
		return CmdAuth, parsedArgs

	case "models", "model":
		return CmdModels, parsedArgs

	case "rag":
		return CmdRAG, parsedArgs

	case "config":
		return CmdConfig, parsedArgs

	case "admin":
		return CmdAdmin, parsedArgs

	case "version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		parsedArgs.Unknown = cmd
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns the rest.
// Command-specific flags pass through untouched; exact, case-sensitive
// matching keeps -t (timeout) and -T (temperature) apart.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-v", "--version":
			parsedArgs.ShowVersion = true
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "--verbose", "--debug":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--no-stream":
			parsedArgs.NoStream = true
		case "-P", "--profile":
			if i+1 < len(args) {
				i++
				parsedArgs.Profile = args[i]
			}
		case "-U", "--uri":
			if i+1 < len(args) {
				i++
				parsedArgs.URI = args[i]
			}
		case "--token":
			if i+1 < len(args) {
				i++
				parsedArgs.Token = args[i]
			}
		case "-f", "--format":
			if i+1 < len(args) {
				i++
				parsedArgs.Format = args[i]
			}
		case "-t", "--timeout":
			if i+1 < len(args) {
				i++
				n, err := strconv.Atoi(args[i])
				if err != nil || n <= 0 {
					parsedArgs.Err = NewUsageError(fmt.Sprintf("invalid timeout %q: must be a positive integer", args[i]))
				} else {
					parsedArgs.Timeout = n
				}
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--profile="):
				parsedArgs.Profile = strings.TrimPrefix(arg, "--profile=")
			case strings.HasPrefix(arg, "--uri="):
				parsedArgs.URI = strings.TrimPrefix(arg, "--uri=")
			case strings.HasPrefix(arg, "--token="):
				parsedArgs.Token = strings.TrimPrefix(arg, "--token=")
			case strings.HasPrefix(arg, "--format="):
				parsedArgs.Format = strings.TrimPrefix(arg, "--format=")
			case strings.HasPrefix(arg, "--timeout="):
				val := strings.TrimPrefix(arg, "--timeout=")
				n, err := strconv.Atoi(val)
				if err != nil || n <= 0 {
					parsedArgs.Err = NewUsageError(fmt.Sprintf("invalid timeout %q: must be a positive integer", val))
				} else {
					parsedArgs.Timeout = n
				}
			default:
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// HandleVersionCommand handles "owui version" and --version.
func HandleVersionCommand(args Args) error {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		return NewJSONResponse("version", data).Print()
	}
	PrintVersion()
	return nil
}

// HandleHelpCommand handles "owui help" and a bare "owui".
func HandleHelpCommand(args Args) error {
	PrintUsage()
	return nil
}

// HandleUnknownCommand reports an unrecognized command word.
func HandleUnknownCommand(args Args) error {
	return NewUsageErrorWithExample(
		fmt.Sprintf("unknown command: %s", args.Unknown),
		"owui help",
	)
}
