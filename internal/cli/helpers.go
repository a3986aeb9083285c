// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared invocation plumbing for owui command handlers.
//
// Every network-touching handler runs the same sequence: load the
// config file, resolve effective settings from flags/env/profile,
// resolve the bearer token, build the API client. resolveInvocation
// does all of it so handlers stay focused on their operation.
//
// Resolution happens entirely before any network activity; a usage or
// auth failure here never opens a connection.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/owui/internal/config"
	"github.com/jeranaias/owui/internal/history"
	"github.com/jeranaias/owui/internal/openwebui"
	"github.com/jeranaias/owui/internal/secrets"
)

// invocation bundles the resolved state one command execution needs.
type invocation struct {
	Cfg    *config.Config
	Eff    *config.Effective
	Client *openwebui.Client
}

// flagsFrom converts parsed global flags into the config layer's shape.
func flagsFrom(args Args) config.Flags {
	return config.Flags{
		Profile:  args.Profile,
		URI:      args.URI,
		Token:    args.Token,
		Format:   args.Format,
		Timeout:  args.Timeout,
		NoStream: args.NoStream,
	}
}

// resolveInvocation computes the effective configuration and builds the
// API client. An explicitly requested profile missing from the config
// file surfaces as a usage error; a broken token store surfaces as an
// auth error with a remediation hint. A store miss is not an error —
// the request proceeds unauthenticated and the server's 401 tells the
// user to log in.
func resolveInvocation(args Args) (*invocation, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	eff, err := config.Resolve(cfg, flagsFrom(args))
	if err != nil {
		return nil, err
	}

	token, ok, err := secrets.ResolveToken(args.Token, tokenStore(), eff.ProfileName, eff.ServerURI)
	if err != nil {
		return nil, openwebui.NewAuthError(
			err.Error(),
			"Use an explicit token or environment variable (--token or OPENWEBUI_TOKEN).",
		)
	}
	eff.Token = token
	eff.HasToken = ok

	client := openwebui.NewClient(eff.ServerURI).WithTimeout(eff.Timeout())
	if ok {
		client = client.WithToken(token)
	}

	verboseLine(args, "profile=%s uri=%s timeout=%ds format=%s authenticated=%v",
		eff.ProfileName, eff.ServerURI, eff.TimeoutSeconds, eff.Format, ok)

	return &invocation{Cfg: cfg, Eff: eff, Client: client}, nil
}

// commandContext returns a context cancelled by Ctrl-C or SIGTERM.
// Handlers pass it to every network call so an interrupt propagates as
// context.Canceled, which the exit-code mapping treats as a clean exit.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// tokenStore returns the file-backed token store, or nil when the
// config directory cannot be determined (treated as an absent backend).
func tokenStore() secrets.Store {
	dir, err := config.Dir()
	if err != nil {
		return nil
	}
	return secrets.NewFileStore(dir)
}

// openHistory opens the local transcript store under the config dir.
func openHistory() (*history.Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("could not locate config directory: %w", err)
	}
	return history.Open(dir)
}

// =============================================================================
// STATUS OUTPUT
// =============================================================================
// Payload goes to stdout; everything about the run goes to stderr, so
// piped output stays clean.

// statusLine writes a human status line to stderr unless --quiet.
func statusLine(args Args, format string, a ...interface{}) {
	if args.Quiet {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", InfoStyle.Render("[+]"), fmt.Sprintf(format, a...))
}

// warnLine writes a warning to stderr. Warnings ignore --quiet.
func warnLine(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", WarningStyle.Render("Warning:"), fmt.Sprintf(format, a...))
}

// verboseLine writes a debug line to stderr when --verbose is set.
func verboseLine(args Args, format string, a ...interface{}) {
	if !args.Verbose {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", DimStyle.Render("[debug]"), fmt.Sprintf(format, a...))
}
