// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - Authentication commands: login, logout, whoami, token,
// refresh.
//
// Tokens are stored per profile/server pair, so logging in under
// --profile work and --profile home keeps two independent sessions.
// The store is best-effort: when it is unavailable the login still
// succeeds and the token is printed once so the user can export it.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/owui/internal/openwebui"
	"github.com/jeranaias/owui/internal/secrets"
)

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

// HandleAuthCommand routes auth subcommands.
func HandleAuthCommand(args Args) error {
	parser := NewArgParser(args.Raw, "show", "json", "force")

	switch parser.Subcommand() {
	case "login":
		return authLogin(args, parser)
	case "logout":
		return authLogout(args, parser)
	case "whoami":
		return authWhoami(args, parser)
	case "token":
		return authToken(args, parser)
	case "refresh":
		return authRefresh(args, parser)
	case "":
		return NewUsageErrorWithExample(
			"auth requires a subcommand: login, logout, whoami, token, refresh",
			"owui auth login",
		)
	default:
		return NewUsageErrorWithExample(
			fmt.Sprintf("unknown auth subcommand: %s", parser.Subcommand()),
			"owui help",
		)
	}
}

// =============================================================================
// AUTH LOGIN
// =============================================================================

// authLogin exchanges credentials for an API token and stores it.
func authLogin(args Args, parser *ArgParser) error {
	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}

	email := parser.FlagFirst("email", "e")
	if email == "" {
		email, err = PromptLine("Email", "")
		if err != nil {
			return promptOutcome(err)
		}
	}
	if email == "" {
		return NewUsageError("Email is required")
	}

	password := parser.Flag("password")
	if password == "" {
		password, err = PromptPassword("Password")
		if err != nil {
			return promptOutcome(err)
		}
	}
	if password == "" {
		return NewUsageError("Password is required")
	}

	ctx, stop := commandContext()
	defer stop()

	statusLine(args, "Signing in to %s", inv.Eff.ServerURI)
	session, err := inv.Client.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			ShowCancellationMessage()
		}
		return err
	}

	stored := storeToken(inv, session.Token)

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("auth login", LoginData{
			Name:    session.Name,
			Email:   session.Email,
			Role:    session.Role,
			Profile: inv.Eff.ProfileName,
			Stored:  stored,
		}).Print()
	}

	fmt.Printf("%s Logged in as %s (%s)\n", SuccessStyle.Render("[OK]"), session.Name, session.Email)
	fmt.Printf("  %s %s\n", RenderLabel("Role"), ValueStyle.Render(session.Role))
	fmt.Printf("  %s %s\n", RenderLabel("Profile"), ValueStyle.Render(inv.Eff.ProfileName))
	if !stored {
		// The token would otherwise be lost; show it once.
		fmt.Printf("  %s %s\n", RenderLabel("Token"), ValueStyle.Render(session.Token))
		fmt.Println(DimStyle.Render("  Export it as OPENWEBUI_TOKEN to authenticate without a token store."))
	}
	return nil
}

// storeToken saves a token for the invocation's profile/server pair.
// Failure is reported as a warning, never as a command failure: the
// login itself already succeeded.
func storeToken(inv *invocation, token string) bool {
	store := tokenStore()
	if store == nil {
		warnLine("no token store available on this system")
		return false
	}
	if err := store.Set(secrets.ServiceName, secrets.Key(inv.Eff.ProfileName, inv.Eff.ServerURI), token); err != nil {
		warnLine("could not store token: %v", err)
		return false
	}
	return true
}

// promptOutcome maps an aborted interactive prompt to a clean exit and
// passes every other prompt failure through.
func promptOutcome(err error) error {
	if errors.Is(err, context.Canceled) {
		ShowCancellationMessage()
	}
	return err
}

// =============================================================================
// AUTH LOGOUT
// =============================================================================

// authLogout removes the stored token for the active profile. Logging
// out when no token is stored is not an error.
func authLogout(args Args, parser *ArgParser) error {
	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}

	store := tokenStore()
	if store != nil {
		if err := store.Delete(secrets.ServiceName, secrets.Key(inv.Eff.ProfileName, inv.Eff.ServerURI)); err != nil {
			return fmt.Errorf("could not remove stored token: %w", err)
		}
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("auth logout", map[string]interface{}{
			"logged_out": true,
			"profile":    inv.Eff.ProfileName,
		}).Print()
	}

	fmt.Printf("%s Logged out of profile %s\n", SuccessStyle.Render("[OK]"), inv.Eff.ProfileName)
	return nil
}

// =============================================================================
// AUTH WHOAMI
// =============================================================================

// authWhoami asks the server who the configured token belongs to.
func authWhoami(args Args, parser *ArgParser) error {
	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}
	if !inv.Eff.HasToken {
		return fmt.Errorf("%w: run 'owui auth login' first", openwebui.ErrNoToken)
	}

	ctx, stop := commandContext()
	defer stop()

	user, err := inv.Client.Me(ctx)
	if err != nil {
		return err
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("auth whoami", WhoamiData{
			ID:      user.ID,
			Name:    user.Name,
			Email:   user.Email,
			Role:    user.Role,
			Server:  inv.Client.BaseURL(),
			Profile: inv.Eff.ProfileName,
		}).Print()
	}

	fmt.Printf("%s %s\n", RenderLabel("ID"), ValueStyle.Render(user.ID))
	fmt.Printf("%s %s\n", RenderLabel("Name"), ValueStyle.Render(user.Name))
	fmt.Printf("%s %s\n", RenderLabel("Email"), ValueStyle.Render(user.Email))
	fmt.Printf("%s %s\n", RenderLabel("Role"), ValueStyle.Render(user.Role))
	fmt.Printf("%s %s\n", RenderLabel("Server"), ValueStyle.Render(inv.Client.BaseURL()))
	fmt.Printf("%s %s\n", RenderLabel("Profile"), ValueStyle.Render(inv.Eff.ProfileName))
	return nil
}

// =============================================================================
// AUTH TOKEN
// =============================================================================

// authToken prints the token the current invocation would use, masked
// unless --show. No stored token is a notice, not an error: scripts
// probe this before deciding whether to log in.
func authToken(args Args, parser *ArgParser) error {
	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}

	jsonMode := args.JSON || parser.BoolFlag("json")
	if !inv.Eff.HasToken {
		if jsonMode {
			return NewJSONResponse("auth token", TokenData{Profile: inv.Eff.ProfileName}).Print()
		}
		fmt.Println(DimStyle.Render(fmt.Sprintf("No token for profile %s. Run 'owui auth login'.", inv.Eff.ProfileName)))
		return nil
	}

	show := parser.BoolFlag("show")
	display := inv.Eff.Token
	if !show {
		display = MaskToken(display)
	}

	if jsonMode {
		return NewJSONResponse("auth token", TokenData{
			Token:   display,
			Masked:  !show,
			Profile: inv.Eff.ProfileName,
		}).Print()
	}

	fmt.Println(display)
	if !show {
		fmt.Fprintln(os.Stderr, DimStyle.Render("Use --show to print the full token."))
	}
	return nil
}

// =============================================================================
// AUTH REFRESH
// =============================================================================

// authRefresh asks the server for a fresh token and stores it. The
// server may decline by returning no token; the current one stays.
func authRefresh(args Args, parser *ArgParser) error {
	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}
	if !inv.Eff.HasToken {
		return fmt.Errorf("%w: run 'owui auth login' first", openwebui.ErrNoToken)
	}

	ctx, stop := commandContext()
	defer stop()

	session, err := inv.Client.Refresh(ctx)
	if err != nil {
		return err
	}

	refreshed := session.Token != "" && session.Token != inv.Eff.Token
	if refreshed {
		storeToken(inv, session.Token)
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("auth refresh", map[string]interface{}{
			"refreshed": refreshed,
			"profile":   inv.Eff.ProfileName,
		}).Print()
	}

	if refreshed {
		fmt.Printf("%s Token refreshed for profile %s\n", SuccessStyle.Render("[OK]"), inv.Eff.ProfileName)
	} else {
		fmt.Println(DimStyle.Render("Server did not issue a new token; keeping the current one."))
	}
	return nil
}
