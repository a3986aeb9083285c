// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for all owui commands.
//
// Every command handler returns an error instead of exiting. main calls
// GetExitCode exactly once on whatever bubbles up, so the mapping from
// failure category to process exit code lives in one place.
//
// STANDARDIZED PATTERN:
//   - ALWAYS return errors (never just print and return nil)
//   - Let main decide how to display errors and which code to exit with
//   - Use structured error types for classification, not string matching

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/owui/internal/config"
	"github.com/jeranaias/owui/internal/openwebui"
)

// =============================================================================
// EXIT CODES - fixed contract, scriptable
// =============================================================================

const (
	// ExitSuccess indicates successful execution (including a
	// user-initiated interrupt of a stream).
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error.
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments.
	ExitUsageError = 2
	// ExitAuthError indicates authentication or authorization failure.
	ExitAuthError = 3
	// ExitNetworkError indicates a connection, DNS, or timeout failure.
	ExitNetworkError = 4
	// ExitServerError indicates the server answered with a 5xx.
	ExitServerError = 5
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError represents invalid command usage: a missing argument, a
// malformed flag value, an unknown subcommand. Usage errors exit with
// code 2 and never trigger network activity.
type UsageError struct {
	Reason  string // Human-readable reason
	Example string // Example of correct usage (optional)
}

func (e *UsageError) Error() string {
	if e.Example != "" {
		return fmt.Sprintf("%s\nExample: %s", e.Reason, e.Example)
	}
	return e.Reason
}

// NewUsageError creates a usage error.
func NewUsageError(reason string) error {
	return &UsageError{Reason: reason}
}

// NewUsageErrorWithExample creates a usage error with a usage example.
func NewUsageErrorWithExample(reason, example string) error {
	return &UsageError{Reason: reason, Example: example}
}

// ErrMissingArgument creates a usage error for a missing required argument.
func ErrMissingArgument(argName, usage string) error {
	return &UsageError{
		Reason:  fmt.Sprintf("missing required argument: %s", argName),
		Example: usage,
	}
}

// =============================================================================
// EXIT CODE CLASSIFICATION
// =============================================================================

// GetExitCode maps an error to the process exit code. It is total: any
// error produces a code, and errors without a more specific class
// produce ExitGeneralError. main calls this exactly once.
//
//	nil                      -> 0
//	context.Canceled         -> 0 (user interrupt; partial output kept)
//	UsageError               -> 2
//	unknown profile          -> 2
//	ErrNoToken               -> 3
//	ClientError (auth)       -> 3
//	ClientError (network)    -> 4
//	ClientError (server)     -> 5
//	ClientError (general)    -> 1
//	anything else            -> 1
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// A cancelled stream is a deliberate user action, not a failure.
	if errors.Is(err, context.Canceled) {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	// Asking for a profile the config file does not define is a usage
	// mistake, not a config-system failure.
	var profileErr *config.UnknownProfileError
	if errors.As(err, &profileErr) {
		return ExitUsageError
	}

	if errors.Is(err, openwebui.ErrNoToken) {
		return ExitAuthError
	}

	var clientErr *openwebui.ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case openwebui.ErrorAuth:
			return ExitAuthError
		case openwebui.ErrorNetwork:
			return ExitNetworkError
		case openwebui.ErrorServer:
			return ExitServerError
		default:
			return ExitGeneralError
		}
	}

	return ExitGeneralError
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError renders an error to stderr in a consistent format:
//
//	Error: <message>
//	<hint>   (dimmed, when the error carries one)
//
// In JSON mode the error is emitted as a machine-readable envelope on
// stdout instead. Cancellation is silent: the handler that observed the
// interrupt already printed its notice.
func DisplayError(err error, jsonMode bool) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}

	if jsonMode {
		DisplayErrorJSON(err)
		return
	}

	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), err.Error())

	var clientErr *openwebui.ClientError
	if errors.As(err, &clientErr) && clientErr.Hint != "" {
		fmt.Fprintf(os.Stderr, "%s\n", DimStyle.Render(clientErr.Hint))
	}
}

// DisplayErrorJSON outputs an error as a JSON envelope on stdout. The
// error_type field uses the same vocabulary as the exit codes: usage,
// auth, network, server, general.
func DisplayErrorJSON(err error) {
	output := map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	}

	var usageErr *UsageError
	var profileErr *config.UnknownProfileError
	var clientErr *openwebui.ClientError
	switch {
	case errors.As(err, &usageErr):
		output["error_type"] = "usage"
		if usageErr.Example != "" {
			output["example"] = usageErr.Example
		}
	case errors.As(err, &profileErr):
		output["error_type"] = "usage"
	case errors.Is(err, openwebui.ErrNoToken):
		output["error_type"] = "auth"
	case errors.As(err, &clientErr):
		output["error_type"] = clientErr.Type.String()
		if clientErr.Hint != "" {
			output["hint"] = clientErr.Hint
		}
		if clientErr.StatusCode != 0 {
			output["status_code"] = clientErr.StatusCode
		}
	default:
		output["error_type"] = "general"
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(output)
}

// WrapError wraps an error with additional context as it bubbles up.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
