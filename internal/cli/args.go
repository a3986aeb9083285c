// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Unified argument parsing for all owui commands.
//
// Each command handler builds one ArgParser over the arguments that
// follow the command word. The parser handles flags in multiple formats
// consistently, keeps repeated flags in order, and separates positional
// arguments from flags.

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser provides unified argument parsing for CLI commands.
// It handles multiple flag formats consistently:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Repeated flags: --file a --file b (all values kept, in order)
//   - Positional arguments: arguments without flags
//   - Subcommands: first positional argument
type ArgParser struct {
	subcommand string              // First positional arg (e.g., "send", "list")
	flags      map[string][]string // String flags, repeats kept in order
	boolFlags  map[string]bool     // Boolean flags (--force)
	positional []string            // All positional arguments including subcommand
	raw        []string            // Original raw arguments
}

// NewArgParser creates a new argument parser from raw arguments.
//
// Supported flag formats:
//
//	--flag value     Long flag with space-separated value
//	--flag=value     Long flag with equals sign
//	-f value         Short flag with space-separated value
//	--flag           Boolean flag (no value)
//
// boolNames declares flags that never take a value, so a positional
// argument following one is not mistaken for its value
// ("models pull --force llama3" keeps "llama3" positional).
//
// Example:
//
//	p := NewArgParser([]string{"send", "-m", "llama3", "--file=f1", "--save"}, "save")
//	p.Subcommand()     // "send"
//	p.Flag("m")        // "llama3"
//	p.FlagAll("file")  // ["f1"]
//	p.BoolFlag("save") // true
func NewArgParser(raw []string, boolNames ...string) *ArgParser {
	parser := &ArgParser{
		flags:      make(map[string][]string),
		boolFlags:  make(map[string]bool),
		positional: make([]string, 0),
		raw:        raw,
	}

	knownBool := make(map[string]bool, len(boolNames))
	for _, name := range boolNames {
		knownBool[strings.TrimLeft(name, "-")] = true
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]

		if strings.HasPrefix(arg, "-") && arg != "-" && arg != "--" {
			// Handle --flag=value format
			if strings.Contains(arg, "=") {
				parts := strings.SplitN(arg, "=", 2)
				flagName := strings.TrimLeft(parts[0], "-")
				flagValue := parts[1]

				// Boolean flags can be explicit: --json=true, --json=false
				if flagValue == "true" || flagValue == "false" {
					parser.boolFlags[flagName] = flagValue == "true"
				} else {
					parser.flags[flagName] = append(parser.flags[flagName], flagValue)
				}
				i++
				continue
			}

			flagName := strings.TrimLeft(arg, "-")

			// Declared booleans never consume the next argument.
			if knownBool[flagName] {
				parser.boolFlags[flagName] = true
				i++
				continue
			}

			// Check if next arg is a value (not a flag and not end of args)
			if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
				parser.flags[flagName] = append(parser.flags[flagName], raw[i+1])
				i += 2
			} else {
				parser.boolFlags[flagName] = true
				i++
			}
		} else {
			parser.positional = append(parser.positional, arg)
			i++
		}
	}

	// First positional is the subcommand
	if len(parser.positional) > 0 {
		parser.subcommand = parser.positional[0]
	}

	return parser
}

// Subcommand returns the first positional argument (subcommand).
// Returns empty string if no positional arguments.
//
// Example: "chat send" -> "send"
func (p *ArgParser) Subcommand() string {
	return p.subcommand
}

// Flag returns the value of a string flag, the last occurrence winning
// when the flag was repeated. Returns empty string if flag not found.
// Accepts the name with or without leading dashes.
func (p *ArgParser) Flag(name string) string {
	name = strings.TrimLeft(name, "-")
	if vals, ok := p.flags[name]; ok && len(vals) > 0 {
		return vals[len(vals)-1]
	}
	return ""
}

// FlagFirst returns the value of the first of the given names that was
// set. Use for long/short aliases: FlagFirst("model", "m").
func (p *ArgParser) FlagFirst(names ...string) string {
	for _, name := range names {
		if val := p.Flag(name); val != "" {
			return val
		}
	}
	return ""
}

// FlagAll returns every value given for a flag, in command-line order.
// Returns nil if the flag was never set.
//
// Example: "--file a --file b" -> ["a", "b"]
func (p *ArgParser) FlagAll(names ...string) []string {
	var all []string
	for _, name := range names {
		name = strings.TrimLeft(name, "-")
		all = append(all, p.flags[name]...)
	}
	return all
}

// FlagOrDefault returns the flag value or a default if not found.
func (p *ArgParser) FlagOrDefault(name, defaultValue string) string {
	if val := p.Flag(name); val != "" {
		return val
	}
	return defaultValue
}

// FlagInt returns the flag value as an integer.
// Returns 0 and error if flag is missing or not a valid integer.
func (p *ArgParser) FlagInt(name string) (int, error) {
	val := p.Flag(name)
	if val == "" {
		return 0, fmt.Errorf("flag %s not found", name)
	}
	return strconv.Atoi(val)
}

// FlagIntOrDefault returns the flag value as an integer or a default.
// Returns default if flag not found or not a valid integer.
func (p *ArgParser) FlagIntOrDefault(name string, defaultValue int) int {
	val, err := p.FlagInt(name)
	if err != nil {
		return defaultValue
	}
	return val
}

// FlagFloat returns the flag value as a float64.
// Returns 0 and error if flag is missing or not a valid number.
func (p *ArgParser) FlagFloat(name string) (float64, error) {
	val := p.Flag(name)
	if val == "" {
		return 0, fmt.Errorf("flag %s not found", name)
	}
	return strconv.ParseFloat(val, 64)
}

// BoolFlag returns the value of a boolean flag under any of the given
// names. Returns false if none were set.
//
// Example:
//
//	p.BoolFlag("json")         // --json
//	p.BoolFlag("force", "f")   // --force or -f
func (p *ArgParser) BoolFlag(names ...string) bool {
	for _, name := range names {
		name = strings.TrimLeft(name, "-")
		if val, ok := p.boolFlags[name]; ok {
			return val
		}
	}
	return false
}

// Positional returns the positional argument at the given index.
// Returns empty string if index out of bounds.
// Index 0 is the subcommand.
//
// Example: "models info llama3"
//
//	p.Positional(0)  // "info" (subcommand)
//	p.Positional(1)  // "llama3"
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalFrom returns all positional arguments starting from index.
// Useful for multi-value arguments like upload paths.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return []string{}
	}
	return p.positional[index:]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// HasFlag returns true if the flag exists (either as string or bool flag).
func (p *ArgParser) HasFlag(name string) bool {
	name = strings.TrimLeft(name, "-")
	_, hasString := p.flags[name]
	_, hasBool := p.boolFlags[name]
	return hasString || hasBool
}

// Raw returns the original raw arguments.
func (p *ArgParser) Raw() []string {
	return p.raw
}

// =============================================================================
// HELPER FUNCTIONS FOR COMMON ARG PATTERNS
// =============================================================================

// ParseBoolString parses a boolean from various string representations.
// Accepts: true/false, yes/no, y/n, 1/0, on/off (case-insensitive)
func ParseBoolString(s string) (bool, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "true", "yes", "y", "1", "on":
		return true, nil
	case "false", "no", "n", "0", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value: %s", s)
	}
}
