// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - The chat command: send a prompt, manage saved transcripts.
//
// "chat send" is the core operation of the whole tool. Everything else
// in this file manages the local transcript store: list, show, search,
// export, delete, clear.
//
// Output contract for send: the reply goes to stdout (fragments as they
// arrive when streaming), status and warnings go to stderr. With --json
// the reply is a bare {"content": ...} object so pipelines can do
// `owui chat send --json ... | jq -r .content` without unwrapping an
// envelope.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/owui/internal/history"
	"github.com/jeranaias/owui/internal/openwebui"
	"github.com/jeranaias/owui/internal/util"
)

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

// HandleChatCommand routes chat subcommands.
func HandleChatCommand(args Args) error {
	parser := NewArgParser(args.Raw, "save", "json", "no-stream", "force", "markdown")

	switch parser.Subcommand() {
	case "send":
		return chatSend(args, parser)
	case "list", "ls":
		return chatList(args, parser)
	case "show":
		return chatShow(args, parser)
	case "search":
		return chatSearch(args, parser)
	case "export":
		return chatExport(args, parser)
	case "delete", "rm":
		return chatDelete(args, parser)
	case "clear":
		return chatClear(args, parser)
	case "":
		return NewUsageErrorWithExample(
			"chat requires a subcommand: send, list, show, search, export, delete, clear",
			`owui chat send -m llama3.2 -p "Hello"`,
		)
	default:
		return NewUsageErrorWithExample(
			fmt.Sprintf("unknown chat subcommand: %s", parser.Subcommand()),
			"owui help",
		)
	}
}

// =============================================================================
// CHAT SEND
// =============================================================================

// chatSend sends one prompt to the server and prints the reply.
//
// Validation happens in full before any network activity: a bad flag,
// a missing model, or a missing prompt never opens a connection.
func chatSend(args Args, parser *ArgParser) error {
	jsonOut := args.JSON || parser.BoolFlag("json")
	save := parser.BoolFlag("save")

	var temperature *float64
	if raw := parser.FlagFirst("temperature", "T"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return NewUsageError(fmt.Sprintf("invalid temperature %q: must be a number", raw))
		}
		temperature = &v
	}

	var maxTokens *int
	if raw := parser.Flag("max-tokens"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return NewUsageError(fmt.Sprintf("invalid max-tokens %q: must be a positive integer", raw))
		}
		maxTokens = &v
	}

	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}

	model := parser.FlagFirst("model", "m")
	if model == "" {
		model = inv.Cfg.Defaults.Model
	}
	if model == "" {
		return NewUsageErrorWithExample(
			"Model required. Use -m or set defaults.model in the config file.",
			`owui chat send -m llama3.2 -p "Hello"`,
		)
	}

	prompt, err := resolvePrompt(parser.FlagFirst("prompt", "p"))
	if err != nil {
		return err
	}

	priorTurns, err := loadHistoryFile(parser.Flag("history-file"))
	if err != nil {
		return err
	}

	opts := openwebui.ChatOptions{
		Model:       model,
		Prompt:      prompt,
		System:      parser.FlagFirst("system", "s"),
		ChatID:      parser.Flag("chat-id"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Files:       parser.FlagAll("file"),
		Collections: parser.FlagAll("collection"),
		History:     priorTurns,
		Stream:      inv.Eff.Stream && !parser.BoolFlag("no-stream"),
	}

	if opts.Stream {
		return chatSendStream(args, inv, opts, jsonOut, save)
	}
	return chatSendBuffered(args, inv, opts, jsonOut, save)
}

// resolvePrompt returns the prompt text: the -p flag when given, else
// piped stdin. A piped-but-empty stdin is a deliberate empty prompt and
// proceeds; only the absence of both is a usage error.
func resolvePrompt(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if IsStdinPiped() {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("could not read prompt from stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return "", NewUsageErrorWithExample(
		"Prompt required. Use -p or pipe input.",
		`echo "Hello" | owui chat send -m llama3.2`,
	)
}

// loadHistoryFile reads prior conversation turns from a JSON file.
// An empty path means no history. Every failure here is the caller's
// mistake (bad path, bad JSON, wrong shape) and maps to a usage error.
func loadHistoryFile(path string) ([]openwebui.ChatMessage, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewUsageError(fmt.Sprintf("History file not found: %s", path))
		}
		return nil, fmt.Errorf("could not read history file: %w", err)
	}
	messages, err := openwebui.ParseHistory(data)
	if err != nil {
		return nil, NewUsageError(fmt.Sprintf("%s: %v", path, err))
	}
	return messages, nil
}

// chatSendStream runs the streaming path: fragments print as they
// arrive, Ctrl-C keeps the partial reply and exits clean.
func chatSendStream(args Args, inv *invocation, opts openwebui.ChatOptions, jsonOut, save bool) error {
	ctx, stop := commandContext()
	defer stop()

	req := openwebui.BuildChatRequest(opts)

	var reply strings.Builder
	printed := false
	err := inv.Client.ChatStream(ctx, req, func(chunk openwebui.StreamChunk) {
		fragment := chunk.GetContent()
		if fragment == "" {
			return
		}
		reply.WriteString(fragment)
		if !jsonOut {
			fmt.Print(fragment)
			printed = true
		}
	})

	if err != nil {
		if errors.Is(err, context.Canceled) {
			if printed {
				fmt.Println()
			}
			fmt.Fprintln(os.Stderr, WarningStyle.Render("Stream interrupted by user"))
			if jsonOut {
				printSendJSON(reply.String(), true)
			}
			if save && reply.Len() > 0 {
				if serr := saveExchange(args, inv, opts, reply.String()); serr != nil {
					warnLine("%v", serr)
				}
			}
			// Interrupt is a clean exit; the partial reply already
			// reached stdout.
			return err
		}
		return err
	}

	if printed {
		fmt.Println()
	}
	if jsonOut {
		printSendJSON(reply.String(), false)
	}

	if save {
		return saveExchange(args, inv, opts, reply.String())
	}
	return nil
}

// chatSendBuffered runs the non-streaming path: one request, one body.
func chatSendBuffered(args Args, inv *invocation, opts openwebui.ChatOptions, jsonOut, save bool) error {
	ctx, stop := commandContext()
	defer stop()

	req := openwebui.BuildChatRequest(opts)

	resp, err := inv.Client.Chat(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			ShowCancellationMessage()
		}
		return err
	}

	switch {
	case jsonOut || inv.Eff.Format == "json":
		out, err := RenderStructured(resp, "json")
		if err != nil {
			return err
		}
		fmt.Println(out)
	case inv.Eff.Format == "yaml":
		out, err := RenderStructured(resp, "yaml")
		if err != nil {
			return err
		}
		fmt.Println(out)
	default:
		content := resp.GetContent()
		if content == "" {
			return openwebui.ErrEmptyResponse
		}
		if IsStdoutTTY() {
			fmt.Print(RenderMarkdown(content))
		} else {
			fmt.Println(content)
		}
	}

	if save {
		return saveExchange(args, inv, opts, resp.GetContent())
	}
	return nil
}

// printSendJSON emits the machine-readable send result. This is a bare
// object, not the command envelope: the content is the whole payload.
func printSendJSON(content string, interrupted bool) {
	payload := map[string]interface{}{"content": content}
	if interrupted {
		payload["interrupted"] = true
	}
	out, err := MarshalJSON(payload)
	if err != nil {
		return
	}
	fmt.Println(out)
}

// saveExchange records a completed prompt/reply pair in the local
// transcript store. The --chat-id flag names a server-side conversation;
// it only maps onto a local chat when a previous --save created one with
// a matching ID, otherwise the exchange starts a new local chat.
func saveExchange(args Args, inv *invocation, opts openwebui.ChatOptions, reply string) error {
	st, err := openHistory()
	if err != nil {
		return fmt.Errorf("could not open history store: %w", err)
	}
	defer st.Close()

	localID := ""
	if opts.ChatID != "" {
		if resolved, rerr := st.ResolveChatID(opts.ChatID); rerr == nil {
			localID = resolved
		}
	}

	chat, err := st.SaveExchange(history.Exchange{
		ChatID:  localID,
		Model:   opts.Model,
		Profile: inv.Eff.ProfileName,
		Prompt:  opts.Prompt,
		Reply:   reply,
	})
	if err != nil {
		return fmt.Errorf("could not save chat: %w", err)
	}

	statusLine(args, "Saved chat %s", shortChatID(chat.ID))
	return nil
}

// shortChatID trims a UUID to its first segment for display.
func shortChatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// =============================================================================
// TRANSCRIPT STORE SUBCOMMANDS
// =============================================================================

// chatList prints recently saved chats, newest first.
func chatList(args Args, parser *ArgParser) error {
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer st.Close()

	metas, err := st.ListChats()
	if err != nil {
		return err
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("chat list", metas).Print()
	}

	if len(metas) == 0 {
		fmt.Println(DimStyle.Render("No saved chats. Use 'owui chat send --save' to record one."))
		return nil
	}

	printChatTable(metas)
	statusLine(args, "%d chat(s)", len(metas))
	return nil
}

// chatSearch lists saved chats whose title or content matches the query.
func chatSearch(args Args, parser *ArgParser) error {
	query := strings.Join(parser.PositionalFrom(1), " ")
	if query == "" {
		return NewUsageErrorWithExample("search requires a query", "owui chat search kubernetes")
	}

	st, err := openHistory()
	if err != nil {
		return err
	}
	defer st.Close()

	metas, err := st.SearchChats(query)
	if err != nil {
		return err
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("chat search", metas).Print()
	}

	if len(metas) == 0 {
		fmt.Println(DimStyle.Render(fmt.Sprintf("No chats match %q.", query)))
		return nil
	}

	printChatTable(metas)
	statusLine(args, "%d match(es)", len(metas))
	return nil
}

func printChatTable(metas []history.ChatMeta) {
	rows := make([][]string, 0, len(metas))
	for _, m := range metas {
		rows = append(rows, []string{
			shortChatID(m.ID),
			m.Title,
			m.Model,
			m.UpdatedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(m.MessageCount),
		})
	}
	fmt.Print(RenderTable([]string{"ID", "TITLE", "MODEL", "UPDATED", "MSGS"}, rows))
}

// chatShow prints one saved chat in full.
func chatShow(args Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return ErrMissingArgument("chat ID", "owui chat show <id>")
	}

	st, err := openHistory()
	if err != nil {
		return err
	}
	defer st.Close()

	transcript, err := st.GetChat(id)
	if err != nil {
		return chatLookupError(err)
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("chat show", transcript).Print()
	}

	fmt.Println(TitleStyle.Render(transcript.Chat.Title))
	fmt.Printf("%s %s\n", RenderLabel("ID"), ValueStyle.Render(transcript.Chat.ID))
	fmt.Printf("%s %s\n", RenderLabel("Model"), ValueStyle.Render(transcript.Chat.Model))
	fmt.Printf("%s %s\n", RenderLabel("Created"), ValueStyle.Render(transcript.Chat.CreatedAt.Local().Format(time.RFC1123)))
	fmt.Println(RenderSeparator())

	for _, msg := range transcript.Messages {
		label := SectionStyle.Render("You")
		if msg.Role == "assistant" {
			label = InfoStyle.Render("Assistant")
		}
		fmt.Printf("%s %s\n", label, DimStyle.Render(msg.CreatedAt.Local().Format("15:04")))
		fmt.Println(WrapText(msg.Content, 0))
		fmt.Println()
	}
	return nil
}

// chatExport writes one saved chat as JSON (default) or Markdown.
func chatExport(args Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return ErrMissingArgument("chat ID", "owui chat export <id> [--output chat.json] [--markdown]")
	}

	st, err := openHistory()
	if err != nil {
		return err
	}
	defer st.Close()

	transcript, err := st.GetChat(id)
	if err != nil {
		return chatLookupError(err)
	}

	var body string
	if parser.BoolFlag("markdown") {
		body = transcript.ExportMarkdown()
	} else {
		body, err = MarshalJSON(transcript)
		if err != nil {
			return err
		}
	}

	output := parser.FlagFirst("output", "o")
	if output == "" {
		fmt.Println(body)
		return nil
	}

	if err := util.AtomicWriteFile(output, []byte(body), 0o644, 0o755); err != nil {
		return fmt.Errorf("could not write %s: %w", output, err)
	}
	statusLine(args, "Exported chat %s to %s", shortChatID(transcript.Chat.ID), output)
	return nil
}

// chatDelete removes one saved chat after confirmation.
func chatDelete(args Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return ErrMissingArgument("chat ID", "owui chat delete <id>")
	}

	jsonMode := args.JSON || parser.BoolFlag("json")
	confirmed, err := RequireConfirmation(parser.BoolFlag("force"), fmt.Sprintf("delete chat %s", id), jsonMode)
	if err != nil {
		return err
	}
	if !confirmed {
		ShowCancellationMessage()
		return nil
	}

	st, err := openHistory()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteChat(id); err != nil {
		return chatLookupError(err)
	}

	if jsonMode {
		return NewJSONResponse("chat delete", map[string]string{"deleted": id}).Print()
	}
	statusLine(args, "Deleted chat %s", id)
	return nil
}

// chatClear removes every saved chat after confirmation.
func chatClear(args Args, parser *ArgParser) error {
	jsonMode := args.JSON || parser.BoolFlag("json")
	confirmed, err := RequireConfirmation(parser.BoolFlag("force"), "delete all saved chats", jsonMode)
	if err != nil {
		return err
	}
	if !confirmed {
		ShowCancellationMessage()
		return nil
	}

	st, err := openHistory()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Clear(); err != nil {
		return err
	}

	if jsonMode {
		return NewJSONResponse("chat clear", map[string]bool{"cleared": true}).Print()
	}
	statusLine(args, "Cleared chat history")
	return nil
}

// chatLookupError turns store lookup failures into usage errors: a
// missing or ambiguous ID is the caller's input, not a program fault.
func chatLookupError(err error) error {
	if errors.Is(err, history.ErrChatNotFound) || errors.Is(err, history.ErrAmbiguousChat) {
		return NewUsageError(err.Error())
	}
	return err
}
