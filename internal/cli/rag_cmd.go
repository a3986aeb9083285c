// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// rag_cmd.go - Retrieval commands: uploaded files, knowledge
// collections, vector search.
//
// Upload is deliberately forgiving: each path is validated and uploaded
// independently, failures are reported per file, and the command still
// summarizes at the end. A half-failed batch is a normal outcome when
// globbing directories of mixed content.

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jeranaias/owui/internal/config"
	"github.com/jeranaias/owui/internal/openwebui"
)

const (
	// maxUploadSizeMB is advisory: bigger files are attempted anyway,
	// with a warning, because the server enforces its own limit.
	maxUploadSizeMB = 100
	// minSearchQueryLen guards against accidental one-letter searches
	// that return the whole collection.
	minSearchQueryLen = 3
	// defaultSearchTopK matches the server's own default page size.
	defaultSearchTopK = 5
)

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

// HandleRAGCommand routes rag subcommands. files and collections carry
// their own nested subcommand; search stands alone.
func HandleRAGCommand(args Args) error {
	parser := NewArgParser(args.Raw, "json", "force")

	switch parser.Subcommand() {
	case "files":
		return ragFiles(args, parser)
	case "collections":
		return ragCollections(args, parser)
	case "search":
		return ragSearch(args, parser)
	case "":
		return NewUsageErrorWithExample(
			"rag requires a subcommand: files, collections, search",
			`owui rag search "error handling" -c <collection-id>`,
		)
	default:
		return NewUsageErrorWithExample(
			fmt.Sprintf("unknown rag subcommand: %s", parser.Subcommand()),
			"owui rag files list",
		)
	}
}

// ragFiles routes the files sub-subcommands.
func ragFiles(args Args, parser *ArgParser) error {
	switch parser.Positional(1) {
	case "list", "ls", "":
		return ragFilesList(args, parser)
	case "upload":
		return ragFilesUpload(args, parser)
	case "delete", "rm":
		return ragFilesDelete(args, parser)
	default:
		return NewUsageErrorWithExample(
			fmt.Sprintf("unknown rag files subcommand: %s", parser.Positional(1)),
			"owui rag files upload notes.md",
		)
	}
}

// ragCollections routes the collections sub-subcommands.
func ragCollections(args Args, parser *ArgParser) error {
	switch parser.Positional(1) {
	case "list", "ls", "":
		return ragCollectionsList(args, parser)
	case "create":
		return ragCollectionsCreate(args, parser)
	case "delete", "rm":
		return ragCollectionsDelete(args, parser)
	default:
		return NewUsageErrorWithExample(
			fmt.Sprintf("unknown rag collections subcommand: %s", parser.Positional(1)),
			"owui rag collections create docs",
		)
	}
}

// =============================================================================
// FILES
// =============================================================================

func ragFilesList(args Args, parser *ArgParser) error {
	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	files, err := inv.Client.ListFiles(ctx)
	if err != nil {
		return err
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("rag files list", files).Print()
	}

	if len(files) == 0 {
		fmt.Println(DimStyle.Render("No uploaded files. Use 'owui rag files upload <path>'."))
		return nil
	}

	rows := make([][]string, 0, len(files))
	for _, f := range files {
		size := "-"
		if f.Size > 0 {
			size = fmt.Sprintf("%.1f KB", float64(f.Size)/1024)
		}
		rows = append(rows, []string{f.ID, f.DisplayName(), size})
	}
	fmt.Print(RenderTable([]string{"ID", "FILENAME", "SIZE"}, rows))
	statusLine(args, "%d file(s)", len(files))
	return nil
}

// ragFilesUpload uploads one or more files, optionally indexing each
// into a collection. Per-file failures do not stop the batch.
func ragFilesUpload(args Args, parser *ArgParser) error {
	paths := parser.PositionalFrom(2)
	if len(paths) == 0 {
		return ErrMissingArgument("file path", "owui rag files upload notes.md report.pdf")
	}

	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}
	// Uploads get a long deadline regardless of the configured timeout;
	// indexing large documents is slow on the server side.
	inv.Client.WithTimeout(openwebui.UploadTimeout)

	ctx, stop := commandContext()
	defer stop()

	collection := parser.FlagFirst("collection", "c")
	result := UploadData{}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s File not found: %s\n", ErrorStyle.Render("Error:"), path)
			result.Failed = append(result.Failed, FailedFile{Path: path, Error: "file not found"})
			continue
		}
		if info.IsDir() {
			fmt.Fprintf(os.Stderr, "%s Not a file: %s\n", ErrorStyle.Render("Error:"), path)
			result.Failed = append(result.Failed, FailedFile{Path: path, Error: "not a file"})
			continue
		}

		sizeMB := float64(info.Size()) / (1024 * 1024)
		if sizeMB > maxUploadSizeMB {
			warnLine("File %q is %.1fMB (exceeds %dMB limit). Upload may fail or be slow.",
				filepath.Base(path), sizeMB, maxUploadSizeMB)
		}
		if sizeMB > 10 {
			statusLine(args, "Uploading %s (%.1fMB)...", filepath.Base(path), sizeMB)
		}

		uploaded, err := uploadOne(ctx, inv.Client, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s Uploading %q: %v\n", ErrorStyle.Render("Error:"), filepath.Base(path), err)
			result.Failed = append(result.Failed, FailedFile{Path: path, Error: err.Error()})
			continue
		}

		entry := UploadedFile{Path: path, ID: uploaded.ID}
		fmt.Printf("%s Uploaded %s (id: %s)\n", SuccessStyle.Render("[OK]"), filepath.Base(path), uploaded.ID)

		if collection != "" {
			if err := inv.Client.AddFileToCollection(ctx, collection, uploaded.ID); err != nil {
				fmt.Fprintf(os.Stderr, "  %s could not add to collection %q: %v\n",
					ErrorStyle.Render("Error:"), collection, err)
			} else {
				entry.Collection = collection
				fmt.Printf("  Added to collection %s\n", collection)
			}
		}
		result.Uploaded = append(result.Uploaded, entry)
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("rag files upload", result).Print()
	}

	fmt.Println()
	fmt.Printf("%s %d successful, %d failed\n",
		HeaderStyle.Render("Summary:"), len(result.Uploaded), len(result.Failed))
	return nil
}

// uploadOne opens and uploads a single file.
func uploadOne(ctx context.Context, client *openwebui.Client, path string) (*openwebui.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return client.UploadFile(ctx, filepath.Base(path), f)
}

func ragFilesDelete(args Args, parser *ArgParser) error {
	id := parser.Positional(2)
	if id == "" {
		return ErrMissingArgument("file ID", "owui rag files delete <id>")
	}

	jsonMode := args.JSON || parser.BoolFlag("json")
	confirmed, err := RequireConfirmation(parser.BoolFlag("force"), fmt.Sprintf("delete file %s", id), jsonMode)
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

	if err := inv.Client.DeleteFile(ctx, id); err != nil {
		return err
	}

	if jsonMode {
		return NewJSONResponse("rag files delete", map[string]string{"deleted": id}).Print()
	}
	fmt.Printf("%s Deleted file %s\n", SuccessStyle.Render("[OK]"), id)
	return nil
}

// =============================================================================
// COLLECTIONS
// =============================================================================

func ragCollectionsList(args Args, parser *ArgParser) error {
	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	collections, err := inv.Client.ListCollections(ctx)
	if err != nil {
		return err
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("rag collections list", collections).Print()
	}

	if len(collections) == 0 {
		fmt.Println(DimStyle.Render("No collections found. Create one with 'owui rag collections create <name>'."))
		return nil
	}

	rows := make([][]string, 0, len(collections))
	for _, c := range collections {
		desc := c.Description
		if desc == "" {
			desc = "-"
		}
		rows = append(rows, []string{c.ID, c.Name, desc})
	}
	fmt.Print(RenderTable([]string{"ID", "NAME", "DESCRIPTION"}, rows))
	statusLine(args, "%d collection(s)", len(collections))
	return nil
}

func ragCollectionsCreate(args Args, parser *ArgParser) error {
	name := strings.TrimSpace(parser.Positional(2))
	if name == "" {
		return ErrMissingArgument("collection name", "owui rag collections create docs")
	}

	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	description := strings.TrimSpace(parser.FlagFirst("description", "d"))
	coll, err := inv.Client.CreateCollection(ctx, name, description)
	if err != nil {
		return err
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("rag collections create", coll).Print()
	}

	if coll.ID == "" {
		warnLine("collection created but the server returned no ID")
		return nil
	}
	fmt.Printf("%s Created collection %s (id: %s)\n", SuccessStyle.Render("[OK]"), name, coll.ID)
	return nil
}

func ragCollectionsDelete(args Args, parser *ArgParser) error {
	id := parser.Positional(2)
	if id == "" {
		return ErrMissingArgument("collection ID", "owui rag collections delete <id>")
	}

	jsonMode := args.JSON || parser.BoolFlag("json")
	confirmed, err := RequireConfirmation(parser.BoolFlag("force"),
		fmt.Sprintf("delete collection %s (this cannot be undone)", id), jsonMode)
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

	if err := inv.Client.DeleteCollection(ctx, id); err != nil {
		return err
	}

	if jsonMode {
		return NewJSONResponse("rag collections delete", map[string]string{"deleted": id}).Print()
	}
	fmt.Printf("%s Deleted collection %s\n", SuccessStyle.Render("[OK]"), id)
	return nil
}

// =============================================================================
// SEARCH
// =============================================================================

// ragSearch runs a vector search within one collection.
func ragSearch(args Args, parser *ArgParser) error {
	query := strings.TrimSpace(strings.Join(parser.PositionalFrom(1), " "))
	if query == "" {
		return NewUsageErrorWithExample(
			"Search query cannot be empty.",
			`owui rag search "connection pooling" -c <collection-id>`,
		)
	}
	if len([]rune(query)) < minSearchQueryLen {
		return NewUsageError(fmt.Sprintf("Search query must be at least %d characters.", minSearchQueryLen))
	}

	collection := strings.TrimSpace(parser.FlagFirst("collection", "c"))
	if collection == "" {
		return NewUsageError("Collection ID is required (use --collection or -c).")
	}

	topK := defaultSearchTopK
	if raw := parser.FlagFirst("top-k", "k"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return NewUsageError(fmt.Sprintf("invalid top-k %q: must be an integer", raw))
		}
		topK = v
	}
	if topK < 1 {
		return NewUsageError("Number of results (--top-k) must be at least 1.")
	}
	if topK > 100 {
		warnLine("Requesting more than 100 results may be slow.")
	}

	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	results, err := inv.Client.QueryCollection(ctx, collection, query, topK)
	if err != nil {
		return err
	}

	if args.JSON || parser.BoolFlag("json") {
		return NewJSONResponse("rag search", results).Print()
	}

	if len(results) == 0 {
		fmt.Println(WarningStyle.Render(fmt.Sprintf("No results found for query: %q", query)))
		fmt.Println(DimStyle.Render("Try adjusting your search query and try again."))
		return nil
	}

	if inv.Eff.Format != config.DefaultFormat {
		return printStructured(results, inv.Eff.Format)
	}

	fmt.Printf("%s %s (%d result(s))\n\n", HeaderStyle.Render("Search results for:"), query, len(results))
	for i, r := range results {
		score := r.Score
		if score == 0 && r.Distance != 0 {
			score = r.Distance
		}
		fmt.Printf("%s (score: %.4f)\n", InfoStyle.Render(strconv.Itoa(i+1)+"."), score)
		if src := r.Source(); src != "" {
			fmt.Printf("   %s\n", DimStyle.Render("Source: "+src))
		}
		fmt.Printf("   %s...\n\n", truncateSnippet(r.Snippet(), 200))
	}
	return nil
}

// truncateSnippet caps a search hit preview at max runes.
func truncateSnippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
