package main

import (
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/elspais/internal/cliutil"
	"github.com/kraklabs/elspais/internal/search"
)

// runSearch implements "elspais search <query> [--path dir]": scans dir
// (default ".") and runs a scored, optionally scoped text search, per
// spec.md §4.6's scored query layer.
func runSearch(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	scope := fs.String("scope", "", "Restrict results to this requirement's subtree")
	ancestors := fs.Bool("ancestors", false, "With --scope, search ancestors instead of descendants")
	field := fs.String("field", "all", "Field to search: all|title|body|keywords|id")
	regex := fs.Bool("regex", false, "Treat the query as a regular expression")
	assertions := fs.Bool("assertions", false, "Include assertion-level matches")
	limit := fs.Int("limit", 50, "Maximum number of results")
	path := fs.String("path", ".", "Repository path to scan")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: elspais search <query> [options]\n\nRuns a scored text search over the graph built from --path.\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("search: a query string is required")
	}
	query := fs.Arg(0)

	g, _, _, err := buildGraph(*path, globals)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	direction := search.DirectionDescendants
	if *ancestors {
		direction = search.DirectionAncestors
	}

	params := search.ScopedSearchParams{
		Query:             query,
		ScopeID:           *scope,
		Direction:         direction,
		Field:             search.Field(*field),
		Regex:             *regex,
		IncludeAssertions: *assertions,
		Limit:             *limit,
	}
	results, ok := search.ScopedSearch(g, params)
	if !ok {
		return fmt.Errorf("search: scope %q not found", *scope)
	}

	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		_, _ = cliutil.Yellow.Println("No matches.")
		return nil
	}
	cliutil.Header(fmt.Sprintf("%d match(es)", len(results)))
	for _, r := range results {
		fmt.Printf("%s  %s  %s\n", cliutil.Bold.Sprint(r.ID), cliutil.DimText(fmt.Sprintf("score=%.1f", r.Score)), r.Title)
		for _, ma := range r.MatchedAssertions {
			fmt.Printf("    %s %s\n", cliutil.Label(ma.ID+":"), ma.Text)
		}
	}
	return nil
}
