package main

import (
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/elspais/internal/cliutil"
	"github.com/kraklabs/elspais/internal/search"
)

// runSuggestLinks implements "elspais suggest-links [--path dir]": surfaces
// likely-missing VALIDATES links (unlinked tests) and proximity/keyword
// based candidate links, per spec.md §4.6.5.
func runSuggestLinks(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("suggest-links", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "Maximum number of suggestions")
	path := fs.String("path", ".", "Repository path to scan")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: elspais suggest-links [options]\n\nSuggests likely-missing links over the graph built from --path.\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, _, _, err := buildGraph(*path, globals)
	if err != nil {
		return fmt.Errorf("suggest-links: %w", err)
	}

	suggestions := search.SuggestLinks(g, *limit)

	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(suggestions)
	}

	if len(suggestions) == 0 {
		_, _ = cliutil.Green.Println("No suggestions; nothing looks unlinked.")
		return nil
	}
	cliutil.Header(fmt.Sprintf("%d suggestion(s)", len(suggestions)))
	for _, s := range suggestions {
		fmt.Printf("%s -> %s  %s\n", cliutil.Bold.Sprint(s.TestID), s.RequirementID, cliutil.Label(s.ConfidenceBand()))
	}
	return nil
}
