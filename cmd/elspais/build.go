package main

import (
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/elspais/internal/cliutil"
	"github.com/kraklabs/elspais/internal/graph"
)

// buildReport is the --json shape for the build command, grounded on the
// teacher's printResult's json.Marshal of an ingestion result struct.
type buildReport struct {
	Requirements     int      `json:"requirements"`
	Journeys         int      `json:"journeys"`
	Files            int      `json:"files"`
	Roots            []string `json:"roots"`
	Orphans          []string `json:"orphans"`
	BrokenReferences int      `json:"broken_references"`
	RejectedCycles   int      `json:"rejected_cycles"`
	ParseErrors      int      `json:"parse_errors"`
}

// runBuild implements "elspais build [path]": scans path (default ".")
// and prints a summary of the resulting graph.
func runBuild(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: elspais build [path]\n\nScans path (default \".\") for spec and source files and prints a graph summary.\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	g, _, _, err := buildGraph(root, globals)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	roots := g.IterRoots()
	rootIDs := make([]string, len(roots))
	for i, r := range roots {
		rootIDs[i] = r.ID
	}

	report := buildReport{
		Requirements:     len(g.NodesByKind(graph.KindRequirement)),
		Journeys:         len(g.NodesByKind(graph.KindUserJourney)),
		Files:            len(g.NodesByKind(graph.KindFile)),
		Roots:            rootIDs,
		Orphans:          g.OrphanedIDs(),
		BrokenReferences: len(g.BrokenReferences()),
		RejectedCycles:   len(g.Validation.RejectedCycles),
		ParseErrors:      len(g.Validation.ParseErrors),
	}

	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	cliutil.Header("Graph Summary")
	fmt.Printf("%s %s\n", cliutil.Label("Requirements:"), cliutil.CountText(report.Requirements))
	fmt.Printf("%s %s\n", cliutil.Label("Files:"), cliutil.CountText(report.Files))
	fmt.Printf("%s %s\n", cliutil.Label("Root requirements:"), cliutil.DimText(fmt.Sprint(report.Roots)))
	if len(report.Orphans) > 0 {
		_, _ = cliutil.Yellow.Printf("Orphaned (non-root, parentless): %v\n", report.Orphans)
	}
	if report.BrokenReferences > 0 {
		_, _ = cliutil.Red.Printf("Broken references: %d\n", report.BrokenReferences)
	}
	if report.RejectedCycles > 0 {
		_, _ = cliutil.Red.Printf("Rejected cycles: %d\n", report.RejectedCycles)
	}
	if report.ParseErrors > 0 {
		_, _ = cliutil.Red.Printf("Parse errors: %d\n", report.ParseErrors)
	}
	if report.BrokenReferences == 0 && report.RejectedCycles == 0 && report.ParseErrors == 0 {
		_, _ = cliutil.Green.Println("Graph is clean.")
	}
	return nil
}
