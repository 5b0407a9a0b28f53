package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/elspais/internal/cliutil"
	"github.com/kraklabs/elspais/internal/graph"
	"github.com/kraklabs/elspais/internal/mutate"
	"github.com/kraklabs/elspais/internal/replay"
)

// runMutate implements "elspais mutate <op> <args...> [--path dir]": scans
// dir (default "."), applies one mutation to the resulting graph via internal/mutate,
// then immediately replays the mutation log back onto the spec files it
// came from via internal/replay, printing the resulting Report. Each
// invocation is a complete scan-mutate-replay cycle since no graph state
// persists between CLI runs, matching the teacher's one-shot command
// style rather than an interactive session.
func runMutate(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("mutate", flag.ContinueOnError)
	path := fs.String("path", ".", "Repository path to scan")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: elspais mutate <op> <args...> [options]

Operations:
  update-title <id> <title>
  change-status <id> <status>
  add-edge <src-id> <tgt-id> <implements|refines|addresses>
  delete-edge <src-id> <tgt-id>
  change-edge-kind <src-id> <tgt-id> <implements|refines|addresses>
  add-assertion <req-id> <label> <text...>
  update-assertion <assertion-id> <text...>
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("mutate: an operation is required")
	}
	op := fs.Arg(0)
	rest := fs.Args()[1:]

	g, pattern, engineCfg, err := buildGraph(*path, globals)
	if err != nil {
		return fmt.Errorf("mutate: %w", err)
	}

	eng := mutate.New(g, pattern, engineCfg.HashMode, newLogger(globals))
	if err := applyOp(eng, op, rest); err != nil {
		return fmt.Errorf("mutate %s: %w", op, err)
	}

	r := replay.New(g, *path, engineCfg.HashMode, newLogger(globals))
	report := r.Replay()
	return printReplayReport(report, globals)
}

func applyOp(eng *mutate.Engine, op string, args []string) error {
	switch op {
	case "update-title":
		if len(args) < 2 {
			return fmt.Errorf("expected <id> <title>")
		}
		_, err := eng.UpdateTitle(args[0], strings.Join(args[1:], " "))
		return err
	case "change-status":
		if len(args) != 2 {
			return fmt.Errorf("expected <id> <status>")
		}
		_, err := eng.ChangeStatus(args[0], args[1])
		return err
	case "add-edge":
		if len(args) != 3 {
			return fmt.Errorf("expected <src-id> <tgt-id> <kind>")
		}
		kind, err := parseEdgeKind(args[2])
		if err != nil {
			return err
		}
		_, err = eng.AddEdge(args[0], args[1], kind, nil)
		return err
	case "delete-edge":
		if len(args) != 2 {
			return fmt.Errorf("expected <src-id> <tgt-id>")
		}
		_, err := eng.DeleteEdge(args[0], args[1])
		return err
	case "change-edge-kind":
		if len(args) != 3 {
			return fmt.Errorf("expected <src-id> <tgt-id> <kind>")
		}
		kind, err := parseEdgeKind(args[2])
		if err != nil {
			return err
		}
		_, err = eng.ChangeEdgeKind(args[0], args[1], kind)
		return err
	case "add-assertion":
		if len(args) < 3 {
			return fmt.Errorf("expected <req-id> <label> <text...>")
		}
		_, err := eng.AddAssertion(args[0], args[1], strings.Join(args[2:], " "))
		return err
	case "update-assertion":
		if len(args) < 2 {
			return fmt.Errorf("expected <assertion-id> <text...>")
		}
		_, err := eng.UpdateAssertion(args[0], strings.Join(args[1:], " "))
		return err
	default:
		return fmt.Errorf("unknown operation %q", op)
	}
}

func parseEdgeKind(s string) (graph.EdgeKind, error) {
	switch strings.ToLower(s) {
	case "implements":
		return graph.EdgeImplements, nil
	case "refines":
		return graph.EdgeRefines, nil
	case "addresses":
		return graph.EdgeAddresses, nil
	case "validates":
		return graph.EdgeValidates, nil
	default:
		return "", fmt.Errorf("unknown edge kind %q", s)
	}
}

func printReplayReport(report *replay.Report, globals GlobalFlags) error {
	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	if report.Success {
		_, _ = cliutil.Green.Println("Replay succeeded.")
	} else {
		_, _ = cliutil.Red.Println("Replay failed.")
	}
	fmt.Printf("%s %s\n", cliutil.Label("Saved:"), cliutil.CountText(report.SavedCount))
	if len(report.FilesModified) > 0 {
		fmt.Printf("%s %v\n", cliutil.Label("Files modified:"), report.FilesModified)
	}
	for _, c := range report.Conflicts {
		_, _ = cliutil.Red.Printf("Conflict: %s\n", c)
	}
	for _, e := range report.Errors {
		_, _ = cliutil.Red.Printf("Error: %s\n", e)
	}
	for _, s := range report.Skipped {
		fmt.Printf("%s %s\n", cliutil.Label("Skipped:"), cliutil.DimText(s))
	}
	if !report.Success {
		return fmt.Errorf("replay did not complete successfully")
	}
	return nil
}
