// Command elspais builds and queries a requirements-traceability graph
// from a repository's specification and source files, and can mutate the
// graph in place and replay those mutations back onto the spec files they
// came from. Usage modeled on the teacher's cmd/cie CLI (global flags,
// first-arg command dispatch, subcommand-owned flag sets):
//
//	elspais build [path]                 Scan path and print a graph summary
//	elspais search <query> [--scope id]  Run a scored, optionally scoped search
//	elspais mutate <op> [args...]        Apply one mutation and replay it to disk
//	elspais suggest-links [--path dir]   Suggest missing VALIDATES links
package main

import (
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/elspais/internal/cliutil"
)

var (
	version = "dev"
	commit  = "unknown"
)

// GlobalFlags holds the flags that apply regardless of which subcommand runs.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Verbose int
	Quiet   bool
	Config  string
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		configPath  = flag.StringP("config", "c", ".elspais.toml", "Path to the pattern/reference/engine TOML config")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v info, -vv debug)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress progress and info output")
	)
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `elspais - requirements traceability engine

Usage:
  elspais <command> [options]

Commands:
  build          Scan a repository and print a graph summary
  search         Run a scored text search over the graph
  mutate         Apply one mutation to the graph and replay it to disk
  suggest-links  Suggest likely-missing VALIDATES links

Global Options:
  --json         Output in JSON format
  --no-color     Disable color output (respects NO_COLOR)
  -v, --verbose  Increase verbosity
  -q, --quiet    Suppress progress output
  -c, --config   Path to TOML config (default: .elspais.toml)
  -V, --version  Show version and exit

For detailed command help: elspais <command> --help
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("elspais version %s (%s)\n", version, commit)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{
		JSON:    *jsonOutput,
		NoColor: *noColor,
		Verbose: *verbose,
		Quiet:   *quiet,
		Config:  *configPath,
	}
	cliutil.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command, cmdArgs := args[0], args[1:]
	var err error
	switch command {
	case "build":
		err = runBuild(cmdArgs, globals)
	case "search":
		err = runSearch(cmdArgs, globals)
	case "mutate":
		err = runMutate(cmdArgs, globals)
	case "suggest-links":
		err = runSuggestLinks(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "elspais: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(globals GlobalFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case globals.Verbose >= 2:
		level = slog.LevelDebug
	case globals.Verbose >= 1:
		level = slog.LevelInfo
	}
	if globals.Quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
