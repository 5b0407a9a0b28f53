package cliutil

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// NewScanBar returns a progress bar for the repo-scan phase, sized to
// total files. It writes to stderr so --json callers piping stdout never
// see bar escape codes mixed into their output, and is silenced entirely
// when quiet is set (JSON mode auto-enables quiet, per cmd/elspais/main.go),
// matching the teacher's pattern of a single phase-scoped bar per run
// (cmd/cie/index.go's currentBar) rather than nested bars per file.
func NewScanBar(total int, quiet bool) *progressbar.ProgressBar {
	var out io.Writer = os.Stderr
	if quiet {
		out = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("Scanning files"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
