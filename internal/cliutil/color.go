// Package cliutil provides the terminal-output helpers shared by
// cmd/elspais's subcommands: color-aware section headers, dimmed/labeled
// text, and count formatting, grounded on the teacher's cmd/cie usage of
// its own internal/ui package (ui.Header, ui.Label, ui.DimText,
// ui.CountText, ui.Green/Yellow/Dim) built on fatih/color and
// mattn/go-isatty.
package cliutil

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Green, Yellow, Red, and Dim are the color roles used across commands:
// success, warning, failure, and de-emphasized detail text respectively.
var (
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Red    = color.New(color.FgRed)
	Dim    = color.New(color.Faint)
	Bold   = color.New(color.Bold)
)

// InitColors enables or disables color output. It is called once from
// main after parsing --no-color and the NO_COLOR environment variable;
// when stdout is not a terminal, color is disabled regardless, matching
// fatih/color's own NoColor default but made explicit here so --json
// output (always redirected or piped) never carries escape codes.
func InitColors(noColor bool) {
	if noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// Header prints a bold section title followed by an underline of dashes,
// matching the teacher's ui.Header banner style.
func Header(title string) {
	_, _ = Bold.Println(title)
	fmt.Println(dashes(len(title)))
}

// SubHeader prints a smaller, non-underlined section title.
func SubHeader(title string) {
	_, _ = Bold.Println(title)
}

// Label dims a field name so the value that follows it stands out,
// mirroring ui.Label's "Project ID:"-style prefixes.
func Label(text string) string {
	return Dim.Sprint(text)
}

// DimText renders s in the faint color role for secondary detail.
func DimText(s string) string {
	return Dim.Sprint(s)
}

// CountText renders an integer count, in yellow when non-zero so
// non-trivial counts draw the eye, matching ui.CountText's convention of
// highlighting "there is something here" over a flat zero.
func CountText(n int) string {
	if n == 0 {
		return DimText("0")
	}
	return Yellow.Sprint(n)
}

func dashes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '-'
	}
	return string(b)
}
