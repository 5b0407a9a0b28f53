package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/elspais/internal/idconfig"
)

func TestTestScanConfig_Matches(t *testing.T) {
	c := DefaultTestScanConfig()
	require.True(t, c.Matches("tests/foo_test.go"))
	require.True(t, c.Matches("pkg/widget/widget_test.go"))
	require.True(t, c.Matches("spec/thing_spec.rb"))
	require.True(t, c.Matches("test/test_thing.py"))
	require.False(t, c.Matches("src/utils.go"))
	require.False(t, c.Matches("cmd/main.go"))
}

func newTestScanner() *TestScanner {
	return NewTestScanner(idconfig.DefaultPatternConfig(), idconfig.DefaultReferenceConfig())
}

// References live inside the function body, not above the declaration: the
// scanner attributes every line up to the next test-function line to the
// current record, so a comment above a def/func belongs to the previous
// test rather than the one it precedes.
const goTestSource = `package example

import "testing"

func TestFirst(t *testing.T) {
	// Validates: REQ-p00001
}

func TestSecond(t *testing.T) {
	// Validates: REQ-o00001
}
`

func TestTestScanner_Go_CollectsValidatesPerFunction(t *testing.T) {
	s := newTestScanner()
	out := s.Scan("widget_test.go", SplitLines(goTestSource))
	require.Len(t, out, 2)

	require.Equal(t, "TestFirst", out[0].TestName)
	require.Equal(t, []string{"REQ-p00001"}, out[0].ValidatesTargets)
	require.Empty(t, out[0].ExpectedBrokenTargets)

	require.Equal(t, "TestSecond", out[1].TestName)
	require.Equal(t, []string{"REQ-o00001"}, out[1].ValidatesTargets)
}

const pythonTestSource = `import unittest


def test_foo_bar():
    # Validates: REQ-p00001
    assert True


def test_baz():
    # IMPLEMENTS: REQ-o00001
    assert True
`

func TestTestScanner_Python_CollectsValidatesAndLegacyImplements(t *testing.T) {
	s := newTestScanner()
	out := s.Scan("test_widget.py", SplitLines(pythonTestSource))
	require.Len(t, out, 2)

	require.Equal(t, "foo_bar", out[0].TestName)
	require.Equal(t, []string{"REQ-p00001"}, out[0].ValidatesTargets)

	require.Equal(t, "baz", out[1].TestName)
	require.Equal(t, []string{"REQ-o00001"}, out[1].ValidatesTargets)
}

const expectedBrokenSource = `package example

// elspais: expected-broken-links 1

import "testing"

func TestFirst(t *testing.T) {
	// Validates: REQ-p00001
}

func TestSecond(t *testing.T) {
	// Validates: REQ-o00001
}
`

func TestTestScanner_ExpectedBrokenLinksBudgetSpendsFirstNIDs(t *testing.T) {
	s := newTestScanner()
	out := s.Scan("widget_test.go", SplitLines(expectedBrokenSource))
	require.Len(t, out, 2)

	require.Equal(t, []string{"REQ-p00001"}, out[0].ExpectedBrokenTargets)
	require.Empty(t, out[0].ValidatesTargets)

	require.Equal(t, []string{"REQ-o00001"}, out[1].ValidatesTargets)
	require.Empty(t, out[1].ExpectedBrokenTargets)
}

func TestTestScanner_NoTestFunctions_YieldsNothing(t *testing.T) {
	s := newTestScanner()
	out := s.Scan("widget.go", SplitLines("package example\n\nfunc Helper() {}\n"))
	require.Empty(t, out)
}

func TestTestScanner_DeduplicatesRepeatedIDOnSameLine(t *testing.T) {
	// collectIDs dedupes within a single line's matches (Validates:,
	// legacy IMPLEMENTS:, and the bare-ID fallback can all fire on the
	// same comment); it does not dedupe across separate lines.
	src := `package example

func TestOnce(t *testing.T) {
	// Validates: REQ-p00001 (legacy form: IMPLEMENTS: REQ-p00001)
}
`
	s := newTestScanner()
	out := s.Scan("widget_test.go", SplitLines(src))
	require.Len(t, out, 1)
	require.Equal(t, []string{"REQ-p00001"}, out[0].ValidatesTargets)
}
