package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStructureParser_NoRequirements_WholeFileIsPreamble(t *testing.T) {
	md := "Just some prose.\nNo requirements here.\n"
	lines := SplitLines(md)
	out := NewFileStructureParser().Parse(lines, nil)
	require.Len(t, out, 1)
	require.Equal(t, "preamble", out[0].Data["region_kind"])
	require.Equal(t, 1, out[0].StartLine)
	require.Equal(t, lines[len(lines)-1].Number, out[0].EndLine)
}

func TestFileStructureParser_PreambleInterPostamble(t *testing.T) {
	md := `Intro prose line 1.
Intro prose line 2.

# REQ-p00001: First

body

*End* *First*

Gap prose between requirements.

# REQ-p00002: Second

body

*End* *Second*

Trailing prose.
`
	lines := SplitLines(md)
	reqs := []ParsedContent{
		{Type: ContentRequirement, StartLine: 4, EndLine: 8},
		{Type: ContentRequirement, StartLine: 12, EndLine: 16},
	}
	out := NewFileStructureParser().Parse(lines, reqs)

	var kinds []string
	for _, r := range out {
		kinds = append(kinds, r.Data["region_kind"].(string))
	}
	require.Equal(t, []string{"preamble", "inter_requirement", "postamble"}, kinds)

	require.Equal(t, 1, out[0].StartLine)
	require.Equal(t, 3, out[0].EndLine)

	require.Equal(t, 9, out[1].StartLine)
	require.Equal(t, 11, out[1].EndLine)

	require.Equal(t, 17, out[2].StartLine)
}

func TestFileStructureParser_AdjacentRequirementsProduceNoInterGap(t *testing.T) {
	md := `# REQ-p00001: First

body

*End* *First*
# REQ-p00002: Second

body

*End* *Second*
`
	lines := SplitLines(md)
	reqs := []ParsedContent{
		{Type: ContentRequirement, StartLine: 1, EndLine: 5},
		{Type: ContentRequirement, StartLine: 6, EndLine: 10},
	}
	out := NewFileStructureParser().Parse(lines, reqs)
	require.Empty(t, out)
}

func TestFileStructureParser_EmptyFile(t *testing.T) {
	out := NewFileStructureParser().Parse(nil, nil)
	require.Empty(t, out)
}
