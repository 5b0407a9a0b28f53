package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/elspais/internal/idconfig"
)

const reqFixture = `# REQ-p00001: Top level product requirement

**Level**: 0 | **Status**: approved
**Implements**: -
**Refines**: -

The system shall do the thing.
It shall do it reliably.

## Assertions

A. The thing happens reliably.
B. The thing is observable.
   It stays observable across restarts.

*End* *Top level product requirement* | **Hash**: abc123

---

# REQ-o00001: Operational breakdown

**Level**: 1 | **Status**: draft
**Implements**: REQ-p00001

Supports the product requirement operationally.

*End* *Operational breakdown*
`

func TestRequirementParser_ParsesTwoBlocks(t *testing.T) {
	p := NewRequirementParser(idconfig.DefaultPatternConfig())
	lines := SplitLines(reqFixture)
	out := p.Parse(lines)
	require.Len(t, out, 2)

	top := out[0]
	require.Equal(t, ContentRequirement, top.Type)
	require.Equal(t, "REQ-p00001", top.Data["id"])
	require.Equal(t, "Top level product requirement", top.Data["title"])
	require.Equal(t, "approved", top.Data["status"])
	require.Nil(t, top.Data["implements"])
	require.Equal(t, "abc123", top.Data["hash"])

	assertions, ok := top.Data["assertions"].([]AssertionData)
	require.True(t, ok)
	require.Len(t, assertions, 2)
	require.Equal(t, "A", assertions[0].Label)
	require.Equal(t, "The thing happens reliably.", assertions[0].Text)
	require.Equal(t, "B", assertions[1].Label)
	require.Equal(t, "The thing is observable. It stays observable across restarts.", assertions[1].Text)

	sub := out[1]
	require.Equal(t, "REQ-o00001", sub.Data["id"])
	implements, ok := sub.Data["implements"].([]string)
	require.True(t, ok)
	require.Equal(t, []string{"REQ-p00001"}, implements)
	require.Nil(t, sub.Data["hash"])
}

func TestRequirementParser_BodyTextExcludesAssertionsAndEndMarker(t *testing.T) {
	p := NewRequirementParser(idconfig.DefaultPatternConfig())
	lines := SplitLines(reqFixture)
	out := p.Parse(lines)
	body, _ := out[0].Data["body_text"].(string)
	require.Contains(t, body, "The system shall do the thing.")
	require.NotContains(t, body, "## Assertions")
	require.NotContains(t, body, "*End*")
}

func TestRequirementParser_IgnoresInvalidID(t *testing.T) {
	p := NewRequirementParser(idconfig.DefaultPatternConfig())
	md := "# Not-A-Requirement: whatever\n\nSome text.\n"
	out := p.Parse(SplitLines(md))
	require.Empty(t, out)
}

func TestRequirementParser_StandaloneFieldLines(t *testing.T) {
	md := `# REQ-p00002: Standalone fields

**Level**: 0
**Status**: draft
**Implements**: REQ-p00001

Body text here.

*End* *Standalone fields*
`
	p := NewRequirementParser(idconfig.DefaultPatternConfig())
	out := p.Parse(SplitLines(md))
	require.Len(t, out, 1)
	require.Equal(t, "draft", out[0].Data["status"])
	implements, _ := out[0].Data["implements"].([]string)
	require.Equal(t, []string{"REQ-p00001"}, implements)
}

func TestRequirementParser_NoReferenceSentinelYieldsNilImplements(t *testing.T) {
	md := `# REQ-p00003: No refs

**Level**: 0 | **Status**: draft
**Implements**: none

Body.

*End* *No refs*
`
	p := NewRequirementParser(idconfig.DefaultPatternConfig())
	out := p.Parse(SplitLines(md))
	require.Nil(t, out[0].Data["implements"])
}

func TestRequirementParser_UnterminatedBlockRecoversAtNextHeader(t *testing.T) {
	md := `# REQ-p00001: First

**Level**: 0 | **Status**: draft

Body one, no End marker.

# REQ-p00002: Second

**Level**: 0 | **Status**: draft

Body two.

*End* *Second*
`
	p := NewRequirementParser(idconfig.DefaultPatternConfig())
	out := p.Parse(SplitLines(md))
	require.Len(t, out, 2)
	require.Equal(t, "REQ-p00001", out[0].Data["id"])
	require.Equal(t, "REQ-p00002", out[1].Data["id"])
}
