package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/elspais/internal/graph"
	"github.com/kraklabs/elspais/internal/idconfig"
)

func newTestScanner() (*idconfig.PatternConfig, *idconfig.ReferenceConfig, *idconfig.EngineConfig, *FileScanner) {
	pattern := idconfig.DefaultPatternConfig()
	refcfg := idconfig.DefaultReferenceConfig()
	engine := idconfig.DefaultEngineConfig()
	return pattern, refcfg, engine, NewFileScanner(pattern, refcfg, engine)
}

const specMD = `# REQ-p00001: Top level product requirement

**Level**: 0 | **Status**: approved

The system shall do the thing.

## Assertions

A. The thing happens reliably.
B. The thing is observable.

*End* *Top level product requirement*

---

# REQ-o00001: Operational breakdown

**Level**: 1 | **Status**: draft
**Implements**: REQ-p00001

Supports the product requirement operationally.

## Assertions

A. Operational detail one.

*End* *Operational breakdown*
`

const codeGo = `package widget

// Implements: REQ-o00001
func DoThing() {
}
`

func TestBuild_EndToEnd(t *testing.T) {
	_, _, engine, scanner := newTestScanner()
	b := New(idconfig.DefaultPatternConfig(), engine, nil)

	specFC := scanner.Scan("docs/spec.md", []byte(specMD))
	codeFC := scanner.Scan("widget/widget.go", []byte(codeGo))

	require.Len(t, specFC.Requirements, 2)
	require.True(t, codeFC.IsSource)
	require.Len(t, codeFC.CodeRefs, 1)

	g := b.Build([]FileContent{specFC, codeFC})

	top := g.FindByID("REQ-p00001")
	require.NotNil(t, top)
	assert.Equal(t, "Top level product requirement", top.Label)
	assert.Equal(t, "approved", top.Content["status"])
	assert.NotEmpty(t, top.Content["hash"])

	assertionA := g.FindByID("REQ-p00001-A")
	require.NotNil(t, assertionA)
	assert.Contains(t, top.Children(), assertionA)

	sub := g.FindByID("REQ-o00001")
	require.NotNil(t, sub)
	assert.Contains(t, top.Children(), sub)
	assert.Contains(t, sub.Parents(), top)

	assert.Empty(t, g.BrokenReferences())

	// FILE nodes are schema roots alongside the top-level requirement.
	roots := g.IterRoots()
	rootIDs := make([]string, len(roots))
	for i, r := range roots {
		rootIDs[i] = r.ID
	}
	assert.Equal(t, []string{"FILE:docs/spec.md", "FILE:widget/widget.go", "REQ-p00001"}, rootIDs)

	orphans := g.OrphanedIDs()
	assert.NotContains(t, orphans, "REQ-o00001")
}

func TestBuild_BrokenReference(t *testing.T) {
	_, _, engine, scanner := newTestScanner()
	b := New(idconfig.DefaultPatternConfig(), engine, nil)

	md := `# REQ-p00001: Lonely requirement

**Level**: 0 | **Status**: draft
**Implements**: REQ-p09999

Body text.

*End* *Lonely requirement*
`
	fc := scanner.Scan("docs/spec.md", []byte(md))
	g := b.Build([]FileContent{fc})

	broken := g.BrokenReferences()
	require.Len(t, broken, 1)
	assert.Equal(t, "REQ-p00001", broken[0].SourceID)
	assert.Equal(t, "REQ-p09999", broken[0].TargetID)
	assert.Equal(t, graph.EdgeImplements, broken[0].Kind)
}

func TestBuild_CycleRejected(t *testing.T) {
	_, _, engine, scanner := newTestScanner()
	b := New(idconfig.DefaultPatternConfig(), engine, nil)

	md := `# REQ-p00001: First

**Level**: 0 | **Status**: draft
**Implements**: REQ-p00002

Body one.

*End* *First*

---

# REQ-p00002: Second

**Level**: 0 | **Status**: draft
**Implements**: REQ-p00001

Body two.

*End* *Second*
`
	fc := scanner.Scan("docs/spec.md", []byte(md))
	g := b.Build([]FileContent{fc})

	assert.NotEmpty(t, g.Validation.RejectedCycles)
}

func TestFileScanner_RemainderForUncoveredSource(t *testing.T) {
	_, _, engine, scanner := newTestScanner()
	fc := scanner.Scan("widget/plain.go", []byte("package widget\n\nfunc Plain() {}\n"))
	assert.Empty(t, fc.CodeRefs)
	assert.True(t, fc.IsSource)

	g := New(idconfig.DefaultPatternConfig(), engine, nil).Build([]FileContent{fc})
	rem := g.FindByID("FILE:widget/plain.go#remainder")
	require.NotNil(t, rem)
	assert.Equal(t, graph.KindRemainder, rem.Kind)
}
