package mutate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/elspais/internal/graph"
)

func TestAddAssertion(t *testing.T) {
	e, g := newTestEngine()
	mustAddRequirement(t, e, "REQ-p00001", "Req", AddRequirementParams{})

	_, err := e.AddAssertion("REQ-p00001", "A", "must validate input")
	require.NoError(t, err)

	a := g.FindByID("REQ-p00001-A")
	require.NotNil(t, a)
	require.Equal(t, graph.KindAssertion, a.Kind)
	require.Equal(t, "must validate input", a.Content["text"])
	require.Equal(t, []*graph.Node{a}, g.FindByID("REQ-p00001").Children())

	require.NoError(t, e.UndoLast())
	require.Nil(t, g.FindByID("REQ-p00001-A"))
	require.Empty(t, g.FindByID("REQ-p00001").Children())
}

func TestAddAssertion_RequirementNotFound(t *testing.T) {
	e, _ := newTestEngine()
	_, err := e.AddAssertion("REQ-p09999", "A", "text")
	require.ErrorIs(t, err, graph.ErrNotFound)
}

func TestAddAssertion_DuplicateLabelRejected(t *testing.T) {
	e, _ := newTestEngine()
	mustAddRequirement(t, e, "REQ-p00001", "Req", AddRequirementParams{})
	_, err := e.AddAssertion("REQ-p00001", "A", "first")
	require.NoError(t, err)
	_, err = e.AddAssertion("REQ-p00001", "A", "second")
	require.ErrorIs(t, err, graph.ErrDuplicateID)
}

func TestUpdateAssertion(t *testing.T) {
	e, g := newTestEngine()
	mustAddRequirement(t, e, "REQ-p00001", "Req", AddRequirementParams{})
	_, err := e.AddAssertion("REQ-p00001", "A", "old text")
	require.NoError(t, err)

	hashBefore := g.FindByID("REQ-p00001").Content["hash"]
	_, err = e.UpdateAssertion("REQ-p00001-A", "new text")
	require.NoError(t, err)
	require.Equal(t, "new text", g.FindByID("REQ-p00001-A").Content["text"])
	require.NotEqual(t, hashBefore, g.FindByID("REQ-p00001").Content["hash"])

	require.NoError(t, e.UndoLast())
	require.Equal(t, "old text", g.FindByID("REQ-p00001-A").Content["text"])
	require.Equal(t, hashBefore, g.FindByID("REQ-p00001").Content["hash"])
}

func TestRenameAssertion_RewritesEdgeTargets(t *testing.T) {
	e, g := newTestEngine()
	mustAddRequirement(t, e, "REQ-p00001", "Req", AddRequirementParams{})
	_, err := e.AddAssertion("REQ-p00001", "A", "text")
	require.NoError(t, err)
	mustAddRequirement(t, e, "REQ-o00001", "Impl", AddRequirementParams{})

	_, err = e.AddEdge("REQ-o00001", "REQ-p00001", graph.EdgeImplements, []string{"A"})
	require.NoError(t, err)

	_, err = e.RenameAssertion("REQ-p00001-A", "Z")
	require.NoError(t, err)

	require.Nil(t, g.FindByID("REQ-p00001-A"))
	renamed := g.FindByID("REQ-p00001-Z")
	require.NotNil(t, renamed)

	impl := g.FindByID("REQ-o00001")
	require.Len(t, impl.Outgoing(), 1)
	require.Equal(t, []string{"Z"}, impl.Outgoing()[0].AssertionTargets)

	require.NoError(t, e.UndoLast())
	require.Nil(t, g.FindByID("REQ-p00001-Z"))
	require.NotNil(t, g.FindByID("REQ-p00001-A"))
	require.Equal(t, []string{"A"}, impl.Outgoing()[0].AssertionTargets)
}

func TestDeleteAssertion_CompactReusesSiblingIdentity(t *testing.T) {
	e, g := newTestEngine()
	mustAddRequirement(t, e, "REQ-p00001", "Req", AddRequirementParams{})
	_, err := e.AddAssertion("REQ-p00001", "A", "first")
	require.NoError(t, err)
	_, err = e.AddAssertion("REQ-p00001", "B", "second")
	require.NoError(t, err)
	_, err = e.AddAssertion("REQ-p00001", "C", "third")
	require.NoError(t, err)

	b := g.FindByID("REQ-p00001-B")
	c := g.FindByID("REQ-p00001-C")

	_, err = e.DeleteAssertion("REQ-p00001-A", true)
	require.NoError(t, err)

	require.Nil(t, g.FindByID("REQ-p00001-A"))
	// B's own node object is reused under the A slot; its identity
	// (pointer) doesn't change, only its ID/label fields do.
	require.Equal(t, "REQ-p00001-A", b.ID)
	require.Equal(t, "REQ-p00001-B", c.ID)
	require.Same(t, b, g.FindByID("REQ-p00001-A"))
	require.Same(t, c, g.FindByID("REQ-p00001-B"))
	require.Nil(t, g.FindByID("REQ-p00001-C"))

	require.NoError(t, e.UndoLast())
	require.Equal(t, "REQ-p00001-B", b.ID)
	require.Equal(t, "REQ-p00001-C", c.ID)
	require.NotNil(t, g.FindByID("REQ-p00001-A"))
}

func TestDeleteAssertion_NoCompactLeavesGap(t *testing.T) {
	e, g := newTestEngine()
	mustAddRequirement(t, e, "REQ-p00001", "Req", AddRequirementParams{})
	_, err := e.AddAssertion("REQ-p00001", "A", "first")
	require.NoError(t, err)
	_, err = e.AddAssertion("REQ-p00001", "B", "second")
	require.NoError(t, err)

	_, err = e.DeleteAssertion("REQ-p00001-A", false)
	require.NoError(t, err)

	require.Nil(t, g.FindByID("REQ-p00001-A"))
	require.NotNil(t, g.FindByID("REQ-p00001-B"))

	require.NoError(t, e.UndoLast())
	require.NotNil(t, g.FindByID("REQ-p00001-A"))
}
