package mutate

import (
	"github.com/kraklabs/elspais/internal/graph"
	"github.com/kraklabs/elspais/internal/idconfig"
)

// AddAssertion implements add_assertion(req_id, label, text).
func (e *Engine) AddAssertion(reqID, label, text string) (*graph.MutationEntry, error) {
	req := e.g.FindByID(reqID)
	if req == nil {
		return nil, &graph.NotFoundError{ID: reqID}
	}
	if req.Kind != graph.KindRequirement {
		return nil, &graph.InvalidKindError{ID: reqID, Expected: graph.KindRequirement, Actual: req.Kind}
	}
	aid := e.pattern.AssertionID(reqID, label)
	if e.g.FindByID(aid) != nil {
		return nil, &graph.DuplicateIDError{ID: aid}
	}

	an := graph.NewNode(aid, graph.KindAssertion, label)
	an.Content["label"] = label
	an.Content["text"] = text
	an.Content["is_placeholder"] = false
	if err := e.g.AddNode(an); err != nil {
		return nil, err
	}
	e.g.AddTreeLink(req, an)
	e.recomputeHash(req)

	after := map[string]any{"node": an}
	entry := e.g.Log.Append("add_assertion", aid, nil, after, true)
	return entry, nil
}

// UpdateAssertion implements update_assertion(assertion_id, text).
func (e *Engine) UpdateAssertion(assertionID, text string) (*graph.MutationEntry, error) {
	n := e.g.FindByID(assertionID)
	if n == nil {
		return nil, &graph.NotFoundError{ID: assertionID}
	}
	if n.Kind != graph.KindAssertion {
		return nil, &graph.InvalidKindError{ID: assertionID, Expected: graph.KindAssertion, Actual: n.Kind}
	}
	before := map[string]any{"text": n.Content["text"]}
	n.Content["text"] = text
	after := map[string]any{"text": text}

	req := requirementOf(n)
	e.recomputeHash(req)

	entry := e.g.Log.Append("update_assertion", assertionID, before, after, true)
	return entry, nil
}

// RenameAssertion implements rename_assertion(assertion_id, new_label):
// updates the node's ID and label field, and rewrites every edge whose
// assertion_targets names the old label.
func (e *Engine) RenameAssertion(assertionID, newLabel string) (*graph.MutationEntry, error) {
	n := e.g.FindByID(assertionID)
	if n == nil {
		return nil, &graph.NotFoundError{ID: assertionID}
	}
	if n.Kind != graph.KindAssertion {
		return nil, &graph.InvalidKindError{ID: assertionID, Expected: graph.KindAssertion, Actual: n.Kind}
	}
	req := requirementOf(n)
	if req == nil {
		return nil, &graph.NotFoundError{ID: assertionID}
	}
	oldLabel, _ := n.Content["label"].(string)
	newID := e.pattern.AssertionID(req.ID, newLabel)
	for _, sib := range req.Children() {
		if sib != n && sib.Kind == graph.KindAssertion {
			if sibLabel, _ := sib.Content["label"].(string); sibLabel == newLabel {
				return nil, &graph.DuplicateIDError{ID: newID}
			}
		}
	}

	oldID := n.ID
	// Assertion-targeted edges resolve to the requirement-level node, not
	// the assertion node itself, so the edges to rewrite live on req, not n.
	var rewritten []*graph.Edge
	for _, ed := range append(append([]*graph.Edge(nil), req.Outgoing()...), req.Incoming()...) {
		if containsLabel(ed.AssertionTargets, oldLabel) {
			rewritten = append(rewritten, ed)
			replaceLabel(ed.AssertionTargets, oldLabel, newLabel)
		}
	}

	n.ID = newID
	e.g.Reindex(n, oldID)
	n.Content["label"] = newLabel
	n.Label = newLabel

	e.recomputeHash(req)

	before := map[string]any{"id": oldID, "label": oldLabel, "rewritten_edges": rewritten}
	after := map[string]any{"id": newID, "label": newLabel}
	entry := e.g.Log.Append("rename_assertion", oldID, before, after, true)
	return entry, nil
}

func containsLabel(list []string, label string) bool {
	for _, l := range list {
		if l == label {
			return true
		}
	}
	return false
}

func replaceLabel(list []string, old, new string) {
	for i, l := range list {
		if l == old {
			list[i] = new
		}
	}
}

// DeleteAssertion implements delete_assertion(id, compact). With
// compact=true, trailing siblings are renamed one slot down in place
// (the deleted node's ID is reused by the next sibling, whose own node
// is unaffected apart from its ID/label), matching
// original_source/tests/core/test_assertion_mutations.py's
// test_delete_with_compact.
func (e *Engine) DeleteAssertion(id string, compact bool) (*graph.MutationEntry, error) {
	n := e.g.FindByID(id)
	if n == nil {
		return nil, &graph.NotFoundError{ID: id}
	}
	if n.Kind != graph.KindAssertion {
		return nil, &graph.InvalidKindError{ID: id, Expected: graph.KindAssertion, Actual: n.Kind}
	}
	req := requirementOf(n)
	label, _ := n.Content["label"].(string)

	// Assertion-targeted edges resolve to the requirement-level node, so
	// deleting the assertion node itself never touches any edge records.
	if req != nil {
		e.g.RemoveTreeLink(req, n)
	}
	e.g.Tombstone(n)

	var renames []graph.Rename
	if compact && req != nil {
		renames = e.compactAssertions(req, label)
	}

	e.recomputeHash(req)

	var reqID string
	if req != nil {
		reqID = req.ID
	}
	before := map[string]any{
		"node":    n,
		"renames": renames,
		"req_id":  reqID,
	}
	entry := e.g.Log.Append("delete_assertion", id, before, nil, true)
	return entry, nil
}

// labeledNode pairs an assertion node with its current label, used while
// sorting siblings for compaction.
type labeledNode struct {
	node  *graph.Node
	label string
}

// compactAssertions renames every sibling assertion whose label sorts
// after deletedLabel down one alphabet slot, in place (reusing the same
// node, only its ID and label fields change).
func (e *Engine) compactAssertions(req *graph.Node, deletedLabel string) []graph.Rename {
	var siblings []labeledNode
	for _, c := range req.Children() {
		if c.Kind != graph.KindAssertion {
			continue
		}
		label, _ := c.Content["label"].(string)
		if idconfig.LabelLess(deletedLabel, label) {
			siblings = append(siblings, labeledNode{node: c, label: label})
		}
	}
	sortByLabel(siblings)

	newLabel := deletedLabel
	var renames []graph.Rename
	for _, s := range siblings {
		oldID := s.node.ID
		s.node.ID = e.pattern.AssertionID(req.ID, newLabel)
		e.g.Reindex(s.node, oldID)
		s.node.Content["label"] = newLabel
		s.node.Label = newLabel
		renames = append(renames, graph.Rename{OldLabel: s.label, NewLabel: newLabel})
		newLabel = s.label
	}
	return renames
}

func sortByLabel(list []labeledNode) {
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && idconfig.LabelLess(list[j].label, list[j-1].label); j-- {
			list[j], list[j-1] = list[j-1], list[j]
		}
	}
}
