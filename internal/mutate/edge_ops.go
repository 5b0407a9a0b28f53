package mutate

import (
	"github.com/kraklabs/elspais/internal/graph"
)

// AddEdge implements add_edge(src, tgt, kind, assertion_targets?). If tgt
// is absent, the edge is recorded as a broken reference instead, per
// invariant I2.
func (e *Engine) AddEdge(srcID, tgtID string, kind graph.EdgeKind, assertionTargets []string) (*graph.MutationEntry, error) {
	src := e.g.FindByID(srcID)
	if src == nil {
		return nil, &graph.NotFoundError{ID: srcID}
	}
	tgt := e.g.FindByID(tgtID)
	if tgt != nil {
		if existing := e.g.FindEdge(src, tgt, kind); existing != nil {
			return nil, &graph.DuplicateIDError{ID: srcID + "->" + tgtID}
		}
	}

	var label string
	if len(assertionTargets) > 0 {
		label = assertionTargets[0]
	}

	if tgt == nil {
		b := graph.BrokenReference{SourceID: srcID, TargetID: tgtID, Kind: kind, AssertionLabel: label}
		e.g.AddBrokenReference(b)
		after := map[string]any{"broken_reference": b}
		return e.g.Log.Append("add_edge", srcID, nil, after, false), nil
	}

	edge := &graph.Edge{Source: src, Target: tgt, Kind: kind, AssertionTargets: assertionTargets}
	e.g.AddEdgeRecord(edge)
	var treeLinked bool
	if graph.IsTreeLinkKind(kind) {
		if e.g.WouldCreateCycle(tgt, src) {
			e.g.RemoveEdgeRecord(edge)
			return nil, &graph.CycleDetectedError{Source: srcID, Target: tgtID}
		}
		e.g.AddTreeLink(tgt, src)
		treeLinked = true
	}

	after := map[string]any{"edge": edge, "tree_linked": treeLinked}
	return e.g.Log.Append("add_edge", srcID, nil, after, false), nil
}

// ChangeEdgeKind implements change_edge_kind(src, tgt, new_kind).
func (e *Engine) ChangeEdgeKind(srcID, tgtID string, newKind graph.EdgeKind) (*graph.MutationEntry, error) {
	src := e.g.FindByID(srcID)
	if src == nil {
		return nil, &graph.NotFoundError{ID: srcID}
	}
	tgt := e.g.FindByID(tgtID)
	if tgt == nil {
		return nil, &graph.NotFoundError{ID: tgtID}
	}
	edge := e.findAnyEdge(src, tgt)
	if edge == nil {
		return nil, &graph.NoSuchEdgeError{Source: srcID, Target: tgtID}
	}

	oldKind := edge.Kind
	wasTreeLink := graph.IsTreeLinkKind(oldKind)
	willTreeLink := graph.IsTreeLinkKind(newKind)

	if wasTreeLink && !willTreeLink {
		e.g.RemoveTreeLink(tgt, src)
	} else if !wasTreeLink && willTreeLink {
		e.g.AddTreeLink(tgt, src)
	}
	edge.Kind = newKind

	before := map[string]any{"kind": oldKind}
	after := map[string]any{"kind": newKind}
	entry := e.g.Log.Append("change_edge_kind", srcID, before, after, false)
	return entry, nil
}

func (e *Engine) findAnyEdge(src, tgt *graph.Node) *graph.Edge {
	for _, ed := range src.Outgoing() {
		if ed.Target == tgt {
			return ed
		}
	}
	return nil
}

// DeleteEdge implements delete_edge(src, tgt): removes the first edge
// from src to tgt in src's outgoing list (edges of other kinds between
// the same pair are left in place), and (when the edge kind doubled as a tree link)
// orphans src if it has no remaining tree parent and isn't a schema
// root.
func (e *Engine) DeleteEdge(srcID, tgtID string) (*graph.MutationEntry, error) {
	src := e.g.FindByID(srcID)
	if src == nil {
		return nil, &graph.NotFoundError{ID: srcID}
	}
	tgt := e.g.FindByID(tgtID)
	if tgt == nil {
		return nil, &graph.NotFoundError{ID: tgtID}
	}
	edge := e.findAnyEdge(src, tgt)
	if edge == nil {
		return nil, &graph.NoSuchEdgeError{Source: srcID, Target: tgtID}
	}

	e.g.RemoveEdgeRecord(edge)
	var removedTreeLink bool
	if graph.IsTreeLinkKind(edge.Kind) {
		e.g.RemoveTreeLink(tgt, src)
		removedTreeLink = true
	}

	before := map[string]any{"edge": edge, "removed_tree_link": removedTreeLink}
	entry := e.g.Log.Append("delete_edge", srcID, before, nil, false)
	return entry, nil
}

// FixBrokenReference implements fix_broken_reference(src, old_tgt,
// new_tgt): removes the recorded broken reference and creates an edge to
// new_tgt (which may itself be broken, if new_tgt is still absent).
func (e *Engine) FixBrokenReference(srcID, oldTgtID, newTgtID string) (*graph.MutationEntry, error) {
	src := e.g.FindByID(srcID)
	if src == nil {
		return nil, &graph.NotFoundError{ID: srcID}
	}

	var found *graph.BrokenReference
	for _, b := range e.g.BrokenReferences() {
		if b.SourceID == srcID && b.TargetID == oldTgtID {
			bb := b
			found = &bb
			break
		}
	}
	if found == nil {
		return nil, &graph.NoSuchEdgeError{Source: srcID, Target: oldTgtID}
	}
	e.g.RemoveBrokenReference(srcID, oldTgtID, found.Kind, found.AssertionLabel)

	var labels []string
	if found.AssertionLabel != "" {
		labels = []string{found.AssertionLabel}
	}

	newTgt := e.g.FindByID(newTgtID)
	var newEdge *graph.Edge
	var stillBroken *graph.BrokenReference
	if newTgt == nil {
		nb := graph.BrokenReference{SourceID: srcID, TargetID: newTgtID, Kind: found.Kind, AssertionLabel: found.AssertionLabel}
		e.g.AddBrokenReference(nb)
		stillBroken = &nb
	} else {
		newEdge = &graph.Edge{Source: src, Target: newTgt, Kind: found.Kind, AssertionTargets: labels}
		e.g.AddEdgeRecord(newEdge)
		if graph.IsTreeLinkKind(found.Kind) {
			if e.g.WouldCreateCycle(newTgt, src) {
				e.g.RemoveEdgeRecord(newEdge)
				e.g.AddBrokenReference(*found)
				return nil, &graph.CycleDetectedError{Source: srcID, Target: newTgtID}
			}
			e.g.AddTreeLink(newTgt, src)
		}
	}

	before := map[string]any{"broken_reference": *found}
	after := map[string]any{"edge": newEdge, "still_broken": stillBroken}
	entry := e.g.Log.Append("fix_broken_reference", srcID, before, after, false)
	return entry, nil
}
