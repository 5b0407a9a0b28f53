package mutate

import (
	"fmt"

	"github.com/kraklabs/elspais/internal/graph"
)

// UndoLast pops the most recent log entry and applies its inverse.
func (e *Engine) UndoLast() error {
	entry := e.g.Log.PopLast()
	if entry == nil {
		return fmt.Errorf("mutate: nothing to undo")
	}
	return e.invert(entry)
}

// UndoTo pops every entry down to and including entryID, inverting each
// in LIFO order (most recent first), matching the original's undo_to.
func (e *Engine) UndoTo(entryID int64) error {
	popped := e.g.Log.PopTo(entryID)
	if popped == nil {
		return &graph.NotFoundError{ID: fmt.Sprintf("mutation %d", entryID)}
	}
	for _, entry := range popped {
		if err := e.invert(entry); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) invert(entry *graph.MutationEntry) error {
	switch entry.Operation {
	case "rename_node":
		return e.undoRenameNode(entry)
	case "update_title":
		return e.undoUpdateTitle(entry)
	case "change_status":
		return e.undoChangeStatus(entry)
	case "add_requirement":
		return e.undoAddRequirement(entry)
	case "delete_requirement":
		return e.undoDeleteRequirement(entry)
	case "add_assertion":
		return e.undoAddAssertion(entry)
	case "update_assertion":
		return e.undoUpdateAssertion(entry)
	case "rename_assertion":
		return e.undoRenameAssertion(entry)
	case "delete_assertion":
		return e.undoDeleteAssertion(entry)
	case "add_edge":
		return e.undoAddEdge(entry)
	case "change_edge_kind":
		return e.undoChangeEdgeKind(entry)
	case "delete_edge":
		return e.undoDeleteEdge(entry)
	case "fix_broken_reference":
		return e.undoFixBrokenReference(entry)
	default:
		return fmt.Errorf("mutate: no inverse for operation %q", entry.Operation)
	}
}

func (e *Engine) undoRenameNode(entry *graph.MutationEntry) error {
	newID, _ := entry.After["id"].(string)
	oldID, _ := entry.Before["id"].(string)
	n := e.g.FindByID(newID)
	if n == nil {
		return &graph.NotFoundError{ID: newID}
	}
	oldAssertionIDs, _ := entry.Before["assertion_ids"].([]string)
	newAssertionIDs, _ := entry.After["assertion_ids"].([]string)
	e.applyRenameNode(n, newID, oldID, newAssertionIDs, oldAssertionIDs)
	return nil
}

func (e *Engine) undoUpdateTitle(entry *graph.MutationEntry) error {
	n := e.g.FindByID(entry.TargetID)
	if n == nil {
		return &graph.NotFoundError{ID: entry.TargetID}
	}
	title, _ := entry.Before["title"].(string)
	n.Label = title
	return nil
}

func (e *Engine) undoChangeStatus(entry *graph.MutationEntry) error {
	n := e.g.FindByID(entry.TargetID)
	if n == nil {
		return &graph.NotFoundError{ID: entry.TargetID}
	}
	n.Content["status"] = entry.Before["status"]
	return nil
}

func (e *Engine) undoAddRequirement(entry *graph.MutationEntry) error {
	n := e.g.FindByID(entry.TargetID)
	if n == nil {
		return &graph.NotFoundError{ID: entry.TargetID}
	}
	if edge, ok := entry.After["edge"].(*graph.Edge); ok && edge != nil {
		e.g.RemoveEdgeRecord(edge)
		if parentID, _ := entry.After["parent_id"].(string); parentID != "" {
			if parent := e.g.FindByID(parentID); parent != nil {
				e.g.RemoveTreeLink(parent, n)
			}
		}
	}
	e.g.Tombstone(n)
	return nil
}

func (e *Engine) undoDeleteRequirement(entry *graph.MutationEntry) error {
	n, _ := entry.Before["node"].(*graph.Node)
	if n == nil {
		return fmt.Errorf("mutate: malformed delete_requirement entry")
	}
	if err := e.g.Restore(n); err != nil {
		return err
	}
	if assertions, ok := entry.Before["assertions"].([]*graph.Node); ok {
		for _, a := range assertions {
			if err := e.g.Restore(a); err != nil {
				return err
			}
			e.g.AddTreeLink(n, a)
		}
	}
	if parentLinks, ok := entry.Before["parentLinks"].([]treeLink); ok {
		for _, tl := range parentLinks {
			e.g.AddTreeLink(tl.Parent, tl.Child)
		}
	}
	if childLinks, ok := entry.Before["childLinks"].([]treeLink); ok {
		for _, tl := range childLinks {
			e.g.AddTreeLink(tl.Parent, tl.Child)
		}
	}
	if edges, ok := entry.Before["edges"].([]edgeSnapshot); ok {
		for _, es := range edges {
			e.g.AddEdgeRecord(es.Edge)
		}
	}
	return nil
}

func (e *Engine) undoAddAssertion(entry *graph.MutationEntry) error {
	n, _ := entry.After["node"].(*graph.Node)
	if n == nil {
		return fmt.Errorf("mutate: malformed add_assertion entry")
	}
	req := requirementOf(n)
	if req != nil {
		e.g.RemoveTreeLink(req, n)
	}
	e.g.Tombstone(n)
	e.recomputeHash(req)
	return nil
}

func (e *Engine) undoUpdateAssertion(entry *graph.MutationEntry) error {
	n := e.g.FindByID(entry.TargetID)
	if n == nil {
		return &graph.NotFoundError{ID: entry.TargetID}
	}
	n.Content["text"] = entry.Before["text"]
	e.recomputeHash(requirementOf(n))
	return nil
}

func (e *Engine) undoRenameAssertion(entry *graph.MutationEntry) error {
	newID, _ := entry.After["id"].(string)
	oldID, _ := entry.Before["id"].(string)
	oldLabel, _ := entry.Before["label"].(string)
	n := e.g.FindByID(newID)
	if n == nil {
		return &graph.NotFoundError{ID: newID}
	}
	if rewritten, ok := entry.Before["rewritten_edges"].([]*graph.Edge); ok {
		newLabel, _ := entry.After["label"].(string)
		for _, ed := range rewritten {
			replaceLabel(ed.AssertionTargets, newLabel, oldLabel)
		}
	}
	n.ID = oldID
	e.g.Reindex(n, newID)
	n.Content["label"] = oldLabel
	n.Label = oldLabel
	e.recomputeHash(requirementOf(n))
	return nil
}

func (e *Engine) undoDeleteAssertion(entry *graph.MutationEntry) error {
	n, _ := entry.Before["node"].(*graph.Node)
	if n == nil {
		return fmt.Errorf("mutate: malformed delete_assertion entry")
	}
	reqID, _ := entry.Before["req_id"].(string)
	req := e.g.FindByID(reqID)

	if renames, ok := entry.Before["renames"].([]graph.Rename); ok && req != nil {
		e.reverseCompaction(req, renames)
	}
	if err := e.g.Restore(n); err != nil {
		return err
	}
	if req != nil {
		e.g.AddTreeLink(req, n)
	}
	e.recomputeHash(req)
	return nil
}

// reverseCompaction undoes compactAssertions: walks renames in reverse,
// shifting each sibling's label/id back up one slot.
func (e *Engine) reverseCompaction(req *graph.Node, renames []graph.Rename) {
	for i := len(renames) - 1; i >= 0; i-- {
		r := renames[i]
		for _, c := range req.Children() {
			if c.Kind != graph.KindAssertion {
				continue
			}
			curLabel, _ := c.Content["label"].(string)
			if curLabel == r.NewLabel {
				oldID := c.ID
				c.ID = e.pattern.AssertionID(req.ID, r.OldLabel)
				e.g.Reindex(c, oldID)
				c.Content["label"] = r.OldLabel
				c.Label = r.OldLabel
				break
			}
		}
	}
}

func (e *Engine) undoAddEdge(entry *graph.MutationEntry) error {
	if b, ok := entry.After["broken_reference"].(graph.BrokenReference); ok {
		e.g.RemoveBrokenReference(b.SourceID, b.TargetID, b.Kind, b.AssertionLabel)
		return nil
	}
	edge, _ := entry.After["edge"].(*graph.Edge)
	if edge == nil {
		return fmt.Errorf("mutate: malformed add_edge entry")
	}
	e.g.RemoveEdgeRecord(edge)
	if treeLinked, _ := entry.After["tree_linked"].(bool); treeLinked {
		e.g.RemoveTreeLink(edge.Target, edge.Source)
	}
	return nil
}

func (e *Engine) undoChangeEdgeKind(entry *graph.MutationEntry) error {
	src := e.g.FindByID(entry.TargetID)
	if src == nil {
		return &graph.NotFoundError{ID: entry.TargetID}
	}
	oldKind, _ := entry.Before["kind"].(graph.EdgeKind)
	newKind, _ := entry.After["kind"].(graph.EdgeKind)
	var edge *graph.Edge
	for _, ed := range src.Outgoing() {
		if ed.Kind == newKind {
			edge = ed
			break
		}
	}
	if edge == nil {
		return fmt.Errorf("mutate: edge not found for change_edge_kind undo")
	}
	wasTreeLink := graph.IsTreeLinkKind(newKind)
	willTreeLink := graph.IsTreeLinkKind(oldKind)
	if wasTreeLink && !willTreeLink {
		e.g.RemoveTreeLink(edge.Target, edge.Source)
	} else if !wasTreeLink && willTreeLink {
		e.g.AddTreeLink(edge.Target, edge.Source)
	}
	edge.Kind = oldKind
	return nil
}

func (e *Engine) undoDeleteEdge(entry *graph.MutationEntry) error {
	edge, _ := entry.Before["edge"].(*graph.Edge)
	if edge == nil {
		return fmt.Errorf("mutate: malformed delete_edge entry")
	}
	e.g.AddEdgeRecord(edge)
	if removedTreeLink, _ := entry.Before["removed_tree_link"].(bool); removedTreeLink {
		e.g.AddTreeLink(edge.Target, edge.Source)
	}
	return nil
}

func (e *Engine) undoFixBrokenReference(entry *graph.MutationEntry) error {
	src := e.g.FindByID(entry.TargetID)
	if src == nil {
		return &graph.NotFoundError{ID: entry.TargetID}
	}
	if edge, ok := entry.After["edge"].(*graph.Edge); ok && edge != nil {
		e.g.RemoveEdgeRecord(edge)
		if graph.IsTreeLinkKind(edge.Kind) {
			e.g.RemoveTreeLink(edge.Target, edge.Source)
		}
	}
	if stillBroken, ok := entry.After["still_broken"].(*graph.BrokenReference); ok && stillBroken != nil {
		e.g.RemoveBrokenReference(stillBroken.SourceID, stillBroken.TargetID, stillBroken.Kind, stillBroken.AssertionLabel)
	}
	if orig, ok := entry.Before["broken_reference"].(graph.BrokenReference); ok {
		e.g.AddBrokenReference(orig)
	}
	return nil
}
