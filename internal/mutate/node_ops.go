package mutate

import (
	"github.com/kraklabs/elspais/internal/graph"
)

// treeLink captures one removed parent/child relationship so undo can
// restore it without re-deriving it from anywhere else.
type treeLink struct {
	Parent *graph.Node
	Child  *graph.Node
}

// edgeSnapshot captures one removed edge; the edge itself records both
// endpoints.
type edgeSnapshot struct {
	Edge *graph.Edge
}

// RenameNode implements rename_node(old_id, new_id): reindexes the node
// and cascades the rename to every child assertion's composed ID.
func (e *Engine) RenameNode(oldID, newID string) (*graph.MutationEntry, error) {
	n := e.g.FindByID(oldID)
	if n == nil {
		return nil, &graph.NotFoundError{ID: oldID}
	}
	if e.g.FindByID(newID) != nil {
		return nil, &graph.DuplicateIDError{ID: newID}
	}

	assertionOldIDs, assertionNewIDs := e.renameAssertionIDsFor(n, oldID, newID)

	before := map[string]any{"id": oldID, "assertion_ids": assertionOldIDs}
	e.applyRenameNode(n, oldID, newID, assertionOldIDs, assertionNewIDs)
	after := map[string]any{"id": newID, "assertion_ids": assertionNewIDs}

	entry := e.g.Log.Append("rename_node", oldID, before, after, false)
	return entry, nil
}

func (e *Engine) renameAssertionIDsFor(n *graph.Node, oldReqID, newReqID string) (oldIDs, newIDs []string) {
	for _, c := range n.Children() {
		if c.Kind != graph.KindAssertion {
			continue
		}
		label, _ := c.Content["label"].(string)
		oldIDs = append(oldIDs, c.ID)
		newIDs = append(newIDs, e.pattern.AssertionID(newReqID, label))
	}
	return
}

func (e *Engine) applyRenameNode(n *graph.Node, oldID, newID string, assertionOldIDs, assertionNewIDs []string) {
	n.ID = newID
	e.g.Reindex(n, oldID)
	for _, c := range n.Children() {
		if c.Kind != graph.KindAssertion {
			continue
		}
		for j, old := range assertionOldIDs {
			if c.ID == old {
				c.ID = assertionNewIDs[j]
				e.g.Reindex(c, old)
				break
			}
		}
	}
}

// UpdateTitle implements update_title(id, title).
func (e *Engine) UpdateTitle(id, title string) (*graph.MutationEntry, error) {
	n := e.g.FindByID(id)
	if n == nil {
		return nil, &graph.NotFoundError{ID: id}
	}
	before := map[string]any{"title": n.Label}
	n.Label = title
	after := map[string]any{"title": title}
	return e.g.Log.Append("update_title", id, before, after, false), nil
}

// ChangeStatus implements change_status(id, status).
func (e *Engine) ChangeStatus(id, status string) (*graph.MutationEntry, error) {
	n := e.g.FindByID(id)
	if n == nil {
		return nil, &graph.NotFoundError{ID: id}
	}
	before := map[string]any{"status": n.Content["status"]}
	n.Content["status"] = status
	after := map[string]any{"status": status}
	return e.g.Log.Append("change_status", id, before, after, false), nil
}

// AddRequirementParams carries add_requirement's optional arguments.
type AddRequirementParams struct {
	Level      string
	Status     string // defaults to "draft" when empty
	ParentID   string // empty means no parent (becomes a root)
	EdgeKind   graph.EdgeKind // defaults to EdgeImplements when ParentID is set
}

// AddRequirement implements add_requirement(id, title, level, status?,
// parent_id?, edge_kind?).
func (e *Engine) AddRequirement(id, title string, params AddRequirementParams) (*graph.MutationEntry, error) {
	if e.g.FindByID(id) != nil {
		return nil, &graph.DuplicateIDError{ID: id}
	}
	var parent *graph.Node
	if params.ParentID != "" {
		parent = e.g.FindByID(params.ParentID)
		if parent == nil {
			return nil, &graph.NotFoundError{ID: params.ParentID}
		}
	}
	status := params.Status
	if status == "" {
		status = "draft"
	}
	edgeKind := params.EdgeKind
	if edgeKind == "" {
		edgeKind = graph.EdgeImplements
	}

	n := graph.NewNode(id, graph.KindRequirement, title)
	n.Content["level"] = params.Level
	n.Content["status"] = status
	n.Content["body_text"] = ""
	n.Content["hash"] = graph.ComputeHash(n, string(e.hashMode))

	if err := e.g.AddNode(n); err != nil {
		return nil, err
	}

	var edge *graph.Edge
	if parent != nil {
		edge = &graph.Edge{Source: n, Target: parent, Kind: edgeKind}
		e.g.AddEdgeRecord(edge)
		e.g.AddTreeLink(parent, n)
	}

	after := map[string]any{"node": n, "parent_id": params.ParentID, "edge": edge}
	entry := e.g.Log.Append("add_requirement", id, nil, after, true)
	return entry, nil
}

// DeleteRequirement implements delete_requirement(id): tombstones the
// node, cascade-deletes its assertions, removes its tree links (a
// non-assertion child left with no parent becomes a root if it is a
// requirement and an orphan otherwise) and edges, and
// captures a full snapshot so undo restores everything.
func (e *Engine) DeleteRequirement(id string) (*graph.MutationEntry, error) {
	n := e.g.FindByID(id)
	if n == nil {
		return nil, &graph.NotFoundError{ID: id}
	}

	var parentLinks, childLinks []treeLink
	for _, p := range append([]*graph.Node(nil), n.Parents()...) {
		parentLinks = append(parentLinks, treeLink{Parent: p, Child: n})
		e.g.RemoveTreeLink(p, n)
	}
	var assertions []*graph.Node
	for _, c := range append([]*graph.Node(nil), n.Children()...) {
		if c.Kind == graph.KindAssertion {
			e.g.RemoveTreeLink(n, c)
			e.g.Tombstone(c)
			assertions = append(assertions, c)
			continue
		}
		childLinks = append(childLinks, treeLink{Parent: n, Child: c})
		e.g.RemoveTreeLink(n, c)
	}

	var edges []edgeSnapshot
	for _, edge := range append([]*graph.Edge(nil), n.Outgoing()...) {
		edges = append(edges, edgeSnapshot{Edge: edge})
		e.g.RemoveEdgeRecord(edge)
	}
	for _, edge := range append([]*graph.Edge(nil), n.Incoming()...) {
		edges = append(edges, edgeSnapshot{Edge: edge})
		e.g.RemoveEdgeRecord(edge)
	}

	e.g.Tombstone(n)

	before := map[string]any{
		"node":        n,
		"parentLinks": parentLinks,
		"childLinks":  childLinks,
		"assertions":  assertions,
		"edges":       edges,
	}
	entry := e.g.Log.Append("delete_requirement", id, before, nil, false)
	return entry, nil
}
