// Package graph implements the typed, indexed, mutation-aware DAG over
// requirements, assertions, code references, tests, journeys, and file
// regions described in spec.md §3-§4.3 (components C3/part of C5).
package graph

import (
	"sort"
)

// Graph is the traceability graph: a primary id index, a secondary
// per-kind index, parent/child tree links owned by the nodes themselves,
// a tombstone set for deleted nodes, an append-only mutation log, and the
// derived classification (_roots/_orphaned_ids/_broken_references).
type Graph struct {
	byID       map[string]*Node
	byKind     map[Kind][]*Node
	tombstones map[string]*Node

	broken []BrokenReference

	Log *MutationLog

	Validation ValidationReport

	// BuildTimestamp is set by the builder when assembly completes, and
	// advanced by the replayer on a successful save (spec.md §4.7 step 1).
	BuildTimestamp int64
}

// New returns an empty graph ready for the builder to populate.
func New() *Graph {
	return &Graph{
		byID:       make(map[string]*Node),
		byKind:     make(map[Kind][]*Node),
		tombstones: make(map[string]*Node),
		Log:        NewMutationLog(),
	}
}

// FindByID returns the live node with the given id, or nil if absent
// (including if it is tombstoned).
func (g *Graph) FindByID(id string) *Node {
	return g.byID[id]
}

// Has reports whether id names a live node.
func (g *Graph) Has(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// HasRoot reports whether id names a live node that is currently
// classified as a root.
func (g *Graph) HasRoot(id string) bool {
	n := g.byID[id]
	if n == nil {
		return false
	}
	for _, r := range g.iterRootsUnsorted() {
		if r == n {
			return true
		}
	}
	return false
}

// NodesByKind returns all live nodes of the given kind, in insertion order.
func (g *Graph) NodesByKind(kind Kind) []*Node {
	return append([]*Node(nil), g.byKind[kind]...)
}

// NodeCount returns the number of live (non-tombstoned) nodes.
func (g *Graph) NodeCount() int {
	return len(g.byID)
}

// CountByKind returns the number of live nodes per kind.
func (g *Graph) CountByKind() map[Kind]int {
	out := make(map[Kind]int)
	for k, nodes := range g.byKind {
		out[k] = len(nodes)
	}
	return out
}

// HasDeletions reports whether any node has been tombstoned.
func (g *Graph) HasDeletions() bool { return len(g.tombstones) > 0 }

// DeletedNodes returns all tombstoned nodes. They are not addressable via
// FindByID or NodesByKind (spec.md §9 "Tombstone policy").
func (g *Graph) DeletedNodes() []*Node {
	out := make([]*Node, 0, len(g.tombstones))
	for _, n := range g.tombstones {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// BrokenReferences returns every recorded broken reference.
func (g *Graph) BrokenReferences() []BrokenReference {
	return append([]BrokenReference(nil), g.broken...)
}

// ---- node lifecycle -------------------------------------------------

// AddNode inserts a new live node into both indexes. Returns
// DuplicateIDError if the id already exists (live or tombstoned),
// per invariant I1.
func (g *Graph) AddNode(n *Node) error {
	if _, exists := g.byID[n.ID]; exists {
		return &DuplicateIDError{ID: n.ID}
	}
	if _, exists := g.tombstones[n.ID]; exists {
		return &DuplicateIDError{ID: n.ID}
	}
	g.byID[n.ID] = n
	g.byKind[n.Kind] = append(g.byKind[n.Kind], n)
	return nil
}

// removeFromIndexes deletes n from the id/kind indexes without
// tombstoning it, for internal bookkeeping (e.g. rename).
func (g *Graph) removeFromIndexes(n *Node) {
	delete(g.byID, n.ID)
	list := g.byKind[n.Kind]
	for i, c := range list {
		if c == n {
			g.byKind[n.Kind] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

// Tombstone removes n from the live index and records it as deleted,
// preserving identity for undo and informational diffing.
func (g *Graph) Tombstone(n *Node) {
	g.removeFromIndexes(n)
	n.tombstoned = true
	g.tombstones[n.ID] = n
}

// Restore reverses Tombstone: moves n back from the tombstone set into
// the live index under its current ID.
func (g *Graph) Restore(n *Node) error {
	if _, exists := g.byID[n.ID]; exists {
		return &DuplicateIDError{ID: n.ID}
	}
	delete(g.tombstones, n.ID)
	n.tombstoned = false
	g.byID[n.ID] = n
	g.byKind[n.Kind] = append(g.byKind[n.Kind], n)
	return nil
}

// Reindex updates the id index when a node's ID changes in place
// (rename_node / rename_assertion).
func (g *Graph) Reindex(n *Node, oldID string) {
	delete(g.byID, oldID)
	g.byID[n.ID] = n
}

// ---- tree links -------------------------------------------------------

// AddTreeLink adds child as a tree child of parent, after the caller has
// verified acyclicity (mutation engine / builder responsibility, per
// invariant I4 and spec.md §9 open question (b)).
func (g *Graph) AddTreeLink(parent, child *Node) {
	parent.addChild(child)
	child.addParent(parent)
}

// RemoveTreeLink removes the parent/child tree link in both directions.
func (g *Graph) RemoveTreeLink(parent, child *Node) {
	parent.removeChild(child)
	child.removeParent(parent)
}

// WouldCreateCycle reports whether adding a tree link parent -> child
// would introduce a cycle, i.e. whether parent is reachable from child
// via existing tree children.
func (g *Graph) WouldCreateCycle(parent, child *Node) bool {
	if parent == child {
		return true
	}
	visited := make(map[*Node]bool)
	var stack []*Node
	stack = append(stack, child.children...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == parent {
			return true
		}
		if visited[n] {
			continue
		}
		visited[n] = true
		stack = append(stack, n.children...)
	}
	return false
}

// ---- edges -------------------------------------------------------

// AddEdgeRecord appends edge to both endpoints' edge lists.
func (g *Graph) AddEdgeRecord(e *Edge) {
	e.Source.outgoing = append(e.Source.outgoing, e)
	e.Target.incoming = append(e.Target.incoming, e)
}

// RemoveEdgeRecord removes edge from both endpoints' edge lists.
func (g *Graph) RemoveEdgeRecord(e *Edge) {
	e.Source.outgoing = removeEdge(e.Source.outgoing, e)
	e.Target.incoming = removeEdge(e.Target.incoming, e)
}

func removeEdge(list []*Edge, target *Edge) []*Edge {
	for i, e := range list {
		if e == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// FindEdge returns the edge of the given kind from src to tgt, or nil.
func (g *Graph) FindEdge(src, tgt *Node, kind EdgeKind) *Edge {
	for _, e := range src.outgoing {
		if e.Target == tgt && e.Kind == kind {
			return e
		}
	}
	return nil
}

// AddBrokenReference records a broken reference.
func (g *Graph) AddBrokenReference(b BrokenReference) {
	g.broken = append(g.broken, b)
	g.Validation.AddBrokenReference(b)
}

// RemoveBrokenReference removes the first broken reference matching
// source/target/kind/label, returning whether one was found.
func (g *Graph) RemoveBrokenReference(sourceID, targetID string, kind EdgeKind, label string) bool {
	for i, b := range g.broken {
		if b.SourceID == sourceID && b.TargetID == targetID && b.Kind == kind && b.AssertionLabel == label {
			g.broken = append(g.broken[:i], g.broken[i+1:]...)
			return true
		}
	}
	return false
}

// ---- roots / orphans -------------------------------------------------

// iterRootsUnsorted computes root classification per invariant I5: a
// node is a root iff it has zero tree parents, and either its kind is a
// schema root kind, or it is a REQUIREMENT (the top of its own
// implements/refines/addresses chain, which zero tree parents already
// establishes).
func (g *Graph) iterRootsUnsorted() []*Node {
	var roots []*Node
	for _, n := range g.byID {
		if len(n.parents) != 0 {
			continue
		}
		if IsSchemaRoot(n.Kind) || n.Kind == KindRequirement {
			roots = append(roots, n)
		}
	}
	return roots
}

// IterRoots returns every root node, ordered by ID for determinism.
func (g *Graph) IterRoots() []*Node {
	roots := g.iterRootsUnsorted()
	sort.Slice(roots, func(i, j int) bool { return roots[i].ID < roots[j].ID })
	return roots
}

// OrphanedIDs returns the IDs of non-root nodes with zero tree parents
// (invariant I5), ordered by ID for determinism.
func (g *Graph) OrphanedIDs() []string {
	var out []string
	for _, n := range g.byID {
		if len(n.parents) != 0 {
			continue
		}
		if IsSchemaRoot(n.Kind) || n.Kind == KindRequirement {
			continue
		}
		out = append(out, n.ID)
	}
	sort.Strings(out)
	return out
}

// IterChildren returns n's tree children, in insertion order.
func (g *Graph) IterChildren(n *Node) []*Node { return n.Children() }

// IterParents returns n's tree parents, in insertion order.
func (g *Graph) IterParents(n *Node) []*Node { return n.Parents() }

// IterOutgoingEdges returns n's outgoing edges, in insertion order.
func (g *Graph) IterOutgoingEdges(n *Node) []*Edge { return n.Outgoing() }

// IterIncomingEdges returns n's incoming edges, in insertion order.
func (g *Graph) IterIncomingEdges(n *Node) []*Edge { return n.Incoming() }
