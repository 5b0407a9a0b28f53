package graph

// WalkOrder selects the traversal order of Walk.
type WalkOrder int

const (
	// PreOrder visits a node, then each child's pre-order traversal.
	PreOrder WalkOrder = iota
	// PostOrder visits each child's post-order traversal, then the node.
	PostOrder
	// LevelOrder visits nodes breadth-first by depth from the roots.
	LevelOrder
)

// Walk visits every node reachable in the tree from roots, deduplicated
// via a visited set so that a node reached through multiple parents (the
// graph is a DAG, not a tree — spec.md §9) is yielded exactly once.
func (g *Graph) Walk(order WalkOrder) []*Node {
	roots := g.IterRoots()
	visited := make(map[*Node]bool)
	var out []*Node

	switch order {
	case PreOrder:
		for _, r := range roots {
			walkPre(r, visited, &out)
		}
	case PostOrder:
		for _, r := range roots {
			walkPost(r, visited, &out)
		}
	case LevelOrder:
		walkLevel(roots, visited, &out)
	}
	return out
}

// WalkFrom behaves like Walk but starts from a single node rather than
// from the graph's roots, used by subtree/scope operations (C6).
func (g *Graph) WalkFrom(start *Node, order WalkOrder) []*Node {
	visited := make(map[*Node]bool)
	var out []*Node
	switch order {
	case PreOrder:
		walkPre(start, visited, &out)
	case PostOrder:
		walkPost(start, visited, &out)
	case LevelOrder:
		walkLevel([]*Node{start}, visited, &out)
	}
	return out
}

func walkPre(n *Node, visited map[*Node]bool, out *[]*Node) {
	if visited[n] {
		return
	}
	visited[n] = true
	*out = append(*out, n)
	for _, c := range n.children {
		walkPre(c, visited, out)
	}
}

func walkPost(n *Node, visited map[*Node]bool, out *[]*Node) {
	if visited[n] {
		return
	}
	visited[n] = true
	for _, c := range n.children {
		walkPost(c, visited, out)
	}
	*out = append(*out, n)
}

func walkLevel(start []*Node, visited map[*Node]bool, out *[]*Node) {
	queue := append([]*Node(nil), start...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if visited[n] {
			continue
		}
		visited[n] = true
		*out = append(*out, n)
		queue = append(queue, n.children...)
	}
}

// Ancestors returns every ancestor of n exactly once, nearest first, by
// BFS over tree parents.
func (g *Graph) Ancestors(n *Node) []*Node {
	visited := make(map[*Node]bool)
	var out []*Node
	queue := append([]*Node(nil), n.parents...)
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if visited[p] {
			continue
		}
		visited[p] = true
		out = append(out, p)
		queue = append(queue, p.parents...)
	}
	return out
}

// Descendants returns every descendant of n exactly once, by BFS over
// tree children.
func (g *Graph) Descendants(n *Node) []*Node {
	visited := make(map[*Node]bool)
	var out []*Node
	queue := append([]*Node(nil), n.children...)
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if visited[c] {
			continue
		}
		visited[c] = true
		out = append(out, c)
		queue = append(queue, c.children...)
	}
	return out
}

// IsAncestorOf reports whether a is an ancestor of d in the tree
// projection (used by discover_requirements' minimal-set reduction).
func (g *Graph) IsAncestorOf(a, d *Node) bool {
	for _, anc := range g.Ancestors(d) {
		if anc == a {
			return true
		}
	}
	return false
}

// Accumulate performs a post-order fold over the tree reachable from
// roots: leaves get leafFn(node); internal nodes get
// combine(node, childValues). Used by metrics rollups (coverage %,
// assertion counts, test pass-rates per spec.md §4.3 "Traversal
// semantics").
func Accumulate[T any](g *Graph, leafFn func(*Node) T, combine func(*Node, []T) T) map[*Node]T {
	results := make(map[*Node]T)
	visited := make(map[*Node]bool)

	var visit func(n *Node) T
	visit = func(n *Node) T {
		if v, ok := results[n]; ok {
			return v
		}
		if visited[n] {
			// Defensive: a cycle should never reach here given invariant
			// I4, but avoid infinite recursion if it somehow does.
			var zero T
			return zero
		}
		visited[n] = true

		if len(n.children) == 0 {
			v := leafFn(n)
			results[n] = v
			return v
		}
		childValues := make([]T, 0, len(n.children))
		for _, c := range n.children {
			childValues = append(childValues, visit(c))
		}
		v := combine(n, childValues)
		results[n] = v
		return v
	}

	for _, r := range g.IterRoots() {
		visit(r)
	}
	// Also fold nodes unreachable from roots (e.g. orphans), so callers
	// get a value for every live node.
	for _, n := range g.byID {
		if _, ok := results[n]; !ok {
			visit(n)
		}
	}
	return results
}
