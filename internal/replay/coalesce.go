package replay

import (
	"fmt"

	"github.com/kraklabs/elspais/internal/graph"
)

// reqOps is the net set of text-level edits a requirement's file block
// needs, folded from every mutation-log entry that targets it. Folding to
// a flag set rather than replaying each historical delta implements
// spec.md §4.7 step 2's coalescing rules (cancel, accumulate, reclassify)
// implicitly: the graph's current live state already IS that fold, so
// emission always writes final values instead of reconstructing them
// from a patch sequence.
type reqOps struct {
	title           bool
	status          bool
	edgeTouched     bool
	assertionLabels map[string]bool
	addAssertions   map[string]bool
	hashSync        bool
}

func newReqOps() reqOps {
	return reqOps{assertionLabels: map[string]bool{}, addAssertions: map[string]bool{}}
}

// requirementOfNode walks up from an assertion node to its owning
// requirement, mirroring internal/mutate/engine.go's requirementOf (kept
// as a separate copy since mutate's is unexported to its own package).
func requirementOfNode(n *graph.Node) *graph.Node {
	for _, p := range n.Parents() {
		if p.Kind == graph.KindRequirement {
			return p
		}
	}
	return nil
}

// collectReqOps groups the mutation log's entries by the requirement
// whose spec-file block they touch, per spec.md §4.7 step 2. Operations
// with no corresponding text-level primitive (rename_node, add_requirement,
// delete_requirement, rename_assertion, delete_assertion — none of which
// the seven primitives of step 3 cover) are reported back as skipped
// rather than applied; see DESIGN.md's C7 entry for why these five are
// out of scope.
func collectReqOps(g *graph.Graph, entries []*graph.MutationEntry) (map[string]reqOps, []string) {
	out := map[string]reqOps{}
	var skipped []string

	get := func(id string) reqOps {
		o, ok := out[id]
		if !ok {
			o = newReqOps()
		}
		return o
	}

	for _, e := range entries {
		switch e.Operation {
		case "update_title":
			o := get(e.TargetID)
			o.title = true
			out[e.TargetID] = o

		case "change_status":
			o := get(e.TargetID)
			o.status = true
			out[e.TargetID] = o

		case "add_edge", "delete_edge", "change_edge_kind", "fix_broken_reference":
			// TargetID on an edge-mutation entry names the edge's source
			// node, i.e. the requirement whose Implements/Refines field
			// changed, not the edge's destination.
			o := get(e.TargetID)
			o.edgeTouched = true
			out[e.TargetID] = o

		case "add_assertion":
			n, _ := e.After["node"].(*graph.Node)
			if n == nil {
				continue
			}
			req := requirementOfNode(n)
			if req == nil {
				continue
			}
			o := get(req.ID)
			if !n.IsTombstoned() {
				label, _ := n.Content["label"].(string)
				o.addAssertions[label] = true
				o.hashSync = true
			}
			out[req.ID] = o

		case "update_assertion":
			n := g.FindByID(e.TargetID)
			if n == nil {
				// The assertion was later deleted (unsupported for
				// replay); its file text is left as-is.
				continue
			}
			req := requirementOfNode(n)
			if req == nil {
				continue
			}
			label, _ := n.Content["label"].(string)
			o := get(req.ID)
			o.assertionLabels[label] = true
			o.hashSync = true
			out[req.ID] = o

		default:
			skipped = append(skipped, fmt.Sprintf("%s %s: no text-level replay primitive for this operation", e.Operation, e.TargetID))
		}
	}
	return out, skipped
}
