// Package mutate implements the graph mutation engine of spec.md §4.5
// (component C5): every operation enforces preconditions, applies its
// change, updates derived indexes, and appends a reversible
// graph.MutationEntry so undo_last/undo_to can invert it exactly,
// grounded on the apply/undo pairing in
// _examples/original_source/tests/core/test_*_mutations.py and on the
// teacher's precondition-then-apply-then-record function shape in
// pkg/ingestion/resolver.go and delta.go.
package mutate

import (
	"log/slog"

	"github.com/kraklabs/elspais/internal/graph"
	"github.com/kraklabs/elspais/internal/idconfig"
)

// Engine applies mutating operations to a single graph.Graph.
type Engine struct {
	g       *graph.Graph
	pattern *idconfig.PatternConfig
	hashMode idconfig.HashMode
	log     *slog.Logger
}

// New returns an Engine bound to g, using pattern for assertion ID
// composition and hashMode for post-mutation hash recomputation.
func New(g *graph.Graph, pattern *idconfig.PatternConfig, hashMode idconfig.HashMode, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{g: g, pattern: pattern, hashMode: hashMode, log: log}
}

// Graph returns the underlying graph.
func (e *Engine) Graph() *graph.Graph { return e.g }

func (e *Engine) recomputeHash(req *graph.Node) {
	if req == nil || req.Kind != graph.KindRequirement {
		return
	}
	req.Content["hash"] = graph.ComputeHash(req, string(e.hashMode))
}

// requirementOf walks up from an assertion to its owning requirement,
// used to recompute the parent hash after an assertion-level mutation.
func requirementOf(n *graph.Node) *graph.Node {
	for _, p := range n.Parents() {
		if p.Kind == graph.KindRequirement {
			return p
		}
	}
	return nil
}
