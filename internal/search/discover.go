package search

import (
	"sort"

	"github.com/kraklabs/elspais/internal/graph"
)

// PrunedEntry is a result the minimal-set reduction removed because a more
// specific descendant also matched (spec.md §4.6.4 step 2).
type PrunedEntry struct {
	Summary
	SupersededBy []string
}

// DiscoverResult is discover_requirements's full return shape.
type DiscoverResult struct {
	Results   []Summary
	Pruned    []PrunedEntry
	ScopeID   string
	Direction Direction
	Stats     DiscoverStats
}

// DiscoverStats reports the before/after sizes of the minimal-set pass.
type DiscoverStats struct {
	CandidateCount int
	MinimalCount   int
	PrunedCount    int
}

// DiscoverRequirements runs ScopedSearch, then minimizes the result set:
// for every pair (ancestor A, descendant D) both present in the results,
// A is pruned and records every such D in SupersededBy (spec.md §4.6.4).
func DiscoverRequirements(g *graph.Graph, p ScopedSearchParams) (DiscoverResult, bool) {
	candidates, ok := ScopedSearch(g, p)
	if !ok {
		return DiscoverResult{}, false
	}

	direction := p.Direction
	if direction == "" {
		direction = DirectionDescendants
	}

	byID := make(map[string]Summary, len(candidates))
	ids := make([]string, 0, len(candidates))
	for _, s := range candidates {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}

	supersededBy := make(map[string][]string)
	for _, a := range ids {
		for _, d := range ids {
			if a == d {
				continue
			}
			if isAncestor(g, a, d) {
				supersededBy[a] = append(supersededBy[a], d)
			}
		}
	}

	var results []Summary
	var pruned []PrunedEntry
	for _, s := range candidates {
		if subs, isPruned := supersededBy[s.ID]; isPruned {
			sort.Strings(subs)
			pruned = append(pruned, PrunedEntry{Summary: s, SupersededBy: subs})
			continue
		}
		results = append(results, s)
	}

	return DiscoverResult{
		Results:   results,
		Pruned:    pruned,
		ScopeID:   p.ScopeID,
		Direction: direction,
		Stats: DiscoverStats{
			CandidateCount: len(candidates),
			MinimalCount:   len(results),
			PrunedCount:    len(pruned),
		},
	}, true
}

// isAncestor reports whether descendantID is reachable from ancestorID by
// following tree children, i.e. ancestorID's descendant-scope set contains
// descendantID.
func isAncestor(g *graph.Graph, ancestorID, descendantID string) bool {
	scope := collectScopeIDs(g, ancestorID, DirectionDescendants)
	if scope == nil {
		return false
	}
	return ancestorID != descendantID && scope[descendantID]
}
