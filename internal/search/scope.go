package search

import (
	"regexp"
	"sort"

	"github.com/kraklabs/elspais/internal/graph"
)

// Direction selects which tree projection collectScopeIDs walks.
type Direction string

const (
	DirectionDescendants Direction = "descendants"
	DirectionAncestors   Direction = "ancestors"
)

// collectScopeIDs runs a BFS from scopeID in the tree-child direction
// (descendants) or tree-parent direction (ancestors), deduplicating via a
// visited set, and always including scopeID itself. Returns nil if
// scopeID is not present in g (spec.md §4.6.3 step 1).
func collectScopeIDs(g *graph.Graph, scopeID string, direction Direction) map[string]bool {
	start := g.FindByID(scopeID)
	if start == nil {
		return nil
	}
	visited := map[string]bool{scopeID: true}
	queue := []*graph.Node{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		var next []*graph.Node
		if direction == DirectionAncestors {
			next = g.IterParents(cur)
		} else {
			next = g.IterChildren(cur)
		}
		for _, nb := range next {
			if !visited[nb.ID] {
				visited[nb.ID] = true
				queue = append(queue, nb)
			}
		}
	}
	return visited
}

// MatchedAssertion is one assertion that matched a scoped search's query,
// surfaced on its parent requirement's summary.
type MatchedAssertion struct {
	ID   string
	Text string
}

// Summary is one scored result entry: spec.md §4.6.3 step 4's
// (id, title, level, status, score) tuple, plus the optional assertion
// promotions from step 3.
type Summary struct {
	ID                string
	Title             string
	Level             string
	Status            string
	Score             float64
	MatchedAssertions []MatchedAssertion
}

// ScopedSearchParams bundles scoped_search's parameters (spec.md §4.6.3).
type ScopedSearchParams struct {
	Query             string
	ScopeID           string
	Direction         Direction
	Field             Field
	Regex             bool
	IncludeAssertions bool
	Limit             int
}

// ScopedSearch implements scoped_search: BFS-restrict to scope, score
// REQUIREMENT nodes in scope, optionally promote a requirement whose
// ASSERTION child matches, then return results sorted by descending
// score and truncated to Limit. ok is false when scopeID does not exist.
func ScopedSearch(g *graph.Graph, p ScopedSearchParams) (results []Summary, ok bool) {
	direction := p.Direction
	if direction == "" {
		direction = DirectionDescendants
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}

	scope := collectScopeIDs(g, p.ScopeID, direction)
	if scope == nil {
		return nil, false
	}

	var pattern *regexp.Regexp
	var query ParsedQuery
	if p.Regex {
		pattern = regexp.MustCompile(p.Query)
	} else {
		query = ParseQuery(p.Query)
	}

	var out []Summary
	for id := range scope {
		n := g.FindByID(id)
		if n == nil || n.Kind != graph.KindRequirement {
			continue
		}
		matched, score := matchOrScore(n, pattern, query, p.Field, p.Regex)

		var matchedAssertions []MatchedAssertion
		if p.IncludeAssertions {
			for _, c := range n.Children() {
				if c.Kind != graph.KindAssertion {
					continue
				}
				am, _ := matchOrScore(c, pattern, query, p.Field, p.Regex)
				if am {
					text, _ := c.Content["text"].(string)
					matchedAssertions = append(matchedAssertions, MatchedAssertion{ID: c.ID, Text: text})
				}
			}
			if len(matchedAssertions) > 0 {
				matched = true
			}
		}

		if !matched {
			continue
		}
		level, _ := n.Content["level"].(string)
		status, _ := n.Content["status"].(string)
		out = append(out, Summary{
			ID: n.ID, Title: n.Label, Level: level, Status: status,
			Score: score, MatchedAssertions: matchedAssertions,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, true
}

func matchOrScore(n *graph.Node, pattern *regexp.Regexp, query ParsedQuery, field Field, regex bool) (bool, float64) {
	if regex {
		if MatchesRegex(n, pattern, field) {
			return true, 0
		}
		return false, 0
	}
	score := ScoreNode(n, query, field)
	return score > 0, score
}
