package search

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/kraklabs/elspais/internal/graph"
)

// Confidence bands, matching the original link-suggest engine's
// high/medium/low thresholds.
const (
	ConfidenceHigh   = 0.8
	ConfidenceMedium = 0.5

	scoreFuncNameExact   = 0.85
	scoreFileProximity   = 0.6
	scoreKeywordOverlap  = 0.5
)

// LinkSuggestion proposes that testID be linked (VALIDATES) to
// requirementID, with a confidence score and the reasons that produced it.
type LinkSuggestion struct {
	TestID          string
	TestLabel       string
	TestFile        string
	RequirementID   string
	RequirementTitle string
	Confidence      float64
	Reasons         []string
}

// ConfidenceBand classifies a suggestion's confidence into high/medium/low.
func (s LinkSuggestion) ConfidenceBand() string {
	switch {
	case s.Confidence >= ConfidenceHigh:
		return "high"
	case s.Confidence >= ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

// SuggestLinks scans every TEST node with no VALIDATES edge to a
// requirement or assertion, and proposes candidate requirements using
// function-name matching, file-path proximity, and keyword overlap
// (reusing ScoreNode's field weights for the keyword heuristic), in the
// spirit of the original engine's import-chain/name/proximity/keyword
// heuristic stack (see DESIGN.md for why the import-chain heuristic
// itself is not reproduced here). Results are deduplicated by
// (test, requirement) pair and sorted by descending confidence,
// truncated to limit.
func SuggestLinks(g *graph.Graph, limit int) []LinkSuggestion {
	if limit <= 0 {
		limit = 50
	}
	unlinked := unlinkedTests(g)
	if len(unlinked) == 0 {
		return nil
	}

	requirements := g.NodesByKind(graph.KindRequirement)
	byTestReq := make(map[string]*LinkSuggestion)

	consider := func(test, req *graph.Node, score float64, reason string) {
		if req == nil || score <= 0 {
			return
		}
		key := test.ID + "->" + req.ID
		if existing, ok := byTestReq[key]; ok {
			if score > existing.Confidence {
				existing.Confidence = score
			}
			existing.Reasons = append(existing.Reasons, reason)
			return
		}
		byTestReq[key] = &LinkSuggestion{
			TestID: test.ID, TestLabel: test.Label, TestFile: test.Location.Path,
			RequirementID: req.ID, RequirementTitle: req.Label,
			Confidence: score, Reasons: []string{reason},
		}
	}

	for _, t := range unlinked {
		for _, r := range requirements {
			if fn, req, ok := functionNameMatch(g, t, r); ok {
				consider(t, req, scoreFuncNameExact, "function name \""+fn+"\" matches requirement title")
			}
			if proximityMatch(t, r) {
				consider(t, r, scoreFileProximity, "test file is adjacent to a file implementing this requirement")
			}
			if kw := keywordOverlapScore(t, r); kw > 0 {
				consider(t, r, kw, "test name/body shares keywords with the requirement")
			}
		}
	}

	out := make([]LinkSuggestion, 0, len(byTestReq))
	for _, s := range byTestReq {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// unlinkedTests returns every TEST node with no outgoing VALIDATES edge.
func unlinkedTests(g *graph.Graph) []*graph.Node {
	var out []*graph.Node
	for _, t := range g.NodesByKind(graph.KindTest) {
		linked := false
		for _, e := range t.Outgoing() {
			if e.Kind == graph.EdgeValidates {
				linked = true
				break
			}
		}
		if !linked {
			out = append(out, t)
		}
	}
	return out
}

// functionNameMatch reports whether t's test name contains the function
// name of a CODE node that implements r, e.g. test_encrypt_at_rest naming
// a function encrypt_at_rest implementing r. r's title is not consulted.
func functionNameMatch(g *graph.Graph, t, r *graph.Node) (string, *graph.Node, bool) {
	lowerTestName := strings.ToLower(t.Label)
	for _, c := range g.NodesByKind(graph.KindCode) {
		fn, _ := c.Content["function_name"].(string)
		if fn == "" {
			continue
		}
		if !strings.Contains(lowerTestName, strings.ToLower(fn)) {
			continue
		}
		for _, e := range c.Outgoing() {
			if e.Kind == graph.EdgeImplements && e.Target == r {
				return fn, r, true
			}
		}
	}
	return "", nil, false
}

// proximityMatch reports whether t's source file sits in the same
// directory as a CODE node implementing r.
func proximityMatch(t, r *graph.Node) bool {
	if !t.Location.HasLocation() {
		return false
	}
	testDir := filepath.Dir(t.Location.Path)
	for _, e := range r.Incoming() {
		if e.Kind != graph.EdgeImplements || e.Source == nil {
			continue
		}
		if e.Source.Kind == graph.KindCode && e.Source.Location.HasLocation() {
			if filepath.Dir(e.Source.Location.Path) == testDir {
				return true
			}
		}
	}
	return false
}

// keywordOverlapScore reuses the scorer's keyword weights: the
// requirement's keyword list scored against the test's own name as a
// single-term query, capped at scoreKeywordOverlap.
func keywordOverlapScore(t, r *graph.Node) float64 {
	kws := keywords(r)
	if len(kws) == 0 {
		return 0
	}
	query := ParsedQuery{AndGroups: [][]SearchTerm{{{Text: strings.ToLower(t.Label)}}}}
	raw := termFieldScore(r, query.AndGroups[0][0], FieldKeywords)
	if raw <= 0 {
		return 0
	}
	score := raw / weightKeywordExact * scoreKeywordOverlap
	if score > scoreKeywordOverlap {
		score = scoreKeywordOverlap
	}
	return score
}
