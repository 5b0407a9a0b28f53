package search

import (
	"regexp"
	"strings"

	"github.com/kraklabs/elspais/internal/graph"
)

// Field weights, spec.md §4.6.2: ID beats title beats keyword (exact beats
// substring) beats body.
const (
	weightID               = 100.0
	weightTitle            = 50.0
	weightKeywordExact     = 40.0
	weightKeywordSubstring = 25.0
	weightBody             = 10.0

	// phraseMatchScore is the score a phrase-only query contributes once
	// its phrase is found; matches_node only needs it to be positive.
	phraseMatchScore = 1.0
)

// Field restricts scoring/matching to one subset of a node's text.
type Field string

const (
	FieldID       Field = "id"
	FieldTitle    Field = "title"
	FieldBody     Field = "body"
	FieldKeywords Field = "keywords"
	FieldAll      Field = "all"
)

func bodyText(n *graph.Node) string {
	s, _ := n.Content["body_text"].(string)
	return s
}

func keywords(n *graph.Node) []string {
	switch v := n.Content["keywords"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// termFieldScore scores a single term against the fields selected by
// field, returning the best (highest-weight) matching field's score, or 0
// if none match.
func termFieldScore(n *graph.Node, term SearchTerm, field Field) float64 {
	best := 0.0
	consider := func(w float64) {
		if w > best {
			best = w
		}
	}

	lowerID := strings.ToLower(n.ID)
	lowerTitle := strings.ToLower(n.Label)

	if field == FieldID || field == FieldAll {
		if strings.Contains(lowerID, term.Text) {
			consider(weightID)
		}
	}
	if field == FieldTitle || field == FieldAll {
		if lowerTitle != "" && strings.Contains(lowerTitle, term.Text) {
			consider(weightTitle)
		}
	}
	if field == FieldKeywords || field == FieldAll {
		for _, kw := range keywords(n) {
			lkw := strings.ToLower(kw)
			if term.Exact {
				if lkw == term.Text {
					consider(weightKeywordExact)
				}
			} else if strings.Contains(lkw, term.Text) {
				consider(weightKeywordSubstring)
			}
		}
	}
	if field == FieldBody || field == FieldAll {
		if strings.Contains(strings.ToLower(bodyText(n)), term.Text) {
			consider(weightBody)
		}
	}
	return best
}

// concatenatedFields joins the fields selected by field, for phrase and
// exclusion matching, which span the whole searched surface rather than
// any one weighted field.
func concatenatedFields(n *graph.Node, field Field) string {
	var parts []string
	if field == FieldID || field == FieldAll {
		parts = append(parts, n.ID)
	}
	if field == FieldTitle || field == FieldAll {
		parts = append(parts, n.Label)
	}
	if field == FieldKeywords || field == FieldAll {
		parts = append(parts, strings.Join(keywords(n), " "))
	}
	if field == FieldBody || field == FieldAll {
		parts = append(parts, bodyText(n))
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// ScoreNode computes the field-weighted score of n against query,
// restricted to field (default FieldAll when empty), per spec.md §4.6.2.
func ScoreNode(n *graph.Node, query ParsedQuery, field Field) float64 {
	if field == "" {
		field = FieldAll
	}
	if query.IsEmpty() {
		return 0
	}

	haystack := concatenatedFields(n, field)

	for _, ex := range query.Excluded {
		if strings.Contains(haystack, ex.Text) {
			return 0
		}
	}
	for _, phrase := range query.Phrases {
		if !strings.Contains(haystack, phrase) {
			return 0
		}
	}

	total := 0.0
	hasPositiveTerms := len(query.AndGroups) > 0
	for _, group := range query.AndGroups {
		groupBest := 0.0
		for _, term := range group {
			if s := termFieldScore(n, term, field); s > groupBest {
				groupBest = s
			}
		}
		if groupBest == 0 {
			return 0
		}
		total += groupBest
	}

	if !hasPositiveTerms && len(query.Phrases) > 0 {
		// Phrase-only query: presence already confirmed above.
		total = phraseMatchScore
	}

	return total
}

// MatchesNode reports whether n scores above zero against query.
func MatchesNode(n *graph.Node, query ParsedQuery, field Field) bool {
	return ScoreNode(n, query, field) > 0
}

// MatchesRegex reports whether the compiled pattern matches the field(s)
// selected by field, bypassing query parsing and scoring entirely
// (spec.md §4.6.2's regex=true bypass mode).
func MatchesRegex(n *graph.Node, pattern *regexp.Regexp, field Field) bool {
	if field == "" {
		field = FieldAll
	}
	switch field {
	case FieldID:
		return pattern.MatchString(n.ID)
	case FieldTitle:
		return pattern.MatchString(n.Label)
	case FieldBody:
		return pattern.MatchString(bodyText(n))
	case FieldKeywords:
		for _, kw := range keywords(n) {
			if pattern.MatchString(kw) {
				return true
			}
		}
		return false
	default: // FieldAll
		if pattern.MatchString(n.ID) || pattern.MatchString(n.Label) || pattern.MatchString(bodyText(n)) {
			return true
		}
		for _, kw := range keywords(n) {
			if pattern.MatchString(kw) {
				return true
			}
		}
		return false
	}
}
