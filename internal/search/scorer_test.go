package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func simpleQuery(terms ...string) ParsedQuery {
	var groups [][]SearchTerm
	for _, t := range terms {
		groups = append(groups, []SearchTerm{{Text: t}})
	}
	return ParsedQuery{AndGroups: groups}
}

func orQuery(terms ...string) ParsedQuery {
	var group []SearchTerm
	for _, t := range terms {
		group = append(group, SearchTerm{Text: t})
	}
	return ParsedQuery{AndGroups: [][]SearchTerm{group}}
}

func TestScoreNode_IDMatchScores100(t *testing.T) {
	n := newReq("REQ-d00099", "Unrelated Title")
	require.Equal(t, 100.0, ScoreNode(n, simpleQuery("d00099"), FieldAll))
}

func TestScoreNode_TitleMatchScores50(t *testing.T) {
	n := newReq("REQ-x00001", "Platform Security")
	require.Equal(t, 50.0, ScoreNode(n, simpleQuery("security"), FieldAll))
}

func TestScoreNode_KeywordExactMatchScores40(t *testing.T) {
	n := withKeywords(newReq("REQ-x00001", "Unrelated"), "encryption")
	query := ParsedQuery{AndGroups: [][]SearchTerm{{{Text: "encryption", Exact: true}}}}
	require.Equal(t, 40.0, ScoreNode(n, query, FieldAll))
}

func TestScoreNode_KeywordSubstringMatchScores25(t *testing.T) {
	n := withKeywords(newReq("REQ-x00001", "Unrelated"), "encryption")
	require.Equal(t, 25.0, ScoreNode(n, simpleQuery("encrypt"), FieldAll))
}

func TestScoreNode_BodyMatchScores10(t *testing.T) {
	n := withBody(newReq("REQ-x00001", "Unrelated"), "All data must be encrypted at rest using AES-256.")
	require.Equal(t, 10.0, ScoreNode(n, simpleQuery("aes-256"), FieldAll))
}

func TestScoreNode_IDBeatsTitle(t *testing.T) {
	n := newReq("REQ-security", "security overview")
	require.Equal(t, 100.0, ScoreNode(n, simpleQuery("security"), FieldAll))
}

func TestScoreNode_TitleBeatsKeyword(t *testing.T) {
	n := withKeywords(newReq("REQ-x00001", "Security Overview"), "security")
	require.Equal(t, 50.0, ScoreNode(n, simpleQuery("security"), FieldAll))
}

func TestScoreNode_KeywordBeatsBody(t *testing.T) {
	n := withBody(withKeywords(newReq("REQ-x00001", "Unrelated"), "validation"), "validation is important")
	require.Equal(t, 25.0, ScoreNode(n, simpleQuery("validation"), FieldAll))
}

func TestScoreNode_ExclusionInIDReturnsZero(t *testing.T) {
	n := newReq("REQ-d00099", "Some Title")
	query := ParsedQuery{
		AndGroups: [][]SearchTerm{{{Text: "d00099"}}},
		Excluded:  []SearchTerm{{Text: "d00099", Negated: true}},
	}
	require.Equal(t, 0.0, ScoreNode(n, query, FieldAll))
}

func TestScoreNode_ExclusionOnlyNoMatchReturnsZero(t *testing.T) {
	n := newReq("REQ-x00001", "Good Title")
	query := ParsedQuery{Excluded: []SearchTerm{{Text: "nonexistent", Negated: true}}}
	require.Equal(t, 0.0, ScoreNode(n, query, FieldAll))
}

func TestScoreNode_PhraseNotFoundReturnsZero(t *testing.T) {
	n := withBody(newReq("REQ-x00001", "Platform Security"), "Data is encrypted.")
	query := ParsedQuery{Phrases: []string{"missing phrase"}}
	require.Equal(t, 0.0, ScoreNode(n, query, FieldAll))
}

func TestScoreNode_PhraseFoundReturnsPositive(t *testing.T) {
	n := withBody(newReq("REQ-x00001", "Platform Security Overview"), "Data is encrypted.")
	query := ParsedQuery{Phrases: []string{"platform security"}}
	require.Equal(t, 1.0, ScoreNode(n, query, FieldAll))
}

func TestScoreNode_PhraseAndTermBothMustMatch(t *testing.T) {
	n := withBody(newReq("REQ-x00001", "Platform Security"), "Data is encrypted.")
	query := ParsedQuery{
		AndGroups: [][]SearchTerm{{{Text: "platform"}}},
		Phrases:   []string{"nonexistent phrase"},
	}
	require.Equal(t, 0.0, ScoreNode(n, query, FieldAll))
}

func TestScoreNode_OneAndGroupFailsReturnsZero(t *testing.T) {
	n := newReq("REQ-x00001", "Platform Security")
	require.Equal(t, 0.0, ScoreNode(n, simpleQuery("platform", "nonexistent"), FieldAll))
}

func TestScoreNode_TwoAndGroupsSum(t *testing.T) {
	n := newReq("REQ-x00001", "Platform Security Overview")
	require.Equal(t, 100.0, ScoreNode(n, simpleQuery("platform", "security"), FieldAll))
}

func TestScoreNode_AndGroupsDifferentFieldsSum(t *testing.T) {
	n := withBody(newReq("REQ-d00099", "Unrelated Title"), "Some body content here.")
	require.Equal(t, 110.0, ScoreNode(n, simpleQuery("d00099", "body"), FieldAll))
}

func TestScoreNode_OrGroupPicksBest(t *testing.T) {
	n := withBody(newReq("REQ-x00001", "Platform Security"), "encryption is used")
	require.Equal(t, 50.0, ScoreNode(n, orQuery("platform", "encryption"), FieldAll))
}

func TestScoreNode_OrGroupNoneMatchReturnsZero(t *testing.T) {
	n := newReq("REQ-x00001", "Platform")
	require.Equal(t, 0.0, ScoreNode(n, orQuery("nonexistent", "alsonot"), FieldAll))
}

func TestMatchesNode_TrueOnPositiveScore(t *testing.T) {
	n := newReq("REQ-d00099", "Test")
	require.True(t, MatchesNode(n, simpleQuery("d00099"), FieldAll))
}

func TestMatchesNode_FalseOnZeroScore(t *testing.T) {
	n := newReq("REQ-x00001", "Test")
	require.False(t, MatchesNode(n, simpleQuery("nonexistent"), FieldAll))
}

func TestScoreNode_FieldIDOnlyScoresID(t *testing.T) {
	n := withKeywords(withBody(newReq("REQ-security", "security overview"), "security is important"), "security")
	require.Equal(t, 100.0, ScoreNode(n, simpleQuery("security"), FieldID))
}

func TestScoreNode_FieldIDMissesTitleMatch(t *testing.T) {
	n := newReq("REQ-x00001", "Platform Security")
	require.Equal(t, 0.0, ScoreNode(n, simpleQuery("security"), FieldID))
}

func TestScoreNode_FieldKeywordsExactOnly(t *testing.T) {
	n := withKeywords(newReq("REQ-x00001", "Unrelated"), "encryption")
	query := ParsedQuery{AndGroups: [][]SearchTerm{{{Text: "encryption", Exact: true}}}}
	require.Equal(t, 40.0, ScoreNode(n, query, FieldKeywords))
}

func TestScoreNode_FieldAllSearchesEveryFieldBestWins(t *testing.T) {
	n := withKeywords(withBody(newReq("REQ-x00001", "Security Overview"), "encryption details"), "security")
	require.Equal(t, 50.0, ScoreNode(n, simpleQuery("security"), FieldAll))
}

func TestScoreNode_EmptyQueryReturnsZero(t *testing.T) {
	n := newReq("REQ-d00099", "Anything")
	require.True(t, ParsedQuery{}.IsEmpty())
	require.Equal(t, 0.0, ScoreNode(n, ParsedQuery{}, FieldAll))
}
