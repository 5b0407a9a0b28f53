package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQuery_PlainTermsBecomeSingleTermGroups(t *testing.T) {
	q := ParseQuery("platform security")
	require.Len(t, q.AndGroups, 2)
	require.Equal(t, "platform", q.AndGroups[0][0].Text)
	require.Equal(t, "security", q.AndGroups[1][0].Text)
}

func TestParseQuery_ExactPrefix(t *testing.T) {
	q := ParseQuery("=encryption")
	require.Len(t, q.AndGroups, 1)
	require.True(t, q.AndGroups[0][0].Exact)
	require.Equal(t, "encryption", q.AndGroups[0][0].Text)
}

func TestParseQuery_NegatedPrefixGoesToExcluded(t *testing.T) {
	q := ParseQuery("security -deprecated")
	require.Len(t, q.AndGroups, 1)
	require.Len(t, q.Excluded, 1)
	require.True(t, q.Excluded[0].Negated)
	require.Equal(t, "deprecated", q.Excluded[0].Text)
}

func TestParseQuery_QuotedPhraseExtracted(t *testing.T) {
	q := ParseQuery(`"platform security" encryption`)
	require.Equal(t, []string{"platform security"}, q.Phrases)
	require.Len(t, q.AndGroups, 1)
	require.Equal(t, "encryption", q.AndGroups[0][0].Text)
}

func TestParseQuery_LowercasesTerms(t *testing.T) {
	q := ParseQuery("PLATFORM")
	require.Equal(t, "platform", q.AndGroups[0][0].Text)
}

func TestParseQuery_Empty(t *testing.T) {
	q := ParseQuery("")
	require.True(t, q.IsEmpty())
}
