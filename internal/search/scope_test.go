package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/elspais/internal/graph"
)

// buildScopedGraph builds the hierarchy used throughout the original
// test suite's scoped-search fixture:
//
//	PRD-root
//	  +-- OPS-auth [assertions A, B]
//	  |     +-- DEV-login
//	  |     +-- DEV-token
//	  +-- OPS-data
//	        +-- DEV-pipeline
func buildScopedGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()

	prdRoot := newReq("PRD-root", "Platform Requirements")
	opsAuth := newReq("OPS-auth", "Authentication Module")
	opsData := newReq("OPS-data", "Data Processing")
	devLogin := newReq("DEV-login", "Login Endpoint")
	devToken := newReq("DEV-token", "Token Validation")
	devPipeline := newReq("DEV-pipeline", "Pipeline Runner")
	assertA := newAssertion("OPS-auth-A", "A", "SHALL authenticate users via OAuth")
	assertB := newAssertion("OPS-auth-B", "B", "SHALL support MFA tokens")

	for _, n := range []*graph.Node{prdRoot, opsAuth, opsData, devLogin, devToken, devPipeline, assertA, assertB} {
		require.NoError(t, g.AddNode(n))
	}

	g.AddTreeLink(prdRoot, opsAuth)
	g.AddTreeLink(prdRoot, opsData)
	g.AddTreeLink(opsAuth, devLogin)
	g.AddTreeLink(opsAuth, devToken)
	g.AddTreeLink(opsData, devPipeline)
	g.AddTreeLink(opsAuth, assertA)
	g.AddTreeLink(opsAuth, assertB)

	return g
}

func TestCollectScopeIDs_DescendantsViaChildren(t *testing.T) {
	g := buildScopedGraph(t)
	result := collectScopeIDs(g, "OPS-auth", DirectionDescendants)
	require.NotNil(t, result)
	require.Contains(t, result, "OPS-auth")
	require.Contains(t, result, "DEV-login")
	require.Contains(t, result, "DEV-token")
	require.Contains(t, result, "OPS-auth-A")
	require.Contains(t, result, "OPS-auth-B")
	require.NotContains(t, result, "OPS-data")
	require.NotContains(t, result, "PRD-root")
	require.NotContains(t, result, "DEV-pipeline")
}

func TestCollectScopeIDs_AncestorsViaParents(t *testing.T) {
	g := buildScopedGraph(t)
	result := collectScopeIDs(g, "DEV-login", DirectionAncestors)
	require.NotNil(t, result)
	require.Contains(t, result, "DEV-login")
	require.Contains(t, result, "OPS-auth")
	require.Contains(t, result, "PRD-root")
	require.NotContains(t, result, "DEV-token")
	require.NotContains(t, result, "OPS-data")
}

func TestCollectScopeIDs_LeafDescendantsIsJustItself(t *testing.T) {
	g := buildScopedGraph(t)
	result := collectScopeIDs(g, "DEV-login", DirectionDescendants)
	require.Equal(t, map[string]bool{"DEV-login": true}, result)
}

func TestCollectScopeIDs_RootAncestorsIsJustItself(t *testing.T) {
	g := buildScopedGraph(t)
	result := collectScopeIDs(g, "PRD-root", DirectionAncestors)
	require.Equal(t, map[string]bool{"PRD-root": true}, result)
}

func TestCollectScopeIDs_UnknownScopeReturnsNil(t *testing.T) {
	g := buildScopedGraph(t)
	require.Nil(t, collectScopeIDs(g, "NONEXISTENT-id", DirectionDescendants))
}

func TestScopedSearch_DescendantsExcludesSiblingsAndAncestors(t *testing.T) {
	g := buildScopedGraph(t)
	results, ok := ScopedSearch(g, ScopedSearchParams{Query: "Endpoint", ScopeID: "OPS-auth", Direction: DirectionDescendants})
	require.True(t, ok)
	ids := summaryIDs(results)
	require.Contains(t, ids, "DEV-login")
	require.NotContains(t, ids, "DEV-pipeline")
	require.NotContains(t, ids, "PRD-root")
}

func TestScopedSearch_AncestorMatchExcludedFromDescendantSearch(t *testing.T) {
	g := buildScopedGraph(t)
	results, ok := ScopedSearch(g, ScopedSearchParams{Query: "Platform", ScopeID: "OPS-auth", Direction: DirectionDescendants})
	require.True(t, ok)
	require.Empty(t, results)
}

func TestScopedSearch_ScopeIDIncludedWhenMatching(t *testing.T) {
	g := buildScopedGraph(t)
	results, ok := ScopedSearch(g, ScopedSearchParams{Query: "Authentication", ScopeID: "OPS-auth", Direction: DirectionDescendants})
	require.True(t, ok)
	require.Contains(t, summaryIDs(results), "OPS-auth")
}

func TestScopedSearch_UnknownScopeReturnsNotOK(t *testing.T) {
	g := buildScopedGraph(t)
	_, ok := ScopedSearch(g, ScopedSearchParams{Query: "anything", ScopeID: "NONEXISTENT-id"})
	require.False(t, ok)
}

func TestScopedSearch_IncludeAssertionsPromotesParent(t *testing.T) {
	g := buildScopedGraph(t)
	results, ok := ScopedSearch(g, ScopedSearchParams{
		Query: "OAuth", ScopeID: "PRD-root", Direction: DirectionDescendants, IncludeAssertions: true,
	})
	require.True(t, ok)
	var match *Summary
	for i := range results {
		if results[i].ID == "OPS-auth" {
			match = &results[i]
		}
	}
	require.NotNil(t, match)
	require.Len(t, match.MatchedAssertions, 1)
	require.Equal(t, "OPS-auth-A", match.MatchedAssertions[0].ID)
}

func TestScopedSearch_NoMatchedAssertionsFieldWhenNoneMatch(t *testing.T) {
	g := buildScopedGraph(t)
	results, ok := ScopedSearch(g, ScopedSearchParams{
		Query: "Login", ScopeID: "OPS-auth", Direction: DirectionDescendants, IncludeAssertions: true,
	})
	require.True(t, ok)
	for _, r := range results {
		if r.ID == "DEV-login" {
			require.Empty(t, r.MatchedAssertions)
		}
	}
}

func TestScopedSearch_FieldTitleExcludesIDMatch(t *testing.T) {
	g := buildScopedGraph(t)
	results, ok := ScopedSearch(g, ScopedSearchParams{
		Query: "OPS-auth", ScopeID: "PRD-root", Direction: DirectionDescendants, Field: FieldTitle,
	})
	require.True(t, ok)
	require.NotContains(t, summaryIDs(results), "OPS-auth")
}

func TestScopedSearch_RegexParameter(t *testing.T) {
	g := buildScopedGraph(t)
	results, ok := ScopedSearch(g, ScopedSearchParams{
		Query: "^DEV-", ScopeID: "PRD-root", Direction: DirectionDescendants, Regex: true,
	})
	require.True(t, ok)
	ids := summaryIDs(results)
	require.Contains(t, ids, "DEV-login")
	require.Contains(t, ids, "DEV-token")
	require.Contains(t, ids, "DEV-pipeline")
	require.NotContains(t, ids, "OPS-auth")
}

func TestScopedSearch_LimitRespected(t *testing.T) {
	g := buildScopedGraph(t)
	results, ok := ScopedSearch(g, ScopedSearchParams{
		Query: "OPS", ScopeID: "PRD-root", Direction: DirectionDescendants, Limit: 1,
	})
	require.True(t, ok)
	require.Len(t, results, 1)
}

func summaryIDs(results []Summary) map[string]bool {
	out := make(map[string]bool, len(results))
	for _, r := range results {
		out[r.ID] = true
	}
	return out
}
