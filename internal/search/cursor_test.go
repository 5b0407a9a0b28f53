package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{Kind: "requirement", ID: string(rune('a' + i))}
	}
	return items
}

func TestSession_OpenReturnsFirstItemAndAdvancesPosition(t *testing.T) {
	s := NewSession()
	res := s.Open("subtree", map[string]string{"root_id": "REQ-p00001"}, 0, sampleItems(3))

	require.Equal(t, "subtree", res.Query)
	require.Equal(t, 0, res.BatchSize)
	require.Equal(t, 3, res.Total)
	require.NotNil(t, res.Current)
	require.Equal(t, 1, res.Position)
	require.Equal(t, 2, res.Remaining)
}

func TestSession_OpenWithNoItems(t *testing.T) {
	s := NewSession()
	res := s.Open("subtree", nil, 0, nil)

	require.Nil(t, res.Current)
	require.Equal(t, 0, res.Total)
	require.Equal(t, 0, res.Position)
	require.Equal(t, 0, res.Remaining)
}

func TestSession_OpenReplacesPriorCursor(t *testing.T) {
	s := NewSession()
	s.Open("subtree", nil, 0, sampleItems(3))
	s.Open("search", nil, 0, sampleItems(5))

	info, err := s.Info()
	require.NoError(t, err)
	require.Equal(t, "search", info.Query)
	require.Equal(t, 5, info.Total)
}

func TestSession_NextReturnsRequestedCountAndAdvances(t *testing.T) {
	s := NewSession()
	s.Open("subtree", nil, 0, sampleItems(5))

	res, err := s.Next(2)
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)
	require.Len(t, res.Items, 2)

	info, err := s.Info()
	require.NoError(t, err)
	require.Equal(t, 3, info.Position)
}

func TestSession_NextAtEndReturnsEmpty(t *testing.T) {
	s := NewSession()
	s.Open("subtree", nil, 0, sampleItems(2))
	_, err := s.Next(10) // consumes the remaining item(s)
	require.NoError(t, err)

	res, err := s.Next(1)
	require.NoError(t, err)
	require.Empty(t, res.Items)
	require.Equal(t, 0, res.Count)
	require.Equal(t, 0, res.Remaining)
}

func TestSession_NextWithoutOpenCursorErrors(t *testing.T) {
	s := NewSession()
	_, err := s.Next(1)
	require.Error(t, err)
}

func TestSession_InfoWithoutOpenCursorErrors(t *testing.T) {
	s := NewSession()
	_, err := s.Info()
	require.Error(t, err)
}

func TestMaterializeItems_BatchSizeNegativeFlattensAssertions(t *testing.T) {
	results := []Summary{{ID: "REQ-p00001", Title: "Req"}}
	assertions := func(id string) []MatchedAssertion {
		return []MatchedAssertion{{ID: "REQ-p00001-A", Text: "SHALL do X"}}
	}
	items := MaterializeItems(results, -1, assertions, nil)

	require.Len(t, items, 2)
	require.Equal(t, "requirement", items[0].Kind)
	require.Equal(t, "assertion", items[1].Kind)
	require.Equal(t, "REQ-p00001", items[1].ParentRequirement)
}

func TestMaterializeItems_BatchSizeZeroInlinesAssertions(t *testing.T) {
	results := []Summary{{ID: "REQ-p00001", Title: "Req"}}
	assertions := func(id string) []MatchedAssertion {
		return []MatchedAssertion{{ID: "REQ-p00001-A", Text: "SHALL do X"}}
	}
	items := MaterializeItems(results, 0, assertions, nil)

	require.Len(t, items, 1)
	require.Len(t, items[0].Assertions, 1)
}

func TestMaterializeItems_PositiveBatchSizeAddsChildren(t *testing.T) {
	results := []Summary{{ID: "REQ-p00001", Title: "Req"}}
	children := func(id string) []Summary {
		return []Summary{{ID: "REQ-o00001", Title: "Child"}}
	}
	items := MaterializeItems(results, 5, nil, children)

	require.Len(t, items, 1)
	require.Len(t, items[0].Children, 1)
	require.Equal(t, "REQ-o00001", items[0].Children[0].ID)
}
