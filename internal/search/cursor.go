package search

import "fmt"

// Item is one entry materialized into a cursor's item list. Kind
// distinguishes a requirement-level entry from an assertion entry
// promoted to a first-class item by BatchSize == -1.
type Item struct {
	Kind              string // "requirement" or "assertion"
	ID                string
	Title             string
	Level             string
	Status            string
	Score             float64
	Assertions        []MatchedAssertion // inlined when BatchSize == 0
	Children          []Item             // populated when BatchSize > 0
	ParentRequirement string             // set on assertion items, BatchSize == -1
}

// MaterializeItems turns a set of requirement summaries (plus each
// requirement's own assertion children, supplied by assertionsOf and
// childrenOf) into a cursor's item list, applying the BatchSize
// presentation rule from spec.md §4.6.5:
//   - -1: every assertion becomes its own top-level Item alongside its
//     parent requirement.
//   - 0: assertions are inlined into the requirement Item's Assertions
//     field.
//   - >0: each requirement Item additionally carries a Children array (its
//     tree children, summarized).
func MaterializeItems(results []Summary, batchSize int, assertionsOf func(id string) []MatchedAssertion, childrenOf func(id string) []Summary) []Item {
	items := make([]Item, 0, len(results))
	for _, r := range results {
		reqItem := Item{Kind: "requirement", ID: r.ID, Title: r.Title, Level: r.Level, Status: r.Status, Score: r.Score}

		switch {
		case batchSize < 0:
			items = append(items, reqItem)
			if assertionsOf != nil {
				for _, a := range assertionsOf(r.ID) {
					items = append(items, Item{Kind: "assertion", ID: a.ID, Title: a.Text, ParentRequirement: r.ID})
				}
			}
		case batchSize == 0:
			if assertionsOf != nil {
				reqItem.Assertions = assertionsOf(r.ID)
			}
			items = append(items, reqItem)
		default:
			if childrenOf != nil {
				for _, c := range childrenOf(r.ID) {
					reqItem.Children = append(reqItem.Children, Item{Kind: "requirement", ID: c.ID, Title: c.Title, Level: c.Level, Status: c.Status, Score: c.Score})
				}
			}
			items = append(items, reqItem)
		}
	}
	return items
}

// State is a single-slot per-session cursor: opening a new one replaces
// whatever was there (spec.md §4.6.5).
type State struct {
	Query     string
	Params    any
	BatchSize int
	Items     []Item
	Position  int
}

// Session holds at most one live cursor.
type Session struct {
	cursor *State
}

// NewSession returns a Session with no open cursor.
func NewSession() *Session { return &Session{} }

// OpenResult is open_cursor's return shape: the first item plus metadata.
type OpenResult struct {
	Query     string
	BatchSize int
	Current   *Item
	Total     int
	Position  int
	Remaining int
}

// Open materializes items once, resets position to 0, consumes the first
// item, and replaces any prior cursor (spec.md §4.6.5).
func (s *Session) Open(query string, params any, batchSize int, items []Item) OpenResult {
	s.cursor = &State{Query: query, Params: params, BatchSize: batchSize, Items: items, Position: 0}
	res := OpenResult{Query: query, BatchSize: batchSize, Total: len(items)}
	if len(items) > 0 {
		first := items[0]
		res.Current = &first
		s.cursor.Position = 1
	}
	res.Position = s.cursor.Position
	res.Remaining = len(items) - s.cursor.Position
	return res
}

// NextResult is cursor_next's return shape.
type NextResult struct {
	Items     []Item
	Count     int
	Remaining int
}

// Next advances the open cursor by up to count items. Returns an error if
// no cursor is open. On exhaustion, returns an empty item list and
// Remaining == 0.
func (s *Session) Next(count int) (NextResult, error) {
	if s.cursor == nil {
		return NextResult{}, fmt.Errorf("search: no cursor is open")
	}
	c := s.cursor
	end := c.Position + count
	if end > len(c.Items) {
		end = len(c.Items)
	}
	if end < c.Position {
		end = c.Position
	}
	batch := c.Items[c.Position:end]
	c.Position = end
	return NextResult{
		Items:     batch,
		Count:     len(batch),
		Remaining: len(c.Items) - c.Position,
	}, nil
}

// InfoResult is cursor_info's return shape.
type InfoResult struct {
	Query     string
	BatchSize int
	Position  int
	Total     int
	Remaining int
}

// Info reports the open cursor's position/total/remaining without
// advancing it.
func (s *Session) Info() (InfoResult, error) {
	if s.cursor == nil {
		return InfoResult{}, fmt.Errorf("search: no cursor is open")
	}
	c := s.cursor
	return InfoResult{
		Query:     c.Query,
		BatchSize: c.BatchSize,
		Position:  c.Position,
		Total:     len(c.Items),
		Remaining: len(c.Items) - c.Position,
	}, nil
}
