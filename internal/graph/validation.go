package graph

// ValidationReport accumulates non-fatal diagnostics gathered while
// parsing and building a graph, grounded on the original's accumulation
// of parse/broken-reference diagnostics rather than raising on first
// error (original_source/src/elspais/core/graph_schema.py).
type ValidationReport struct {
	ParseErrors      []*ParseError
	BrokenReferences []BrokenReference
	RejectedCycles   []CycleDetectedError
}

// AddParseError records a parse error and continues.
func (v *ValidationReport) AddParseError(e *ParseError) {
	v.ParseErrors = append(v.ParseErrors, e)
}

// AddBrokenReference records a broken reference as data, never as an error.
func (v *ValidationReport) AddBrokenReference(b BrokenReference) {
	v.BrokenReferences = append(v.BrokenReferences, b)
}

// AddRejectedCycle records a candidate edge rejected because it would
// have introduced a cycle in the tree projection.
func (v *ValidationReport) AddRejectedCycle(source, target string) {
	v.RejectedCycles = append(v.RejectedCycles, CycleDetectedError{Source: source, Target: target})
}

// IsClean reports whether the report contains no diagnostics at all.
func (v *ValidationReport) IsClean() bool {
	return len(v.ParseErrors) == 0 && len(v.BrokenReferences) == 0 && len(v.RejectedCycles) == 0
}

// WarningBrokenReferences returns broken references not covered by an
// expected-broken-links marker (spec.md §4.2.5) — i.e. the subset that
// should surface as warnings rather than informational entries.
func (v *ValidationReport) WarningBrokenReferences() []BrokenReference {
	var out []BrokenReference
	for _, b := range v.BrokenReferences {
		if !b.ExpectedBroken {
			out = append(out, b)
		}
	}
	return out
}
