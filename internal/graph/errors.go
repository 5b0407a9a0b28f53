package graph

import "fmt"

// NotFoundError reports that an ID is absent from the graph.
type NotFoundError struct{ ID string }

func (e *NotFoundError) Error() string { return fmt.Sprintf("graph: %q not found", e.ID) }
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// DuplicateIDError reports that an ID already exists in the graph.
type DuplicateIDError struct{ ID string }

func (e *DuplicateIDError) Error() string { return fmt.Sprintf("graph: %q already exists", e.ID) }
func (e *DuplicateIDError) Is(target error) bool {
	_, ok := target.(*DuplicateIDError)
	return ok
}

// InvalidKindError reports that a node had an unexpected Kind.
type InvalidKindError struct {
	ID       string
	Expected Kind
	Actual   Kind
}

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("graph: %q has kind %s, expected %s", e.ID, e.Actual, e.Expected)
}
func (e *InvalidKindError) Is(target error) bool {
	_, ok := target.(*InvalidKindError)
	return ok
}

// CycleDetectedError reports that adding an edge would create a cycle in
// the parent/child tree projection.
type CycleDetectedError struct {
	Source, Target string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("graph: adding %s -> %s would create a cycle", e.Source, e.Target)
}
func (e *CycleDetectedError) Is(target error) bool {
	_, ok := target.(*CycleDetectedError)
	return ok
}

// NoSuchEdgeError reports that a mutation targeted an edge that does not exist.
type NoSuchEdgeError struct {
	Source, Target string
	Kind           EdgeKind
}

func (e *NoSuchEdgeError) Error() string {
	return fmt.Sprintf("graph: no %s edge %s -> %s", e.Kind, e.Source, e.Target)
}
func (e *NoSuchEdgeError) Is(target error) bool {
	_, ok := target.(*NoSuchEdgeError)
	return ok
}

// ConfirmRequiredError reports that a destructive mutation was attempted
// without its confirmation flag set.
type ConfirmRequiredError struct{ Operation, ID string }

func (e *ConfirmRequiredError) Error() string {
	return fmt.Sprintf("graph: %s on %q requires confirmation", e.Operation, e.ID)
}
func (e *ConfirmRequiredError) Is(target error) bool {
	_, ok := target.(*ConfirmRequiredError)
	return ok
}

// ConflictError reports that a spec file was modified on disk after the
// graph's build timestamp (replayer §4.7 step 1).
type ConflictError struct{ Files []string }

func (e *ConflictError) Error() string {
	return fmt.Sprintf("graph: %d file(s) modified since build: %v", len(e.Files), e.Files)
}
func (e *ConflictError) Is(target error) bool {
	_, ok := target.(*ConflictError)
	return ok
}

// ParseError reports a malformed metadata line, unterminated block, or
// unknown assertion label encountered while parsing one file.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s:%d: %s", e.File, e.Line, e.Message)
}
func (e *ParseError) Is(target error) bool {
	_, ok := target.(*ParseError)
	return ok
}

// Sentinel values for use with errors.Is, matching each concrete type's
// zero value so callers can write errors.Is(err, graph.ErrNotFound).
var (
	ErrNotFound        = &NotFoundError{}
	ErrDuplicateID     = &DuplicateIDError{}
	ErrInvalidKind     = &InvalidKindError{}
	ErrCycleDetected   = &CycleDetectedError{}
	ErrNoSuchEdge      = &NoSuchEdgeError{}
	ErrConfirmRequired = &ConfirmRequiredError{}
	ErrConflict        = &ConflictError{}
	ErrParse           = &ParseError{}
)
