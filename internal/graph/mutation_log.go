package graph

// Rename records one assertion-label rename applied by compaction
// (delete_assertion(compact=true)), so undo can reverse it exactly.
type Rename struct {
	OldLabel string
	NewLabel string
}

// MutationEntry is one record in the audit log, per spec.md §3
// "Mutation entry": a monotonic id, timestamp, operation name, target
// id, before/after state maps, an affects_hash flag, and (for
// delete_assertion) the renames compaction applied.
type MutationEntry struct {
	ID          int64
	Timestamp   int64
	Operation   string
	TargetID    string
	Before      map[string]any
	After       map[string]any
	AffectsHash bool
	Renames     []Rename
}

// MutationLog is the append-only audit log of spec.md §3 "Lifecycle" and
// §4.5: append-only between Clear() points, each entry fully determines
// both a forward re-application and a reverse inversion.
type MutationLog struct {
	entries []*MutationEntry
	nextID  int64
	clock   func() int64
}

// NewMutationLog returns an empty log. Clock defaults to a monotonic
// counter (not wall-clock time) so log ordering is deterministic and
// reproducible in tests; callers that need real timestamps should set
// Clock explicitly.
func NewMutationLog() *MutationLog {
	return &MutationLog{clock: nil}
}

// SetClock installs a timestamp source used for new entries. Passing nil
// reverts to the deterministic counter default.
func (l *MutationLog) SetClock(clock func() int64) { l.clock = clock }

// Append adds a new entry to the top of the log and returns it. The
// entry's ID and Timestamp are assigned here; callers fill in the rest.
func (l *MutationLog) Append(operation, targetID string, before, after map[string]any, affectsHash bool) *MutationEntry {
	l.nextID++
	ts := l.nextID
	if l.clock != nil {
		ts = l.clock()
	}
	e := &MutationEntry{
		ID:          l.nextID,
		Timestamp:   ts,
		Operation:   operation,
		TargetID:    targetID,
		Before:      before,
		After:       after,
		AffectsHash: affectsHash,
	}
	l.entries = append(l.entries, e)
	return e
}

// Entries returns the log in insertion (ascending ID) order.
func (l *MutationLog) Entries() []*MutationEntry {
	return append([]*MutationEntry(nil), l.entries...)
}

// Len returns the number of entries currently in the log.
func (l *MutationLog) Len() int { return len(l.entries) }

// Last returns the most recently appended entry, or nil if the log is empty.
func (l *MutationLog) Last() *MutationEntry {
	if len(l.entries) == 0 {
		return nil
	}
	return l.entries[len(l.entries)-1]
}

// PopLast removes and returns the most recent entry (LIFO undo), or nil
// if the log is empty.
func (l *MutationLog) PopLast() *MutationEntry {
	if len(l.entries) == 0 {
		return nil
	}
	e := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	return e
}

// PopTo removes and returns, in LIFO (most-recent-first) order, every
// entry from the top of the log down to and including the entry with the
// given ID. Returns nil if no entry with that ID exists.
func (l *MutationLog) PopTo(entryID int64) []*MutationEntry {
	idx := -1
	for i, e := range l.entries {
		if e.ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	popped := make([]*MutationEntry, 0, len(l.entries)-idx)
	for i := len(l.entries) - 1; i >= idx; i-- {
		popped = append(popped, l.entries[i])
	}
	l.entries = l.entries[:idx]
	return popped
}

// Clear empties the log, e.g. after a successful replay (spec.md §4.7
// step 5 "the mutation log is cleared").
func (l *MutationLog) Clear() {
	l.entries = nil
}
