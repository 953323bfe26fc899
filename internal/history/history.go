// Package history keeps the linear list of image snapshots produced by an
// editing session together with the cursor naming the displayed one.
//
// Committing after an undo discards the redo branch; the history never forks.
package history

import (
	"errors"
	"sort"
)

var (
	// ErrNoActiveSession is returned when no image has been loaded.
	ErrNoActiveSession = errors.New("no image loaded")
	// ErrNothingToUndo is returned by Undo at the original snapshot.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo is returned by Redo at the newest snapshot.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Op names the operation that moved the cursor.
type Op int

const (
	OpLoad Op = iota
	OpCommit
	OpUndo
	OpRedo
	OpReset
	OpClear
)

func (o Op) String() string {
	switch o {
	case OpLoad:
		return "load"
	case OpCommit:
		return "commit"
	case OpUndo:
		return "undo"
	case OpRedo:
		return "redo"
	case OpReset:
		return "reset"
	case OpClear:
		return "clear"
	}
	return "unknown"
}

// Change describes the history right after a cursor-changing operation.
// Anything derived from the previously displayed snapshot, such as a selected
// hotspot or crop region, is stale once a Change is published.
type Change struct {
	Op       Op
	Cursor   int
	Len      int
	Current  *Snapshot
	Original *Snapshot
}

// History is an append/truncate list of snapshots with a single cursor. It is
// not safe for concurrent use.
type History struct {
	entries []*Snapshot
	cursor  int

	observers map[int]func(Change)
	nextObs   int
}

// New returns an empty history.
func New() *History {
	return &History{cursor: -1, observers: make(map[int]func(Change))}
}

// Subscribe registers fn to be called synchronously after every
// cursor-changing operation. The returned function removes it.
func (h *History) Subscribe(fn func(Change)) func() {
	if h.observers == nil {
		h.observers = make(map[int]func(Change))
	}
	id := h.nextObs
	h.nextObs++
	h.observers[id] = fn
	return func() { delete(h.observers, id) }
}

func (h *History) publish(op Op) {
	if len(h.observers) == 0 {
		return
	}
	c := Change{Op: op, Cursor: h.cursor, Len: len(h.entries), Current: h.Current(), Original: h.Original()}
	ids := make([]int, 0, len(h.observers))
	for id := range h.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := h.observers[id]; ok {
			fn(c)
		}
	}
}

// Load replaces the history with a single original snapshot.
func (h *History) Load(s *Snapshot) {
	h.entries = []*Snapshot{s}
	h.cursor = 0
	h.publish(OpLoad)
}

// Commit drops everything after the cursor, appends s and moves the cursor to
// it.
func (h *History) Commit(s *Snapshot) error {
	if h.cursor < 0 || len(h.entries) == 0 {
		return ErrNoActiveSession
	}
	// Clear the dropped tail so the snapshots can be collected.
	for i := h.cursor + 1; i < len(h.entries); i++ {
		h.entries[i] = nil
	}
	h.entries = append(h.entries[:h.cursor+1], s)
	h.cursor = len(h.entries) - 1
	h.publish(OpCommit)
	return nil
}

// Undo moves the cursor back by one.
func (h *History) Undo() error {
	if !h.CanUndo() {
		return ErrNothingToUndo
	}
	h.cursor--
	h.publish(OpUndo)
	return nil
}

// Redo moves the cursor forward by one.
func (h *History) Redo() error {
	if !h.CanRedo() {
		return ErrNothingToRedo
	}
	h.cursor++
	h.publish(OpRedo)
	return nil
}

// ResetToOriginal moves the cursor to the original without truncating, so the
// later snapshots stay reachable through Redo until the next Commit.
func (h *History) ResetToOriginal() error {
	if len(h.entries) == 0 {
		return ErrNoActiveSession
	}
	h.cursor = 0
	h.publish(OpReset)
	return nil
}

// Clear empties the history.
func (h *History) Clear() {
	h.entries = nil
	h.cursor = -1
	h.publish(OpClear)
}

// CanUndo reports whether Undo would move the cursor.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether Redo would move the cursor.
func (h *History) CanRedo() bool { return h.cursor >= 0 && h.cursor < len(h.entries)-1 }

// Cursor returns the index of the current snapshot, or -1 when empty.
func (h *History) Cursor() int { return h.cursor }

// Len returns the number of snapshots, including any redo branch.
func (h *History) Len() int { return len(h.entries) }

// Current returns the snapshot at the cursor, or nil.
func (h *History) Current() *Snapshot {
	if h.cursor < 0 || h.cursor >= len(h.entries) {
		return nil
	}
	return h.entries[h.cursor]
}

// Original returns the first snapshot, or nil.
func (h *History) Original() *Snapshot {
	if len(h.entries) == 0 {
		return nil
	}
	return h.entries[0]
}

// Entries returns a copy of the snapshot list in chronological order.
func (h *History) Entries() []*Snapshot {
	out := make([]*Snapshot, len(h.entries))
	copy(out, h.entries)
	return out
}
