package history

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func testSnapshot(t *testing.T, name string) *Snapshot {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(0, 0, color.RGBA{R: uint8(len(name)), A: 255})
	s, err := NewSnapshotFromImage(name, img)
	if err != nil {
		t.Fatalf("snapshot %s: %v", name, err)
	}
	return s
}

func names(h *History) []string {
	var out []string
	for _, s := range h.Entries() {
		out = append(out, s.Name())
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEmptyHistory(t *testing.T) {
	h := New()
	if h.Cursor() != -1 || h.Len() != 0 {
		t.Fatalf("cursor %d len %d, want -1 0", h.Cursor(), h.Len())
	}
	if h.Current() != nil || h.Original() != nil {
		t.Fatalf("expected no snapshots")
	}
	if err := h.Commit(testSnapshot(t, "a")); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("commit without load: %v", err)
	}
	if err := h.ResetToOriginal(); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("reset without load: %v", err)
	}
	if err := h.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("undo on empty: %v", err)
	}
	if err := h.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("redo on empty: %v", err)
	}
}

func TestCommitMovesCursorToEnd(t *testing.T) {
	h := New()
	h.Load(testSnapshot(t, "a"))
	for _, n := range []string{"b", "c", "d", "e"} {
		if err := h.Commit(testSnapshot(t, n)); err != nil {
			t.Fatalf("commit %s: %v", n, err)
		}
		if h.Len()-1 != h.Cursor() {
			t.Fatalf("after commit %s: len %d cursor %d", n, h.Len(), h.Cursor())
		}
	}
	if h.Original().Name() != "a" {
		t.Fatalf("original changed to %s", h.Original().Name())
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	h := New()
	h.Load(testSnapshot(t, "a"))
	_ = h.Commit(testSnapshot(t, "b"))
	_ = h.Commit(testSnapshot(t, "c"))
	for cursor := h.Cursor(); cursor > 0; cursor-- {
		before := h.Current().ID()
		if err := h.Undo(); err != nil {
			t.Fatalf("undo: %v", err)
		}
		if err := h.Redo(); err != nil {
			t.Fatalf("redo: %v", err)
		}
		if h.Current().ID() != before {
			t.Fatalf("round trip changed snapshot at cursor %d", cursor)
		}
		_ = h.Undo()
	}
	if h.CanUndo() {
		t.Fatalf("expected to be at the original")
	}
}

func TestCommitAfterUndoDiscardsRedoBranch(t *testing.T) {
	h := New()
	h.Load(testSnapshot(t, "A"))
	_ = h.Commit(testSnapshot(t, "B"))
	_ = h.Commit(testSnapshot(t, "C"))
	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if h.Cursor() != 1 {
		t.Fatalf("cursor %d, want 1", h.Cursor())
	}
	if err := h.Commit(testSnapshot(t, "D")); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := names(h); !equal(got, []string{"A", "B", "D"}) {
		t.Fatalf("history %v, want [A B D]", got)
	}
	if h.Cursor() != 2 {
		t.Fatalf("cursor %d, want 2", h.Cursor())
	}
	if err := h.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("expected C to be unreachable, redo returned %v", err)
	}
}

func TestResetToOriginalKeepsTail(t *testing.T) {
	h := New()
	h.Load(testSnapshot(t, "A"))
	_ = h.Commit(testSnapshot(t, "B"))
	_ = h.Commit(testSnapshot(t, "C"))
	if err := h.ResetToOriginal(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := h.ResetToOriginal(); err != nil {
		t.Fatalf("second reset: %v", err)
	}
	if h.Cursor() != 0 || h.Len() != 3 {
		t.Fatalf("cursor %d len %d after reset", h.Cursor(), h.Len())
	}
	for h.CanRedo() {
		_ = h.Redo()
	}
	if h.Current().Name() != "C" {
		t.Fatalf("redo after reset reached %s, want C", h.Current().Name())
	}

	_ = h.ResetToOriginal()
	_ = h.Commit(testSnapshot(t, "E"))
	if got := names(h); !equal(got, []string{"A", "E"}) {
		t.Fatalf("history %v, want [A E]", got)
	}
}

func TestLoadAndClear(t *testing.T) {
	h := New()
	h.Load(testSnapshot(t, "A"))
	_ = h.Commit(testSnapshot(t, "B"))
	h.Load(testSnapshot(t, "Z"))
	if h.Len() != 1 || h.Cursor() != 0 || h.Current().Name() != "Z" {
		t.Fatalf("load did not reset history: %v", names(h))
	}
	h.Clear()
	if h.Len() != 0 || h.Cursor() != -1 || h.Current() != nil {
		t.Fatalf("clear left len %d cursor %d", h.Len(), h.Cursor())
	}
}

func TestSubscribePublishesCursorChanges(t *testing.T) {
	h := New()
	var ops []Op
	cancel := h.Subscribe(func(c Change) { ops = append(ops, c.Op) })
	h.Load(testSnapshot(t, "A"))
	_ = h.Commit(testSnapshot(t, "B"))
	_ = h.Undo()
	_ = h.Undo() // no-op, not published
	_ = h.Redo()
	_ = h.ResetToOriginal()
	h.Clear()
	want := []Op{OpLoad, OpCommit, OpUndo, OpRedo, OpReset, OpClear}
	if len(ops) != len(want) {
		t.Fatalf("ops %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("ops %v, want %v", ops, want)
		}
	}
	cancel()
	h.Load(testSnapshot(t, "A"))
	if len(ops) != len(want) {
		t.Fatalf("cancelled observer still called")
	}
}

func TestSnapshotRejectsGarbage(t *testing.T) {
	_, err := NewSnapshot("bad.png", []byte("not an image"))
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if _, err := NewSnapshot("empty.png", nil); !errors.As(err, &derr) {
		t.Fatalf("expected DecodeError for empty payload, got %v", err)
	}
}

func TestSnapshotCopiesPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	s, err := NewSnapshot("gray.png", data)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	data[0] = 0
	out := s.Bytes()
	out[1] = 0
	if _, err := s.Decode(); err != nil {
		t.Fatalf("snapshot payload was shared: %v", err)
	}
	if s.Size() != image.Pt(2, 2) || s.Format() != "png" || s.MIMEType() != "image/png" {
		t.Fatalf("unexpected metadata %v %s %s", s.Size(), s.Format(), s.MIMEType())
	}
}

func TestName(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	if got := Name("filter", at, "png"); got != "filter-1700000000000.png" {
		t.Fatalf("Name = %q", got)
	}
	if got := Name("edit", at, "jpeg"); got != "edit-1700000000000.jpg" {
		t.Fatalf("Name = %q", got)
	}
}
