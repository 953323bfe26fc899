package display

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"testing"

	"github.com/example/retouch/internal/history"
)

func snapshot(t *testing.T, name string) *history.Snapshot {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	s, err := history.NewSnapshot(name, buf.Bytes())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return s
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestAcquireReusesResource(t *testing.T) {
	r, err := New(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s := snapshot(t, "a.png")
	first, err := r.Acquire(s)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	second, err := r.Acquire(s)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same resource")
	}
	if !exists(first.Path) {
		t.Fatalf("file %s missing", first.Path)
	}
	if got := first.Image.Bounds().Size(); got != image.Pt(3, 2) {
		t.Fatalf("decoded size = %v", got)
	}
}

func TestHistoryChangedReleasesSuperseded(t *testing.T) {
	r, err := New(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	h := history.New()
	h.Subscribe(r.HistoryChanged)

	a, b, c := snapshot(t, "a.png"), snapshot(t, "b.png"), snapshot(t, "c.png")
	h.Load(a)
	ra, _ := r.Acquire(a)
	if err := h.Commit(b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	rb, _ := r.Acquire(b)
	if err := h.Commit(c); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if exists(rb.Path) {
		t.Fatalf("superseded resource %s not released", rb.Path)
	}
	if !exists(ra.Path) {
		t.Fatalf("original resource should be retained")
	}
	h.Clear()
	if r.Len() != 0 || exists(ra.Path) {
		t.Fatalf("clear should release everything")
	}
}

func TestCapacityEvicts(t *testing.T) {
	r, err := New(t.TempDir(), 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ra, _ := r.Acquire(snapshot(t, "a.png"))
	if _, err := r.Acquire(snapshot(t, "b.png")); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if exists(ra.Path) {
		t.Fatalf("evicted resource file still present")
	}
}

func TestCloseRemovesPrivateDir(t *testing.T) {
	r, err := New("", 0)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := r.Acquire(snapshot(t, "a.png")); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if exists(r.Dir()) {
		t.Fatalf("dir %s not removed", r.Dir())
	}
	if _, err := r.Acquire(snapshot(t, "b.png")); err != ErrClosed {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}
