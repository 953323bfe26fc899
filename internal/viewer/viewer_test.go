package viewer

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/retouch/internal/geometry"
	"github.com/example/retouch/internal/history"
	"github.com/example/retouch/internal/session"
	"github.com/example/retouch/internal/theme"
)

func newTestSession(t *testing.T, w, h int) *session.Session {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	s := session.New(nil)
	if _, err := s.LoadImage("test.png", img); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func TestLayoutFitsAndCenters(t *testing.T) {
	l := newLayout(image.Pt(1016, 522+statusHeight), image.Pt(2000, 1000))
	if l.rendered != (geometry.Size{W: 1000, H: 500}) {
		t.Fatalf("rendered = %+v", l.rendered)
	}
	if l.image != image.Rect(8, 11, 1008, 511) {
		t.Fatalf("image rect = %v", l.image)
	}
	p, ok := l.pointer(508, 261)
	if !ok || p != (geometry.Point{X: 500, Y: 250}) {
		t.Fatalf("pointer = %+v, %v", p, ok)
	}
	if _, ok := l.pointer(2, 2); ok {
		t.Fatalf("pointer outside the image should be rejected")
	}
	if c := l.clamp(-50, 2000); c != (geometry.Point{X: 0, Y: 500}) {
		t.Fatalf("clamp = %+v", c)
	}
}

func TestLayoutEmpty(t *testing.T) {
	l := newLayout(image.Pt(640, 480), image.Point{})
	if !l.image.Empty() || !l.rendered.Empty() {
		t.Fatalf("expected empty layout, got %+v", l)
	}
	if _, ok := l.pointer(10, 10); ok {
		t.Fatalf("pointer on empty layout")
	}
}

func TestClickSelectsNativeHotspot(t *testing.T) {
	s := newTestSession(t, 2000, 1000)
	l := newLayout(image.Pt(1016, 522+statusHeight), image.Pt(2000, 1000))
	in := &input{v: &Viewer{Session: s}}
	ev := mouse.Event{X: 508, Y: 261, Button: mouse.ButtonLeft, Direction: mouse.DirPress}
	if !in.mouse(ev, l) {
		t.Fatalf("click was ignored")
	}
	hs, ok := s.Hotspot()
	if !ok {
		t.Fatalf("no hotspot")
	}
	if hs.Native != image.Pt(1000, 500) {
		t.Fatalf("native = %v", hs.Native)
	}
	if hs.Display != (geometry.Point{X: 500, Y: 250}) {
		t.Fatalf("display = %+v", hs.Display)
	}
}

func TestDragDefinesCropRegion(t *testing.T) {
	s := newTestSession(t, 2000, 1000)
	s.SetTool(session.ToolCrop)
	l := newLayout(image.Pt(1016, 522+statusHeight), image.Pt(2000, 1000))
	in := &input{v: &Viewer{Session: s}}

	steps := []mouse.Event{
		{X: 108, Y: 61, Button: mouse.ButtonLeft, Direction: mouse.DirPress},
		{X: 150, Y: 90, Direction: mouse.DirNone},
		{X: 158, Y: 111, Button: mouse.ButtonLeft, Direction: mouse.DirRelease},
	}
	for i, ev := range steps {
		if !in.mouse(ev, l) {
			t.Fatalf("step %d ignored", i)
		}
	}
	if in.dragging {
		t.Fatalf("drag still active after release")
	}
	cr, ok := s.CropRegion()
	if !ok {
		t.Fatalf("no crop region")
	}
	if got := cr.Native(); got != image.Rect(200, 100, 300, 200) {
		t.Fatalf("native crop = %v", got)
	}

	if !in.key(key.Event{Code: key.CodeReturnEnter, Direction: key.DirPress}) {
		t.Fatalf("enter ignored")
	}
	cur := s.CurrentImage()
	if cur.Size() != image.Pt(100, 100) {
		t.Fatalf("cropped size = %v", cur.Size())
	}
	if _, ok := s.CropRegion(); ok {
		t.Fatalf("crop region should be cleared after commit")
	}
}

func TestKeys(t *testing.T) {
	s := newTestSession(t, 40, 20)
	in := &input{v: &Viewer{Session: s}}

	in.key(key.Event{Rune: '2', Direction: key.DirPress})
	if s.Tool() != session.ToolCrop {
		t.Fatalf("tool = %v", s.Tool())
	}
	in.key(key.Event{Rune: '4', Direction: key.DirPress})
	if s.Tool() != session.ToolFilter {
		t.Fatalf("tool = %v", s.Tool())
	}

	in.key(key.Event{Rune: 'u', Direction: key.DirPress})
	if in.currentMessage() != history.ErrNothingToUndo.Error() {
		t.Fatalf("message = %q", in.currentMessage())
	}

	in.key(key.Event{Rune: 'c', Direction: key.DirPress})
	if !in.compare {
		t.Fatalf("compare not active while c is held")
	}
	in.key(key.Event{Rune: 'c', Direction: key.DirRelease})
	if in.compare {
		t.Fatalf("compare still active after release")
	}

	if in.key(key.Event{Rune: 'z', Direction: key.DirPress}) {
		t.Fatalf("unbound key should not repaint")
	}
}

func TestEnterWithoutSelectionReportsValidation(t *testing.T) {
	s := newTestSession(t, 40, 20)
	s.SetTool(session.ToolCrop)
	in := &input{v: &Viewer{Session: s}}
	in.key(key.Event{Code: key.CodeReturnEnter, Direction: key.DirPress})
	if in.currentMessage() == "" {
		t.Fatalf("expected a message")
	}
	if _, n := s.History(); n != 0 {
		t.Fatalf("history cursor moved to %d", n)
	}
}

func TestSessionFailureSetsMessage(t *testing.T) {
	in := &input{}
	in.sessionChanged(session.Event{
		Type:  session.EventState,
		State: session.OperationState{Phase: session.PhaseFailed, Kind: session.KindFilter, Err: errors.New("blocked")},
	})
	if in.currentMessage() != "blocked" {
		t.Fatalf("message = %q", in.currentMessage())
	}
}

func TestComposeDrawsStatusAndImage(t *testing.T) {
	th := theme.Default()
	window := image.Pt(200, 150)
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	red := color.RGBA{255, 0, 0, 255}
	for i := 0; i < len(src.Pix); i += 4 {
		copy(src.Pix[i:], []uint8{red.R, red.G, red.B, red.A})
	}
	f := frame{
		layout:   newLayout(window, src.Bounds().Size()),
		img:      src,
		tool:     session.ToolRetouch,
		versions: 1,
	}
	dst := image.NewRGBA(image.Rectangle{Max: window})
	compose(dst, f, th)

	center := f.layout.image.Min.Add(f.layout.image.Size().Div(2))
	if got := dst.RGBAAt(center.X, center.Y); got != red {
		t.Fatalf("image pixel = %v", got)
	}
	if got := dst.RGBAAt(199, 149); got != th.StatusBackground {
		t.Fatalf("status bar pixel = %v", got)
	}
	if got := dst.RGBAAt(1, 1); got != th.Background {
		t.Fatalf("background pixel = %v", got)
	}
}

func TestFrameStatus(t *testing.T) {
	f := frame{}
	if f.status() != "no image loaded" {
		t.Fatalf("status = %q", f.status())
	}
	f = frame{img: image.NewRGBA(image.Rect(0, 0, 1, 1)), tool: session.ToolCrop, aspect: geometry.AspectSquare, version: 1, versions: 3}
	want := "idle  v2/3  tool:crop  aspect:1:1"
	if f.status() != want {
		t.Fatalf("status = %q, want %q", f.status(), want)
	}
}
