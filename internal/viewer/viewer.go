// Package viewer shows a session's current image in a window and turns pointer
// and keyboard input into session operations.
package viewer

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/retouch/internal/display"
	"github.com/example/retouch/internal/geometry"
	"github.com/example/retouch/internal/history"
	"github.com/example/retouch/internal/session"
	"github.com/example/retouch/internal/theme"
)

const (
	defaultWidth  = 1024
	defaultHeight = 768
	messageTTL    = 4 * time.Second
)

// Viewer holds what the window needs to draw a session.
type Viewer struct {
	Session  *session.Session
	Registry *display.Registry
	Theme    *theme.Theme
	Title    string
	// DevicePixelRatio is passed with crop requests. Zero uses the
	// session default.
	DevicePixelRatio float64

	mu     sync.Mutex
	send   func(any)
	closed bool
}

// sessionEvent carries a session notification into the window's event loop.
type sessionEvent struct{ session.Event }

type closeEvent struct{}

// Close asks an open window to close. A window opened afterwards closes
// immediately.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	if v.send != nil {
		v.send(closeEvent{})
	}
}

func (v *Viewer) setSender(send func(any)) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.send = send
	return !v.closed
}

// Run opens the window and blocks until it is closed.
func (v *Viewer) Run() { driver.Main(v.Main) }

func (v *Viewer) Main(s screen.Screen) {
	width, height := defaultWidth, defaultHeight
	if cur := v.Session.CurrentImage(); cur != nil {
		sz := cur.Size()
		width = min(max(sz.X+2*margin, 320), defaultWidth)
		height = min(max(sz.Y+2*margin+statusHeight, 240), defaultHeight)
	}
	title := v.Title
	if title == "" {
		title = "Retouch"
	}
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: title})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()
	if !v.setSender(w.Send) {
		return
	}
	defer v.setSender(nil)

	unsubscribe := v.Session.Subscribe(func(e session.Event) { w.Send(sessionEvent{e}) })
	defer unsubscribe()

	in := &input{v: v}
	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			w.Send(paint.Event{})
		case paint.Event:
			v.paint(s, w, image.Pt(width, height), in)
		case closeEvent:
			return
		case sessionEvent:
			in.sessionChanged(e.Event)
			w.Send(paint.Event{})
		case mouse.Event:
			if in.mouse(e, v.layout(image.Pt(width, height))) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if e.Code == key.CodeEscape && e.Modifiers&key.ModShift != 0 {
				return
			}
			if in.key(e) {
				w.Send(paint.Event{})
			}
		case error:
			log.Printf("viewer: %v", e)
		}
	}
}

func (v *Viewer) layout(window image.Point) layout {
	cur := v.Session.CurrentImage()
	if cur == nil {
		return newLayout(window, image.Point{})
	}
	return newLayout(window, cur.Size())
}

func (v *Viewer) paint(s screen.Screen, w screen.Window, window image.Point, in *input) {
	if window.X <= 0 || window.Y <= 0 {
		return
	}
	b, err := s.NewBuffer(window)
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	compose(b.RGBA(), v.frame(window, in), v.Theme)
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// frame snapshots the session for drawing.
func (v *Viewer) frame(window image.Point, in *input) frame {
	f := frame{
		layout:  v.layout(window),
		state:   v.Session.State(),
		tool:    v.Session.Tool(),
		aspect:  v.Session.Aspect(),
		compare: in.compare,
		message: in.currentMessage(),
	}
	entries, cursor := v.Session.History()
	f.version, f.versions = cursor, len(entries)

	snap := v.Session.CurrentImage()
	if in.compare {
		snap = v.Session.OriginalImage()
	}
	if snap != nil {
		img, err := v.image(snap)
		if err != nil {
			in.setMessage(err.Error())
			f.message = in.currentMessage()
		} else {
			f.img = img
		}
	}
	if hs, ok := v.Session.Hotspot(); ok {
		f.hotspot = &hs
	}
	if in.dragging {
		r := geometry.RectFromPoints(in.dragFrom, in.dragTo)
		f.crop = &r
	} else if cr, ok := v.Session.CropRegion(); ok {
		r := cr.Display
		f.crop = &r
	}
	return f
}

// image returns the decoded form of snap, cached in the registry when one is
// set.
func (v *Viewer) image(snap *history.Snapshot) (image.Image, error) {
	if v.Registry == nil {
		return snap.Decode()
	}
	res, err := v.Registry.Acquire(snap)
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

// input tracks pointer and keyboard state between events.
type input struct {
	v        *Viewer
	dragging bool
	dragFrom geometry.Point
	dragTo   geometry.Point
	compare  bool

	message      string
	messageUntil time.Time
}

func (in *input) setMessage(msg string) {
	in.message = msg
	in.messageUntil = time.Now().Add(messageTTL)
}

func (in *input) currentMessage() string {
	if in.message == "" || time.Now().After(in.messageUntil) {
		return ""
	}
	return in.message
}

func (in *input) sessionChanged(e session.Event) {
	switch {
	case e.Type == session.EventState && e.State.Phase == session.PhaseFailed:
		in.setMessage(e.State.Err.Error())
	case e.Type == session.EventHistory && e.Change.Op == history.OpCommit:
		in.setMessage("edit applied")
	}
}

// mouse handles a pointer event and reports whether the window needs a
// repaint.
func (in *input) mouse(e mouse.Event, l layout) bool {
	sess := in.v.Session
	if e.Button != mouse.ButtonLeft && !in.dragging {
		return false
	}
	switch sess.Tool() {
	case session.ToolRetouch:
		if e.Direction != mouse.DirPress {
			return false
		}
		p, ok := l.pointer(e.X, e.Y)
		if !ok {
			return false
		}
		return sess.SelectHotspot(p, l.rendered)
	case session.ToolCrop:
		switch e.Direction {
		case mouse.DirPress:
			if _, ok := l.pointer(e.X, e.Y); !ok {
				return false
			}
			in.dragging = true
			in.dragFrom = l.clamp(e.X, e.Y)
			in.dragTo = in.dragFrom
			return true
		case mouse.DirNone:
			if !in.dragging {
				return false
			}
			in.dragTo = l.clamp(e.X, e.Y)
			return true
		case mouse.DirRelease:
			if !in.dragging {
				return false
			}
			in.dragging = false
			in.dragTo = l.clamp(e.X, e.Y)
			r := geometry.RectFromPoints(in.dragFrom, in.dragTo)
			if !sess.SetCropRegion(r, l.rendered) {
				sess.ClearCrop()
			}
			return true
		}
	}
	return false
}

// key handles a key event and reports whether the window needs a repaint.
func (in *input) key(e key.Event) bool {
	sess := in.v.Session
	if e.Rune == 'c' || e.Rune == 'C' {
		switch e.Direction {
		case key.DirPress:
			in.compare = sess.OriginalImage() != nil
		case key.DirRelease:
			in.compare = false
		}
		return true
	}
	if e.Direction != key.DirPress {
		return false
	}
	switch e.Code {
	case key.CodeEscape:
		in.dragging = false
		sess.ClearSelection()
		return true
	case key.CodeReturnEnter:
		in.applyCrop()
		return true
	}
	switch e.Rune {
	case '1', '2', '3', '4':
		sess.SetTool(session.Tool(e.Rune - '1'))
		in.dragging = false
	case 'u':
		in.report(sess.Undo())
	case 'r':
		in.report(sess.Redo())
	case 'o':
		in.report(sess.ResetToOriginal())
	default:
		return false
	}
	return true
}

func (in *input) applyCrop() {
	req := session.EditRequest{Kind: session.KindCrop, DevicePixelRatio: in.v.DevicePixelRatio}
	p, err := in.v.Session.RequestEdit(context.Background(), req)
	if err != nil {
		in.report(err)
		return
	}
	// Crops resolve before RequestEdit returns.
	if out, err := p.Wait(context.Background()); err == nil && out.Err != nil {
		in.report(out.Err)
	}
}

func (in *input) report(err error) {
	if err != nil {
		in.setMessage(err.Error())
	}
}
