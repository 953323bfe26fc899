package viewer

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/retouch/internal/geometry"
	"github.com/example/retouch/internal/render"
	"github.com/example/retouch/internal/session"
	"github.com/example/retouch/internal/theme"
)

const (
	statusHeight = 22
	margin       = 8
)

// layout places an image of a given native size inside a window.
type layout struct {
	window   image.Point
	canvas   image.Rectangle
	image    image.Rectangle
	rendered geometry.Size
}

func newLayout(window image.Point, natural image.Point) layout {
	l := layout{window: window}
	l.canvas = image.Rect(0, 0, window.X, max(window.Y-statusHeight, 0))
	bounds := geometry.Size{
		W: float64(l.canvas.Dx() - 2*margin),
		H: float64(l.canvas.Dy() - 2*margin),
	}
	fit, _ := geometry.Fit(geometry.Size{W: float64(natural.X), H: float64(natural.Y)}, bounds)
	if fit.Empty() {
		return l
	}
	w := int(math.Round(fit.W))
	h := int(math.Round(fit.H))
	x := l.canvas.Min.X + (l.canvas.Dx()-w)/2
	y := l.canvas.Min.Y + (l.canvas.Dy()-h)/2
	l.image = image.Rect(x, y, x+w, y+h)
	l.rendered = geometry.Size{W: float64(w), H: float64(h)}
	return l
}

// pointer converts a window position into a position on the rendered image.
// It reports false outside the image.
func (l layout) pointer(x, y float32) (geometry.Point, bool) {
	p := image.Pt(int(x), int(y))
	if l.image.Empty() || !p.In(l.image) {
		return geometry.Point{}, false
	}
	return geometry.Point{
		X: float64(x) - float64(l.image.Min.X),
		Y: float64(y) - float64(l.image.Min.Y),
	}, true
}

// clamp keeps a drag inside the rendered image.
func (l layout) clamp(x, y float32) geometry.Point {
	px := math.Min(math.Max(float64(x)-float64(l.image.Min.X), 0), l.rendered.W)
	py := math.Min(math.Max(float64(y)-float64(l.image.Min.Y), 0), l.rendered.H)
	return geometry.Point{X: px, Y: py}
}

func (l layout) toWindow(r geometry.Rect) image.Rectangle {
	r = r.Canon()
	x0 := l.image.Min.X + int(math.Round(r.X))
	y0 := l.image.Min.Y + int(math.Round(r.Y))
	return image.Rect(x0, y0, x0+int(math.Round(r.W)), y0+int(math.Round(r.H)))
}

// frame is everything needed to draw one window update.
type frame struct {
	layout   layout
	img      image.Image
	state    session.OperationState
	tool     session.Tool
	aspect   geometry.Aspect
	hotspot  *geometry.Hotspot
	crop     *geometry.Rect
	version  int
	versions int
	compare  bool
	message  string
}

func (f frame) status() string {
	if f.img == nil {
		return "no image loaded"
	}
	s := fmt.Sprintf("%s  v%d/%d  tool:%s", f.state, f.version+1, f.versions, f.tool)
	if f.tool == session.ToolCrop {
		s += "  aspect:" + f.aspect.String()
	}
	if f.compare {
		s += "  [original]"
	}
	if f.message != "" {
		s += "  " + f.message
	}
	return s
}

func compose(dst draw.Image, f frame, th *theme.Theme) {
	if th == nil {
		th = theme.Default()
	}
	b := dst.Bounds()
	draw.Draw(dst, b, image.NewUniform(th.Background), image.Point{}, draw.Src)

	if f.img != nil && !f.layout.image.Empty() {
		render.Checker(dst, f.layout.image, th)
		xdraw.ApproxBiLinear.Scale(dst, f.layout.image, f.img, f.img.Bounds(), draw.Over, nil)
		if !f.compare {
			if f.crop != nil {
				render.CropOverlay(dst, f.layout.image, f.layout.toWindow(*f.crop), th)
			}
			if f.hotspot != nil {
				at := f.layout.image.Min.Add(image.Pt(
					int(math.Round(f.hotspot.Display.X)),
					int(math.Round(f.hotspot.Display.Y)),
				))
				render.Marker(dst, at, th)
			}
		}
	}

	bar := image.Rect(b.Min.X, b.Max.Y-statusHeight, b.Max.X, b.Max.Y)
	draw.Draw(dst, bar, image.NewUniform(th.StatusBackground), image.Point{}, draw.Src)
	col := th.StatusText
	switch f.state.Phase {
	case session.PhaseInFlight:
		col = th.StatusBusy
	case session.PhaseFailed:
		col = th.StatusError
	}
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face}
	ascent := face.Metrics().Ascent.Ceil()
	d.Dot = fixed.P(bar.Min.X+6, bar.Min.Y+(statusHeight-face.Height)/2+ascent)
	d.DrawString(f.status())
}
