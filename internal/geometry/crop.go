package geometry

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// ErrEmptyCrop is returned when a crop selection does not overlap the image.
var ErrEmptyCrop = errors.New("crop region is empty")

// Rect is a rectangle in display pixels. Width and height may be negative
// while a selection is dragged up or left; Canon normalizes it.
type Rect struct {
	X, Y, W, H float64
}

// RectFromPoints returns the rectangle spanned by two pointer positions.
func RectFromPoints(a, b Point) Rect {
	return Rect{X: a.X, Y: a.Y, W: b.X - a.X, H: b.Y - a.Y}.Canon()
}

// Canon returns r with a non-negative width and height.
func (r Rect) Canon() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Empty reports whether r covers no area.
func (r Rect) Empty() bool {
	return r.W == 0 || r.H == 0
}

// Aspect is a width:height ratio for crop selections. AspectFree leaves the
// selection unconstrained.
type Aspect float64

const (
	AspectFree   Aspect = 0
	AspectSquare Aspect = 1
	AspectWide   Aspect = 16.0 / 9.0
)

// ParseAspect accepts "free" or a "w:h" ratio such as "1:1" or "16:9".
func ParseAspect(s string) (Aspect, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "free" {
		return AspectFree, nil
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return AspectFree, fmt.Errorf("invalid aspect %q", s)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || w <= 0 {
		return AspectFree, fmt.Errorf("invalid aspect %q", s)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || h <= 0 {
		return AspectFree, fmt.Errorf("invalid aspect %q", s)
	}
	return Aspect(w / h), nil
}

func (a Aspect) String() string {
	switch a {
	case AspectFree:
		return "free"
	case AspectSquare:
		return "1:1"
	case AspectWide:
		return "16:9"
	}
	return strconv.FormatFloat(float64(a), 'f', 3, 64)
}

// CropRegion is a pending crop selection in display pixels along with the
// factors that scale it into native pixels.
type CropRegion struct {
	Display Rect
	ScaleX  float64
	ScaleY  float64
}

// NewCropRegion captures a display-space selection made on an image rendered
// at rendered size whose native size is natural.
func NewCropRegion(display Rect, rendered, natural Size) (CropRegion, bool) {
	if rendered.Empty() || natural.Empty() {
		return CropRegion{}, false
	}
	display = display.Canon()
	if display.Empty() {
		return CropRegion{}, false
	}
	return CropRegion{
		Display: display,
		ScaleX:  natural.W / rendered.W,
		ScaleY:  natural.H / rendered.H,
	}, true
}

// Native returns the selection in native pixel coordinates. It is not clamped
// to the image bounds.
func (c CropRegion) Native() image.Rectangle {
	d := c.Display.Canon()
	x0 := int(math.Round(d.X * c.ScaleX))
	y0 := int(math.Round(d.Y * c.ScaleY))
	x1 := int(math.Round((d.X + d.W) * c.ScaleX))
	y1 := int(math.Round((d.Y + d.H) * c.ScaleY))
	return image.Rect(x0, y0, x1, y1)
}

// Constrain shrinks the selection so its native size matches the aspect
// ratio, keeping the top-left corner in place.
func (c CropRegion) Constrain(a Aspect) CropRegion {
	if a <= 0 || c.ScaleX <= 0 || c.ScaleY <= 0 {
		return c
	}
	d := c.Display.Canon()
	nw := d.W * c.ScaleX
	nh := d.H * c.ScaleY
	if nw <= 0 || nh <= 0 {
		return c
	}
	if nw/nh > float64(a) {
		nw = nh * float64(a)
	} else {
		nh = nw / float64(a)
	}
	d.W = nw / c.ScaleX
	d.H = nh / c.ScaleY
	c.Display = d
	return c
}

// Rasterize copies the crop selection out of src at native resolution
// multiplied by the device pixel ratio. The drawing transform is scaled by the
// same ratio so the result stays sharp on high density displays. A ratio of
// zero or less is treated as one.
func Rasterize(src image.Image, region CropRegion, dpr float64) (*image.RGBA, error) {
	if src == nil {
		return nil, ErrEmptyCrop
	}
	if dpr <= 0 {
		dpr = 1
	}
	sr := region.Native().Intersect(src.Bounds())
	if sr.Empty() {
		return nil, ErrEmptyCrop
	}
	w := int(math.Round(float64(sr.Dx()) * dpr))
	h := int(math.Round(float64(sr.Dy()) * dpr))
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyCrop
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if dpr == 1 {
		draw.Draw(dst, dst.Bounds(), src, sr.Min, draw.Src)
		return dst, nil
	}
	s2d := f64.Aff3{
		dpr, 0, -float64(sr.Min.X) * dpr,
		0, dpr, -float64(sr.Min.Y) * dpr,
	}
	xdraw.CatmullRom.Transform(dst, s2d, src, sr, xdraw.Src, nil)
	return dst, nil
}
