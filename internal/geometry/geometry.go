// Package geometry maps positions between the space an image is displayed in
// and the image's native pixel space, and rasterizes crop selections.
package geometry

import (
	"image"
	"math"
)

// Size is a width and height in pixels. Rendered sizes come from a layout and
// may be fractional.
type Size struct {
	W, H float64
}

// SizeOf returns the size of r.
func SizeOf(r image.Rectangle) Size {
	return Size{W: float64(r.Dx()), H: float64(r.Dy())}
}

// Empty reports whether either dimension is zero or negative.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// Point is a position relative to the top-left corner of the rendered image.
type Point struct {
	X, Y float64
}

// ToNative converts a pointer position on the rendered image into native
// pixel coordinates. It reports false when either size is empty so callers can
// skip the update instead of dividing by zero.
func ToNative(p Point, rendered, natural Size) (image.Point, bool) {
	if rendered.Empty() || natural.Empty() {
		return image.Point{}, false
	}
	return image.Pt(
		int(math.Round(p.X/rendered.W*natural.W)),
		int(math.Round(p.Y/rendered.H*natural.H)),
	), true
}

// Hotspot is a point selected for a localized edit. Native is sent to the edit
// service; Display positions the on-screen marker.
type Hotspot struct {
	Native  image.Point
	Display Point
}

// NewHotspot derives a hotspot from a pointer position. The display point is
// the raw pointer offset, not the inverse of the native mapping.
func NewHotspot(pointer Point, rendered, natural Size) (Hotspot, bool) {
	native, ok := ToNative(pointer, rendered, natural)
	if !ok {
		return Hotspot{}, false
	}
	return Hotspot{Native: native, Display: pointer}, true
}

// Fit returns the largest size with the aspect ratio of natural that fits
// within bounds, together with the scale applied.
func Fit(natural, bounds Size) (Size, float64) {
	if natural.Empty() || bounds.Empty() {
		return Size{}, 0
	}
	scale := math.Min(bounds.W/natural.W, bounds.H/natural.H)
	return Size{W: natural.W * scale, H: natural.H * scale}, scale
}
