// Package render draws the compare view and the selection overlays shown on
// top of the image being edited.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/example/retouch/internal/theme"
)

const (
	markerRadius = 10
	haloRadius   = 6
)

// Marker draws the retouch hotspot centered on at: a soft halo and a ring.
func Marker(dst draw.Image, at image.Point, th *theme.Theme) {
	if th == nil {
		th = theme.Default()
	}
	pad := markerRadius + 2*haloRadius
	box := image.Rect(-pad, -pad, pad+1, pad+1)
	mask := image.NewGray(box.Sub(box.Min))
	c := image.Pt(pad, pad)
	fillDisc(mask, c, markerRadius, 0xff)
	halo := blurGray(mask, haloRadius)
	draw.DrawMask(dst, box.Add(at), image.NewUniform(th.MarkerHalo), image.Point{}, halo, image.Point{}, draw.Over)

	ring := image.NewGray(mask.Bounds())
	fillDisc(ring, c, markerRadius, 0xff)
	fillDisc(ring, c, markerRadius-2, 0)
	draw.DrawMask(dst, box.Add(at), image.NewUniform(th.Marker), image.Point{}, ring, image.Point{}, draw.Over)
	dot := image.Rect(-1, -1, 2, 2).Add(at)
	draw.Draw(dst, dot, image.NewUniform(th.Marker), image.Point{}, draw.Over)
}

func fillDisc(m *image.Gray, c image.Point, r int, v uint8) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				m.SetGray(c.X+x, c.Y+y, color.Gray{Y: v})
			}
		}
	}
}

// CropOverlay shades everything in area outside sel and outlines sel.
func CropOverlay(dst draw.Image, area, sel image.Rectangle, th *theme.Theme) {
	if th == nil {
		th = theme.Default()
	}
	sel = sel.Intersect(area)
	shade := image.NewUniform(th.CropShade)
	for _, r := range []image.Rectangle{
		image.Rect(area.Min.X, area.Min.Y, area.Max.X, sel.Min.Y),
		image.Rect(area.Min.X, sel.Max.Y, area.Max.X, area.Max.Y),
		image.Rect(area.Min.X, sel.Min.Y, sel.Min.X, sel.Max.Y),
		image.Rect(sel.Max.X, sel.Min.Y, area.Max.X, sel.Max.Y),
	} {
		if !r.Empty() {
			draw.Draw(dst, r, shade, image.Point{}, draw.Over)
		}
	}
	if sel.Empty() {
		return
	}
	Outline(dst, sel, th.CropBorder)
}

// Outline draws a one pixel border just inside r.
func Outline(dst draw.Image, r image.Rectangle, c color.Color) {
	u := image.NewUniform(c)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

// Checker fills r with the transparency checkerboard.
func Checker(dst draw.Image, r image.Rectangle, th *theme.Theme) {
	if th == nil {
		th = theme.Default()
	}
	const cell = 8
	light, dark := image.NewUniform(th.CheckerLight), image.NewUniform(th.CheckerDark)
	for y := r.Min.Y; y < r.Max.Y; y += cell {
		for x := r.Min.X; x < r.Max.X; x += cell {
			src := light
			if ((x-r.Min.X)/cell+(y-r.Min.Y)/cell)%2 == 1 {
				src = dark
			}
			draw.Draw(dst, image.Rect(x, y, x+cell, y+cell).Intersect(r), src, image.Point{}, draw.Src)
		}
	}
}
