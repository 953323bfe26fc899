package render

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/retouch/internal/theme"
)

const gutter = 8

// SideBySide places before and after next to each other at the height of
// after, each with a caption in its top-left corner.
func SideBySide(before, after image.Image, beforeLabel, afterLabel string, th *theme.Theme) *image.RGBA {
	if th == nil {
		th = theme.Default()
	}
	h := after.Bounds().Dy()
	bw := scaledWidth(before.Bounds(), h)
	aw := after.Bounds().Dx()

	dst := image.NewRGBA(image.Rect(0, 0, bw+gutter+aw, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(th.Background), image.Point{}, draw.Src)

	left := image.Rect(0, 0, bw, h)
	right := image.Rect(bw+gutter, 0, bw+gutter+aw, h)
	Checker(dst, left, th)
	Checker(dst, right, th)
	xdraw.CatmullRom.Scale(dst, left, before, before.Bounds(), draw.Over, nil)
	draw.Draw(dst, right, after, after.Bounds().Min, draw.Over)

	Label(dst, left.Min.Add(image.Pt(4, 4)), beforeLabel, th)
	Label(dst, right.Min.Add(image.Pt(4, 4)), afterLabel, th)
	return dst
}

func scaledWidth(b image.Rectangle, h int) int {
	if b.Dy() == 0 {
		return 0
	}
	w := (b.Dx()*h + b.Dy()/2) / b.Dy()
	return max(w, 1)
}

// Label draws text on a filled box with its top-left corner at pt and returns
// the box.
func Label(dst draw.Image, pt image.Point, text string, th *theme.Theme) image.Rectangle {
	if text == "" {
		return image.Rectangle{Min: pt, Max: pt}
	}
	if th == nil {
		th = theme.Default()
	}
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.LabelText), Face: face}
	w := d.MeasureString(text).Ceil()
	box := image.Rect(pt.X, pt.Y, pt.X+w+8, pt.Y+face.Height+4)
	draw.Draw(dst, box, image.NewUniform(th.LabelBackground), image.Point{}, draw.Over)
	d.Dot = fixed.P(box.Min.X+4, box.Min.Y+2+face.Ascent)
	d.DrawString(text)
	return box
}
