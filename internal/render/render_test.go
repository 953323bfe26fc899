package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/example/retouch/internal/theme"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestSideBySideScalesToCurrentHeight(t *testing.T) {
	before := solid(50, 25, color.RGBA{B: 255, A: 255})
	after := solid(40, 50, color.RGBA{R: 255, A: 255})
	out := SideBySide(before, after, "Original", "Current", nil)
	if want := image.Rect(0, 0, 100+gutter+40, 50); out.Bounds() != want {
		t.Fatalf("bounds = %v, want %v", out.Bounds(), want)
	}
	if got := out.RGBAAt(90, 45); got.B != 255 || got.R != 0 {
		t.Fatalf("left half should be the original, got %v", got)
	}
	if got := out.RGBAAt(100+gutter+35, 45); got.R != 255 {
		t.Fatalf("right half should be the current image, got %v", got)
	}
}

func TestLabelDrawsText(t *testing.T) {
	th := theme.Default()
	img := solid(120, 40, color.RGBA{A: 255})
	box := Label(img, image.Pt(2, 2), "Original", th)
	if box.Dx() <= 8 || box.Dy() != basicFaceHeight()+4 {
		t.Fatalf("box = %v", box)
	}
	found := false
	for y := box.Min.Y; y < box.Max.Y && !found; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			if img.RGBAAt(x, y) == th.LabelText {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("no text pixels inside the label box")
	}
	if got := Label(img, image.Pt(5, 5), "", th); !got.Empty() {
		t.Fatalf("empty label should draw nothing")
	}
}

func TestMarkerRing(t *testing.T) {
	th := theme.Default()
	img := solid(64, 64, color.RGBA{A: 255})
	at := image.Pt(32, 32)
	Marker(img, at, th)
	if got := img.RGBAAt(at.X+markerRadius-1, at.Y); got != th.Marker {
		t.Fatalf("ring pixel = %v, want %v", got, th.Marker)
	}
	if got := img.RGBAAt(at.X, at.Y); got != th.Marker {
		t.Fatalf("center dot = %v, want %v", got, th.Marker)
	}
	if got := img.RGBAAt(at.X+markerRadius+3, at.Y); got == (color.RGBA{A: 255}) {
		t.Fatalf("expected halo outside the ring")
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{A: 255}) {
		t.Fatalf("marker leaked to %v", got)
	}
}

func TestCropOverlay(t *testing.T) {
	th := theme.Default()
	bg := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	img := solid(40, 40, bg)
	sel := image.Rect(10, 10, 30, 30)
	CropOverlay(img, img.Bounds(), sel, th)
	if got := img.RGBAAt(20, 20); got != bg {
		t.Fatalf("inside selection changed to %v", got)
	}
	if got := img.RGBAAt(2, 2); got == bg {
		t.Fatalf("outside selection should be shaded")
	}
	if got := img.RGBAAt(10, 20); got != th.CropBorder {
		t.Fatalf("border = %v, want %v", got, th.CropBorder)
	}
}

func TestBlurGrayPreservesFlatField(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 9, 9))
	for i := range src.Pix {
		src.Pix[i] = 100
	}
	out := blurGray(src, 3)
	for i, v := range out.Pix {
		if v != 100 {
			t.Fatalf("pixel %d = %d, want 100", i, v)
		}
	}
}

func basicFaceHeight() int { return 13 }
