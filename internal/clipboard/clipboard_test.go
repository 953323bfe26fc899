package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/example/retouch/internal/history"
)

func stub(t *testing.T, w func([]byte) error, r func() ([]byte, error)) {
	t.Helper()
	oldW, oldR := write, read
	write, read = w, r
	t.Cleanup(func() { write, read = oldW, oldR })
}

func TestCopyConvertsToPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 3)), nil); err != nil {
		t.Fatal(err)
	}
	snap, err := history.NewSnapshot("photo.jpg", buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	var got []byte
	stub(t, func(b []byte) error { got = b; return nil }, nil)

	if err := Copy(snap); err != nil {
		t.Fatalf("copy: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(got))
	if err != nil {
		t.Fatalf("clipboard data is not png: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}

func TestCopyNil(t *testing.T) {
	if err := Copy(nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestPasteEmpty(t *testing.T) {
	stub(t, nil, func() ([]byte, error) { return nil, nil })
	if _, err := Paste(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
}
