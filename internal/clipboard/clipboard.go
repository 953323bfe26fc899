// Package clipboard moves PNG images between the system clipboard and edit
// sessions.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"

	"github.com/example/retouch/internal/history"
)

var (
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	// ErrEmpty is returned when the clipboard holds no image.
	ErrEmpty = errors.New("clipboard does not contain image data")
)

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// write and read are replaced in tests.
var (
	write = WriteImage
	read  = ReadImage
)

// Copy places the snapshot on the clipboard as PNG, converting other formats.
func Copy(s *history.Snapshot) error {
	if s == nil {
		return errors.New("copy: no image")
	}
	data := s.Bytes()
	if s.Format() != "png" {
		img, err := s.Decode()
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("copy %s: %w", s.Name(), err)
		}
		data = buf.Bytes()
	}
	return write(data)
}

// Paste returns the clipboard image as PNG bytes.
func Paste() ([]byte, error) {
	data, err := read()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return data, nil
}
