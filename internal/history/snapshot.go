package history

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
	"time"

	// Decoders for payloads returned by the edit service or loaded by users.
	_ "image/gif"
	_ "image/jpeg"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// DecodeError reports an image payload that could not be decoded.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("decode image: %v", e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Snapshot is one immutable image state. The payload is kept in its encoded
// form and only handed out as copies or read-only readers.
type Snapshot struct {
	id      string
	name    string
	format  string
	data    []byte
	size    image.Point
	created time.Time
}

// NewSnapshot validates data by decoding it and wraps it in a snapshot. The
// caller's slice is copied.
func NewSnapshot(name string, data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Name: name, Err: fmt.Errorf("empty payload")}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Name: name, Err: err}
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, &DecodeError{Name: name, Err: fmt.Errorf("image has no pixels")}
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Snapshot{
		id:      uuid.NewString(),
		name:    name,
		format:  format,
		data:    buf,
		size:    image.Pt(b.Dx(), b.Dy()),
		created: time.Now(),
	}, nil
}

// NewSnapshotFromImage encodes img as PNG and wraps it in a snapshot.
func NewSnapshotFromImage(name string, img image.Image) (*Snapshot, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return NewSnapshot(name, buf.Bytes())
}

// Name builds a synthetic snapshot name such as "filter-1700000000000.png".
func Name(prefix string, at time.Time, format string) string {
	if format == "" {
		format = "png"
	}
	return fmt.Sprintf("%s-%d.%s", prefix, at.UnixMilli(), extensionFor(format))
}

func extensionFor(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	}
	return strings.ToLower(format)
}

// ID returns the snapshot's unique identity.
func (s *Snapshot) ID() string { return s.id }

// Name returns the display name.
func (s *Snapshot) Name() string { return s.name }

// Format returns the decoder name of the payload, e.g. "png".
func (s *Snapshot) Format() string { return s.format }

// MIMEType returns the payload content type.
func (s *Snapshot) MIMEType() string { return "image/" + s.format }

// Size returns the native pixel dimensions.
func (s *Snapshot) Size() image.Point { return s.size }

// Len returns the payload length in bytes.
func (s *Snapshot) Len() int { return len(s.data) }

// Created returns when the snapshot was made.
func (s *Snapshot) Created() time.Time { return s.created }

// Bytes returns a copy of the encoded payload.
func (s *Snapshot) Bytes() []byte {
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out
}

// Reader returns a reader over the encoded payload.
func (s *Snapshot) Reader() io.Reader { return bytes.NewReader(s.data) }

// Decode decodes a fresh copy of the image.
func (s *Snapshot) Decode() (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(s.data))
	if err != nil {
		return nil, &DecodeError{Name: s.name, Err: err}
	}
	return img, nil
}
