package main

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/example/retouch/internal/geometry"
	"github.com/example/retouch/internal/history"
	"github.com/example/retouch/internal/session"
)

// runEdit submits req and waits for the outcome.
func runEdit(ctx context.Context, s *session.Session, req session.EditRequest) (*history.Snapshot, error) {
	p, err := s.RequestEdit(ctx, req)
	if err != nil {
		return nil, err
	}
	out, err := p.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return out.Snapshot, out.Err
}

// naturalSize is the size of the current image. Command line coordinates are
// given in image pixels, so it doubles as the rendered size.
func naturalSize(s *session.Session) (geometry.Size, error) {
	cur := s.CurrentImage()
	if cur == nil {
		return geometry.Size{}, session.ErrNoImage
	}
	return geometry.SizeOf(image.Rectangle{Max: cur.Size()}), nil
}

// selectPoint switches to the retouch tool and picks the hotspot at p.
func selectPoint(s *session.Session, p image.Point) error {
	size, err := naturalSize(s)
	if err != nil {
		return err
	}
	s.SetTool(session.ToolRetouch)
	if !s.SelectHotspot(geometry.Point{X: float64(p.X), Y: float64(p.Y)}, size) {
		return fmt.Errorf("cannot select point %d,%d", p.X, p.Y)
	}
	return nil
}

// selectCrop switches to the crop tool and selects r.
func selectCrop(s *session.Session, r geometry.Rect) error {
	size, err := naturalSize(s)
	if err != nil {
		return err
	}
	s.SetTool(session.ToolCrop)
	if !s.SetCropRegion(r, size) {
		return fmt.Errorf("cannot select crop region %gx%g", r.W, r.H)
	}
	return nil
}

// parsePoint accepts "x,y".
func parsePoint(s string) (image.Point, error) {
	vals, err := parseInts(s, 2)
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return image.Pt(vals[0], vals[1]), nil
}

// parseRect accepts "x,y,w,h".
func parseRect(s string) (geometry.Rect, error) {
	vals, err := parseInts(s, 4)
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("invalid rectangle %q: %w", s, err)
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return geometry.Rect{}, fmt.Errorf("invalid rectangle %q: width and height must be positive", s)
	}
	return geometry.Rect{X: float64(vals[0]), Y: float64(vals[1]), W: float64(vals[2]), H: float64(vals[3])}, nil
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d numbers", n)
	}
	vals := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
