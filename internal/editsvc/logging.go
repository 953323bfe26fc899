package editsvc

import (
	"context"
	"image"
	"log"
	"time"
)

// WithLogging wraps next so every call logs its payload size, duration and
// failure. A nil logger uses log.Default().
func WithLogging(next Service, logger *log.Logger) Service {
	if logger == nil {
		logger = log.Default()
	}
	return &logging{next: next, log: logger}
}

type logging struct {
	next Service
	log  *log.Logger
}

func (l *logging) EditAt(ctx context.Context, img Image, instruction string, at image.Point) (Image, error) {
	start := time.Now()
	l.log.Printf("edit request (retouch at %d,%d): %d bytes", at.X, at.Y, len(img.Data))
	out, err := l.next.EditAt(ctx, img, instruction, at)
	l.done("retouch", start, out, err)
	return out, err
}

func (l *logging) ApplyFilter(ctx context.Context, img Image, instruction string) (Image, error) {
	start := time.Now()
	l.log.Printf("edit request (filter): %d bytes", len(img.Data))
	out, err := l.next.ApplyFilter(ctx, img, instruction)
	l.done("filter", start, out, err)
	return out, err
}

func (l *logging) ApplyAdjustment(ctx context.Context, img Image, instruction string) (Image, error) {
	start := time.Now()
	l.log.Printf("edit request (adjust): %d bytes", len(img.Data))
	out, err := l.next.ApplyAdjustment(ctx, img, instruction)
	l.done("adjust", start, out, err)
	return out, err
}

func (l *logging) done(op string, start time.Time, out Image, err error) {
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		l.log.Printf("edit error (%s) after %s: %v", op, elapsed, err)
		return
	}
	l.log.Printf("edit response (%s) after %s: %d bytes %s", op, elapsed, len(out.Data), out.MIMEType)
}
