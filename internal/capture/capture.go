// Package capture grabs screen images to start an edit session from.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// Options controls a screen capture.
type Options struct {
	// Interactive lets the user pick the area through the desktop portal.
	Interactive bool
	// Monitor, when set, crops the result to the matching monitor.
	Monitor       string
	IncludeCursor bool
}

// ErrCancelled is returned when the user dismisses an interactive capture.
var ErrCancelled = errors.New("capture cancelled")

// Platform hooks, replaced in tests.
var (
	portalScreenshot = portalCapture
	rootScreenshot   = x11RootCapture
	listMonitors     = x11Monitors
)

// Screen captures the desktop. The desktop portal is tried first; outside
// Wayland sessions the X11 root window is used when the portal is missing.
func Screen(ctx context.Context, opts Options) (*image.RGBA, error) {
	img, err := portalScreenshot(ctx, opts)
	if err != nil {
		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) || opts.Interactive || runningOnWayland() {
			return nil, err
		}
		var rootErr error
		img, rootErr = rootScreenshot()
		if rootErr != nil {
			return nil, fmt.Errorf("portal: %v; x11 fallback: %w", err, rootErr)
		}
	}
	if opts.Monitor == "" {
		return img, nil
	}
	monitors, err := listMonitors()
	if err != nil {
		return nil, err
	}
	mon, err := FindMonitor(monitors, opts.Monitor)
	if err != nil {
		return nil, err
	}
	return cropToRect(img, mon.Rect)
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}
