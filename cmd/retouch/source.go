package main

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/retouch/internal/capture"
	"github.com/example/retouch/internal/clipboard"
	"github.com/example/retouch/internal/history"
	"github.com/example/retouch/internal/session"
)

// Image sources, replaced in tests.
var (
	captureScreenFn = capture.Screen
	pasteFn         = clipboard.Paste
	copyFn          = clipboard.Copy
)

// loadSource starts a new history in s from a file path, "clipboard" or
// "capture".
func loadSource(ctx context.Context, s *session.Session, src string, opts capture.Options) (*history.Snapshot, error) {
	src = strings.TrimSpace(src)
	switch strings.ToLower(src) {
	case "":
		return nil, fmt.Errorf("no input given")
	case "clipboard", "clip":
		data, err := pasteFn()
		if err != nil {
			return nil, fmt.Errorf("read clipboard: %w", err)
		}
		return s.Load(history.Name("clipboard", time.Now(), "png"), data)
	case "capture", "screen":
		img, err := captureScreenFn(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to capture screen: %w", err)
		}
		return s.LoadImage(history.Name("capture", time.Now(), "png"), img)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src, err)
	}
	return s.Load(filepath.Base(src), data)
}

// outputPath picks where a snapshot is saved: path as given, or the
// snapshot's name inside saveDir.
func outputPath(path, saveDir string, snap *history.Snapshot) string {
	if strings.TrimSpace(path) != "" {
		return path
	}
	name := snap.Name()
	if saveDir == "" {
		return name
	}
	return filepath.Join(saveDir, name)
}

// saveSnapshot writes the snapshot to path and returns the absolute path
// written. The encoded bytes are written unchanged unless path asks for PNG
// and the snapshot is in another format.
func saveSnapshot(snap *history.Snapshot, path string) (string, error) {
	if snap == nil {
		return "", session.ErrNoImage
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", dir, err)
		}
	}
	data := snap.Bytes()
	if strings.EqualFold(filepath.Ext(path), ".png") && snap.Format() != "png" {
		img, err := snap.Decode()
		if err != nil {
			return "", err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("encode %s: %w", path, err)
		}
		data = buf.Bytes()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, nil
}
