package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/retouch/internal/editsvc"
	"github.com/example/retouch/internal/history"
	"github.com/example/retouch/internal/session"
	"github.com/example/retouch/internal/viewer"
)

func newTestInteractive(t *testing.T) (*interactiveCmd, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cmd, err := parseInteractiveCmd(nil, testRoot())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cmd.stdout = &out
	cmd.stderr = &out
	if err := cmd.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(cmd.close)
	return cmd, &out
}

func run(t *testing.T, cmd *interactiveCmd, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if _, err := cmd.executeLine(line); err != nil {
			t.Fatalf("%s: %v", line, err)
		}
	}
}

func TestInteractiveCropUndoRedo(t *testing.T) {
	stubService(t, nil)
	cmd, out := newTestInteractive(t)
	in := writeInput(t, 40, 20)
	saved := filepath.Join(t.TempDir(), "result.png")

	run(t, cmd,
		"load "+in,
		"tool crop",
		"crop 0 0 20 10",
		"apply",
		"undo",
		"redo",
		"history",
		"save "+saved,
	)

	if cur := cmd.sess.CurrentImage(); cur.Size() != image.Pt(20, 10) {
		t.Fatalf("current size = %v", cur.Size())
	}
	if _, err := os.Stat(saved); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	text := out.String()
	for _, want := range []string{"loaded input.png (40x20", "applied crop", "version 1/2", "version 2/2", "saved "} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
	if !strings.Contains(text, "*  2  crop-") {
		t.Fatalf("history does not mark the current version:\n%s", text)
	}
}

func TestInteractiveRetouchUsesHotspot(t *testing.T) {
	var gotAt image.Point
	var gotText string
	stubService(t, editsvc.Funcs{
		EditAtFunc: func(_ context.Context, img editsvc.Image, instruction string, at image.Point) (editsvc.Image, error) {
			gotAt, gotText = at, instruction
			return editsvc.Image{Data: encodePNG(t, 40, 20, color.White), MIMEType: "image/png"}, nil
		},
	})
	cmd, _ := newTestInteractive(t)
	in := writeInput(t, 40, 20)

	run(t, cmd, "load "+in, "point 12,7", "retouch remove the spot")

	if gotAt != image.Pt(12, 7) || gotText != "remove the spot" {
		t.Fatalf("service got %v %q", gotAt, gotText)
	}
	if _, ok := cmd.sess.Hotspot(); ok {
		t.Fatalf("hotspot should be cleared after the edit is committed")
	}
	if entries, _ := cmd.sess.History(); len(entries) != 2 {
		t.Fatalf("history length = %d", len(entries))
	}
}

func TestInteractiveRetouchWithoutPoint(t *testing.T) {
	stubService(t, editsvc.Funcs{})
	cmd, _ := newTestInteractive(t)
	run(t, cmd, "load "+writeInput(t, 10, 10))
	_, err := cmd.executeLine("retouch brighten")
	if !errors.Is(err, session.ErrNoHotspot) {
		t.Fatalf("expected ErrNoHotspot, got %v", err)
	}
}

func TestInteractivePresetSelection(t *testing.T) {
	var got string
	stubService(t, editsvc.Funcs{
		ApplyFilterFunc: func(_ context.Context, img editsvc.Image, instruction string) (editsvc.Image, error) {
			got = instruction
			return editsvc.Image{Data: encodePNG(t, 10, 10, color.Black), MIMEType: "image/png"}, nil
		},
	})
	cmd, _ := newTestInteractive(t)
	run(t, cmd, "load "+writeInput(t, 10, 10))

	if _, err := cmd.executeLine("preset 1"); err == nil {
		t.Fatalf("preset without the filter or adjust tool should fail")
	}
	run(t, cmd, "tool filter", "text my own look", "preset anime")
	if p, ok := cmd.sel.Preset(); !ok || p.Name != "Anime" {
		t.Fatalf("preset = %+v, %v", p, ok)
	}
	run(t, cmd, "apply")
	if !strings.HasPrefix(got, "Restyle the photo as a bold Japanese anime") {
		t.Fatalf("service got %q", got)
	}
	if cmd.sel.Instruction() != "" {
		t.Fatalf("selection should be cleared after applying")
	}
}

func TestInteractiveToolSwitchClearsInstruction(t *testing.T) {
	stubService(t, nil)
	cmd, _ := newTestInteractive(t)
	run(t, cmd, "load "+writeInput(t, 10, 10), "tool adjust", "text brighter", "tool filter")
	if cmd.sel.Instruction() != "" {
		t.Fatalf("instruction survived a tool switch: %q", cmd.sel.Instruction())
	}
}

func TestInteractiveErrors(t *testing.T) {
	stubService(t, nil)
	cmd, _ := newTestInteractive(t)
	tests := []struct {
		line string
		want error
	}{
		{"undo", history.ErrNothingToUndo},
		{"original", history.ErrNoActiveSession},
		{"save", session.ErrNoImage},
		{"copy", session.ErrNoImage},
		{"compare", session.ErrNoImage},
	}
	for _, tt := range tests {
		if _, err := cmd.executeLine(tt.line); !errors.Is(err, tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.line, tt.want, err)
		}
	}
	if _, err := cmd.executeLine("frobnicate"); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if done, err := cmd.executeLine("exit"); !done || err != nil {
		t.Fatalf("exit = %v, %v", done, err)
	}
}

func TestInteractiveCompareWritesSideBySide(t *testing.T) {
	stubService(t, nil)
	cmd, _ := newTestInteractive(t)
	path := filepath.Join(t.TempDir(), "compare.png")
	run(t, cmd, "load "+writeInput(t, 40, 20), "tool crop", "crop 0 0 20 20", "apply", "compare "+path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read compare: %v", err)
	}
	snap, err := history.NewSnapshot("compare.png", data)
	if err != nil {
		t.Fatalf("decode compare: %v", err)
	}
	// The original is scaled to the current height of 20: 40 wide, gutter, 20 wide.
	if snap.Size() != image.Pt(68, 20) {
		t.Fatalf("compare size = %v", snap.Size())
	}
}

func TestInteractiveReplReadsUntilExit(t *testing.T) {
	stubService(t, nil)
	cmd, out := newTestInteractive(t)
	cmd.stdin = strings.NewReader("status\nbogus\nexit\nstatus\n")
	if err := cmd.repl(); err != nil {
		t.Fatalf("repl: %v", err)
	}
	if got := strings.Count(out.String(), "no image loaded"); got != 1 {
		t.Fatalf("expected one status before exit, got %d:\n%s", got, out.String())
	}
	if !strings.Contains(out.String(), `unknown command "bogus"`) {
		t.Fatalf("error not reported:\n%s", out.String())
	}
}

func TestInteractiveView(t *testing.T) {
	stubService(t, nil)
	original := runViewerFn
	var opened *viewer.Viewer
	runViewerFn = func(v *viewer.Viewer) { opened = v }
	t.Cleanup(func() { runViewerFn = original })

	cmd, _ := newTestInteractive(t)
	run(t, cmd, "view")
	if opened == nil || opened.Session != cmd.sess || opened.Registry != cmd.registry {
		t.Fatalf("viewer not wired to the session: %+v", opened)
	}
	if cmd.window != nil {
		t.Fatalf("window should be released after the viewer returns")
	}
}

func TestInteractiveExecs(t *testing.T) {
	stubService(t, nil)
	in := writeInput(t, 30, 30)
	out := filepath.Join(t.TempDir(), "exec.png")
	cmd, err := parseInteractiveCmd([]string{"-load", in, "-e", "tool crop", "-e", "crop 0 0 15 15", "-e", "apply", "-e", "save " + out}, testRoot())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var buf bytes.Buffer
	cmd.stdout, cmd.stderr = &buf, &buf
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output missing: %v\n%s", err, buf.String())
	}
}
