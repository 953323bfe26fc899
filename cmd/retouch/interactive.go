package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-units"

	"github.com/example/retouch/internal/capture"
	"github.com/example/retouch/internal/display"
	"github.com/example/retouch/internal/geometry"
	"github.com/example/retouch/internal/history"
	"github.com/example/retouch/internal/presets"
	"github.com/example/retouch/internal/render"
	"github.com/example/retouch/internal/session"
	"github.com/example/retouch/internal/viewer"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// runViewerFn opens a viewer window and blocks until it closes.
var runViewerFn = func(v *viewer.Viewer) { v.Run() }

type interactiveCmd struct {
	*root
	fs    *flag.FlagSet
	execs commandList
	view  bool
	input string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	ctx      context.Context
	sess     *session.Session
	registry *display.Registry
	catalog  *presets.Catalog
	sel      presets.Selection
	window   *viewer.Viewer
}

func (i *interactiveCmd) FlagSet() *flag.FlagSet {
	return i.fs
}

func (i *interactiveCmd) Program() string {
	if i.root == nil {
		return "retouch interactive"
	}
	return i.root.Program() + " interactive"
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ExitOnError)
	i := &interactiveCmd{root: r, fs: fs, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	fs.Usage = usageFunc(i)
	fs.Var(&i.execs, "e", "execute interactive command in immediate mode (may be specified multiple times)")
	fs.BoolVar(&i.view, "view", false, "show the session in a viewer window while reading commands")
	fs.StringVar(&i.input, "load", "", "image to load before reading commands: file, clipboard or capture")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: i}
	}
	return i, nil
}

func (i *interactiveCmd) start() error {
	if i.ctx == nil {
		i.ctx = context.Background()
	}
	if i.stdout == nil {
		i.stdout = os.Stdout
	}
	if i.stderr == nil {
		i.stderr = os.Stderr
	}
	if i.sess == nil {
		i.sess = i.root.newSession(i.ctx)
	}
	if i.registry == nil {
		reg, err := display.New("", display.DefaultCapacity)
		if err != nil {
			return err
		}
		i.registry = reg
		i.sess.Subscribe(func(e session.Event) {
			if e.Type == session.EventHistory {
				reg.HistoryChanged(e.Change)
			}
		})
	}
	if i.input != "" {
		return i.load(i.input)
	}
	return nil
}

func (i *interactiveCmd) close() {
	if i.registry != nil {
		if err := i.registry.Close(); err != nil {
			fmt.Fprintf(i.stderr, "warning: %v\n", err)
		}
	}
}

func (i *interactiveCmd) Run() error {
	if err := i.start(); err != nil {
		return err
	}
	defer i.close()

	for _, line := range i.execs {
		done, err := i.executeLine(line)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	if len(i.execs) > 0 && !i.view {
		return nil
	}
	if !i.view {
		return i.repl()
	}

	i.window = i.newViewer()
	errc := make(chan error, 1)
	go func() {
		errc <- i.repl()
		i.window.Close()
	}()
	runViewerFn(i.window)
	select {
	case err := <-errc:
		return err
	default:
		// The window was closed while the prompt is still waiting for input.
		return nil
	}
}

func (i *interactiveCmd) newViewer() *viewer.Viewer {
	return &viewer.Viewer{
		Session:          i.sess,
		Registry:         i.registry,
		Theme:            i.root.activeThemeOrDefault(),
		Title:            "Retouch",
		DevicePixelRatio: i.root.cfg().Display.DevicePixelRatio,
	}
}

func (i *interactiveCmd) repl() error {
	fmt.Fprintln(i.stdout, "Enter commands (type 'help' for a list, 'exit' to quit)")
	scanner := bufio.NewScanner(i.stdin)
	for {
		fmt.Fprint(i.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := i.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(i.stderr, err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}

// executeLine runs one command and reports whether the session should end.
func (i *interactiveCmd) executeLine(line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false, nil
	}
	name, rest, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	rest = strings.TrimSpace(rest)

	switch name {
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprint(i.stdout, (&UsageError{of: i}).Error())
		return false, nil
	case "load":
		return false, i.load(rest)
	case "tool":
		t, err := session.ParseTool(rest)
		if err != nil {
			return false, err
		}
		i.setTool(t)
		fmt.Fprintf(i.stdout, "tool: %s\n", t)
		return false, nil
	case "point":
		pt, err := parsePoint(rest)
		if err != nil {
			return false, err
		}
		if i.sess.Tool() != session.ToolRetouch {
			i.sel.Clear()
		}
		if err := selectPoint(i.sess, pt); err != nil {
			return false, err
		}
		hs, _ := i.sess.Hotspot()
		fmt.Fprintf(i.stdout, "hotspot: %d,%d\n", hs.Native.X, hs.Native.Y)
		return false, nil
	case "crop":
		r, err := parseRect(rest)
		if err != nil {
			return false, err
		}
		if i.sess.Tool() != session.ToolCrop {
			i.sel.Clear()
		}
		if err := selectCrop(i.sess, r); err != nil {
			return false, err
		}
		cr, _ := i.sess.CropRegion()
		fmt.Fprintf(i.stdout, "crop: %v\n", cr.Native())
		return false, nil
	case "aspect":
		a, err := geometry.ParseAspect(rest)
		if err != nil {
			return false, err
		}
		i.sess.ConstrainCrop(a)
		fmt.Fprintf(i.stdout, "aspect: %s\n", a)
		return false, nil
	case "preset":
		return false, i.selectPreset(rest)
	case "text":
		if rest == "" {
			return false, session.ErrEmptyInstruction
		}
		i.sel.SetCustom(rest)
		return false, nil
	case "apply":
		return false, i.apply()
	case "retouch", "adjust", "filter":
		t, err := session.ParseTool(name)
		if err != nil {
			return false, err
		}
		i.setTool(t)
		i.sel.SetCustom(rest)
		return false, i.apply()
	case "undo":
		return false, i.report(i.sess.Undo())
	case "redo":
		return false, i.report(i.sess.Redo())
	case "original", "reset":
		return false, i.report(i.sess.ResetToOriginal())
	case "startover":
		if err := i.sess.StartOver(); err != nil {
			return false, err
		}
		i.sel.Clear()
		fmt.Fprintln(i.stdout, "session cleared")
		return false, nil
	case "history":
		i.printHistory()
		return false, nil
	case "status":
		i.printStatus()
		return false, nil
	case "presets":
		return false, i.printPresets(rest)
	case "compare":
		return false, i.compare(rest)
	case "save":
		return false, i.save(rest)
	case "copy":
		return false, i.copy()
	case "view":
		if i.window != nil {
			return false, fmt.Errorf("viewer is already open")
		}
		i.window = i.newViewer()
		runViewerFn(i.window)
		i.window = nil
		return false, nil
	}
	return false, fmt.Errorf("unknown command %q (type 'help' for a list)", name)
}

func (i *interactiveCmd) load(src string) error {
	if src == "" {
		return fmt.Errorf("usage: load <file|clipboard|capture>")
	}
	snap, err := loadSource(i.ctx, i.sess, src, capture.Options{})
	if err != nil {
		return err
	}
	i.sel.Clear()
	sz := snap.Size()
	fmt.Fprintf(i.stdout, "loaded %s (%dx%d, %s)\n", snap.Name(), sz.X, sz.Y, units.HumanSize(float64(snap.Len())))
	return nil
}

func (i *interactiveCmd) setTool(t session.Tool) {
	if i.sess.Tool() != t {
		i.sel.Clear()
	}
	i.sess.SetTool(t)
}

func toolGroup(t session.Tool) (presets.Group, bool) {
	switch t {
	case session.ToolFilter:
		return presets.GroupFilter, true
	case session.ToolAdjust:
		return presets.GroupAdjustment, true
	}
	return "", false
}

func (i *interactiveCmd) presetCatalog() (*presets.Catalog, error) {
	if i.catalog == nil {
		c, err := i.root.catalog()
		if err != nil {
			return nil, err
		}
		i.catalog = c
	}
	return i.catalog, nil
}

func (i *interactiveCmd) selectPreset(key string) error {
	g, ok := toolGroup(i.sess.Tool())
	if !ok {
		return fmt.Errorf("presets need the adjust or filter tool")
	}
	c, err := i.presetCatalog()
	if err != nil {
		return err
	}
	p, ok := c.Find(g, key)
	if !ok {
		return fmt.Errorf("unknown %s preset %q", g, key)
	}
	i.sel.SelectPreset(p)
	fmt.Fprintf(i.stdout, "preset: %s\n", p.Name)
	return nil
}

func (i *interactiveCmd) apply() error {
	req := session.EditRequest{Instruction: i.sel.Instruction()}
	switch i.sess.Tool() {
	case session.ToolRetouch:
		req.Kind = session.KindRetouch
	case session.ToolCrop:
		req.Kind = session.KindCrop
		req.Instruction = ""
	case session.ToolAdjust:
		req.Kind = session.KindAdjustment
	case session.ToolFilter:
		req.Kind = session.KindFilter
	}
	if req.Kind != session.KindCrop {
		fmt.Fprintf(i.stdout, "applying %s...\n", req.Kind)
	}
	snap, err := runEdit(i.ctx, i.sess, req)
	if err != nil {
		return err
	}
	if req.Kind != session.KindCrop {
		i.sel.Clear()
	}
	sz := snap.Size()
	fmt.Fprintf(i.stdout, "applied %s: %s (%dx%d)\n", req.Kind, snap.Name(), sz.X, sz.Y)
	return nil
}

func (i *interactiveCmd) report(err error) error {
	if err != nil {
		return err
	}
	entries, cursor := i.sess.History()
	fmt.Fprintf(i.stdout, "version %d/%d: %s\n", cursor+1, len(entries), entries[cursor].Name())
	return nil
}

func (i *interactiveCmd) printHistory() {
	entries, cursor := i.sess.History()
	if len(entries) == 0 {
		fmt.Fprintln(i.stdout, "no image loaded")
		return
	}
	for n, snap := range entries {
		mark := " "
		if n == cursor {
			mark = "*"
		}
		sz := snap.Size()
		fmt.Fprintf(i.stdout, "%s %2d  %-32s %5dx%-5d %s\n", mark, n+1, snap.Name(), sz.X, sz.Y, units.HumanSize(float64(snap.Len())))
	}
}

func (i *interactiveCmd) printStatus() {
	cur := i.sess.CurrentImage()
	if cur == nil {
		fmt.Fprintln(i.stdout, "no image loaded")
		return
	}
	entries, cursor := i.sess.History()
	sz := cur.Size()
	fmt.Fprintf(i.stdout, "image:   %s (%dx%d)\n", cur.Name(), sz.X, sz.Y)
	fmt.Fprintf(i.stdout, "version: %d/%d (undo %v, redo %v)\n", cursor+1, len(entries), i.sess.CanUndo(), i.sess.CanRedo())
	fmt.Fprintf(i.stdout, "state:   %s\n", i.sess.State())
	fmt.Fprintf(i.stdout, "tool:    %s\n", i.sess.Tool())
	if hs, ok := i.sess.Hotspot(); ok {
		fmt.Fprintf(i.stdout, "hotspot: %d,%d\n", hs.Native.X, hs.Native.Y)
	}
	if cr, ok := i.sess.CropRegion(); ok {
		fmt.Fprintf(i.stdout, "crop:    %v (aspect %s)\n", cr.Native(), i.sess.Aspect())
	}
	if p, ok := i.sel.Preset(); ok {
		fmt.Fprintf(i.stdout, "preset:  %s\n", p.Name)
	} else if text := i.sel.Instruction(); text != "" {
		fmt.Fprintf(i.stdout, "text:    %s\n", text)
	}
}

func (i *interactiveCmd) printPresets(group string) error {
	c, err := i.presetCatalog()
	if err != nil {
		return err
	}
	return writePresets(i.stdout, c, group)
}

func (i *interactiveCmd) compare(path string) error {
	orig, cur := i.sess.OriginalImage(), i.sess.CurrentImage()
	if cur == nil {
		return session.ErrNoImage
	}
	before, err := orig.Decode()
	if err != nil {
		return err
	}
	after, err := cur.Decode()
	if err != nil {
		return err
	}
	img := render.SideBySide(before, after, "original", "current", i.root.activeThemeOrDefault())
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode compare image: %w", err)
	}
	if path == "" {
		path = history.Name("compare", time.Now(), "png")
		if dir := i.root.cfg().SaveDir; dir != "" {
			path = filepath.Join(dir, path)
		}
	}
	snap, err := history.NewSnapshot(filepath.Base(path), buf.Bytes())
	if err != nil {
		return err
	}
	saved, err := saveSnapshot(snap, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(i.stdout, "saved %s\n", saved)
	i.root.notifySave(saved)
	return nil
}

func (i *interactiveCmd) save(path string) error {
	cur := i.sess.CurrentImage()
	if cur == nil {
		return session.ErrNoImage
	}
	saved, err := saveSnapshot(cur, outputPath(path, i.root.cfg().SaveDir, cur))
	if err != nil {
		return err
	}
	fmt.Fprintf(i.stdout, "saved %s\n", saved)
	i.root.notifySave(saved)
	return nil
}

func (i *interactiveCmd) copy() error {
	cur := i.sess.CurrentImage()
	if cur == nil {
		return session.ErrNoImage
	}
	if err := copyFn(cur); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	fmt.Fprintf(i.stdout, "copied %s to clipboard\n", cur.Name())
	i.root.notifyCopy(cur.Name())
	return nil
}
