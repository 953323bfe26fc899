package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/example/retouch/internal/capture"
	"github.com/example/retouch/internal/geometry"
	"github.com/example/retouch/internal/history"
	"github.com/example/retouch/internal/presets"
	"github.com/example/retouch/internal/session"
)

type editCmd struct {
	input        string
	output       string
	toClipboard  bool
	at           string
	point        image.Point
	retouch      string
	adjust       string
	adjustPreset string
	filter       string
	filterPreset string
	crop         string
	cropRect     geometry.Rect
	aspect       string
	aspectRatio  geometry.Aspect
	dpr          float64
	pick         bool
	monitor      string
	*root
	fs *flag.FlagSet
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func (e *editCmd) Program() string {
	if e.root == nil {
		return "retouch edit"
	}
	return e.root.Program() + " edit"
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	e := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.output, "output", "", "write the result to this file (default: save_dir/<edit>-<time>.<ext>)")
	fs.BoolVar(&e.toClipboard, "to-clipboard", false, "copy the result to the clipboard instead of saving it")
	fs.StringVar(&e.at, "at", "", "retouch hotspot x,y in image pixels")
	fs.StringVar(&e.retouch, "retouch", "", "instruction for a localized edit at -at")
	fs.StringVar(&e.adjust, "adjust", "", "instruction for a global adjustment")
	fs.StringVar(&e.adjustPreset, "adjust-preset", "", "adjustment preset name or number")
	fs.StringVar(&e.filter, "filter", "", "instruction for a stylistic filter")
	fs.StringVar(&e.filterPreset, "filter-preset", "", "filter preset name or number")
	fs.StringVar(&e.crop, "crop", "", "crop rectangle x,y,w,h in image pixels")
	fs.StringVar(&e.aspect, "aspect", "free", "crop aspect ratio: free, 1:1, 16:9 or w:h")
	fs.Float64Var(&e.dpr, "dpr", 0, "device pixel ratio for the crop raster (default from config)")
	fs.BoolVar(&e.pick, "pick", false, "let the desktop choose the area when the input is capture")
	fs.StringVar(&e.monitor, "monitor", "", "restrict a capture input to this monitor")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: e}
	}
	e.input = fs.Arg(0)
	if e.toClipboard && e.output != "" {
		return nil, fmt.Errorf("-output cannot be used with -to-clipboard")
	}
	if e.adjust != "" && e.adjustPreset != "" {
		return nil, fmt.Errorf("-adjust cannot be used with -adjust-preset")
	}
	if e.filter != "" && e.filterPreset != "" {
		return nil, fmt.Errorf("-filter cannot be used with -filter-preset")
	}
	if (e.retouch == "") != (e.at == "") {
		return nil, fmt.Errorf("-retouch and -at must be given together")
	}
	if e.at != "" {
		pt, err := parsePoint(e.at)
		if err != nil {
			return nil, err
		}
		e.point = pt
	}
	if e.crop != "" {
		rect, err := parseRect(e.crop)
		if err != nil {
			return nil, err
		}
		e.cropRect = rect
	}
	aspect, err := geometry.ParseAspect(e.aspect)
	if err != nil {
		return nil, err
	}
	e.aspectRatio = aspect
	if e.retouch == "" && e.adjust == "" && e.adjustPreset == "" && e.filter == "" && e.filterPreset == "" && e.crop == "" {
		return nil, fmt.Errorf("no edits requested")
	}
	return e, nil
}

// step is one edit of the pipeline.
type step struct {
	label   string
	prepare func(*session.Session) error
	req     session.EditRequest
}

func (e *editCmd) steps() ([]step, error) {
	var out []step
	if e.retouch != "" {
		pt := e.point
		out = append(out, step{
			label:   "retouch",
			prepare: func(s *session.Session) error { return selectPoint(s, pt) },
			req:     session.EditRequest{Kind: session.KindRetouch, Instruction: e.retouch},
		})
	}
	var catalog *presets.Catalog
	lookup := func(g presets.Group, key string) (string, error) {
		if catalog == nil {
			c, err := e.root.catalog()
			if err != nil {
				return "", err
			}
			catalog = c
		}
		p, ok := catalog.Find(g, key)
		if !ok {
			return "", fmt.Errorf("unknown %s preset %q", g, key)
		}
		return p.Prompt, nil
	}
	adjust := e.adjust
	if e.adjustPreset != "" {
		text, err := lookup(presets.GroupAdjustment, e.adjustPreset)
		if err != nil {
			return nil, err
		}
		adjust = text
	}
	if adjust != "" {
		out = append(out, step{label: "adjust", req: session.EditRequest{Kind: session.KindAdjustment, Instruction: adjust}})
	}
	filter := e.filter
	if e.filterPreset != "" {
		text, err := lookup(presets.GroupFilter, e.filterPreset)
		if err != nil {
			return nil, err
		}
		filter = text
	}
	if filter != "" {
		out = append(out, step{label: "filter", req: session.EditRequest{Kind: session.KindFilter, Instruction: filter}})
	}
	if e.crop != "" {
		rect, aspect := e.cropRect, e.aspectRatio
		out = append(out, step{
			label: "crop",
			prepare: func(s *session.Session) error {
				s.ConstrainCrop(aspect)
				return selectCrop(s, rect)
			},
			req: session.EditRequest{Kind: session.KindCrop, DevicePixelRatio: e.dpr},
		})
	}
	return out, nil
}

func (e *editCmd) Run() error {
	steps, err := e.steps()
	if err != nil {
		return err
	}
	ctx := context.Background()
	s := e.root.newSession(ctx)
	opts := capture.Options{Interactive: e.pick, Monitor: e.monitor}
	if _, err := loadSource(ctx, s, e.input, opts); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "applying %s to %s\n", describeSteps(steps), e.input)

	var result *history.Snapshot
	for _, st := range steps {
		if st.prepare != nil {
			if err := st.prepare(s); err != nil {
				return fmt.Errorf("%s: %w", st.label, err)
			}
		}
		snap, err := runEdit(ctx, s, st.req)
		if err != nil {
			return err
		}
		result = snap
		sz := snap.Size()
		fmt.Fprintf(os.Stderr, "%s: %s (%dx%d)\n", st.label, snap.Name(), sz.X, sz.Y)
	}

	if e.toClipboard {
		if err := copyFn(result); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintf(os.Stderr, "copied %s to clipboard\n", result.Name())
		e.root.notifyCopy(result.Name())
		return nil
	}
	path := outputPath(e.output, e.root.cfg().SaveDir, result)
	saved, err := saveSnapshot(result, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "saved %s\n", saved)
	e.root.notifySave(saved)
	return nil
}

// describeSteps lists the pipeline in the order it runs.
func describeSteps(steps []step) string {
	names := make([]string, len(steps))
	for i, st := range steps {
		names[i] = st.label
	}
	return strings.Join(names, ", ")
}
