package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/example/retouch/internal/presets"
)

type presetsCmd struct {
	*root
	fs      *flag.FlagSet
	group   string
	prompts bool
}

func (p *presetsCmd) FlagSet() *flag.FlagSet {
	return p.fs
}

func (p *presetsCmd) Program() string {
	if p.root == nil {
		return "retouch presets"
	}
	return p.root.Program() + " presets"
}

func parsePresetsCmd(args []string, r *root) (*presetsCmd, error) {
	fs := flag.NewFlagSet("presets", flag.ExitOnError)
	p := &presetsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(p)
	fs.BoolVar(&p.prompts, "prompts", false, "show the instruction sent for each preset")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		p.group = fs.Arg(0)
	default:
		return nil, &UsageError{of: p}
	}
	return p, nil
}

func (p *presetsCmd) Run() error {
	c, err := p.root.catalog()
	if err != nil {
		return err
	}
	if p.prompts {
		return writePresetPrompts(os.Stdout, c, p.group)
	}
	return writePresets(os.Stdout, c, p.group)
}

func presetGroups(group string) ([]presets.Group, error) {
	switch strings.ToLower(strings.TrimSpace(group)) {
	case "":
		return []presets.Group{presets.GroupFilter, presets.GroupAdjustment}, nil
	case "filter", "filters":
		return []presets.Group{presets.GroupFilter}, nil
	case "adjust", "adjustment", "adjustments":
		return []presets.Group{presets.GroupAdjustment}, nil
	}
	return nil, fmt.Errorf("unknown preset group %q (want filter or adjust)", group)
}

// writePresets lists preset names with the numbers accepted by Find.
func writePresets(w io.Writer, c *presets.Catalog, group string) error {
	groups, err := presetGroups(group)
	if err != nil {
		return err
	}
	for _, g := range groups {
		fmt.Fprintf(w, "%s:\n", g)
		for n, p := range c.Group(g) {
			fmt.Fprintf(w, "  %2d  %s\n", n+1, p.Name)
		}
	}
	return nil
}

func writePresetPrompts(w io.Writer, c *presets.Catalog, group string) error {
	groups, err := presetGroups(group)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, g := range groups {
		for _, p := range c.Group(g) {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", g, p.Name, p.Prompt)
		}
	}
	return tw.Flush()
}
