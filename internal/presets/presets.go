// Package presets provides the catalog of ready-made filter and adjustment
// instructions and the selection model that picks the active instruction.
package presets

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtin []byte

// Group names the editing panel a preset belongs to.
type Group string

const (
	GroupFilter     Group = "filter"
	GroupAdjustment Group = "adjust"
)

// Preset is a named instruction.
type Preset struct {
	Name   string `yaml:"name"`
	Prompt string `yaml:"prompt"`
}

// Catalog lists presets per group.
type Catalog struct {
	Filters     []Preset `yaml:"filters"`
	Adjustments []Preset `yaml:"adjustments"`
}

// Builtin returns the catalog shipped with the binary.
func Builtin() (*Catalog, error) {
	return Parse(strings.NewReader(string(builtin)))
}

// Parse reads a YAML catalog.
func Parse(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	for _, p := range append(append([]Preset{}, c.Filters...), c.Adjustments...) {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Prompt) == "" {
			return nil, fmt.Errorf("parse presets: preset %q needs a name and a prompt", p.Name)
		}
	}
	return &c, nil
}

// Load returns the builtin catalog merged with the user catalog at path, if
// path is non-empty. User presets replace builtin ones with the same name.
func Load(path string) (*Catalog, error) {
	c, err := Builtin()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return c, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	extra, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Merge(extra)
	return c, nil
}

// Merge adds the presets of other, replacing same-named entries.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil {
		return
	}
	c.Filters = merge(c.Filters, other.Filters)
	c.Adjustments = merge(c.Adjustments, other.Adjustments)
}

func merge(base, extra []Preset) []Preset {
	for _, p := range extra {
		replaced := false
		for i := range base {
			if strings.EqualFold(base[i].Name, p.Name) {
				base[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			base = append(base, p)
		}
	}
	return base
}

// Group returns the presets of g.
func (c *Catalog) Group(g Group) []Preset {
	switch g {
	case GroupFilter:
		return c.Filters
	case GroupAdjustment:
		return c.Adjustments
	}
	return nil
}

// Find looks up a preset by case-insensitive name or 1-based index.
func (c *Catalog) Find(g Group, key string) (Preset, bool) {
	list := c.Group(g)
	key = strings.TrimSpace(key)
	if idx, err := strconv.Atoi(key); err == nil {
		if idx >= 1 && idx <= len(list) {
			return list[idx-1], true
		}
		return Preset{}, false
	}
	for _, p := range list {
		if strings.EqualFold(p.Name, key) {
			return p, true
		}
	}
	return Preset{}, false
}
