package presets

import "strings"

// Selection holds the single active instruction of an editing panel. Picking
// a preset clears custom text and typing custom text clears the preset; the
// last writer wins.
type Selection struct {
	preset *Preset
	custom string
}

// SelectPreset makes p the active instruction.
func (s *Selection) SelectPreset(p Preset) {
	s.preset = &p
	s.custom = ""
}

// SetCustom makes text the active instruction.
func (s *Selection) SetCustom(text string) {
	s.custom = text
	s.preset = nil
}

// Clear drops the active instruction.
func (s *Selection) Clear() {
	s.preset = nil
	s.custom = ""
}

// Preset returns the selected preset, if any.
func (s *Selection) Preset() (Preset, bool) {
	if s.preset == nil {
		return Preset{}, false
	}
	return *s.preset, true
}

// Instruction returns the active instruction text, trimmed.
func (s *Selection) Instruction() string {
	if s.preset != nil {
		return strings.TrimSpace(s.preset.Prompt)
	}
	return strings.TrimSpace(s.custom)
}
