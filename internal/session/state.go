package session

import (
	"fmt"
	"strings"
)

// Kind is the type of edit an operation performs.
type Kind int

const (
	KindRetouch Kind = iota
	KindFilter
	KindAdjustment
	KindCrop
)

func (k Kind) String() string {
	switch k {
	case KindRetouch:
		return "retouch"
	case KindFilter:
		return "filter"
	case KindAdjustment:
		return "adjust"
	case KindCrop:
		return "crop"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts the names printed by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "retouch", "edit":
		return KindRetouch, nil
	case "filter", "filters":
		return KindFilter, nil
	case "adjust", "adjustment":
		return KindAdjustment, nil
	case "crop":
		return KindCrop, nil
	}
	return 0, fmt.Errorf("unknown edit kind %q", s)
}

// Phase is the orchestrator's activity.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInFlight
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInFlight:
		return "in-flight"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// OperationState describes the current operation. Kind is meaningful only
// when the phase is not idle, and Err only when it failed.
type OperationState struct {
	Phase Phase
	Kind  Kind
	Err   error
}

// Idle reports whether no operation is running.
func (s OperationState) Idle() bool { return s.Phase == PhaseIdle }

func (s OperationState) String() string {
	switch s.Phase {
	case PhaseInFlight:
		return fmt.Sprintf("in-flight(%s)", s.Kind)
	case PhaseFailed:
		return fmt.Sprintf("failed(%s): %v", s.Kind, s.Err)
	}
	return "idle"
}

// Tool is the active editing panel. Switching tools drops the selections made
// with the previous one.
type Tool int

const (
	ToolRetouch Tool = iota
	ToolCrop
	ToolAdjust
	ToolFilter
)

func (t Tool) String() string {
	switch t {
	case ToolRetouch:
		return "retouch"
	case ToolCrop:
		return "crop"
	case ToolAdjust:
		return "adjust"
	case ToolFilter:
		return "filter"
	}
	return "unknown"
}

// ParseTool accepts the names printed by Tool.String.
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "retouch":
		return ToolRetouch, nil
	case "crop":
		return ToolCrop, nil
	case "adjust", "adjustment":
		return ToolAdjust, nil
	case "filter", "filters":
		return ToolFilter, nil
	}
	return 0, fmt.Errorf("unknown tool %q", s)
}
