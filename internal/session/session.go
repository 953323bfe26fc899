// Package session coordinates edits of a single image: it validates requests,
// runs them against the edit service one at a time and records the results in
// an edit history.
package session

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/example/retouch/internal/editsvc"
	"github.com/example/retouch/internal/geometry"
	"github.com/example/retouch/internal/history"
)

// EventType identifies what changed in an Event.
type EventType int

const (
	// EventHistory follows every history mutation.
	EventHistory EventType = iota
	// EventState follows an operation state transition.
	EventState
	// EventSelection follows a change of tool, hotspot or crop region.
	EventSelection
)

func (t EventType) String() string {
	switch t {
	case EventHistory:
		return "history"
	case EventState:
		return "state"
	case EventSelection:
		return "selection"
	}
	return "unknown"
}

// Event is delivered to subscribers after the session lock is released.
type Event struct {
	Type   EventType
	Change history.Change
	State  OperationState
}

// EditRequest describes one edit. DevicePixelRatio only applies to crops;
// zero uses the session default.
type EditRequest struct {
	Kind             Kind
	Instruction      string
	DevicePixelRatio float64
}

// Option configures a Session.
type Option func(*Session)

// WithDevicePixelRatio sets the ratio crops are rasterized at.
func WithDevicePixelRatio(r float64) Option {
	return func(s *Session) {
		if r > 0 {
			s.dpr = r
		}
	}
}

// WithTimeout bounds each edit service call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithMaxImageBytes rejects loads larger than n bytes. Zero means no limit.
func WithMaxImageBytes(n int64) Option {
	return func(s *Session) { s.maxBytes = n }
}

// WithClock replaces the time source used for snapshot names.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is safe for concurrent use.
type Session struct {
	mu   sync.Mutex
	hist *history.History
	svc  editsvc.Service

	tool    Tool
	hotspot *geometry.Hotspot
	crop    *geometry.CropRegion
	aspect  geometry.Aspect
	state   OperationState

	dpr      float64
	timeout  time.Duration
	maxBytes int64
	now      func() time.Time

	observers map[int]func(Event)
	nextObs   int
	queue     []Event
}

// New creates an empty session backed by svc. A nil svc only allows crops.
func New(svc editsvc.Service, opts ...Option) *Session {
	s := &Session{
		hist:      history.New(),
		svc:       svc,
		dpr:       1,
		now:       time.Now,
		observers: map[int]func(Event){},
	}
	for _, o := range opts {
		o(s)
	}
	s.hist.Subscribe(s.historyChanged)
	return s
}

// historyChanged runs with s.mu held since every history mutation happens
// under the lock.
func (s *Session) historyChanged(c history.Change) {
	s.hotspot = nil
	s.crop = nil
	s.queue = append(s.queue, Event{Type: EventHistory, Change: c, State: s.state})
}

// Subscribe registers fn for session events and returns a function removing it.
// Observers must not block; they may call read-only methods.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// unlock releases s.mu and delivers the events queued while it was held.
func (s *Session) unlock() {
	events := s.queue
	s.queue = nil
	var obs []func(Event)
	if len(events) > 0 {
		for id := 0; id < s.nextObs; id++ {
			if fn, ok := s.observers[id]; ok {
				obs = append(obs, fn)
			}
		}
	}
	s.mu.Unlock()
	for _, e := range events {
		for _, fn := range obs {
			fn(e)
		}
	}
}

func (s *Session) setState(st OperationState) {
	s.state = st
	s.queue = append(s.queue, Event{Type: EventState, State: st})
}

func (s *Session) selectionChanged() {
	s.queue = append(s.queue, Event{Type: EventSelection, State: s.state})
}

func (s *Session) busy() bool { return s.state.Phase == PhaseInFlight }

// Load decodes data and starts a new history with it as the original.
func (s *Session) Load(name string, data []byte) (*history.Snapshot, error) {
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("load %s: %w", name, ErrTooLarge)
	}
	snap, err := history.NewSnapshot(name, data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return snap, s.loadSnapshot(snap)
}

// LoadImage encodes img and starts a new history with it.
func (s *Session) LoadImage(name string, img image.Image) (*history.Snapshot, error) {
	snap, err := history.NewSnapshotFromImage(name, img)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if s.maxBytes > 0 && int64(snap.Len()) > s.maxBytes {
		return nil, fmt.Errorf("load %s: %w", name, ErrTooLarge)
	}
	return snap, s.loadSnapshot(snap)
}

func (s *Session) loadSnapshot(snap *history.Snapshot) error {
	s.mu.Lock()
	if s.busy() {
		s.mu.Unlock()
		return ErrBusy
	}
	s.hist.Load(snap)
	s.unlock()
	return nil
}

// Undo steps back one version.
func (s *Session) Undo() error { return s.mutate(s.hist.Undo) }

// Redo steps forward one version.
func (s *Session) Redo() error { return s.mutate(s.hist.Redo) }

// ResetToOriginal moves to the first version without discarding the others.
func (s *Session) ResetToOriginal() error { return s.mutate(s.hist.ResetToOriginal) }

// StartOver discards the image and its history.
func (s *Session) StartOver() error {
	return s.mutate(func() error {
		s.hist.Clear()
		return nil
	})
}

func (s *Session) mutate(fn func() error) error {
	s.mu.Lock()
	if s.busy() {
		s.mu.Unlock()
		return ErrBusy
	}
	err := fn()
	s.unlock()
	return err
}

// SetTool switches the active tool. Selections made with another tool are
// dropped.
func (s *Session) SetTool(t Tool) {
	s.mu.Lock()
	if t != s.tool {
		s.tool = t
		s.hotspot = nil
		s.crop = nil
		s.selectionChanged()
	}
	s.unlock()
}

// SelectHotspot maps a pointer position on the image rendered at rendered
// size to a native hotspot. It reports false when the retouch tool is not
// active, nothing is loaded, an edit is running or the mapping is undefined.
func (s *Session) SelectHotspot(pointer geometry.Point, rendered geometry.Size) bool {
	s.mu.Lock()
	cur := s.hist.Current()
	if s.tool != ToolRetouch || cur == nil || s.busy() {
		s.mu.Unlock()
		return false
	}
	natural := geometry.SizeOf(image.Rectangle{Max: cur.Size()})
	hs, ok := geometry.NewHotspot(pointer, rendered, natural)
	if ok {
		s.hotspot = &hs
		s.selectionChanged()
	}
	s.unlock()
	return ok
}

// SetCropRegion records a crop selection made in display pixels. The current
// aspect constraint is applied.
func (s *Session) SetCropRegion(rect geometry.Rect, rendered geometry.Size) bool {
	s.mu.Lock()
	cur := s.hist.Current()
	if s.tool != ToolCrop || cur == nil || s.busy() {
		s.mu.Unlock()
		return false
	}
	natural := geometry.SizeOf(image.Rectangle{Max: cur.Size()})
	region, ok := geometry.NewCropRegion(rect, rendered, natural)
	if ok {
		region = region.Constrain(s.aspect)
		s.crop = &region
		s.selectionChanged()
	}
	s.unlock()
	return ok
}

// ConstrainCrop sets the aspect ratio for crop selections and applies it to
// the pending one.
func (s *Session) ConstrainCrop(a geometry.Aspect) {
	s.mu.Lock()
	s.aspect = a
	if s.crop != nil {
		c := s.crop.Constrain(a)
		s.crop = &c
	}
	s.selectionChanged()
	s.unlock()
}

// ClearCrop drops the pending crop region.
func (s *Session) ClearCrop() {
	s.mu.Lock()
	if s.crop != nil {
		s.crop = nil
		s.selectionChanged()
	}
	s.unlock()
}

// ClearSelection drops both the hotspot and the crop region.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	if s.crop != nil || s.hotspot != nil {
		s.crop = nil
		s.hotspot = nil
		s.selectionChanged()
	}
	s.unlock()
}

func (s *Session) validate(req EditRequest, cur *history.Snapshot) error {
	if cur == nil {
		return &ValidationError{Kind: req.Kind, Err: ErrNoImage}
	}
	switch req.Kind {
	case KindRetouch:
		if strings.TrimSpace(req.Instruction) == "" {
			return &ValidationError{Kind: req.Kind, Err: ErrEmptyInstruction}
		}
		if s.hotspot == nil {
			return &ValidationError{Kind: req.Kind, Err: ErrNoHotspot}
		}
	case KindFilter, KindAdjustment:
		if strings.TrimSpace(req.Instruction) == "" {
			return &ValidationError{Kind: req.Kind, Err: ErrEmptyInstruction}
		}
	case KindCrop:
		if s.crop == nil {
			return &ValidationError{Kind: req.Kind, Err: ErrNoCropRegion}
		}
		return nil
	default:
		return &ValidationError{Kind: req.Kind, Err: fmt.Errorf("unsupported edit kind")}
	}
	if s.svc == nil {
		return editsvc.ErrNotConfigured
	}
	return nil
}

// RequestEdit starts an edit of the current image. Rejected requests return an
// error and leave the session unchanged. Accepted requests return a Pending
// that resolves once the result is committed or the edit failed.
//
// ctx is only used for its values: the service call is detached from its
// cancellation and bounded by the session timeout instead.
func (s *Session) RequestEdit(ctx context.Context, req EditRequest) (*Pending, error) {
	s.mu.Lock()
	if s.busy() {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	cur := s.hist.Current()
	if err := s.validate(req, cur); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	p := newPending(req.Kind)
	s.setState(OperationState{Phase: PhaseInFlight, Kind: req.Kind})

	if req.Kind == KindCrop {
		dpr := req.DevicePixelRatio
		if dpr <= 0 {
			dpr = s.dpr
		}
		snap, err := s.cropSnapshot(cur, *s.crop, dpr)
		s.finish(p, snap, err)
		s.unlock()
		return p, nil
	}

	var at image.Point
	if s.hotspot != nil {
		at = s.hotspot.Native
	}
	s.unlock()
	go s.run(context.WithoutCancel(ctx), p, req, cur, at)
	return p, nil
}

func (s *Session) cropSnapshot(cur *history.Snapshot, region geometry.CropRegion, dpr float64) (*history.Snapshot, error) {
	src, err := cur.Decode()
	if err != nil {
		return nil, err
	}
	out, err := geometry.Rasterize(src, region, dpr)
	if err != nil {
		return nil, err
	}
	return history.NewSnapshotFromImage(history.Name(KindCrop.String(), s.now(), "png"), out)
}

func (s *Session) run(ctx context.Context, p *Pending, req EditRequest, cur *history.Snapshot, at image.Point) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	in := editsvc.Image{Data: cur.Bytes(), MIMEType: cur.MIMEType()}
	instruction := strings.TrimSpace(req.Instruction)

	var out editsvc.Image
	var err error
	switch req.Kind {
	case KindRetouch:
		out, err = s.svc.EditAt(ctx, in, instruction, at)
	case KindFilter:
		out, err = s.svc.ApplyFilter(ctx, in, instruction)
	case KindAdjustment:
		out, err = s.svc.ApplyAdjustment(ctx, in, instruction)
	}
	var snap *history.Snapshot
	if err == nil {
		snap, err = history.NewSnapshot(history.Name(req.Kind.String(), s.now(), out.MIMEType), out.Data)
	}

	s.mu.Lock()
	s.finish(p, snap, err)
	s.unlock()
}

// finish commits a result or records the failure, then returns to idle. It
// runs with s.mu held.
func (s *Session) finish(p *Pending, snap *history.Snapshot, err error) {
	if err == nil {
		err = s.hist.Commit(snap)
	}
	if err != nil {
		err = &EditError{Kind: p.kind, Err: err}
		snap = nil
		s.setState(OperationState{Phase: PhaseFailed, Kind: p.kind, Err: err})
	}
	s.setState(OperationState{Phase: PhaseIdle})
	p.resolve(Outcome{Kind: p.kind, Snapshot: snap, Err: err})
}

// State returns the current operation state.
func (s *Session) State() OperationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentImage returns the snapshot at the cursor or nil.
func (s *Session) CurrentImage() *history.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Current()
}

// OriginalImage returns the first snapshot or nil.
func (s *Session) OriginalImage() *history.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Original()
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// History returns the versions in order and the cursor position.
func (s *Session) History() ([]*history.Snapshot, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Entries(), s.hist.Cursor()
}

// Tool returns the active tool.
func (s *Session) Tool() Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool
}

// Hotspot returns the selected retouch point, if any.
func (s *Session) Hotspot() (geometry.Hotspot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hotspot == nil {
		return geometry.Hotspot{}, false
	}
	return *s.hotspot, true
}

// CropRegion returns the pending crop selection, if any.
func (s *Session) CropRegion() (geometry.CropRegion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.crop == nil {
		return geometry.CropRegion{}, false
	}
	return *s.crop, true
}

// Aspect returns the crop aspect constraint.
func (s *Session) Aspect() geometry.Aspect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aspect
}
