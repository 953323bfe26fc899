package session

import (
	"context"

	"github.com/example/retouch/internal/history"
)

// Outcome is the result of an accepted edit. Snapshot is the committed version
// when Err is nil.
type Outcome struct {
	Kind     Kind
	Snapshot *history.Snapshot
	Err      error
}

// Pending is an accepted edit that may still be running.
type Pending struct {
	kind    Kind
	done    chan struct{}
	outcome Outcome
}

func newPending(k Kind) *Pending {
	return &Pending{kind: k, done: make(chan struct{})}
}

func (p *Pending) resolve(o Outcome) {
	p.outcome = o
	close(p.done)
}

// Kind returns the kind of edit.
func (p *Pending) Kind() Kind { return p.kind }

// Done is closed once the outcome is available.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the edit finishes or ctx is done. Giving up does not stop
// the edit; its result is still committed.
func (p *Pending) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-p.done:
		return p.outcome, p.outcome.Err
	case <-ctx.Done():
		return Outcome{Kind: p.kind}, ctx.Err()
	}
}
