// Package sched coalesces render requests into ordered phases.
//
// A render pass runs phases in a fixed order: COLUMNS (column pipeline),
// ROWS (row pipeline + window recompute), PAINT (materialize the visible
// window), AFTER (post-render hooks). Multiple synchronous requests collapse
// into one pass; a request for an earlier phase while a later one is pending
// widens the pass so the earlier phase still runs first.
package sched

import "sync"

// Phase identifies one stage of a render pass. Lower values run first.
type Phase int

const (
	// PhaseColumns re-runs the column pipeline, then everything after it.
	PhaseColumns Phase = iota
	// PhaseRows re-runs the row pipeline and window recompute, then paints.
	PhaseRows
	// PhasePaint repaints the visible window.
	PhasePaint
	// PhaseAfter fires post-render hooks only.
	PhaseAfter
)

// String returns a string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseColumns:
		return "columns"
	case PhaseRows:
		return "rows"
	case PhasePaint:
		return "paint"
	case PhaseAfter:
		return "after"
	default:
		return "unknown"
	}
}

// State is the scheduler's lifecycle state.
type State int

const (
	// StateIdle means no work is pending.
	StateIdle State = iota
	// StateScheduled means a pass is queued and a wake has been issued.
	StateScheduled
	// StateRunning means a pass is executing.
	StateRunning
)

// RunFunc executes one pass starting at the given phase. scrollOnly passes
// skip the pipelines: window recompute, paint, then scroll-render hooks.
type RunFunc func(from Phase, scrollOnly bool)

// Scheduler coalesces render requests and drives passes through the host's
// scheduling primitive. The host supplies a wake function (its analog of an
// animation-frame request); after a wake it must call Flush on its loop.
type Scheduler struct {
	mu sync.Mutex

	state      State
	pending    bool
	pendingAt  Phase
	scrollOnly bool
	closed     bool

	run  RunFunc
	wake func()
}

// New creates a scheduler. run executes a pass; wake signals the host loop
// that a Flush is due. A nil wake means the host polls Flush unconditionally.
func New(run RunFunc, wake func()) *Scheduler {
	return &Scheduler{run: run, wake: wake}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Request queues a pass starting no later than the given phase. Requests
// made while a pass is pending merge into it: the earliest requested phase
// wins, so a COLUMNS request upgrades a pending ROWS pass.
func (s *Scheduler) Request(p Phase) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	if !s.pending {
		s.pending = true
		s.pendingAt = p
		s.scrollOnly = false
	} else {
		if p < s.pendingAt {
			s.pendingAt = p
		}
		// Any full-phase request absorbs a pending scroll-only pass.
		s.scrollOnly = false
	}

	needWake := s.state == StateIdle
	if needWake {
		s.state = StateScheduled
	}
	s.mu.Unlock()

	if needWake && s.wake != nil {
		s.wake()
	}
}

// RequestScroll queues a scroll-only pass: window recompute, paint, and
// scroll-render hooks without re-running the pipelines. A pending full pass
// absorbs the request.
func (s *Scheduler) RequestScroll() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	if !s.pending {
		s.pending = true
		s.pendingAt = PhasePaint
		s.scrollOnly = true
	}
	// A pending pass (full or scroll-only) already covers the repaint.

	needWake := s.state == StateIdle
	if needWake {
		s.state = StateScheduled
	}
	s.mu.Unlock()

	if needWake && s.wake != nil {
		s.wake()
	}
}

// Flush executes the pending pass, if any. Called by the host loop after a
// wake. Requests made by hooks during the pass queue a follow-up pass and
// re-issue the wake rather than re-entering.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	if s.closed || !s.pending || s.state == StateRunning {
		if s.state == StateScheduled && !s.pending {
			s.state = StateIdle
		}
		s.mu.Unlock()
		return
	}

	from := s.pendingAt
	scrollOnly := s.scrollOnly
	s.pending = false
	s.state = StateRunning
	s.mu.Unlock()

	s.run(from, scrollOnly)

	s.mu.Lock()
	s.state = StateIdle
	rewake := s.pending && !s.closed
	if rewake {
		s.state = StateScheduled
	}
	s.mu.Unlock()

	if rewake && s.wake != nil {
		s.wake()
	}
}

// Close drops any pending pass without running hooks and refuses further
// requests. Safe to call more than once.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.pending = false
	s.state = StateIdle
}
