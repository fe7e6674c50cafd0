package sched

import (
	"testing"
)

// recorder captures pass executions.
type recorder struct {
	passes []pass
}

type pass struct {
	from       Phase
	scrollOnly bool
}

func (r *recorder) run(from Phase, scrollOnly bool) {
	r.passes = append(r.passes, pass{from: from, scrollOnly: scrollOnly})
}

func TestSynchronousRequestsCoalesce(t *testing.T) {
	rec := &recorder{}
	var wakes int
	s := New(rec.run, func() { wakes++ })

	s.Request(PhaseRows)
	s.Request(PhaseRows)
	s.Request(PhasePaint)
	s.Flush()

	if len(rec.passes) != 1 {
		t.Fatalf("expected 1 pass, got %d", len(rec.passes))
	}
	if rec.passes[0].from != PhaseRows {
		t.Errorf("pass from %v, want rows", rec.passes[0].from)
	}
	if wakes != 1 {
		t.Errorf("expected 1 wake, got %d", wakes)
	}
}

func TestEarlierPhaseUpgradesPendingPass(t *testing.T) {
	rec := &recorder{}
	s := New(rec.run, nil)

	// ROWS pending, then a COLUMNS request arrives: columns must run first,
	// in the same pass.
	s.Request(PhaseRows)
	s.Request(PhaseColumns)
	s.Flush()

	if len(rec.passes) != 1 {
		t.Fatalf("expected 1 pass, got %d", len(rec.passes))
	}
	if rec.passes[0].from != PhaseColumns {
		t.Errorf("pass from %v, want columns", rec.passes[0].from)
	}
}

func TestLaterPhaseDoesNotDowngrade(t *testing.T) {
	rec := &recorder{}
	s := New(rec.run, nil)

	s.Request(PhaseColumns)
	s.Request(PhasePaint)
	s.Flush()

	if rec.passes[0].from != PhaseColumns {
		t.Errorf("pass from %v, want columns", rec.passes[0].from)
	}
}

func TestScrollOnlyPass(t *testing.T) {
	rec := &recorder{}
	s := New(rec.run, nil)

	s.RequestScroll()
	s.Flush()

	if len(rec.passes) != 1 {
		t.Fatalf("expected 1 pass, got %d", len(rec.passes))
	}
	if !rec.passes[0].scrollOnly {
		t.Error("expected a scroll-only pass")
	}
}

func TestFullPassAbsorbsScrollRequest(t *testing.T) {
	rec := &recorder{}
	s := New(rec.run, nil)

	s.Request(PhaseRows)
	s.RequestScroll()
	s.Flush()

	if len(rec.passes) != 1 {
		t.Fatalf("expected 1 pass, got %d", len(rec.passes))
	}
	if rec.passes[0].scrollOnly {
		t.Error("pending full pass must absorb the scroll request")
	}
}

func TestFullRequestUpgradesScrollOnlyPass(t *testing.T) {
	rec := &recorder{}
	s := New(rec.run, nil)

	s.RequestScroll()
	s.Request(PhaseColumns)
	s.Flush()

	if len(rec.passes) != 1 {
		t.Fatalf("expected 1 pass, got %d", len(rec.passes))
	}
	p := rec.passes[0]
	if p.scrollOnly || p.from != PhaseColumns {
		t.Errorf("got pass %+v, want full pass from columns", p)
	}
}

func TestRequestDuringRunQueuesFollowUp(t *testing.T) {
	var s *Scheduler
	var wakes int
	rec := &recorder{}

	s = New(func(from Phase, scrollOnly bool) {
		rec.run(from, scrollOnly)
		if len(rec.passes) == 1 {
			// A hook requesting another pass mid-run must not re-enter.
			s.Request(PhaseRows)
		}
	}, func() { wakes++ })

	s.Request(PhaseColumns)
	s.Flush()

	if len(rec.passes) != 1 {
		t.Fatalf("follow-up must not run inside the first flush, got %d passes", len(rec.passes))
	}
	if wakes != 2 {
		t.Errorf("expected a re-wake for the follow-up, got %d wakes", wakes)
	}

	s.Flush()
	if len(rec.passes) != 2 {
		t.Fatalf("expected follow-up pass on next flush, got %d passes", len(rec.passes))
	}
	if rec.passes[1].from != PhaseRows {
		t.Errorf("follow-up from %v, want rows", rec.passes[1].from)
	}
}

func TestFlushWithoutPendingIsNoop(t *testing.T) {
	rec := &recorder{}
	s := New(rec.run, nil)

	s.Flush()
	if len(rec.passes) != 0 {
		t.Errorf("expected no passes, got %d", len(rec.passes))
	}
}

func TestCloseDropsPendingWork(t *testing.T) {
	rec := &recorder{}
	s := New(rec.run, nil)

	s.Request(PhaseColumns)
	s.Close()
	s.Flush()

	if len(rec.passes) != 0 {
		t.Error("closed scheduler must not run dropped work")
	}

	s.Request(PhaseRows)
	s.Flush()
	if len(rec.passes) != 0 {
		t.Error("closed scheduler must refuse new requests")
	}

	// Second close is a no-op.
	s.Close()
}

func TestStateTransitions(t *testing.T) {
	rec := &recorder{}
	s := New(rec.run, nil)

	if s.State() != StateIdle {
		t.Errorf("initial state = %v, want idle", s.State())
	}

	s.Request(PhasePaint)
	if s.State() != StateScheduled {
		t.Errorf("state after request = %v, want scheduled", s.State())
	}

	s.Flush()
	if s.State() != StateIdle {
		t.Errorf("state after flush = %v, want idle", s.State())
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		p    Phase
		want string
	}{
		{PhaseColumns, "columns"},
		{PhaseRows, "rows"},
		{PhasePaint, "paint"},
		{PhaseAfter, "after"},
		{Phase(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.p, got, tt.want)
		}
	}
}
