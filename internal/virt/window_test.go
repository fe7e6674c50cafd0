package virt

import "testing"

// rowExtra reports extra height attached to a single row index, mimicking an
// expanded detail block.
type rowExtra struct {
	row    int
	height int
}

func (r rowExtra) ExtraHeight() int { return r.height }

func (r rowExtra) ExtraHeightBefore(index int) int {
	if index > r.row {
		return r.height
	}
	return 0
}

// fixedAdjuster always answers with the same start.
type fixedAdjuster struct{ start int }

func (f fixedAdjuster) AdjustVirtualStart(start, scrollTop, rowHeight int) int {
	return f.start
}

func TestComputeNaiveRange(t *testing.T) {
	w := NewWindow(2, 10)

	rng := w.Compute(0, 100, nil)
	if rng.Start != 0 {
		t.Errorf("start = %d, want 0", rng.Start)
	}
	// ceil(10/2)+1 = 6 rows of coverage.
	if rng.End != 6 {
		t.Errorf("end = %d, want 6", rng.End)
	}

	rng = w.Compute(20, 100, nil)
	if rng.Start != 10 {
		t.Errorf("start = %d, want 10", rng.Start)
	}
	if rng.End != 16 {
		t.Errorf("end = %d, want 16", rng.End)
	}
}

func TestComputeClamping(t *testing.T) {
	w := NewWindow(1, 5)

	tests := []struct {
		name      string
		scrollTop int
		totalRows int
		wantStart int
		wantEnd   int
	}{
		{"empty dataset", 0, 0, 0, 0},
		{"negative scroll", -5, 10, 0, 6},
		{"scroll past end", 100, 10, 10, 10},
		{"fewer rows than viewport", 0, 3, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := w.Compute(tt.scrollTop, tt.totalRows, nil)
			if rng.Start != tt.wantStart || rng.End != tt.wantEnd {
				t.Errorf("got [%d,%d), want [%d,%d)", rng.Start, rng.End, tt.wantStart, tt.wantEnd)
			}
			if rng.Start < 0 || rng.Start > rng.End || rng.End > tt.totalRows {
				t.Errorf("invariant 0 <= start <= end <= total violated: [%d,%d)", rng.Start, rng.End)
			}
		})
	}
}

func TestAdjusterNeverAdvancesStart(t *testing.T) {
	w := NewWindow(1, 5)

	// An adjuster answering past the naive start must be ignored.
	rng := w.Compute(50, 100, []StartAdjuster{fixedAdjuster{start: 80}})
	if rng.Start != 50 {
		t.Errorf("start = %d, want naive 50 (adjuster may not advance)", rng.Start)
	}

	// Minimum of all adjusters wins.
	rng = w.Compute(50, 100, []StartAdjuster{
		fixedAdjuster{start: 45},
		fixedAdjuster{start: 48},
	})
	if rng.Start != 45 {
		t.Errorf("start = %d, want 45 (minimum adjuster)", rng.Start)
	}

	// Negative answers clamp to zero.
	rng = w.Compute(50, 100, []StartAdjuster{fixedAdjuster{start: -3}})
	if rng.Start != 0 {
		t.Errorf("start = %d, want 0", rng.Start)
	}
}

func TestHeightAccountingScenario(t *testing.T) {
	// 1,000 rows, rowHeight 28, one expanded row at index 10 adding 150.
	w := NewWindow(28, 280)
	heights := []HeightContributor{rowExtra{row: 10, height: 150}}

	if got := w.TotalHeight(1000, heights); got != 28150 {
		t.Errorf("TotalHeight = %d, want 28150", got)
	}

	before10 := w.HeightBefore(10, heights)
	before11 := w.HeightBefore(11, heights)
	if diff := before11 - before10; diff != 178 {
		t.Errorf("heightBefore(11)-heightBefore(10) = %d, want 178", diff)
	}

	// The extra-height sum at the end must agree with the total.
	if got := w.HeightBefore(1000, heights); got != 28150 {
		t.Errorf("HeightBefore(totalRows) = %d, want TotalHeight 28150", got)
	}
}

func TestHeightBeforeMonotonic(t *testing.T) {
	w := NewWindow(3, 30)
	heights := []HeightContributor{
		rowExtra{row: 2, height: 7},
		rowExtra{row: 5, height: 11},
	}

	prev := w.HeightBefore(0, heights)
	for n := 1; n <= 10; n++ {
		cur := w.HeightBefore(n, heights)
		if cur < prev {
			t.Fatalf("HeightBefore(%d)=%d < HeightBefore(%d)=%d", n, cur, n-1, prev)
		}
		prev = cur
	}
}

func TestNegativeContributionsIgnored(t *testing.T) {
	w := NewWindow(10, 50)
	heights := []HeightContributor{rowExtra{row: 0, height: -40}}

	if got := w.TotalHeight(5, heights); got != 50 {
		t.Errorf("TotalHeight = %d, want 50 (negative extra ignored)", got)
	}
	if got := w.HeightBefore(3, heights); got != 30 {
		t.Errorf("HeightBefore = %d, want 30 (negative extra ignored)", got)
	}
}

func TestBypassMaterializesAllRows(t *testing.T) {
	w := NewWindow(1, 5)

	w.SetBypass(true)
	rng := w.Compute(40, 100, nil)
	if rng.Start != 0 || rng.End != 100 {
		t.Errorf("bypassed range = [%d,%d), want [0,100)", rng.Start, rng.End)
	}

	// Restore must recompute from live scroll state, not a cached range.
	w.SetBypass(false)
	rng = w.Compute(40, 100, nil)
	if rng.Start != 40 {
		t.Errorf("restored start = %d, want 40", rng.Start)
	}
	if rng.End != 46 {
		t.Errorf("restored end = %d, want 46", rng.End)
	}
}

func TestBypassThresholdSmallDataset(t *testing.T) {
	w := NewWindow(1, 5, WithBypassThreshold(50))

	rng := w.Compute(10, 50, nil)
	if rng.Start != 0 || rng.End != 50 {
		t.Errorf("below threshold: [%d,%d), want [0,50)", rng.Start, rng.End)
	}

	rng = w.Compute(10, 51, nil)
	if rng.Start != 10 {
		t.Errorf("above threshold: start = %d, want 10", rng.Start)
	}
}

func TestMaxScroll(t *testing.T) {
	w := NewWindow(2, 10)

	if got := w.MaxScroll(100, nil); got != 190 {
		t.Errorf("MaxScroll = %d, want 190", got)
	}
	if got := w.MaxScroll(3, nil); got != 0 {
		t.Errorf("MaxScroll small dataset = %d, want 0", got)
	}

	heights := []HeightContributor{rowExtra{row: 1, height: 4}}
	if got := w.MaxScroll(100, heights); got != 194 {
		t.Errorf("MaxScroll with extra = %d, want 194", got)
	}
}

func TestRangeHelpers(t *testing.T) {
	r := Range{Start: 3, End: 7}
	if r.Len() != 4 {
		t.Errorf("Len = %d, want 4", r.Len())
	}
	if !r.Contains(3) || !r.Contains(6) {
		t.Error("Contains should include start and end-1")
	}
	if r.Contains(7) || r.Contains(2) {
		t.Error("Contains should exclude end and values below start")
	}
}
