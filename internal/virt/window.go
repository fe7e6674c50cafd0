// Package virt computes the virtualization window: the contiguous row range
// materialized for display, given scroll position, a uniform base row height,
// and variable extra-height contributions reported by plugins.
package virt

import "sync"

// HeightContributor reports pixel-equivalent height a plugin adds outside
// the uniform row grid (expanded detail blocks, group headers). A plugin
// with nothing active must report 0.
type HeightContributor interface {
	// ExtraHeight returns the plugin's total extra height.
	ExtraHeight() int
	// ExtraHeightBefore returns the extra height positioned before the row
	// at index. Must be monotonic in index and ExtraHeightBefore(totalRows)
	// must equal ExtraHeight.
	ExtraHeightBefore(index int) int
}

// StartAdjuster lets a plugin pull the window start backward so auxiliary
// content that still overlaps the viewport is not unmounted mid-scroll.
// The returned start is ignored when it is greater than the naive start.
type StartAdjuster interface {
	AdjustVirtualStart(start, scrollTop, rowHeight int) int
}

// Range is a half-open row index range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of rows in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether index falls inside the range.
func (r Range) Contains(index int) bool {
	return index >= r.Start && index < r.End
}

// Window owns the virtualization state for one grid.
type Window struct {
	mu sync.RWMutex

	rowHeight       int
	viewportHeight  int
	bypassThreshold int
	bypass          bool

	// Last computed state
	rng       Range
	totalRows int
	scrollTop int
}

// Option configures a Window.
type Option func(*Window)

// WithBypassThreshold disables windowing entirely for datasets at or below
// the given row count. Zero keeps windowing on for every size.
func WithBypassThreshold(rows int) Option {
	return func(w *Window) {
		w.bypassThreshold = rows
	}
}

// NewWindow creates a window. rowHeight and viewportHeight are clamped to a
// minimum of 1 to prevent division by zero and underflow.
func NewWindow(rowHeight, viewportHeight int, opts ...Option) *Window {
	if rowHeight < 1 {
		rowHeight = 1
	}
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	w := &Window{
		rowHeight:      rowHeight,
		viewportHeight: viewportHeight,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// RowHeight returns the uniform base row height.
func (w *Window) RowHeight() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.rowHeight
}

// SetRowHeight updates the base row height (clamped to 1).
func (w *Window) SetRowHeight(h int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if h < 1 {
		h = 1
	}
	w.rowHeight = h
}

// Resize updates the viewport height (clamped to 1).
func (w *Window) Resize(viewportHeight int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	w.viewportHeight = viewportHeight
}

// SetBypass toggles windowing off (materialize all rows, e.g. for print).
// Restoring computes from live scroll state on the next Compute call; no
// pre-bypass range is cached.
func (w *Window) SetBypass(on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bypass = on
}

// Bypassed reports whether windowing is currently disabled.
func (w *Window) Bypassed() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.bypass
}

// Current returns the last computed range.
func (w *Window) Current() Range {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.rng
}

// ScrollTop returns the scroll offset of the last Compute call.
func (w *Window) ScrollTop() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.scrollTop
}

// Compute determines the row range to materialize.
//
// The naive start is scrollTop / rowHeight; each adjuster may pull it
// backward (never forward). The end covers the viewport plus one row of
// overscan. With bypass active, or totalRows at or below the bypass
// threshold, every row is materialized.
func (w *Window) Compute(scrollTop, totalRows int, adjusters []StartAdjuster) Range {
	w.mu.Lock()
	defer w.mu.Unlock()

	if scrollTop < 0 {
		scrollTop = 0
	}
	if totalRows < 0 {
		totalRows = 0
	}
	w.scrollTop = scrollTop
	w.totalRows = totalRows

	if w.bypass || (w.bypassThreshold > 0 && totalRows <= w.bypassThreshold) {
		w.rng = Range{Start: 0, End: totalRows}
		return w.rng
	}

	naive := scrollTop / w.rowHeight
	if naive > totalRows {
		naive = totalRows
	}

	start := naive
	for _, a := range adjusters {
		if a == nil {
			continue
		}
		if v := a.AdjustVirtualStart(naive, scrollTop, w.rowHeight); v < start {
			start = v
		}
	}
	if start < 0 {
		start = 0
	}

	visible := (w.viewportHeight+w.rowHeight-1)/w.rowHeight + 1
	end := naive + visible
	if end > totalRows {
		end = totalRows
	}
	if start > end {
		start = end
	}

	w.rng = Range{Start: start, End: end}
	return w.rng
}

// TotalHeight returns the total scrollable height:
// totalRows*rowHeight plus every contributor's extra height.
func (w *Window) TotalHeight(totalRows int, heights []HeightContributor) int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	total := totalRows * w.rowHeight
	for _, h := range heights {
		if h == nil {
			continue
		}
		if extra := h.ExtraHeight(); extra > 0 {
			total += extra
		}
	}
	return total
}

// HeightBefore converts "position before row index" to a height offset:
// index*rowHeight plus every contributor's extra height before that row.
// Monotonic in index and consistent with TotalHeight at index == totalRows.
func (w *Window) HeightBefore(index int, heights []HeightContributor) int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if index < 0 {
		index = 0
	}
	total := index * w.rowHeight
	for _, h := range heights {
		if h == nil {
			continue
		}
		if extra := h.ExtraHeightBefore(index); extra > 0 {
			total += extra
		}
	}
	return total
}

// MaxScroll returns the largest useful scroll offset for the given dataset.
func (w *Window) MaxScroll(totalRows int, heights []HeightContributor) int {
	total := w.TotalHeight(totalRows, heights)

	w.mu.RLock()
	defer w.mu.RUnlock()
	max := total - w.viewportHeight
	if max < 0 {
		max = 0
	}
	return max
}
