package grid

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/dshills/gridstorm/internal/config"
	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/grid/core"
	"github.com/dshills/gridstorm/internal/log"
	"github.com/dshills/gridstorm/internal/plugin"
	"github.com/dshills/gridstorm/internal/render"
	"github.com/dshills/gridstorm/internal/render/backend"
	"github.com/dshills/gridstorm/internal/sched"
	"github.com/dshills/gridstorm/internal/virt"
)

// headerRows is the number of surface rows reserved for the column header.
const headerRows = 1

// Grid is one grid instance: the plugin host and render coordinator.
type Grid struct {
	mu sync.RWMutex

	logger   *log.Logger
	registry *plugin.Registry
	emitter  *event.Emitter
	pipeline *Pipeline
	window   *virt.Window
	sched    *sched.Scheduler
	settle   *sched.Debouncer[int]
	surface  *render.Surface
	backend  backend.Backend

	settings map[string]*config.Settings
	rowKey   core.RowKeyFunc

	baseCols []core.Column
	baseRows []core.Row
	effCols  []core.Column
	effRows  []core.Row
	layout   []colSpan

	scrollTop int
	selected  int
	mouseDown bool

	closed bool
}

// Option configures a Grid.
type Option func(*options)

type options struct {
	logger          *log.Logger
	rowHeight       int
	bypassThreshold int
	rowKey          core.RowKeyFunc
}

// WithLogger sets the grid's logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRowHeight sets the uniform base row height in cells (default 1).
func WithRowHeight(h int) Option {
	return func(o *options) { o.rowHeight = h }
}

// WithBypassThreshold disables virtualization for datasets at or below the
// given row count.
func WithBypassThreshold(rows int) Option {
	return func(o *options) { o.bypassThreshold = rows }
}

// WithRowKey sets the row identity function. Without one, rows are
// identified by interface identity.
func WithRowKey(fn core.RowKeyFunc) Option {
	return func(o *options) { o.rowKey = fn }
}

// New creates a grid over the given backend. The backend must be
// initialized before the first render pass.
func New(b backend.Backend, opts ...Option) *Grid {
	o := options{rowHeight: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Discard()
	}

	_, h := b.Size()
	viewport := h - headerRows
	if viewport < 1 {
		viewport = 1
	}

	g := &Grid{
		logger:   o.logger,
		registry: plugin.NewRegistry(o.logger),
		emitter:  event.NewEmitter(o.logger),
		backend:  b,
		surface:  render.NewSurface(b),
		settings: make(map[string]*config.Settings),
		rowKey:   o.rowKey,
		selected: -1,
	}
	g.pipeline = NewPipeline(g.registry, o.logger)
	g.window = virt.NewWindow(o.rowHeight, viewport, virt.WithBypassThreshold(o.bypassThreshold))
	g.sched = sched.New(g.runPass, b.Wake)
	// Scroll bursts repaint with scroll-only passes; once scrolling
	// settles, one full pass runs the pipelines against the final
	// position.
	g.settle = sched.NewDebouncer(scrollSettleDelay, func(int) {
		g.RequestRender()
	})
	return g
}

// scrollSettleDelay is how long scrolling must be quiet before the
// trailing full pass runs.
const scrollSettleDelay = 150 * time.Millisecond

// Instance pairs a plugin with its user-supplied configuration document.
type Instance struct {
	Plugin plugin.Plugin
	// Config is a JSON document merged over the plugin's defaults. May be
	// nil.
	Config []byte
}

// Attach validates and attaches a batch of plugin instances. Each plugin's
// settings (defaults merged with the supplied config) are available through
// Host.Settings before its Attach hook runs.
func (g *Grid) Attach(instances ...Instance) error {
	merged := make(map[string]*config.Settings, len(instances))
	plugins := make([]plugin.Plugin, 0, len(instances))

	for _, inst := range instances {
		name := inst.Plugin.Manifest().Name
		var defaults []byte
		if d, ok := inst.Plugin.(plugin.SettingsDefaulter); ok {
			defaults = d.DefaultSettings()
		}
		s, err := config.Merge(defaults, inst.Config)
		if err != nil {
			return fmt.Errorf("plugin %q: %w", name, err)
		}
		merged[name] = s
		plugins = append(plugins, inst.Plugin)
	}

	g.mu.Lock()
	for name, s := range merged {
		g.settings[name] = s
	}
	g.mu.Unlock()

	if err := g.registry.Attach(g, plugins...); err != nil {
		// Drop settings for instances that did not make it in.
		g.mu.Lock()
		for name := range merged {
			if _, ok := g.registry.ByName(name); !ok {
				delete(g.settings, name)
			}
		}
		g.mu.Unlock()
		return err
	}

	for _, p := range plugins {
		g.emitter.Emit(event.TypePluginAttached, p.Manifest().Name)
	}
	g.RequestColumnsPhase()
	return nil
}

// Detach removes one plugin by name.
func (g *Grid) Detach(name string) error {
	if err := g.registry.Detach(name); err != nil {
		return err
	}
	g.mu.Lock()
	delete(g.settings, name)
	g.mu.Unlock()

	g.emitter.Emit(event.TypePluginDetached, name)
	g.RequestColumnsPhase()
	return nil
}

// Close tears the grid down: pending render work is dropped without running
// hooks, then plugins detach in reverse order. Safe to call more than once.
func (g *Grid) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	g.mu.Unlock()

	g.sched.Close()
	g.settle.Stop()
	names := g.registry.Names()
	g.registry.DetachAll()
	for i := len(names) - 1; i >= 0; i-- {
		g.emitter.Emit(event.TypePluginDetached, names[i])
	}
}

// SetColumns replaces the base column list and queues a columns pass.
func (g *Grid) SetColumns(cols []core.Column) {
	g.mu.Lock()
	g.baseCols = core.CloneColumns(cols)
	g.mu.Unlock()
	g.RequestColumnsPhase()
}

// SetRows replaces the base row list and queues a row pass.
func (g *Grid) SetRows(rows []core.Row) {
	g.mu.Lock()
	g.baseRows = core.CloneRows(rows)
	g.mu.Unlock()
	g.RequestRender()
}

// Columns returns the effective column list of the last pass.
func (g *Grid) Columns() []core.Column {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return core.CloneColumns(g.effCols)
}

// Rows returns the effective row list of the last pass.
func (g *Grid) Rows() []core.Row {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return core.CloneRows(g.effRows)
}

// Row returns the underlying row for a visible index, mapping through the
// effective list of the last pass.
func (g *Grid) Row(index int) (core.Row, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if index < 0 || index >= len(g.effRows) {
		return nil, false
	}
	return g.effRows[index], true
}

// RowIndex resolves a row to its index in the effective list, using the
// configured row key or interface identity.
func (g *Grid) RowIndex(row core.Row) int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.rowKey != nil {
		key := g.rowKey(row)
		for i, r := range g.effRows {
			if g.rowKey(r) == key {
				return i
			}
		}
		return -1
	}
	// Interface equality panics when both sides hold the same uncomparable
	// type (maps, slices). Such rows need a configured RowKey.
	if t := reflect.TypeOf(row); t == nil || !t.Comparable() {
		g.logger.Warn("RowIndex on uncomparable row type %T without a row key", row)
		return -1
	}
	for i, r := range g.effRows {
		if r == row {
			return i
		}
	}
	return -1
}

// Selected returns the selected row index, or -1.
func (g *Grid) Selected() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.selected
}

// Flush runs pending render work. Called by the host loop after a wake
// event.
func (g *Grid) Flush() {
	g.sched.Flush()
}

// SetBypass toggles virtualization bypass (all rows materialized), used
// around print-style operations. The print.started event is cancelable;
// a veto leaves windowing untouched.
func (g *Grid) SetBypass(on bool) {
	if on {
		if !g.emitter.EmitCancelable(event.TypePrintStarted, nil) {
			return
		}
	} else {
		g.emitter.Emit(event.TypePrintFinished, nil)
	}
	g.window.SetBypass(on)
	g.RequestRender()
}

// --- plugin.Host implementation ---

// RequestRender queues a full row pass.
func (g *Grid) RequestRender() {
	g.sched.Request(sched.PhaseRows)
}

// RequestColumnsPhase queues a pass starting at the column pipeline.
func (g *Grid) RequestColumnsPhase() {
	g.sched.Request(sched.PhaseColumns)
}

// Query broadcasts a query to all attached plugins.
func (g *Grid) Query(q plugin.Query) []plugin.Response {
	return g.registry.Query(q)
}

// PluginByName resolves an attached plugin.
func (g *Grid) PluginByName(name string) (plugin.Plugin, bool) {
	return g.registry.ByName(name)
}

// Events returns the grid's notification emitter.
func (g *Grid) Events() *event.Emitter {
	return g.emitter
}

// Settings returns the named plugin's merged settings.
func (g *Grid) Settings(name string) *config.Settings {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if s, ok := g.settings[name]; ok {
		return s
	}
	return config.Empty()
}

// Logger returns the grid's logger.
func (g *Grid) Logger() *log.Logger {
	return g.logger
}

// VisibleRange returns the currently materialized row range.
func (g *Grid) VisibleRange() virt.Range {
	return g.window.Current()
}

// ScrollTop returns the current scroll offset.
func (g *Grid) ScrollTop() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.scrollTop
}

// RowHeight returns the uniform base row height.
func (g *Grid) RowHeight() int {
	return g.window.RowHeight()
}

// TotalRows returns the effective row count of the last pass.
func (g *Grid) TotalRows() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.effRows)
}

// --- render pass execution ---

// runPass executes one scheduled pass. Hooks never run under the grid lock:
// a hook is free to call back into Host methods.
func (g *Grid) runPass(from sched.Phase, scrollOnly bool) {
	if scrollOnly {
		g.recomputeWindow()
		g.paint()
		g.fireScrollRender()
		return
	}

	if from <= sched.PhaseColumns {
		g.mu.RLock()
		base := core.CloneColumns(g.baseCols)
		g.mu.RUnlock()

		cols := g.pipeline.Columns(base)

		g.mu.Lock()
		g.effCols = cols
		g.mu.Unlock()
	}

	if from <= sched.PhaseRows {
		g.mu.RLock()
		base := core.CloneRows(g.baseRows)
		g.mu.RUnlock()

		rows := g.pipeline.Rows(base)

		g.mu.Lock()
		g.effRows = rows
		if g.selected >= len(rows) {
			g.selected = len(rows) - 1
		}
		g.mu.Unlock()
	}

	// Selection moves may have shifted the scroll offset since the last
	// window computation.
	g.recomputeWindow()

	g.fireBeforeRender()
	g.paint()
	g.fireAfterRender()
}

// recomputeWindow clamps the scroll offset and recomputes the visible
// range from live state.
func (g *Grid) recomputeWindow() {
	heights := g.heightContributors()
	adjusters := g.startAdjusters()

	g.mu.Lock()
	total := len(g.effRows)
	max := g.window.MaxScroll(total, heights)
	if g.scrollTop > max {
		g.scrollTop = max
	}
	if g.scrollTop < 0 {
		g.scrollTop = 0
	}
	top := g.scrollTop
	g.mu.Unlock()

	g.window.Compute(top, total, adjusters)
}

func (g *Grid) fireBeforeRender() {
	for _, p := range g.registry.Plugins() {
		if obs, ok := p.(plugin.RenderObserver); ok {
			plugin.Call(g.logger, p.Manifest().Name, "BeforeRender", obs.BeforeRender)
		}
	}
}

func (g *Grid) fireAfterRender() {
	for _, p := range g.registry.Plugins() {
		if obs, ok := p.(plugin.RenderObserver); ok {
			plugin.Call(g.logger, p.Manifest().Name, "AfterRender", obs.AfterRender)
		}
	}
}

func (g *Grid) fireScrollRender() {
	for _, p := range g.registry.Plugins() {
		if obs, ok := p.(plugin.ScrollRenderObserver); ok {
			plugin.Call(g.logger, p.Manifest().Name, "OnScrollRender", obs.OnScrollRender)
		}
	}
}

// heightContributors wraps every contributing plugin in a panic-safe,
// non-negative adapter, so one broken plugin contributes 0 instead of
// corrupting the height math.
func (g *Grid) heightContributors() []virt.HeightContributor {
	var out []virt.HeightContributor
	for _, p := range g.registry.Plugins() {
		if h, ok := p.(plugin.HeightContributor); ok {
			out = append(out, &safeHeight{name: p.Manifest().Name, logger: g.logger, h: h})
		}
	}
	return out
}

func (g *Grid) startAdjusters() []virt.StartAdjuster {
	var out []virt.StartAdjuster
	for _, p := range g.registry.Plugins() {
		if a, ok := p.(plugin.StartAdjuster); ok {
			out = append(out, &safeAdjuster{name: p.Manifest().Name, logger: g.logger, a: a})
		}
	}
	return out
}

// safeHeight guards a plugin's height hooks: panics contribute 0, negative
// reports are clamped with a warning.
type safeHeight struct {
	name   string
	logger *log.Logger
	h      plugin.HeightContributor
}

func (s *safeHeight) ExtraHeight() int {
	v := plugin.CallInt(s.logger, s.name, "ExtraHeight", 0, s.h.ExtraHeight)
	if v < 0 {
		s.logger.Warn("plugin %q reported negative extra height %d, using 0", s.name, v)
		return 0
	}
	return v
}

func (s *safeHeight) ExtraHeightBefore(index int) int {
	v := plugin.CallInt(s.logger, s.name, "ExtraHeightBefore", 0, func() int {
		return s.h.ExtraHeightBefore(index)
	})
	if v < 0 {
		s.logger.Warn("plugin %q reported negative extra height %d before row %d, using 0", s.name, v, index)
		return 0
	}
	return v
}

// safeAdjuster guards AdjustVirtualStart: a panic leaves the start alone.
type safeAdjuster struct {
	name   string
	logger *log.Logger
	a      plugin.StartAdjuster
}

func (s *safeAdjuster) AdjustVirtualStart(start, scrollTop, rowHeight int) int {
	return plugin.CallInt(s.logger, s.name, "AdjustVirtualStart", start, func() int {
		return s.a.AdjustVirtualStart(start, scrollTop, rowHeight)
	})
}
