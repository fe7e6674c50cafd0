package plugin

import (
	"github.com/dshills/gridstorm/internal/config"
	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/grid/core"
	"github.com/dshills/gridstorm/internal/log"
	"github.com/dshills/gridstorm/internal/virt"
)

// Plugin is the minimal contract every plugin implements. Everything else
// is an optional capability interface.
type Plugin interface {
	// Manifest returns the plugin's static metadata. Called before Attach
	// and must be stable for the plugin's lifetime.
	Manifest() Manifest

	// Attach binds the plugin to a host. Called exactly once per attach,
	// before any other hook; the host may not have rows yet.
	Attach(host Host) error

	// Detach releases resources. Must not panic when called without a
	// prior Attach, and may be called more than once.
	Detach()
}

// Host is the surface the grid exposes to attached plugins. Plugins never
// hold references to each other; cross-plugin needs go through Query.
type Host interface {
	// RequestRender queues a full row pass (rows, window, paint, after).
	RequestRender()

	// RequestColumnsPhase queues a pass that re-runs the column pipeline
	// before the row pass.
	RequestColumnsPhase()

	// Query broadcasts a typed request to every attached responder and
	// returns the collected responses in attach order.
	Query(q Query) []Response

	// PluginByName resolves an attached plugin by name.
	PluginByName(name string) (Plugin, bool)

	// Events returns the grid's notification emitter.
	Events() *event.Emitter

	// Settings returns the named plugin's merged settings.
	Settings(plugin string) *config.Settings

	// Logger returns a logger scoped to the grid instance.
	Logger() *log.Logger

	// VisibleRange returns the currently materialized row range.
	VisibleRange() virt.Range

	// ScrollTop returns the current scroll offset in height units.
	ScrollTop() int

	// RowHeight returns the uniform base row height.
	RowHeight() int

	// TotalRows returns the effective row count of the last pass.
	TotalRows() int
}

// ColumnTransformer produces this plugin's view of the column list. The
// input is the output of earlier plugins; the transform must be pure apart
// from the plugin's own bookkeeping, and must not insert a utility column
// twice when run repeatedly over its own output.
type ColumnTransformer interface {
	ProcessColumns(cols []core.Column) []core.Column
}

// RowTransformer is the row analog of ColumnTransformer: filtering,
// placeholder substitution, sorting.
type RowTransformer interface {
	ProcessRows(rows []core.Row) []core.Row
}

// Height-contribution capabilities are owned by the virt package, which
// owns the window math; aliased here so the whole hook surface reads from
// one place.
type (
	// HeightContributor reports extra height outside the uniform row grid.
	HeightContributor = virt.HeightContributor
	// StartAdjuster may pull the window start backward during scrolling.
	StartAdjuster = virt.StartAdjuster
)

// Interaction hooks return true to claim the event and suppress the grid's
// default handling. Every plugin is still notified in attach order; only the
// default handler is short-circuited.

// KeyHandler receives key presses.
type KeyHandler interface {
	OnKeyDown(ev core.KeyEvent) bool
}

// CellClickHandler receives cell clicks.
type CellClickHandler interface {
	OnCellClick(ev core.CellEvent) bool
}

// RowClickHandler receives row clicks (any cell in the row).
type RowClickHandler interface {
	OnRowClick(ev core.CellEvent) bool
}

// HeaderClickHandler receives header clicks.
type HeaderClickHandler interface {
	OnHeaderClick(ev core.HeaderEvent) bool
}

// ScrollHandler observes scroll position changes.
type ScrollHandler interface {
	OnScroll(ev core.ScrollEvent) bool
}

// CellMouseHandler receives low-level pointer transitions on cells, for
// drag interactions.
type CellMouseHandler interface {
	OnCellMouseDown(ev core.CellEvent) bool
	OnCellMouseMove(ev core.CellEvent) bool
	OnCellMouseUp(ev core.CellEvent) bool
}

// RenderObserver is notified around every full render pass.
type RenderObserver interface {
	BeforeRender()
	AfterRender()
}

// ScrollRenderObserver is notified after scroll-only repaints, which skip
// the full render cycle.
type ScrollRenderObserver interface {
	OnScrollRender()
}

// RowSurface is the drawing surface handed to RenderRow: the strip of the
// viewport allotted to one row, including any extra height the row carries
// (an expanded detail block paints its detail lines here).
type RowSurface interface {
	// Width returns the strip width in cells.
	Width() int
	// Height returns the strip height: the base row height plus this
	// row's extra height.
	Height() int
	// SetText writes text into [x, x+width) on the given strip line,
	// truncated and padded. Lines outside the viewport are clipped.
	SetText(line, x, width int, text string)
}

// RowRenderer may fully override a single row's rendering. Returning true
// suppresses the grid's default cell rendering for that row.
type RowRenderer interface {
	RenderRow(index int, row core.Row, s RowSurface) bool
}

// SettingsDefaulter provides the plugin's default settings document as
// JSON. User-supplied configuration is merged over it at attach time.
type SettingsDefaulter interface {
	DefaultSettings() []byte
}

// QueryResponder answers inter-plugin queries. The second result reports
// whether the plugin has an opinion; responders with no opinion return
// (nil, false) and contribute nothing.
type QueryResponder interface {
	OnPluginQuery(q Query) (any, bool)
}

// ToolPanelProvider contributes an auxiliary tool-panel region. The shape
// of the contribution is owned by the shell, not this core.
type ToolPanelProvider interface {
	ToolPanel() any
}

// HeaderContentProvider contributes auxiliary header content. As with
// ToolPanelProvider, only the hook's existence is part of this contract.
type HeaderContentProvider interface {
	HeaderContent() any
}
