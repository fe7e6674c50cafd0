package grid

import (
	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/grid/core"
	"github.com/dshills/gridstorm/internal/plugin"
	"github.com/dshills/gridstorm/internal/render/backend"
	"github.com/dshills/gridstorm/internal/sched"
)

// wheelStep is the scroll distance of one wheel notch, in base rows.
const wheelStep = 3

// HandleEvent routes one backend event through the grid: wake events flush
// scheduled render work, input events go to the interaction hooks. Called
// from the host loop's goroutine.
func (g *Grid) HandleEvent(ev backend.Event) {
	switch ev.Type {
	case backend.EventWake:
		g.Flush()
	case backend.EventResize:
		g.window.Resize(ev.Height - headerRows)
		g.RequestRender()
	case backend.EventKey:
		g.handleKey(ev)
	case backend.EventMouse:
		g.handleMouse(ev)
	}
}

func convertModifiers(m backend.ModMask) core.Modifiers {
	var out core.Modifiers
	if m&backend.ModShift != 0 {
		out |= core.ModShift
	}
	if m&backend.ModCtrl != 0 {
		out |= core.ModCtrl
	}
	if m&backend.ModAlt != 0 {
		out |= core.ModAlt
	}
	return out
}

// handleKey offers the key to every KeyHandler in attach order. Every
// handler sees the event; the first claim only suppresses the grid's
// default navigation.
func (g *Grid) handleKey(ev backend.Event) {
	key := core.KeyEvent{Rune: ev.Rune, Name: ev.Key, Mod: convertModifiers(ev.Mod)}

	claimed := false
	for _, p := range g.registry.Plugins() {
		h, ok := p.(plugin.KeyHandler)
		if !ok {
			continue
		}
		if plugin.CallBool(g.logger, p.Manifest().Name, "OnKeyDown", func() bool {
			return h.OnKeyDown(key)
		}) {
			claimed = true
		}
	}
	if claimed {
		return
	}
	g.defaultKey(key)
}

func (g *Grid) defaultKey(key core.KeyEvent) {
	g.mu.RLock()
	total := len(g.effRows)
	selected := g.selected
	g.mu.RUnlock()
	if total == 0 {
		return
	}

	_, height := g.surface.Size()
	page := (height - headerRows) / g.window.RowHeight()
	if page < 1 {
		page = 1
	}

	next := selected
	switch key.Name {
	case "up":
		next = selected - 1
	case "down":
		next = selected + 1
	case "pgup":
		next = selected - page
	case "pgdn":
		next = selected + page
	case "home":
		next = 0
	case "end":
		next = total - 1
	default:
		return
	}
	if next < 0 {
		next = 0
	}
	if next >= total {
		next = total - 1
	}
	g.Select(next)
}

// Select moves the selection to the given row index, scrolls it into view,
// and queues a repaint.
func (g *Grid) Select(index int) {
	g.mu.Lock()
	if index < 0 || index >= len(g.effRows) {
		g.mu.Unlock()
		return
	}
	changed := g.selected != index
	g.selected = index
	g.mu.Unlock()

	g.ensureVisible(index)
	if changed {
		g.emitter.Emit(event.TypeSelectionMoved, index)
	}
	g.sched.Request(sched.PhasePaint)
}

// ensureVisible adjusts scrollTop so the row at index is fully inside the
// viewport, including its extra height when it fits.
func (g *Grid) ensureVisible(index int) {
	heights := g.heightContributors()
	_, height := g.surface.Size()
	viewport := height - headerRows
	if viewport < 1 {
		viewport = 1
	}

	top := g.window.HeightBefore(index, heights)
	bottom := g.window.HeightBefore(index+1, heights)
	if bottom-top > viewport {
		bottom = top + viewport
	}

	g.mu.Lock()
	prev := g.scrollTop
	scroll := prev
	if top < scroll {
		scroll = top
	} else if bottom > scroll+viewport {
		scroll = bottom - viewport
	}
	g.scrollTop = scroll
	g.mu.Unlock()

	if scroll != prev {
		g.notifyScroll(scroll, scroll-prev)
	}
}

// ScrollBy moves the scroll offset by delta height units, clamped to the
// scrollable range, and queues a scroll-only repaint.
func (g *Grid) ScrollBy(delta int) {
	heights := g.heightContributors()

	g.mu.Lock()
	total := len(g.effRows)
	g.mu.Unlock()

	max := g.window.MaxScroll(total, heights)

	g.mu.Lock()
	top := g.scrollTop + delta
	if top > max {
		top = max
	}
	if top < 0 {
		top = 0
	}
	applied := top - g.scrollTop
	g.scrollTop = top
	g.mu.Unlock()

	if applied == 0 {
		return
	}
	g.notifyScroll(top, applied)
	g.sched.RequestScroll()
	g.settle.Trigger(top)
}

// notifyScroll offers the scroll change to every ScrollHandler. Scroll
// observation has no default to suppress; the claim flag is advisory.
func (g *Grid) notifyScroll(top, delta int) {
	ev := core.ScrollEvent{Top: top, Delta: delta}
	for _, p := range g.registry.Plugins() {
		h, ok := p.(plugin.ScrollHandler)
		if !ok {
			continue
		}
		plugin.CallBool(g.logger, p.Manifest().Name, "OnScroll", func() bool {
			return h.OnScroll(ev)
		})
	}
}

func (g *Grid) handleMouse(ev backend.Event) {
	switch ev.Button {
	case backend.WheelUp:
		g.ScrollBy(-wheelStep * g.window.RowHeight())
		return
	case backend.WheelDown:
		g.ScrollBy(wheelStep * g.window.RowHeight())
		return
	}

	if ev.MouseY < headerRows {
		g.handleHeaderMouse(ev)
		return
	}
	g.handleCellMouse(ev)
}

func (g *Grid) handleHeaderMouse(ev backend.Event) {
	if ev.Button != backend.ButtonLeft {
		return
	}
	key, ok := g.columnAt(ev.MouseX)
	if !ok {
		return
	}
	hev := core.HeaderEvent{ColumnKey: key, ScreenX: ev.MouseX}
	for _, p := range g.registry.Plugins() {
		h, ok := p.(plugin.HeaderClickHandler)
		if !ok {
			continue
		}
		plugin.CallBool(g.logger, p.Manifest().Name, "OnHeaderClick", func() bool {
			return h.OnHeaderClick(hev)
		})
	}
}

func (g *Grid) handleCellMouse(ev backend.Event) {
	g.mu.Lock()
	wasDown := g.mouseDown
	switch {
	case ev.Button == backend.ButtonLeft:
		g.mouseDown = true
	case ev.Button == backend.ButtonNone:
		g.mouseDown = false
	}
	g.mu.Unlock()

	index, ok := g.rowAt(ev.MouseY)
	if !ok {
		return
	}
	row, ok := g.Row(index)
	if !ok {
		return
	}
	key, _ := g.columnAt(ev.MouseX)
	cev := core.CellEvent{
		RowIndex:  index,
		Row:       row,
		ColumnKey: key,
		ScreenX:   ev.MouseX,
		ScreenY:   ev.MouseY,
	}

	switch {
	case ev.Button == backend.ButtonLeft && !wasDown:
		g.fireCellMouse(cev, "OnCellMouseDown", func(h plugin.CellMouseHandler) bool {
			return h.OnCellMouseDown(cev)
		})
		g.fireClick(cev)
	case ev.Button == backend.ButtonLeft && wasDown:
		g.fireCellMouse(cev, "OnCellMouseMove", func(h plugin.CellMouseHandler) bool {
			return h.OnCellMouseMove(cev)
		})
	case ev.Button == backend.ButtonNone && wasDown:
		g.fireCellMouse(cev, "OnCellMouseUp", func(h plugin.CellMouseHandler) bool {
			return h.OnCellMouseUp(cev)
		})
	}
}

func (g *Grid) fireCellMouse(ev core.CellEvent, hook string, fn func(plugin.CellMouseHandler) bool) {
	for _, p := range g.registry.Plugins() {
		h, ok := p.(plugin.CellMouseHandler)
		if !ok {
			continue
		}
		plugin.CallBool(g.logger, p.Manifest().Name, hook, func() bool {
			return fn(h)
		})
	}
}

// fireClick dispatches cell and row click hooks. All handlers are notified;
// any claim suppresses the default row selection.
func (g *Grid) fireClick(ev core.CellEvent) {
	claimed := false
	for _, p := range g.registry.Plugins() {
		if h, ok := p.(plugin.CellClickHandler); ok {
			if plugin.CallBool(g.logger, p.Manifest().Name, "OnCellClick", func() bool {
				return h.OnCellClick(ev)
			}) {
				claimed = true
			}
		}
		if h, ok := p.(plugin.RowClickHandler); ok {
			if plugin.CallBool(g.logger, p.Manifest().Name, "OnRowClick", func() bool {
				return h.OnRowClick(ev)
			}) {
				claimed = true
			}
		}
	}
	if !claimed {
		g.Select(ev.RowIndex)
	}
}

// rowAt resolves a surface y coordinate to the row index it falls on,
// walking the windowed rows by their painted strips.
func (g *Grid) rowAt(y int) (int, bool) {
	if y < headerRows {
		return 0, false
	}
	heights := g.heightContributors()
	rng := g.window.Current()
	rowHeight := g.window.RowHeight()

	g.mu.RLock()
	scrollTop := g.scrollTop
	total := len(g.effRows)
	g.mu.RUnlock()

	for i := rng.Start; i < rng.End && i < total; i++ {
		top := headerRows + g.window.HeightBefore(i, heights) - scrollTop
		stripH := rowHeight + g.extraFor(i, heights)
		if y >= top && y < top+stripH {
			return i, true
		}
	}
	return 0, false
}

// columnAt resolves a surface x coordinate to the column key whose span
// covers it.
func (g *Grid) columnAt(x int) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, sp := range g.layout {
		if sp.w <= 0 {
			continue
		}
		if x >= sp.x && x < sp.x+sp.w {
			return sp.key, true
		}
	}
	return "", false
}
