package main

import (
	"fmt"
	"sort"

	"github.com/dshills/gridstorm/internal/event"
	"github.com/dshills/gridstorm/internal/grid"
	"github.com/dshills/gridstorm/internal/grid/core"
	"github.com/dshills/gridstorm/internal/plugin"
)

// detailHeight is the number of extra lines an expanded task occupies.
const detailHeight = 1

// detailPlugin expands the selected task in place: enter toggles a detail
// strip under the row showing its notes.
type detailPlugin struct {
	g    *grid.Grid
	host plugin.Host

	// expanded is keyed by task id so state survives filtering.
	expanded map[any]bool
	// indices caches the expanded rows' positions in the effective list,
	// rebuilt before each render pass.
	indices []int
}

func (p *detailPlugin) Manifest() plugin.Manifest {
	return plugin.Manifest{
		Name:        "detail-expander",
		Version:     "1.0.0",
		Description: "Expands a task row into an inline detail strip",
	}
}

func (p *detailPlugin) Attach(host plugin.Host) error {
	p.host = host
	return nil
}

func (p *detailPlugin) Detach() {}

func taskID(row core.Row) any {
	m, ok := row.(map[string]any)
	if !ok {
		return nil
	}
	return m["id"]
}

func (p *detailPlugin) OnKeyDown(ev core.KeyEvent) bool {
	if ev.Name != "enter" {
		return false
	}
	idx := p.g.Selected()
	row, ok := p.g.Row(idx)
	if !ok {
		return false
	}
	id := taskID(row)
	if id == nil {
		return false
	}

	if p.expanded[id] {
		delete(p.expanded, id)
		p.host.Events().Emit(event.TypeDetailCollapsed, id)
	} else {
		p.expanded[id] = true
		p.host.Events().Emit(event.TypeDetailExpanded, id)
	}
	p.host.RequestRender()
	return true
}

// BeforeRender rebuilds the expanded-index cache against the effective row
// list, so the height hooks stay O(expanded) during painting.
func (p *detailPlugin) BeforeRender() {
	p.indices = p.indices[:0]
	for i, row := range p.g.Rows() {
		if p.expanded[taskID(row)] {
			p.indices = append(p.indices, i)
		}
	}
	sort.Ints(p.indices)
}

func (p *detailPlugin) AfterRender() {}

func (p *detailPlugin) ExtraHeight() int {
	return len(p.indices) * detailHeight
}

func (p *detailPlugin) ExtraHeightBefore(index int) int {
	n := 0
	for _, i := range p.indices {
		if i >= index {
			break
		}
		n++
	}
	return n * detailHeight
}

// RenderRow paints expanded rows itself: the task line plus an indented
// notes line. Collapsed rows keep the grid's default rendering.
func (p *detailPlugin) RenderRow(index int, row core.Row, s plugin.RowSurface) bool {
	m, ok := row.(map[string]any)
	if !ok || !p.expanded[m["id"]] {
		return false
	}

	line := fmt.Sprintf("▾ %v  [%v]", m["title"], m["status"])
	s.SetText(0, 0, s.Width(), line)
	s.SetText(1, 4, s.Width()-4, fmt.Sprint(m["notes"]))
	return true
}

// handlePlugin prepends a reorder-handle utility column and vetoes moves
// of position-locked columns.
type handlePlugin struct{}

func (p *handlePlugin) Manifest() plugin.Manifest {
	return plugin.Manifest{
		Name:        "reorder-handle",
		Version:     "1.0.0",
		Description: "Adds a drag-handle utility column",
	}
}

func (p *handlePlugin) Attach(plugin.Host) error { return nil }
func (p *handlePlugin) Detach()                  {}

func (p *handlePlugin) ProcessColumns(cols []core.Column) []core.Column {
	// Idempotent over its own output: utility columns are recognized by
	// flags, not by key.
	if len(cols) > 0 && cols[0].Flags.Utility {
		return cols
	}
	handle := core.Column{
		Key:   "_handle",
		Width: 2,
		Kind:  core.KindUtility,
		Flags: core.Flags{
			Utility:         true,
			LockPosition:    true,
			SuppressMovable: true,
		},
		Cell: func(core.Row) string { return "≡" },
	}
	return append([]core.Column{handle}, cols...)
}

func (p *handlePlugin) OnPluginQuery(q plugin.Query) (any, bool) {
	if q.Type != plugin.QueryColumnMovable {
		return nil, false
	}
	if key, ok := q.Context.(string); ok && key == "_handle" {
		return false, true
	}
	return nil, false
}
