package grid

import (
	"github.com/dshills/gridstorm/internal/grid/core"
	"github.com/dshills/gridstorm/internal/plugin"
	rcore "github.com/dshills/gridstorm/internal/render/core"
	"github.com/dshills/gridstorm/internal/virt"
)

// colSpan is one column's horizontal placement on the surface.
type colSpan struct {
	key  string
	kind core.Kind
	x    int
	w    int
}

// colGap is the spacing between adjacent columns, in cells.
const colGap = 1

// computeLayout places columns left to right. Fixed widths are honored;
// zero-width columns share the leftover space evenly. Columns that no
// longer fit get width 0 and are not painted.
func computeLayout(cols []core.Column, total int) []colSpan {
	spans := make([]colSpan, len(cols))

	fixed := 0
	flex := 0
	for _, c := range cols {
		if c.Width > 0 {
			fixed += c.Width
		} else {
			flex++
		}
	}
	gaps := 0
	if len(cols) > 1 {
		gaps = (len(cols) - 1) * colGap
	}

	share, rem := 0, 0
	if flex > 0 {
		leftover := total - fixed - gaps
		if leftover < flex {
			leftover = flex
		}
		share = leftover / flex
		rem = leftover % flex
	}

	x := 0
	for i, c := range cols {
		w := c.Width
		if w <= 0 {
			w = share
			if rem > 0 {
				w++
				rem--
			}
		}
		if x >= total {
			spans[i] = colSpan{key: c.Key, kind: c.Kind, x: total, w: 0}
			continue
		}
		if x+w > total {
			w = total - x
		}
		spans[i] = colSpan{key: c.Key, kind: c.Kind, x: x, w: w}
		x += w + colGap
	}
	return spans
}

var (
	headerStyle   = rcore.Style{FG: rcore.ColorDefault, BG: rcore.ColorDefault, Bold: true}
	selectedStyle = rcore.Style{FG: rcore.ColorDefault, BG: rcore.ColorDefault, Reverse: true}
)

// paint draws the header and every row in the current window. It snapshots
// grid state up front so hooks invoked during painting (RenderRow) run
// without the lock held.
func (g *Grid) paint() {
	width, height := g.surface.Size()
	heights := g.heightContributors()

	g.mu.RLock()
	cols := g.effCols
	rows := g.effRows
	selected := g.selected
	scrollTop := g.scrollTop
	g.mu.RUnlock()

	layout := computeLayout(cols, width)
	g.mu.Lock()
	g.layout = layout
	g.mu.Unlock()

	g.surface.Clear()
	g.paintHeader(cols, layout)

	rng := g.window.Current()
	rowHeight := g.window.RowHeight()
	renderers := plugin.Implementing[plugin.RowRenderer](g.registry)

	for i := rng.Start; i < rng.End && i < len(rows); i++ {
		top := headerRows + g.window.HeightBefore(i, heights) - scrollTop
		stripH := rowHeight + g.extraFor(i, heights)
		if top+stripH <= headerRows || top >= height {
			continue
		}

		style := rcore.StyleDefault
		if i == selected {
			style = selectedStyle
		}

		strip := &rowStrip{
			surface: g.surface,
			top:     top,
			width:   width,
			height:  stripH,
			clipTop: headerRows,
			clipBot: height,
			style:   style,
		}
		if i == selected {
			strip.fillBackground()
		}
		if g.renderRowOverridden(renderers, i, rows[i], strip) {
			continue
		}
		g.paintCells(rows[i], cols, layout, top, style, height)
	}

	g.surface.Show()
}

// extraFor returns the extra height carried by row index, derived from the
// cumulative offsets so it stays consistent with row placement.
func (g *Grid) extraFor(index int, heights []virt.HeightContributor) int {
	before := g.window.HeightBefore(index, heights)
	after := g.window.HeightBefore(index+1, heights)
	extra := after - before - g.window.RowHeight()
	if extra < 0 {
		return 0
	}
	return extra
}

func (g *Grid) paintHeader(cols []core.Column, layout []colSpan) {
	g.surface.FillRow(0, headerStyle)
	for i, c := range cols {
		sp := layout[i]
		if sp.w <= 0 {
			continue
		}
		if c.Kind == core.KindNumber {
			g.surface.SetTextRight(sp.x, 0, sp.w, c.Title, headerStyle)
		} else {
			g.surface.SetText(sp.x, 0, sp.w, c.Title, headerStyle)
		}
	}
}

// renderRowOverridden offers the row to every RowRenderer in attach order.
// The first to claim it suppresses default cell rendering; a panicking
// renderer is skipped.
func (g *Grid) renderRowOverridden(renderers []plugin.RowRenderer, index int, row core.Row, strip *rowStrip) bool {
	for _, r := range renderers {
		name := "renderer"
		if p, ok := r.(plugin.Plugin); ok {
			name = p.Manifest().Name
		}
		claimed := plugin.CallBool(g.logger, name, "RenderRow", func() bool {
			return r.RenderRow(index, row, strip)
		})
		if claimed {
			return true
		}
	}
	return false
}

func (g *Grid) paintCells(row core.Row, cols []core.Column, layout []colSpan, top int, style rcore.Style, height int) {
	if top < headerRows || top >= height {
		return
	}
	for i, c := range cols {
		sp := layout[i]
		if sp.w <= 0 {
			continue
		}
		text := ""
		if c.Cell != nil {
			text = c.Cell(row)
		}
		if c.Kind == core.KindNumber {
			g.surface.SetTextRight(sp.x, top, sp.w, text, style)
		} else {
			g.surface.SetText(sp.x, top, sp.w, text, style)
		}
	}
}

// rowStrip is the drawing surface for one row: the viewport strip the row
// occupies, including its extra height. Writes are clipped to the strip and
// to the viewport, so a renderer cannot paint over the header or another
// row.
type rowStrip struct {
	surface interface {
		SetText(x, y, width int, text string, style rcore.Style) int
		FillRow(y int, style rcore.Style)
	}
	top     int
	width   int
	height  int
	clipTop int
	clipBot int
	style   rcore.Style
}

func (r *rowStrip) Width() int  { return r.width }
func (r *rowStrip) Height() int { return r.height }

func (r *rowStrip) SetText(line, x, width int, text string) {
	if line < 0 || line >= r.height {
		return
	}
	y := r.top + line
	if y < r.clipTop || y >= r.clipBot {
		return
	}
	if x < 0 {
		x = 0
	}
	if x+width > r.width {
		width = r.width - x
	}
	r.surface.SetText(x, y, width, text, r.style)
}

func (r *rowStrip) fillBackground() {
	for line := 0; line < r.height; line++ {
		y := r.top + line
		if y < r.clipTop || y >= r.clipBot {
			continue
		}
		r.surface.FillRow(y, r.style)
	}
}
