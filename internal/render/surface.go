// Package render provides the drawing surface the grid paints into.
// Text placement is grapheme-cluster aware so combining characters and
// wide runes occupy the correct number of cells.
package render

import (
	"github.com/rivo/uniseg"

	"github.com/dshills/gridstorm/internal/render/backend"
	"github.com/dshills/gridstorm/internal/render/core"
)

// Surface wraps a backend with text-level drawing operations.
type Surface struct {
	b backend.Backend
}

// NewSurface creates a surface over the given backend.
func NewSurface(b backend.Backend) *Surface {
	return &Surface{b: b}
}

// Size returns the surface dimensions in cells.
func (s *Surface) Size() (int, int) {
	return s.b.Size()
}

// Clear blanks the surface.
func (s *Surface) Clear() {
	s.b.Clear()
}

// Show makes pending writes visible.
func (s *Surface) Show() {
	s.b.Show()
}

// FillRow fills one row with the given style.
func (s *Surface) FillRow(y int, style core.Style) {
	w, _ := s.b.Size()
	s.b.Fill(core.Rect{Left: 0, Top: y, Right: w, Bottom: y + 1}, core.Cell{Rune: ' ', Width: 1, Style: style})
}

// Fill fills a rectangle with a blank cell in the given style.
func (s *Surface) Fill(rect core.Rect, style core.Style) {
	s.b.Fill(rect, core.Cell{Rune: ' ', Width: 1, Style: style})
}

// SetText writes text into the cell range [x, x+width) on row y, truncating
// overflow and padding the remainder with spaces. Returns the number of
// cells written.
func (s *Surface) SetText(x, y, width int, text string, style core.Style) int {
	if width <= 0 {
		return 0
	}

	pos := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		if len(runes) == 0 {
			continue
		}
		cw := g.Width()
		if cw <= 0 {
			continue
		}
		if pos+cw > width {
			break
		}
		s.b.SetCell(x+pos, y, core.Cell{Rune: runes[0], Width: cw, Style: style})
		// Wide clusters occupy trailing cells; blank them so stale content
		// does not show through.
		for i := 1; i < cw; i++ {
			s.b.SetCell(x+pos+i, y, core.Cell{Rune: 0, Width: 0, Style: style})
		}
		pos += cw
	}

	for ; pos < width; pos++ {
		s.b.SetCell(x+pos, y, core.Cell{Rune: ' ', Width: 1, Style: style})
	}
	return pos
}

// SetTextRight writes text right-aligned within [x, x+width) on row y.
func (s *Surface) SetTextRight(x, y, width int, text string, style core.Style) {
	tw := uniseg.StringWidth(text)
	if tw >= width {
		s.SetText(x, y, width, text, style)
		return
	}
	pad := width - tw
	s.SetText(x, y, pad, "", style)
	s.SetText(x+pad, y, tw, text, style)
}
