package render

import (
	"testing"

	"github.com/dshills/gridstorm/internal/render/backend"
	"github.com/dshills/gridstorm/internal/render/core"
)

func TestSetTextBasic(t *testing.T) {
	buf := backend.NewBuffer(20, 3)
	s := NewSurface(buf)

	s.SetText(0, 0, 10, "hello", core.StyleDefault)

	if got := buf.Line(0); got != "hello" {
		t.Errorf("line = %q, want %q", got, "hello")
	}
	// Padding must overwrite stale content.
	s.SetText(0, 1, 10, "aaaaaaaaaa", core.StyleDefault)
	s.SetText(0, 1, 10, "bb", core.StyleDefault)
	if got := buf.Line(1); got != "bb" {
		t.Errorf("line = %q, want %q (stale content must be padded over)", got, "bb")
	}
}

func TestSetTextTruncates(t *testing.T) {
	buf := backend.NewBuffer(20, 1)
	s := NewSurface(buf)

	s.SetText(0, 0, 4, "overflowing", core.StyleDefault)
	if got := buf.Line(0); got != "over" {
		t.Errorf("line = %q, want %q", got, "over")
	}
}

func TestSetTextWideRunes(t *testing.T) {
	buf := backend.NewBuffer(20, 1)
	s := NewSurface(buf)

	// CJK characters are two cells wide; three of them fit in width 6.
	n := s.SetText(0, 0, 6, "日本語学", core.StyleDefault)
	if n != 6 {
		t.Errorf("wrote %d cells, want 6", n)
	}
	if c := buf.Cell(0, 0); c.Rune != '日' || c.Width != 2 {
		t.Errorf("cell(0,0) = %c width %d, want 日 width 2", c.Rune, c.Width)
	}
	if c := buf.Cell(4, 0); c.Rune != '語' {
		t.Errorf("cell(4,0) = %c, want 語", c.Rune)
	}
}

func TestSetTextZeroWidth(t *testing.T) {
	buf := backend.NewBuffer(10, 1)
	s := NewSurface(buf)

	if n := s.SetText(0, 0, 0, "x", core.StyleDefault); n != 0 {
		t.Errorf("wrote %d cells for width 0, want 0", n)
	}
}

func TestSetTextRight(t *testing.T) {
	buf := backend.NewBuffer(20, 1)
	s := NewSurface(buf)

	s.SetTextRight(0, 0, 8, "42", core.StyleDefault)
	if c := buf.Cell(6, 0); c.Rune != '4' {
		t.Errorf("cell(6,0) = %q, want 4", c.Rune)
	}
	if c := buf.Cell(7, 0); c.Rune != '2' {
		t.Errorf("cell(7,0) = %q, want 2", c.Rune)
	}
	if c := buf.Cell(0, 0); c.Rune != ' ' {
		t.Errorf("cell(0,0) = %q, want space padding", c.Rune)
	}
}

func TestFillRow(t *testing.T) {
	buf := backend.NewBuffer(5, 2)
	s := NewSurface(buf)

	style := core.Style{FG: core.ColorDefault, BG: core.ColorBlue}
	s.FillRow(1, style)

	for x := 0; x < 5; x++ {
		if c := buf.Cell(x, 1); c.Style.BG != core.ColorBlue {
			t.Fatalf("cell(%d,1) style not filled", x)
		}
	}
	if c := buf.Cell(0, 0); c.Style.BG == core.ColorBlue {
		t.Error("row 0 must be untouched")
	}
}
