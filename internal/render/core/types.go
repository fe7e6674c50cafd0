// Package core provides shared cell and style types for the render
// subsystem. This package breaks import cycles between render and backend.
package core

// Color represents a color value. The zero value with Default set is the
// terminal's default color.
type Color struct {
	R, G, B uint8
	// Default indicates the terminal's default color.
	Default bool
}

// ColorDefault is the terminal's default color.
var ColorDefault = Color{Default: true}

// Common colors.
var (
	ColorBlack  = Color{R: 0, G: 0, B: 0}
	ColorWhite  = Color{R: 255, G: 255, B: 255}
	ColorGray   = Color{R: 128, G: 128, B: 128}
	ColorBlue   = Color{R: 0, G: 0, B: 255}
	ColorYellow = Color{R: 255, G: 255, B: 0}
)

// RGB creates a true color from components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Style describes how a cell is drawn.
type Style struct {
	FG, BG    Color
	Bold      bool
	Dim       bool
	Underline bool
	Reverse   bool
}

// StyleDefault is the terminal's default style.
var StyleDefault = Style{FG: ColorDefault, BG: ColorDefault}

// Cell is one screen cell.
type Cell struct {
	Rune  rune
	Width int
	Style Style
}

// EmptyCell returns a blank cell in the default style.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Width: 1, Style: StyleDefault}
}

// Rect is a half-open screen rectangle: [Left,Right) x [Top,Bottom).
type Rect struct {
	Left, Top, Right, Bottom int
}

// Width returns the rectangle width.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the rectangle height.
func (r Rect) Height() int { return r.Bottom - r.Top }
