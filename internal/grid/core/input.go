package core

// Modifiers is a bitmask of modifier keys held during an input event.
type Modifiers uint8

// Modifier flags.
const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// Has returns true if the modifier set contains the given modifier.
func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod != 0
}

// KeyEvent describes a key press routed to interaction hooks.
type KeyEvent struct {
	// Rune is the printable character, or 0 for special keys.
	Rune rune
	// Name identifies special keys ("up", "down", "enter", "escape",
	// "pgup", "pgdn", "home", "end", "tab"). Empty for printable runes.
	Name string
	// Mod holds the modifier state.
	Mod Modifiers
}

// CellEvent describes a pointer event on a data cell.
type CellEvent struct {
	// RowIndex is the absolute row index in the effective row list.
	RowIndex int
	// Row is the underlying row record.
	Row Row
	// ColumnKey is the field key of the column hit.
	ColumnKey string
	// ScreenX, ScreenY are the backend coordinates of the event.
	ScreenX, ScreenY int
}

// HeaderEvent describes a pointer event on a column header.
type HeaderEvent struct {
	// ColumnKey is the field key of the header hit.
	ColumnKey string
	// ScreenX is the backend column of the event.
	ScreenX int
}

// ScrollEvent describes a scroll position change.
type ScrollEvent struct {
	// Top is the new scroll offset in height units.
	Top int
	// Delta is the change from the previous offset.
	Delta int
}
