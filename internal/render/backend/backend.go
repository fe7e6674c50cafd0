// Package backend provides terminal backend abstraction for the renderer.
// The Terminal backend drives a real terminal through tcell; the Buffer
// backend is an in-memory implementation for tests.
package backend

import "github.com/dshills/gridstorm/internal/render/core"

// EventType identifies the type of backend event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
	// EventWake is delivered after a Wake call; the host loop uses it to
	// flush scheduled render work.
	EventWake
)

// ModMask is a bitmask of modifier keys.
type ModMask uint8

// Modifier flags.
const (
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
)

// MouseButton identifies a mouse button or wheel motion.
type MouseButton int

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
	WheelUp
	WheelDown
)

// Event represents a backend event.
type Event struct {
	Type EventType

	// Key event fields. Key names special keys ("up", "down", "enter",
	// "escape", "pgup", "pgdn", "home", "end", "tab"); empty for runes.
	Rune rune
	Key  string
	Mod  ModMask

	// Mouse event fields.
	MouseX, MouseY int
	Button         MouseButton

	// Resize event fields.
	Width, Height int
}

// Backend abstracts the paint and input surface the grid renders into.
type Backend interface {
	// Init prepares the backend for use.
	Init() error

	// Shutdown restores the terminal state.
	Shutdown()

	// Size returns the surface dimensions in cells.
	Size() (width, height int)

	// SetCell writes one cell.
	SetCell(x, y int, cell core.Cell)

	// Fill fills a rectangle with the given cell.
	Fill(rect core.Rect, cell core.Cell)

	// Clear blanks the surface.
	Clear()

	// Show makes pending writes visible.
	Show()

	// PollEvent blocks for the next event. ok is false after Shutdown.
	PollEvent() (ev Event, ok bool)

	// Wake queues an EventWake, unblocking PollEvent. Safe from any
	// goroutine; this is the scheduler's frame signal.
	Wake()
}
