package backend

import (
	"strings"
	"sync"

	"github.com/dshills/gridstorm/internal/render/core"
)

// Buffer implements Backend in memory, for tests and headless rendering.
type Buffer struct {
	mu     sync.Mutex
	width  int
	height int
	cells  [][]core.Cell

	events chan Event
	done   bool
}

// NewBuffer creates a buffer backend with the given dimensions.
func NewBuffer(width, height int) *Buffer {
	b := &Buffer{
		width:  width,
		height: height,
		events: make(chan Event, 64),
	}
	b.allocate()
	return b
}

func (b *Buffer) allocate() {
	b.cells = make([][]core.Cell, b.height)
	for y := 0; y < b.height; y++ {
		b.cells[y] = make([]core.Cell, b.width)
		for x := 0; x < b.width; x++ {
			b.cells[y][x] = core.EmptyCell()
		}
	}
}

// Init implements Backend.
func (b *Buffer) Init() error { return nil }

// Shutdown implements Backend.
func (b *Buffer) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return
	}
	b.done = true
	close(b.events)
}

// Size implements Backend.
func (b *Buffer) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

// Resize changes the buffer dimensions and queues a resize event.
func (b *Buffer) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width = width
	b.height = height
	b.allocate()
	if !b.done {
		b.events <- Event{Type: EventResize, Width: width, Height: height}
	}
}

// SetCell implements Backend.
func (b *Buffer) SetCell(x, y int, cell core.Cell) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	b.cells[y][x] = cell
}

// Fill implements Backend.
func (b *Buffer) Fill(rect core.Rect, cell core.Cell) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for y := rect.Top; y < rect.Bottom && y < b.height; y++ {
		for x := rect.Left; x < rect.Right && x < b.width; x++ {
			if x >= 0 && y >= 0 {
				b.cells[y][x] = cell
			}
		}
	}
}

// Clear implements Backend.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			b.cells[y][x] = core.EmptyCell()
		}
	}
}

// Show implements Backend. The buffer has no front/back distinction.
func (b *Buffer) Show() {}

// PollEvent implements Backend.
func (b *Buffer) PollEvent() (Event, bool) {
	ev, ok := <-b.events
	return ev, ok
}

// Wake implements Backend.
func (b *Buffer) Wake() {
	b.Inject(Event{Type: EventWake})
}

// Inject queues an event, for tests driving the host loop. The send happens
// under the lock so a concurrent Shutdown cannot close the channel first.
func (b *Buffer) Inject(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.done {
		b.events <- ev
	}
}

// Cell returns the cell at a position.
func (b *Buffer) Cell(x, y int) core.Cell {
	b.mu.Lock()
	defer b.mu.Unlock()
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return core.EmptyCell()
	}
	return b.cells[y][x]
}

// Line returns the text content of one row, trailing spaces trimmed.
func (b *Buffer) Line(y int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if y < 0 || y >= b.height {
		return ""
	}
	var sb strings.Builder
	for x := 0; x < b.width; x++ {
		c := b.cells[y][x]
		if c.Rune == 0 {
			continue
		}
		sb.WriteRune(c.Rune)
	}
	return strings.TrimRight(sb.String(), " ")
}
