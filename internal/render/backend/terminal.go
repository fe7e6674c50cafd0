package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gridstorm/internal/render/core"
)

// Terminal implements Backend using tcell for terminal output.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
	done   bool
}

// NewTerminal creates a new terminal backend.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// Init implements Backend.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse()
	return nil
}

// Shutdown implements Backend.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return
	}
	t.done = true
	t.screen.Fini()
}

// Size implements Backend.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Size()
}

// SetCell implements Backend.
func (t *Terminal) SetCell(x, y int, cell core.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.SetContent(x, y, cell.Rune, nil, convertStyle(cell.Style))
}

// Fill implements Backend.
func (t *Terminal) Fill(rect core.Rect, cell core.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	style := convertStyle(cell.Style)
	width, height := t.screen.Size()
	for y := rect.Top; y < rect.Bottom && y < height; y++ {
		for x := rect.Left; x < rect.Right && x < width; x++ {
			if x >= 0 && y >= 0 {
				t.screen.SetContent(x, y, cell.Rune, nil, style)
			}
		}
	}
}

// Clear implements Backend.
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Clear()
}

// Show implements Backend.
func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Show()
}

// PollEvent implements Backend.
func (t *Terminal) PollEvent() (Event, bool) {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return Event{}, false
		}
		if converted, ok := convertEvent(ev); ok {
			return converted, true
		}
	}
}

// Wake implements Backend. Posts an interrupt so PollEvent returns an
// EventWake to the host loop.
func (t *Terminal) Wake() {
	t.screen.PostEvent(tcell.NewEventInterrupt(nil)) //nolint:errcheck // queue-full drops are fine for wakes
}

// convertEvent maps a tcell event to a backend event.
func convertEvent(ev tcell.Event) (Event, bool) {
	switch tev := ev.(type) {
	case *tcell.EventInterrupt:
		return Event{Type: EventWake}, true

	case *tcell.EventResize:
		w, h := tev.Size()
		return Event{Type: EventResize, Width: w, Height: h}, true

	case *tcell.EventKey:
		out := Event{Type: EventKey, Mod: convertMod(tev.Modifiers())}
		if tev.Key() == tcell.KeyRune {
			out.Rune = tev.Rune()
		} else {
			name, ok := keyNames[tev.Key()]
			if !ok {
				return Event{}, false
			}
			out.Key = name
		}
		return out, true

	case *tcell.EventMouse:
		x, y := tev.Position()
		out := Event{Type: EventMouse, MouseX: x, MouseY: y}
		switch {
		case tev.Buttons()&tcell.WheelUp != 0:
			out.Button = WheelUp
		case tev.Buttons()&tcell.WheelDown != 0:
			out.Button = WheelDown
		case tev.Buttons()&tcell.Button1 != 0:
			out.Button = ButtonLeft
		case tev.Buttons()&tcell.Button2 != 0:
			out.Button = ButtonRight
		case tev.Buttons()&tcell.Button3 != 0:
			out.Button = ButtonMiddle
		default:
			out.Button = ButtonNone
		}
		return out, true
	}
	return Event{}, false
}

// keyNames maps the special keys the grid routes to plugins.
var keyNames = map[tcell.Key]string{
	tcell.KeyUp:     "up",
	tcell.KeyDown:   "down",
	tcell.KeyLeft:   "left",
	tcell.KeyRight:  "right",
	tcell.KeyEnter:  "enter",
	tcell.KeyEscape: "escape",
	tcell.KeyTab:    "tab",
	tcell.KeyPgUp:   "pgup",
	tcell.KeyPgDn:   "pgdn",
	tcell.KeyHome:   "home",
	tcell.KeyEnd:    "end",
}

func convertMod(m tcell.ModMask) ModMask {
	var out ModMask
	if m&tcell.ModShift != 0 {
		out |= ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= ModAlt
	}
	return out
}

// convertStyle maps a core style to tcell.
func convertStyle(s core.Style) tcell.Style {
	style := tcell.StyleDefault
	if !s.FG.Default {
		style = style.Foreground(tcell.NewRGBColor(int32(s.FG.R), int32(s.FG.G), int32(s.FG.B)))
	}
	if !s.BG.Default {
		style = style.Background(tcell.NewRGBColor(int32(s.BG.R), int32(s.BG.G), int32(s.BG.B)))
	}
	return style.Bold(s.Bold).Dim(s.Dim).Underline(s.Underline).Reverse(s.Reverse)
}
