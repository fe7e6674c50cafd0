// Package event provides the grid's synchronous notification channel.
//
// The grid and its plugins emit application-visible signals (detail expanded,
// column moved, print started) through an Emitter. Delivery is synchronous
// and ordered: handlers run in subscription order on the emitting goroutine,
// matching the grid's single-threaded phase model. Cancelable events let a
// handler veto a pending state change before it is applied.
package event

import (
	"sync"

	"github.com/dshills/gridstorm/internal/log"
)

// Type identifies an event.
type Type string

// Well-known event types.
const (
	TypeDetailExpanded  Type = "detail.expanded"
	TypeDetailCollapsed Type = "detail.collapsed"
	TypeColumnMoved     Type = "column.moved"
	TypePrintStarted    Type = "print.started"
	TypePrintFinished   Type = "print.finished"
	TypePluginAttached  Type = "plugin.attached"
	TypePluginDetached  Type = "plugin.detached"
	TypeSelectionMoved  Type = "selection.moved"
)

// Event is a single emitted signal. Its lifetime is one dispatch.
type Event struct {
	// Type identifies the event.
	Type Type
	// Data is the event payload; shape depends on Type.
	Data any

	cancelable bool
	canceled   bool
}

// Cancelable reports whether the event can be vetoed.
func (e *Event) Cancelable() bool {
	return e.cancelable
}

// PreventDefault vetoes the pending change. It has no effect on events
// emitted with Emit.
func (e *Event) PreventDefault() {
	if e.cancelable {
		e.canceled = true
	}
}

// DefaultPrevented reports whether a handler vetoed the event.
func (e *Event) DefaultPrevented() bool {
	return e.canceled
}

// Handler processes an event.
type Handler func(*Event)

// Subscription is a handle to an active subscription.
type Subscription struct {
	id      uint64
	eventTy Type
}

// Emitter delivers events to subscribers synchronously, in subscription
// order. Safe for concurrent subscribe/unsubscribe, though emission is
// expected to happen on the grid's goroutine.
type Emitter struct {
	mu     sync.RWMutex
	subs   map[Type][]entry
	nextID uint64
	logger *log.Logger
}

type entry struct {
	id      uint64
	handler Handler
}

// NewEmitter creates an emitter. A nil logger discards handler panic reports.
func NewEmitter(logger *log.Logger) *Emitter {
	if logger == nil {
		logger = log.Discard()
	}
	return &Emitter{
		subs:   make(map[Type][]entry),
		logger: logger.WithComponent("event"),
	}
}

// Subscribe registers a handler for the given event type and returns a
// handle for Unsubscribe.
func (e *Emitter) Subscribe(t Type, h Handler) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.subs[t] = append(e.subs[t], entry{id: id, handler: h})
	return Subscription{id: id, eventTy: t}
}

// Unsubscribe removes a subscription. Safe to call more than once.
func (e *Emitter) Unsubscribe(sub Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.subs[sub.eventTy]
	for i, ent := range entries {
		if ent.id == sub.id {
			e.subs[sub.eventTy] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// Emit delivers a non-cancelable notification to all subscribers.
func (e *Emitter) Emit(t Type, data any) {
	ev := &Event{Type: t, Data: data}
	e.dispatch(ev)
}

// EmitCancelable delivers a cancelable event and reports whether the pending
// change may proceed (true unless a handler called PreventDefault).
func (e *Emitter) EmitCancelable(t Type, data any) bool {
	ev := &Event{Type: t, Data: data, cancelable: true}
	e.dispatch(ev)
	return !ev.canceled
}

// dispatch runs handlers in subscription order. A panicking handler is
// logged and skipped; remaining handlers still run.
func (e *Emitter) dispatch(ev *Event) {
	e.mu.RLock()
	entries := make([]entry, len(e.subs[ev.Type]))
	copy(entries, e.subs[ev.Type])
	e.mu.RUnlock()

	for _, ent := range entries {
		e.safeDeliver(ev, ent)
	}
}

func (e *Emitter) safeDeliver(ev *Event, ent entry) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("handler panic for %s: %v", ev.Type, r)
		}
	}()
	ent.handler(ev)
}
