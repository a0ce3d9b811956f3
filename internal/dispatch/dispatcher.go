// Package dispatch fans a frame's interaction events out to every
// subscribed consumer.
package dispatch

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ayusman/mudra/internal/interaction"
)

// EventName is the name every interaction event is dispatched under.
const EventName = "interaction"

// Listener receives interaction events.
type Listener interface {
	HandleEvent(e interaction.Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(e interaction.Event)

// HandleEvent calls f(e).
func (f ListenerFunc) HandleEvent(e interaction.Event) { f(e) }

type subscriber struct {
	id       uint64
	listener Listener
}

// Dispatcher delivers events synchronously, one by one, to a snapshot of its
// subscribers. Subscribing or unsubscribing from inside a listener takes
// effect with the next Dispatch.
type Dispatcher struct {
	mu          sync.Mutex
	nextID      uint64
	subscribers []subscriber

	dispatched atomic.Uint64
}

// New creates an empty Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{}
}

// Subscription removes a listener from the dispatcher it was added to.
type Subscription struct {
	id uint64
	d  *Dispatcher
}

// Remove unsubscribes the listener. Calling it more than once is a no-op.
func (s *Subscription) Remove() {
	if s == nil || s.d == nil {
		return
	}
	s.d.remove(s.id)
	s.d = nil
}

// Subscribe adds a listener. A nil listener is ignored.
func (d *Dispatcher) Subscribe(l Listener) *Subscription {
	if l == nil {
		return &Subscription{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	d.subscribers = append(d.subscribers, subscriber{id: d.nextID, listener: l})
	return &Subscription{id: d.nextID, d: d}
}

func (d *Dispatcher) remove(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, s := range d.subscribers {
		if s.id == id {
			d.subscribers = append(d.subscribers[:i:i], d.subscribers[i+1:]...)
			return
		}
	}
}

// Len returns the number of subscribers.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subscribers)
}

// Dispatched returns how many events have been delivered since creation.
func (d *Dispatcher) Dispatched() uint64 {
	return d.dispatched.Load()
}

// Dispatch orders a frame's events and delivers each to every subscriber
// before the next. The input slice is not modified.
func (d *Dispatcher) Dispatch(events []interaction.Event) {
	if len(events) == 0 {
		return
	}

	d.mu.Lock()
	subs := make([]subscriber, len(d.subscribers))
	copy(subs, d.subscribers)
	d.mu.Unlock()

	for _, e := range Order(events) {
		for _, s := range subs {
			s.listener.HandleEvent(e)
		}
		d.dispatched.Add(1)
	}
}

// Order returns the events with every pointerout moved ahead of the other
// events of the frame. Relative order is otherwise preserved, so a hand's
// out for an element always precedes an over for the same element.
func Order(events []interaction.Event) []interaction.Event {
	ordered := make([]interaction.Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank(ordered[i].Type) < rank(ordered[j].Type)
	})
	return ordered
}

func rank(t interaction.Type) int {
	if t == interaction.PointerOut {
		return 0
	}
	return 1
}
