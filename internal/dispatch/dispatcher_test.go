package dispatch

import (
	"testing"

	"github.com/ayusman/mudra/internal/interaction"
)

type recorder struct {
	events []interaction.Event
}

func (r *recorder) HandleEvent(e interaction.Event) {
	r.events = append(r.events, e)
}

func TestDispatcher_FanOut(t *testing.T) {
	d := New()
	a, b := &recorder{}, &recorder{}
	d.Subscribe(a)
	d.Subscribe(b)

	events := []interaction.Event{
		interaction.Over(interaction.Left, "x", interaction.Point{}),
		interaction.ZoomTo(interaction.Identity),
	}
	d.Dispatch(events)

	for name, r := range map[string]*recorder{"a": a, "b": b} {
		if len(r.events) != 2 {
			t.Errorf("listener %s: expected 2 events, got %d", name, len(r.events))
		}
	}
	if d.Dispatched() != 2 {
		t.Errorf("expected 2 dispatched, got %d", d.Dispatched())
	}
}

func TestDispatcher_EventByEvent(t *testing.T) {
	d := New()
	var trace []string
	d.Subscribe(ListenerFunc(func(e interaction.Event) { trace = append(trace, "a:"+string(e.Element)) }))
	d.Subscribe(ListenerFunc(func(e interaction.Event) { trace = append(trace, "b:"+string(e.Element)) }))

	d.Dispatch([]interaction.Event{
		interaction.Down(interaction.Right, "1", interaction.Point{}),
		interaction.Move(interaction.Right, "2", interaction.Point{}),
	})

	want := []string{"a:1", "b:1", "a:2", "b:2"}
	if len(trace) != len(want) {
		t.Fatalf("expected %v, got %v", want, trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], trace[i])
		}
	}
}

func TestOrder(t *testing.T) {
	p := interaction.Point{}
	events := []interaction.Event{
		interaction.Over(interaction.Left, "c", p),
		interaction.Move(interaction.Right, "d", p),
		interaction.Out(interaction.Left, "a", p),
		interaction.Out(interaction.Right, "b", p),
		interaction.Over(interaction.Right, "e", p),
	}

	ordered := Order(events)

	want := []interaction.ElementID{"a", "b", "c", "d", "e"}
	for i, id := range want {
		if ordered[i].Element != id {
			t.Errorf("position %d: expected %s, got %s", i, id, ordered[i].Element)
		}
	}
	if events[0].Element != "c" {
		t.Error("expected input slice to be left untouched")
	}
}

func TestSubscription_Remove(t *testing.T) {
	d := New()
	r := &recorder{}
	sub := d.Subscribe(r)
	other := &recorder{}
	d.Subscribe(other)

	sub.Remove()
	sub.Remove()

	if d.Len() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", d.Len())
	}

	d.Dispatch([]interaction.Event{interaction.ZoomTo(interaction.Identity)})
	if len(r.events) != 0 {
		t.Errorf("expected removed listener to receive nothing, got %d", len(r.events))
	}
	if len(other.events) != 1 {
		t.Errorf("expected remaining listener to receive 1 event, got %d", len(other.events))
	}
}

func TestDispatcher_RemoveDuringDispatch(t *testing.T) {
	d := New()
	calls := 0
	var sub *Subscription
	sub = d.Subscribe(ListenerFunc(func(e interaction.Event) {
		calls++
		sub.Remove()
	}))

	d.Dispatch([]interaction.Event{
		interaction.ZoomTo(interaction.Identity),
		interaction.ZoomTo(interaction.Identity),
	})
	if calls != 2 {
		t.Errorf("expected snapshot to deliver the whole frame, got %d calls", calls)
	}

	d.Dispatch([]interaction.Event{interaction.ZoomTo(interaction.Identity)})
	if calls != 2 {
		t.Errorf("expected no delivery after removal, got %d calls", calls)
	}
}

func TestDispatcher_NilListener(t *testing.T) {
	d := New()
	sub := d.Subscribe(nil)
	sub.Remove()
	if d.Len() != 0 {
		t.Errorf("expected no subscribers, got %d", d.Len())
	}
	d.Dispatch(nil)
}
