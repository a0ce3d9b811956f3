package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/interaction"
)

type fakeRunner struct {
	mu       sync.Mutex
	requests []Request
	reply    *Response
	err      error
	done     chan struct{}
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		reply: &Response{Success: true},
		done:  make(chan struct{}, 16),
	}
}

func (f *fakeRunner) Execute(ctx context.Context, p *Plugin, req *Request) (*Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, *req)
	f.mu.Unlock()
	f.done <- struct{}{}
	return f.reply, f.err
}

func (f *fakeRunner) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for request %d of %d", i+1, n)
		}
	}
}

func (f *fakeRunner) snapshot() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// waitStats polls until cond holds for the relay counters.
func waitStats(t *testing.T, r *Relay, cond func(RelayStats) bool) RelayStats {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s := r.Stats()
		if cond(s) {
			return s
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out, stats %+v", s)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func keyboardManager() *Manager {
	m := NewManager("")
	m.Register(&Plugin{Manifest: Manifest{Name: "keyboard", Actions: []string{"keystroke"}}})
	return m
}

var tip = interaction.Point{X: 10, Y: 20, ClientX: 10, ClientY: 20}

func TestRelay_Routes(t *testing.T) {
	runner := newFakeRunner()
	relay := NewRelay(keyboardManager(), runner, 0)
	relay.SetRoutes([]Route{
		{EventType: interaction.PointerSelect, Plugin: "keyboard", Action: "keystroke", Config: json.RawMessage(`{"key":"enter"}`)},
	})
	relay.Start(context.Background())
	defer relay.Stop()

	listener := relay.Listener("airports")
	listener.HandleEvent(interaction.Over(interaction.Right, "YYZ", tip))
	listener.HandleEvent(interaction.Select(interaction.Right, "YYZ", tip))

	runner.wait(t, 1)
	waitStats(t, relay, func(s RelayStats) bool { return s.Sent == 1 })

	requests := runner.snapshot()
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}

	req := requests[0]
	if req.Action != "keystroke" {
		t.Errorf("expected action 'keystroke', got %q", req.Action)
	}
	if req.Surface != "airports" {
		t.Errorf("expected surface 'airports', got %q", req.Surface)
	}
	if req.Event.Type != interaction.PointerSelect || req.Event.Element != "YYZ" {
		t.Errorf("expected pointerselect on YYZ, got %+v", req.Event)
	}
	if string(req.Config) != `{"key":"enter"}` {
		t.Errorf("expected route config, got %s", req.Config)
	}
}

func TestRelay_DefaultConfig(t *testing.T) {
	runner := newFakeRunner()
	relay := NewRelay(keyboardManager(), runner, 0)
	relay.SetRoutes([]Route{{EventType: interaction.PointerSelect, Plugin: "keyboard", Action: "keystroke"}})
	relay.Start(context.Background())
	defer relay.Stop()

	relay.HandleEvent(interaction.Select(interaction.Left, "a", tip))
	runner.wait(t, 1)

	req := runner.snapshot()[0]
	if string(req.Config) != "{}" {
		t.Errorf("expected empty config object, got %s", req.Config)
	}
	if req.Surface != "" {
		t.Errorf("expected no surface, got %q", req.Surface)
	}
}

func TestRelay_DropsWhenFull(t *testing.T) {
	runner := newFakeRunner()
	relay := NewRelay(keyboardManager(), runner, 1)
	relay.SetRoutes([]Route{{EventType: interaction.PointerSelect, Plugin: "keyboard", Action: "keystroke"}})

	// Not started: the first event fills the queue.
	for i := 0; i < 3; i++ {
		relay.HandleEvent(interaction.Select(interaction.Right, "a", tip))
	}

	if got := relay.Stats().Dropped; got != 2 {
		t.Fatalf("expected 2 dropped, got %d", got)
	}

	relay.Start(context.Background())
	defer relay.Stop()

	runner.wait(t, 1)
	stats := waitStats(t, relay, func(s RelayStats) bool { return s.Sent == 1 })
	if stats.Failed != 0 {
		t.Errorf("expected 0 failed, got %d", stats.Failed)
	}
}

func TestRelay_Failures(t *testing.T) {
	tests := []struct {
		name  string
		route Route
		reply *Response
		err   error
		calls int
	}{
		{"unknown plugin", Route{Plugin: "missing", Action: "keystroke"}, nil, nil, 0},
		{"undeclared action", Route{Plugin: "keyboard", Action: "shutdown"}, nil, nil, 0},
		{"runner error", Route{Plugin: "keyboard", Action: "keystroke"}, nil, errors.New("boom"), 1},
		{"unsuccessful response", Route{Plugin: "keyboard", Action: "keystroke"}, &Response{Error: "no display"}, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newFakeRunner()
			runner.reply = tt.reply
			runner.err = tt.err

			tt.route.EventType = interaction.PointerSelect
			relay := NewRelay(keyboardManager(), runner, 0)
			relay.SetRoutes([]Route{tt.route})
			relay.Start(context.Background())
			defer relay.Stop()

			relay.HandleEvent(interaction.Select(interaction.Right, "a", tip))

			stats := waitStats(t, relay, func(s RelayStats) bool { return s.Failed == 1 })
			if stats.Sent != 0 {
				t.Errorf("expected 0 sent, got %d", stats.Sent)
			}
			if got := len(runner.snapshot()); got != tt.calls {
				t.Errorf("expected %d runner calls, got %d", tt.calls, got)
			}
		})
	}
}

func TestRelay_SetRoutesReplaces(t *testing.T) {
	runner := newFakeRunner()
	relay := NewRelay(keyboardManager(), runner, 4)
	relay.SetRoutes([]Route{{EventType: interaction.PointerSelect, Plugin: "keyboard", Action: "keystroke"}})
	relay.SetRoutes([]Route{{EventType: interaction.Drag, Plugin: "keyboard", Action: "keystroke"}})

	relay.HandleEvent(interaction.Select(interaction.Right, "a", tip))
	if got := len(relay.queue); got != 0 {
		t.Fatalf("expected old route to be gone, queue has %d", got)
	}

	relay.HandleEvent(interaction.DragTo(interaction.Left, interaction.Identity))
	if got := len(relay.queue); got != 1 {
		t.Fatalf("expected 1 queued event, got %d", got)
	}
}

func TestRelay_StopWithoutStart(t *testing.T) {
	relay := NewRelay(keyboardManager(), newFakeRunner(), 0)
	relay.Stop()
	relay.Stop()
}

func TestRelay_Restart(t *testing.T) {
	runner := newFakeRunner()
	relay := NewRelay(keyboardManager(), runner, 0)
	relay.SetRoutes([]Route{{EventType: interaction.PointerSelect, Plugin: "keyboard", Action: "keystroke"}})

	relay.Start(context.Background())
	relay.HandleEvent(interaction.Select(interaction.Right, "a", tip))
	runner.wait(t, 1)
	waitStats(t, relay, func(s RelayStats) bool { return s.Sent == 1 })
	relay.Stop()

	relay.Start(context.Background())
	defer relay.Stop()
	relay.Start(context.Background())

	relay.HandleEvent(interaction.Select(interaction.Right, "b", tip))
	runner.wait(t, 1)
	stats := waitStats(t, relay, func(s RelayStats) bool { return s.Sent == 2 })
	if stats.Dropped != 0 {
		t.Errorf("expected nothing dropped after a restart, got %d", stats.Dropped)
	}

	requests := runner.snapshot()
	if last := requests[len(requests)-1]; last.Event.Element != "b" {
		t.Errorf("expected the restarted relay to send b, got %s", last.Event.Element)
	}
}

func TestRelay_StopDiscardsQueue(t *testing.T) {
	runner := newFakeRunner()
	relay := NewRelay(keyboardManager(), runner, 4)
	relay.SetRoutes([]Route{{EventType: interaction.PointerSelect, Plugin: "keyboard", Action: "keystroke"}})

	relay.Start(context.Background())
	relay.Stop()

	relay.HandleEvent(interaction.Select(interaction.Right, "a", tip))
	if got := len(relay.queue); got != 1 {
		t.Fatalf("expected 1 queued event while stopped, got %d", got)
	}

	relay.Start(context.Background())
	relay.Stop()
	if got := len(relay.queue); got != 0 {
		t.Errorf("expected Stop to empty the queue, got %d", got)
	}
}
