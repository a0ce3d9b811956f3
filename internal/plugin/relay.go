package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/ayusman/mudra/internal/dispatch"
	"github.com/ayusman/mudra/internal/interaction"
)

// Runner executes a plugin request.
type Runner interface {
	Execute(ctx context.Context, plugin *Plugin, req *Request) (*Response, error)
}

// Route forwards one event type to a plugin action.
type Route struct {
	EventType interaction.Type
	Plugin    string
	Action    string
	Config    json.RawMessage
}

type job struct {
	route   Route
	surface string
	event   interaction.Event
}

// RelayStats counts what a relay did with the events it received.
type RelayStats struct {
	Sent    uint64 `json:"sent"`
	Failed  uint64 `json:"failed"`
	Dropped uint64 `json:"dropped"`
}

// Relay forwards routed interaction events to plugins on a worker goroutine.
// Events are queued without blocking; when the queue is full the event is
// dropped so the frame loop never waits on a plugin.
type Relay struct {
	manager *Manager
	runner  Runner

	mu     sync.RWMutex
	routes map[interaction.Type][]Route

	queue chan job
	wg    sync.WaitGroup

	runMu  sync.Mutex
	cancel context.CancelFunc

	sent    atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

// DefaultQueueSize is the number of events a relay buffers.
const DefaultQueueSize = 64

// NewRelay creates a relay that looks plugins up in manager and runs them
// with runner.
func NewRelay(manager *Manager, runner Runner, queueSize int) *Relay {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Relay{
		manager: manager,
		runner:  runner,
		routes:  make(map[interaction.Type][]Route),
		queue:   make(chan job, queueSize),
	}
}

// SetRoutes replaces the routing table.
func (r *Relay) SetRoutes(routes []Route) {
	table := make(map[interaction.Type][]Route, len(routes))
	for _, rt := range routes {
		table[rt.EventType] = append(table[rt.EventType], rt)
	}

	r.mu.Lock()
	r.routes = table
	r.mu.Unlock()
}

// Start launches the worker. Calling it while the worker runs does nothing;
// a stopped relay can be started again.
func (r *Relay) Start(ctx context.Context) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if r.cancel != nil {
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.run(ctx)
}

// Stop stops the worker and waits for the request in flight to finish.
// Queued events that were not yet sent are discarded.
func (r *Relay) Stop() {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if r.cancel == nil {
		return
	}
	r.cancel()
	r.cancel = nil
	r.wg.Wait()

	for {
		select {
		case <-r.queue:
		default:
			return
		}
	}
}

// Listener returns a dispatcher listener that relays the events of the named
// surface.
func (r *Relay) Listener(surface string) dispatch.Listener {
	return dispatch.ListenerFunc(func(e interaction.Event) {
		r.enqueue(surface, e)
	})
}

// HandleEvent relays an event without a surface name.
func (r *Relay) HandleEvent(e interaction.Event) {
	r.enqueue("", e)
}

func (r *Relay) enqueue(surface string, e interaction.Event) {
	r.mu.RLock()
	routes := r.routes[e.Type]
	r.mu.RUnlock()

	for _, rt := range routes {
		select {
		case r.queue <- job{route: rt, surface: surface, event: e}:
		default:
			r.dropped.Add(1)
		}
	}
}

// Stats returns the relay counters.
func (r *Relay) Stats() RelayStats {
	return RelayStats{
		Sent:    r.sent.Load(),
		Failed:  r.failed.Load(),
		Dropped: r.dropped.Load(),
	}
}

func (r *Relay) run(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case j := <-r.queue:
			if err := r.send(ctx, j); err != nil {
				r.failed.Add(1)
				log.Printf("Relay %s -> %s/%s failed: %v", j.event.Type, j.route.Plugin, j.route.Action, err)
				continue
			}
			r.sent.Add(1)
		}
	}
}

func (r *Relay) send(ctx context.Context, j job) error {
	p, err := r.manager.Get(j.route.Plugin)
	if err != nil {
		return err
	}
	if !p.HasAction(j.route.Action) {
		return fmt.Errorf("plugin %s has no action %s", p.Manifest.Name, j.route.Action)
	}

	config := j.route.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	resp, err := r.runner.Execute(ctx, p, &Request{
		Action:  j.route.Action,
		Surface: j.surface,
		Event:   j.event,
		Config:  config,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("plugin reported: %s", resp.Error)
	}
	return nil
}
