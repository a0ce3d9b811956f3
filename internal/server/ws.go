package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/interaction"
)

const (
	// clientBuffer is how many messages may wait for a slow client before
	// newer ones are dropped for it.
	clientBuffer = 64

	writeWait = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventSource delivers the interaction events of every surface.
type EventSource interface {
	Subscribe(fn func(surface string, e interaction.Event)) func()
}

// EventMessage is one interaction event as sent to websocket clients. It
// mirrors a DOM CustomEvent: a name and a detail payload.
type EventMessage struct {
	Name    string            `json:"name"`
	Surface string            `json:"surface"`
	Detail  interaction.Event `json:"detail"`
}

type eventClient struct {
	conn *websocket.Conn
	send chan []byte
}

// EventHub broadcasts interaction events to websocket clients. Publishing
// never blocks the frame loop: a client that falls behind loses messages.
type EventHub struct {
	mu          sync.RWMutex
	clients     map[*eventClient]struct{}
	unsubscribe func()
	dropped     atomic.Uint64
}

// NewEventHub creates an EventHub fed by src.
func NewEventHub(src EventSource) *EventHub {
	h := &EventHub{clients: make(map[*eventClient]struct{})}
	h.unsubscribe = src.Subscribe(h.Publish)
	return h
}

// Publish sends one event to every connected client.
func (h *EventHub) Publish(surface string, e interaction.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(EventMessage{Name: "interaction", Surface: surface, Detail: e})
	if err != nil {
		log.Printf("Failed to encode event: %v", err)
		return
	}

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.dropped.Add(1)
		}
	}
}

// Clients returns the number of connected clients.
func (h *EventHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many messages were dropped for slow clients.
func (h *EventHub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close stops receiving events. Connected clients stay open until they
// disconnect.
func (h *EventHub) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &eventClient{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range c.send {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	close(c.send)
	<-done
}
