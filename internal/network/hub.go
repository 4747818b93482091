// Package network exposes the sorting engine over WebSocket: clients submit
// keyword and inventory queries, and every client is notified when the tree
// learns a new identity.
package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/lootkeep/stacksort/internal/engine"
	"github.com/lootkeep/stacksort/internal/events"
	"github.com/lootkeep/stacksort/internal/platform/logger"
	"github.com/lootkeep/stacksort/internal/platform/metrics"
)

// Hub maintains the set of active clients and broadcasts tree changes to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	engine     *engine.Engine
	logger     *logger.Logger
}

// NewHub initializes a new WebSocket Hub over the sorting engine.
// broadcastBuffer bounds how many pending broadcasts may queue before
// producers block.
func NewHub(eng *engine.Engine, log *logger.Logger, broadcastBuffer int) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		engine:     eng,
		logger:     log,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnect()
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSDisconnect()
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent serializes a server event and sends it to all clients.
func (h *Hub) BroadcastEvent(event events.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorf("Failed to serialize event for WebSocket broadcast: %v", err)
		return
	}
	h.broadcast <- payload
	metrics.Get().RecordWSMessageOut()
}

// broadcastable are the event types pushed to clients: the ones that change
// how their inventories will sort next time.
func broadcastable(t events.EventType) bool {
	return t == events.EventTypeItemLearned ||
		t == events.EventTypeIdentityDiscovered ||
		t == events.EventTypeTreeLoaded
}

// StartEventPoller spawns a goroutine that polls the audit log and pushes
// tree-changing events to all clients. The hub runs independently from the
// engine while observing the same log.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		lastProcessed := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				all := eventLog.Replay()
				for _, event := range all[lastProcessed:] {
					if broadcastable(event.Type) {
						h.BroadcastEvent(event)
					}
				}
				lastProcessed = len(all)
			}
		}
	}()
}
