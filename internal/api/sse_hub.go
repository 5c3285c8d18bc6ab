package api

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"gopetro/domain/core"
	"gopetro/domain/view"
	"gopetro/internal"
)

// Event types pushed to the browser
const (
	EventRender  = "render"
	EventDataset = "dataset"
)

const keepAliveInterval = 30 * time.Second

// SSEClient represents a connected SSE client
type SSEClient struct {
	SessionID core.SessionID
	Channel   chan RenderEvent
}

// RenderEvent is one server-pushed update for a view session
type RenderEvent struct {
	SessionID core.SessionID          `json:"session_id"`
	EventType string                  `json:"event_type"`
	Render    *view.RenderDescription `json:"render,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
}

// SSEHub fans render events out to the browsers watching each session
type SSEHub struct {
	logger *internal.Logger

	clients    map[core.SessionID]map[chan RenderEvent]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan RenderEvent
	done       chan struct{}
	closeOnce  sync.Once
	stopped    chan struct{}
}

// NewSSEHub creates a hub and starts its dispatch loop. Close stops it.
func NewSSEHub(logger *internal.Logger) *SSEHub {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	hub := &SSEHub{
		logger:     logger.Named("sse"),
		clients:    make(map[core.SessionID]map[chan RenderEvent]bool),
		register:   make(chan SSEClient),
		unregister: make(chan SSEClient),
		broadcast:  make(chan RenderEvent, 100),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}

	go hub.run()
	return hub
}

// run processes SSE hub operations
func (h *SSEHub) run() {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.SessionID] == nil {
				h.clients[client.SessionID] = make(map[chan RenderEvent]bool)
			}
			h.clients[client.SessionID][client.Channel] = true
			h.logger.Debug("Client registered for session %s (total clients: %d)",
				client.SessionID, len(h.clients[client.SessionID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.SessionID]; exists && clients[client.Channel] {
				delete(clients, client.Channel)
				close(client.Channel)
				h.logger.Debug("Client unregistered from session %s (remaining clients: %d)",
					client.SessionID, len(clients))
				if len(clients) == 0 {
					delete(h.clients, client.SessionID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for clientChan := range h.clients[event.SessionID] {
				select {
				case clientChan <- event:
				default:
					h.logger.Warn("Client channel full for session %s, skipping event", event.SessionID)
				}
			}
			h.clientsMu.RUnlock()

		case <-h.done:
			h.clientsMu.Lock()
			for id, clients := range h.clients {
				for ch := range clients {
					close(ch)
				}
				delete(h.clients, id)
			}
			h.clientsMu.Unlock()
			return
		}
	}
}

// Subscribe registers a client channel for a session. The returned function
// unregisters it; the channel is closed once unregistered or when the hub stops.
func (h *SSEHub) Subscribe(sessionID core.SessionID) (<-chan RenderEvent, func()) {
	ch := make(chan RenderEvent, 10)
	client := SSEClient{SessionID: sessionID, Channel: ch}
	select {
	case h.register <- client:
	case <-h.done:
		close(ch)
		return ch, func() {}
	}
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			select {
			case h.unregister <- client:
			case <-h.done:
			}
		})
	}
}

// Broadcast sends an event to all clients listening to a session
func (h *SSEHub) Broadcast(event RenderEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case <-h.done:
	case h.broadcast <- event:
	default:
		h.logger.Warn("Broadcast channel full, dropping %s event for session %s", event.EventType, event.SessionID)
	}
}

// PublishRender wraps a render description in an event and broadcasts it.
// It has the shape of a session render sink.
func (h *SSEHub) PublishRender(id core.SessionID, rd view.RenderDescription) {
	h.Broadcast(RenderEvent{SessionID: id, EventType: EventRender, Render: &rd})
}

// HandleSSE streams events for sessionID until the client goes away
func (h *SSEHub) HandleSSE(c *gin.Context, sessionID core.SessionID) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	events, unsubscribe := h.Subscribe(sessionID)
	defer unsubscribe()

	ctx := c.Request.Context()
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			eventJSON, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.EventType, string(eventJSON))
			return true

		case <-ticker.C:
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}

// GetActiveSessions returns sessions with active SSE clients
func (h *SSEHub) GetActiveSessions() []core.SessionID {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	sessions := make([]core.SessionID, 0, len(h.clients))
	for sessionID := range h.clients {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// GetClientCount returns the number of active clients for a session
func (h *SSEHub) GetClientCount(sessionID core.SessionID) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[sessionID])
}

// Close stops the dispatch loop and closes every client channel
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
	<-h.stopped
}
