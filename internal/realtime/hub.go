package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client is one connected admin session's event stream.
type Client struct {
	ID       uuid.UUID
	Channels map[string]bool
	Outbound chan Event
	done     chan struct{}
}

// Hub routes events to subscribed SSE clients. Outbound buffers are
// bounded; a slow consumer drops events rather than blocking the hub,
// which is why the client re-fetches on reconnect.
type Hub struct {
	mu            sync.RWMutex
	logger        zerolog.Logger
	subscriptions map[string]map[*Client]bool
}

// NewHub creates a new SSE hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger:        logger.With().Str("component", "realtime-hub").Logger(),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// NewClient creates an unsubscribed client with a buffered outbound queue.
func (h *Hub) NewClient() *Client {
	return &Client{
		ID:       uuid.New(),
		Channels: make(map[string]bool),
		Outbound: make(chan Event, 16),
		done:     make(chan struct{}),
	}
}

// Subscribe adds the client to a channel.
func (h *Hub) Subscribe(client *Client, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	client.Channels[channel] = true

	clients, exists := h.subscriptions[channel]
	if !exists {
		clients = make(map[*Client]bool)
		h.subscriptions[channel] = clients
	}
	clients[client] = true

	h.logger.Debug().Str("clientID", client.ID.String()).Str("channel", channel).Msg("Client subscribed")
}

// Unsubscribe removes the client from a channel.
func (h *Hub) Unsubscribe(client *Client, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delete(client.Channels, channel)
	if subMap, ok := h.subscriptions[channel]; ok {
		delete(subMap, client)
		if len(subMap) == 0 {
			delete(h.subscriptions, channel)
		}
	}
}

// RemoveClient drops the client from every channel.
func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range client.Channels {
		if subMap, ok := h.subscriptions[ch]; ok {
			delete(subMap, client)
			if len(subMap) == 0 {
				delete(h.subscriptions, ch)
			}
		}
	}
	client.Channels = make(map[string]bool)
}

// CloseClient tears down a client after its stream ends.
func (h *Hub) CloseClient(client *Client) {
	close(client.done)
	h.RemoveClient(client)
	close(client.Outbound)
}

// Publish implements Publisher by broadcasting locally.
func (h *Hub) Publish(event Event) {
	h.Broadcast(event)
}

// Broadcast delivers an event to every client on its channel.
func (h *Hub) Broadcast(event Event) {
	if event.Channel == "" {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.subscriptions[event.Channel]
	if !ok {
		return
	}

	for c := range clients {
		select {
		case c.Outbound <- event:
		default:
			h.logger.Warn().Str("clientID", c.ID.String()).Str("channel", event.Channel).Msg("Dropping event, outbound buffer full")
		}
	}
}

// ServeSSE streams the client's events until the connection drops.
func (h *Hub) ServeSSE(w http.ResponseWriter, r *http.Request, client *Client) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case event := <-client.Outbound:
			raw, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn().Err(err).Msg("Failed to marshal event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, raw)
			flusher.Flush()
		}
	}
}
