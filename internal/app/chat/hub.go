/*
Package chat contains the anonymous one-to-one chat model and its real-time event stream.

This file defines the Hub, the registry of live WebSocket clients. Each user has at most
one live connection; a newer one replaces and kicks the older. The store publishes session
events through Notify and the Hub routes them to the owner's connection.
*/
package chat

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"biochat/internal/pkg/errs"
	"biochat/internal/pkg/logx"
)

// Hub coordinates all live event-stream clients.
type Hub struct {
	// clients maps a user ID to its live connection.
	clients map[string]*Client

	// mu guards clients and every client's closed flag. Channel sends happen under
	// the read lock and channel closes under the write lock.
	mu sync.RWMutex

	// ctx is cancelled on Shutdown and bounds work started by inbound frames.
	ctx    context.Context
	cancel context.CancelFunc

	// wg tracks client pump goroutines.
	wg sync.WaitGroup

	logger zerolog.Logger
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients: make(map[string]*Client),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logx.Component("Hub"),
	}
}

// Register makes c the live connection for its user, kicking any previous one, and
// reserves the two pump goroutines Serve starts. It returns false once the hub is shut down.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients == nil {
		c.closeSendLocked()
		return false
	}

	if existing, ok := h.clients[c.userID]; ok {
		h.logger.Warn().
			Str("client_id", c.userID).
			Msg("Client already connected. Closing old connection for replacement.")

		existing.kickLocked(errs.ErrSessionKicked)
	}

	h.clients[c.userID] = c
	h.wg.Add(2)
	h.logger.Info().
		Str("client_id", c.userID).
		Int("total_clients", len(h.clients)).
		Msg("Client connected.")

	return true
}

// Unregister removes c if it is still the live connection for its user.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[c.userID]; ok && current == c {
		delete(h.clients, c.userID)
		h.logger.Info().
			Str("client_id", c.userID).
			Int("total_clients", len(h.clients)).
			Msg("Client disconnected.")
	}

	c.closeSendLocked()
}

// Notify routes evt to the live connection of userID, if any.
// Slow clients whose queue is full lose the event.
func (h *Hub) Notify(userID string, evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error().Err(err).Str("event_type", string(evt.Type)).Msg("Error marshaling event.")
		return
	}

	h.mu.RLock()
	c, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return
	}

	h.deliver(c, data)
}

// Disconnect kicks the live connection of userID, if any. The client receives an ERROR
// event with code before the close frame.
func (h *Hub) Disconnect(userID string, code int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[userID]; ok {
		delete(h.clients, userID)
		c.kickLocked(code)
	}
}

// Connected reports whether userID has a live connection.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.clients[userID]
	return ok
}

// Shutdown closes every connection and waits for all pumps to exit.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down Hub...")

	h.cancel()

	h.mu.Lock()
	for _, c := range h.clients {
		c.closeSendLocked()
	}
	h.clients = nil
	h.mu.Unlock()

	h.wg.Wait()

	h.logger.Info().Msg("Hub shutdown complete.")
}

// deliver queues data on c without blocking. It returns false if c is closed or full.
func (h *Hub) deliver(c *Client, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping event")
		return false
	}
}
