/*
Package chat contains the anonymous one-to-one chat model and its real-time event stream.

This file defines the Client, one WebSocket connection of one user. The write pump drains
the outbound queue and keeps the heartbeat; the read pump accepts TEXT frames and hands
them to the MessageSender.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"biochat/internal/pkg/errs"
	"biochat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxFrameSize = 8192

	// sendQueueSize is the outbound buffer per client.
	sendQueueSize = 64

	// WsCloseCodeSessionKicked tells the client its stream was closed by the server,
	// either because a newer connection replaced it or because the account was restricted.
	WsCloseCodeSessionKicked = 4001
)

// MessageSender accepts chat messages arriving over the WebSocket.
// Errors should be *errs.CustomError so the client receives a meaningful code.
type MessageSender interface {
	SendMessage(ctx context.Context, userID, text string) (bool, error)
}

// Client is an active WebSocket connection and its owner.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	sender MessageSender

	// send queues outbound frames. It is closed under hub.mu.
	send chan []byte

	// closed is guarded by hub.mu.
	closed bool

	// kickReason is set under hub.mu before send is closed. When not empty, the write
	// pump ends the connection with WsCloseCodeSessionKicked instead of a normal close.
	kickReason string

	logger zerolog.Logger
}

// NewClient constructs a Client for userID on conn.
func NewClient(hub *Hub, conn *websocket.Conn, userID string, sender MessageSender) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		sender: sender,
		send:   make(chan []byte, sendQueueSize),
		logger: logx.Logger().With().Str("component", "Client").Str("client_id", userID).Logger(),
	}
}

// Serve registers c with its hub, queues the initial events and runs both pumps until
// the connection ends. It blocks; call it from the HTTP handler goroutine after upgrading.
func (c *Client) Serve(initial ...Event) {
	if !c.hub.Register(c) {
		_ = c.conn.Close()
		return
	}

	for _, evt := range initial {
		c.push(evt)
	}

	go func() {
		defer c.hub.wg.Done()
		c.writePump()
	}()

	defer c.hub.wg.Done()
	c.readPump()
}

// readPump reads frames until the connection fails, then unregisters the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error")
		}
	}()

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			return
		}

		c.processInboundFrame(frame)
	}
}

// processInboundFrame decodes a client frame and dispatches it by type.
func (c *Client) processInboundFrame(frame []byte) {
	var inbound struct {
		Type    EventType       `json:"type"`
		Payload json.RawMessage `json:"payload,omitempty"`
		TempID  string          `json:"tempId,omitempty"`
	}

	if err := json.Unmarshal(frame, &inbound); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	switch inbound.Type {
	case TypeText:
		c.handleText(inbound.Payload, inbound.TempID)
	default:
		c.logger.Warn().Str("msg_type", string(inbound.Type)).Msg("Client sent unsupported message type")
		c.SendError(errs.NewError(errs.ErrInvalidParams))
	}
}

func (c *Client) handleText(raw json.RawMessage, tempID string) {
	var text TextPayload
	if err := json.Unmarshal(raw, &text); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid TEXT payload")
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	accepted, err := c.sender.SendMessage(c.hub.ctx, c.userID, text.Content)
	if errs.HasCode(err, errs.ErrAccountRestricted) {
		c.hub.Disconnect(c.userID, errs.ErrAccountRestricted)
		return
	}
	if err != nil {
		c.SendError(err)
		return
	}

	if tempID != "" {
		c.queue(TypeConfirm, "", ConfirmPayload{TempID: tempID, Accepted: accepted})
	}
}

// writePump drains the send queue and sends heartbeats until the queue is closed
// or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in writePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, c.closeFrame())
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Error().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}

// SendError queues an ERROR event describing err.
func (c *Client) SendError(err error) {
	var customErr *errs.CustomError
	if !errors.As(err, &customErr) {
		c.logger.Error().Err(err).Msg("Unclassified error while handling client frame")
		customErr = errs.NewError(errs.ErrUnknown)
	}

	c.queue(TypeError, "", ErrorPayload{Code: customErr.Code, Message: customErr.Message})
}

func (c *Client) queue(eventType EventType, sessionID string, payload any) {
	evt, err := NewEvent(eventType, sessionID, payload)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build event")
		return
	}

	c.push(evt)
}

func (c *Client) push(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling event for client")
		return
	}

	c.hub.deliver(c, data)
}

// kickLocked queues an ERROR event carrying code and closes the queue, so the write
// pump flushes the event and then closes with WsCloseCodeSessionKicked. hub.mu must be
// held for writing. It never blocks.
func (c *Client) kickLocked(code int) {
	if c.closed {
		return
	}

	cause := errs.NewError(code)
	c.logger.Warn().
		Int("close_code", WsCloseCodeSessionKicked).
		Int("error_code", cause.Code).
		Msg("Kicking client connection.")

	if evt, err := NewEvent(TypeError, "", ErrorPayload{Code: cause.Code, Message: cause.Message}); err == nil {
		if data, err := json.Marshal(evt); err == nil {
			select {
			case c.send <- data:
			default:
			}
		}
	}

	c.kickReason = cause.Message
	c.closeSendLocked()
}

// closeFrame is the payload of the final close message.
func (c *Client) closeFrame() []byte {
	if c.kickReason == "" {
		return []byte{}
	}
	return websocket.FormatCloseMessage(WsCloseCodeSessionKicked, c.kickReason)
}

// closeSendLocked closes the outbound queue once. hub.mu must be held.
func (c *Client) closeSendLocked() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
