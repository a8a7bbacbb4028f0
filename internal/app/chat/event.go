/*
Package chat contains the anonymous one-to-one chat model and its real-time event stream.

This file defines the envelope exchanged over the WebSocket and its payloads.
*/
package chat

import (
	"encoding/json"
	"fmt"
	"time"

	"biochat/internal/pkg/randx"
)

// EventType tells the client how to decode an Event payload.
type EventType string

const (
	// Outbound
	TypeSessionStarted EventType = "SESSION_STARTED"
	TypeMessage        EventType = "MESSAGE"
	TypeComposing      EventType = "COMPOSING"
	TypeSessionEnded   EventType = "SESSION_ENDED"
	TypeConfirm        EventType = "CONFIRM"
	TypeError          EventType = "ERROR"

	// Inbound
	TypeText EventType = "TEXT"
)

// Event is the envelope for everything pushed to a client.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// SessionPayload carries a full session snapshot.
type SessionPayload struct {
	Session Session `json:"session"`
}

// MessagePayload carries one appended message.
type MessagePayload struct {
	Message Message `json:"message"`
}

// ComposingPayload carries the composing indicator.
type ComposingPayload struct {
	Composing bool `json:"composing"`
}

// TextPayload is sent by clients to post a chat message.
type TextPayload struct {
	Content string `json:"content"`
}

// ConfirmPayload acknowledges an inbound TEXT frame.
type ConfirmPayload struct {
	TempID   string `json:"tempId"`
	Accepted bool   `json:"accepted"`
}

// ErrorPayload reports a failed inbound request.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewEvent marshals payload into a new Event.
func NewEvent(eventType EventType, sessionID string, payload any) (Event, error) {
	evt := Event{
		ID:        randx.NewID(),
		Type:      eventType,
		SessionID: sessionID,
		Timestamp: time.Now().UnixMilli(),
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
		}
		evt.Payload = raw
	}

	return evt, nil
}
