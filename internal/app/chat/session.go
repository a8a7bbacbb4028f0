/*
Package chat contains the anonymous one-to-one chat model and its real-time event stream.

This file defines topics, messages and the ChatSession value held by the store.
*/
package chat

import (
	"fmt"
	"time"
)

// Topic is one of the fixed chat frequencies a user can tune into.
type Topic string

const (
	TopicMentalHealth Topic = "Mental Health"
	TopicUnserious    Topic = "Unserious Talk"
	TopicDating       Topic = "Dating / Match"
	TopicCases        Topic = "Clinical Cases"
	TopicExams        Topic = "Exam Stress"
)

var topics = []Topic{TopicMentalHealth, TopicUnserious, TopicDating, TopicCases, TopicExams}

// Topics returns every topic in display order.
func Topics() []Topic {
	return append([]Topic(nil), topics...)
}

// ParseTopic returns the topic named s.
func ParseTopic(s string) (Topic, bool) {
	for _, t := range topics {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Description is the one-line blurb shown on the topic picker.
func (t Topic) Description() string {
	switch t {
	case TopicMentalHealth:
		return "Supportive peer discussion"
	case TopicUnserious:
		return "Memes and banter only"
	default:
		return "Connect with anonymous peers"
	}
}

const (
	// PeerSenderID marks messages written by the simulated peer.
	PeerSenderID = "peer"

	// SystemSenderID marks system notices.
	SystemSenderID = "system"

	// SystemSenderName is the display name of system notices.
	SystemSenderName = "System"

	// MaxMessageLength bounds a chat message, counted in runes.
	MaxMessageLength = 1000
)

// PeerNames is the pool the simulated peer persona is drawn from, independent of topic.
var PeerNames = []string{"Dr. Synapse", "Happy Heme", "Ortho Bro", "Psych Pal", "Neuro Nerd"}

// Message is one line of a chat session.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`

	// IsSystem only affects rendering.
	IsSystem bool `json:"isSystem,omitempty"`
}

// Session is a user's active chat with a simulated peer.
// Messages are kept in conversation order.
type Session struct {
	ID       string    `json:"id"`
	Topic    Topic     `json:"topic"`
	PeerName string    `json:"peerName"`
	Messages []Message `json:"messages"`

	// Composing is true while at least one peer reply is in flight.
	Composing bool `json:"composing"`
}

// NewSession opens a session whose first message is a system notice naming the peer and topic.
func NewSession(id string, topic Topic, peerName string, now time.Time) Session {
	return Session{
		ID:       id,
		Topic:    topic,
		PeerName: peerName,
		Messages: []Message{{
			ID:         id + "-sys",
			SenderID:   SystemSenderID,
			SenderName: SystemSenderName,
			Text:       fmt.Sprintf("You are connected anonymously to %s in %s. Say Hi!", peerName, topic),
			Timestamp:  now,
			IsSystem:   true,
		}},
	}
}

// Clone returns a copy of s that shares no backing array with it.
func (s Session) Clone() Session {
	s.Messages = append([]Message(nil), s.Messages...)
	return s
}
