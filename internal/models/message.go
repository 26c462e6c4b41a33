package models

import (
	"strings"
	"time"
)

// Message is a single text entry within a conversation. Messages are
// immutable once created; timestamps are assigned by the backend, never
// by the client.
type Message struct {
	// ID is the unique identifier for the message.
	ID string `json:"id"`

	// ConversationID is the conversation this message belongs to.
	ConversationID string `json:"conversation_id"`

	// SenderID identifies the author.
	SenderID string `json:"sender_id"`

	// Content is the message body.
	Content string `json:"content"`

	// CreatedAt is the server-assigned creation time. Within a
	// conversation it is strictly monotonic.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks required fields.
func (m *Message) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(m.ConversationID) == "" {
		validation.AddMessage("conversation_id", "conversation_id is required")
	}
	if strings.TrimSpace(m.SenderID) == "" {
		validation.AddMessage("sender_id", "sender_id is required")
	}
	if strings.TrimSpace(m.Content) == "" {
		validation.AddMessage("content", "content is required")
	}
	return validation.Err()
}

// Newer reports whether m sorts ahead of other in newest-first order.
// Ties on the timestamp are broken by ID so the order is total.
func (m *Message) Newer(other *Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.After(other.CreatedAt)
	}
	return m.ID > other.ID
}
