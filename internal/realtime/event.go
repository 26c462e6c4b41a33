// Package realtime provides in-process change-event delivery for chat:
// backend writes publish events, screens subscribe to bounded streams
// scoped by conversation or user.
package realtime

import (
	"time"

	"github.com/fieldhand/fieldhand/internal/models"
)

// EventType categorizes change events.
type EventType string

const (
	// EventMessageInserted fires after a message row is created.
	EventMessageInserted EventType = "message.inserted"

	// EventConversationCreated fires after a conversation row is created.
	EventConversationCreated EventType = "conversation.created"

	// EventConversationDeleted fires after a conversation is removed.
	EventConversationDeleted EventType = "conversation.deleted"

	// EventProfileUpdated fires after a user's display identity changes.
	EventProfileUpdated EventType = "profile.updated"
)

// Event is a single pushed change notification. Exactly one of Message
// and Profile is set, matching the event type.
type Event struct {
	// Type categorizes the event.
	Type EventType `json:"type"`

	// ConversationID is set for message and conversation events.
	ConversationID string `json:"conversation_id,omitempty"`

	// UserID is set for profile events.
	UserID string `json:"user_id,omitempty"`

	// Message is the inserted row for message events.
	Message *models.Message `json:"message,omitempty"`

	// Profile is the updated row for profile events.
	Profile *models.Profile `json:"profile,omitempty"`

	// Timestamp is when the event was published.
	Timestamp time.Time `json:"timestamp"`
}

// Filter defines criteria for matching events.
type Filter struct {
	// Types filters by event type (nil = all types).
	Types []EventType

	// ConversationID filters to a single conversation (empty = all).
	ConversationID string

	// UserID filters to a single user's profile events (empty = all).
	UserID string
}

// Matches returns true if the event matches the filter criteria.
func (f *Filter) Matches(event *Event) bool {
	if event == nil {
		return false
	}

	if len(f.Types) > 0 {
		matched := false
		for _, t := range f.Types {
			if event.Type == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.ConversationID != "" && event.ConversationID != f.ConversationID {
		return false
	}

	if f.UserID != "" && event.UserID != f.UserID {
		return false
	}

	return true
}
