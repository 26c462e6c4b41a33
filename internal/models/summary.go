package models

import "time"

// ConversationSummary is one row of a viewer's conversation list: the
// counterpart's display identity plus a preview of the latest message.
type ConversationSummary struct {
	// ConversationID identifies the conversation.
	ConversationID string `json:"conversation_id"`

	// CounterpartID is the other participant's user ID.
	CounterpartID string `json:"counterpart_id"`

	// CounterpartName and CounterpartAvatar are the counterpart's
	// display identity at fetch time.
	CounterpartName   string `json:"counterpart_name"`
	CounterpartAvatar string `json:"counterpart_avatar,omitempty"`

	// LastMessage previews the most recent message body. Empty when the
	// conversation has no messages yet.
	LastMessage string `json:"last_message,omitempty"`

	// LastMessageAt is the most recent message's timestamp; zero when
	// the conversation has no messages.
	LastMessageAt time.Time `json:"last_message_at,omitempty"`

	// CreatedAt is the conversation's creation time, used for ordering
	// conversations that have no messages yet.
	CreatedAt time.Time `json:"created_at"`
}

// ActivityTime is the timestamp the conversation list sorts by:
// the last message time, falling back to creation time.
func (s *ConversationSummary) ActivityTime() time.Time {
	if !s.LastMessageAt.IsZero() {
		return s.LastMessageAt
	}
	return s.CreatedAt
}
