package models

import (
	"strings"
	"time"
)

// Conversation is a two-party chat thread. A pair of participants has at
// most one conversation: creation is get-or-create, keyed on the
// normalized participant pair.
type Conversation struct {
	// ID is the unique identifier for the conversation.
	ID string `json:"id"`

	// ParticipantA and ParticipantB are the two member user IDs, stored
	// in lexicographic order so the pair key is canonical.
	ParticipantA string `json:"participant_a"`
	ParticipantB string `json:"participant_b"`

	// CreatedAt is when the conversation was first created.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks required fields and the two-distinct-participants rule.
func (c *Conversation) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(c.ParticipantA) == "" {
		validation.AddMessage("participant_a", "participant_a is required")
	}
	if strings.TrimSpace(c.ParticipantB) == "" {
		validation.AddMessage("participant_b", "participant_b is required")
	}
	if c.ParticipantA != "" && c.ParticipantA == c.ParticipantB {
		validation.AddMessage("participant_b", "participants must be distinct")
	}
	return validation.Err()
}

// Counterpart returns the other participant for the given viewer, or ""
// if the viewer is not a member.
func (c *Conversation) Counterpart(viewerID string) string {
	switch viewerID {
	case c.ParticipantA:
		return c.ParticipantB
	case c.ParticipantB:
		return c.ParticipantA
	default:
		return ""
	}
}

// ParticipantPair returns the canonical ordering of two user IDs.
func ParticipantPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
