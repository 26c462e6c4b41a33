package models

import (
	"strings"
	"time"
)

// Profile is the display identity of a marketplace user as seen by chat
// counterparts.
type Profile struct {
	// UserID is the unique identifier for the user.
	UserID string `json:"user_id"`

	// DisplayName is the name shown in conversation lists and headers.
	DisplayName string `json:"display_name"`

	// AvatarURL points at the user's avatar image, if any.
	AvatarURL string `json:"avatar_url,omitempty"`

	// UpdatedAt is when the profile was last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks required fields.
func (p *Profile) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(p.UserID) == "" {
		validation.AddMessage("user_id", "user_id is required")
	}
	if strings.TrimSpace(p.DisplayName) == "" {
		validation.AddMessage("display_name", "display_name is required")
	}
	return validation.Err()
}
