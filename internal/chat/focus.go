package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/fieldhand/fieldhand/internal/logging"
)

// FocusTracker ties screen-focus lifecycle signals to read marking: when
// a conversation screen gains focus its unread flag is cleared, exactly
// once per focus transition. It also answers "which conversation is the
// user looking at right now", which the list feed uses to avoid marking
// the focused conversation unread.
type FocusTracker struct {
	unread *UnreadSet
	logger zerolog.Logger

	mu     sync.Mutex
	active string
}

// NewFocusTracker creates a tracker that clears flags in unread.
func NewFocusTracker(unread *UnreadSet) *FocusTracker {
	return &FocusTracker{
		unread: unread,
		logger: logging.Component("focus"),
	}
}

// OnFocus records that a conversation screen became focused and marks it
// read. Repeated focus signals for the already-focused conversation
// (re-renders, returning from background) are no-ops.
func (t *FocusTracker) OnFocus(conversationID string) {
	if conversationID == "" {
		return
	}

	t.mu.Lock()
	already := t.active == conversationID
	t.active = conversationID
	t.mu.Unlock()

	if already {
		return
	}

	t.logger.Debug().Str("conversation_id", conversationID).Msg("screen focused")
	t.unread.MarkRead(conversationID)
}

// OnBlur records that a conversation screen lost focus. Blur signals for
// a conversation that is not the active one are ignored; they arrive
// out of order when screens swap.
func (t *FocusTracker) OnBlur(conversationID string) {
	t.mu.Lock()
	if t.active == conversationID {
		t.active = ""
	}
	t.mu.Unlock()
}

// Active returns the focused conversation ID, or "" when no conversation
// screen is focused.
func (t *FocusTracker) Active() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}
