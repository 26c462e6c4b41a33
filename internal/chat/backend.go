// Package chat implements the client-side chat state for Fieldhand: the
// unread-conversation store, the conversation list feed, the paginated
// message thread feed, and the focus-driven read marker. The package
// reconciles three asynchronous inputs (paginated fetches, realtime
// insert events, focus transitions) into consistent state regardless of
// arrival order.
package chat

import (
	"context"

	"github.com/fieldhand/fieldhand/internal/models"
)

// Backend is the authoritative data collaborator the feeds consume.
// All calls are blocking request/response; results for a scope that has
// since closed are discarded by the caller, not the backend.
type Backend interface {
	// ConversationsForViewer returns the viewer's conversation
	// summaries, most recent activity first.
	ConversationsForViewer(ctx context.Context, viewerID string) ([]models.ConversationSummary, error)

	// MessagesPage fetches one newest-first page of a conversation's
	// history, skipping offset rows.
	MessagesPage(ctx context.Context, conversationID string, offset, limit int) ([]models.Message, error)

	// SendMessage persists a message and returns the stored row. The
	// stored row reaches open feeds via the realtime echo only.
	SendMessage(ctx context.Context, conversationID, senderID, content string) (*models.Message, error)

	// StartConversation returns the conversation between two users,
	// creating it if the pair has none.
	StartConversation(ctx context.Context, viewerID, otherUserID string) (*models.Conversation, bool, error)

	// DeleteConversation removes a conversation and its messages.
	DeleteConversation(ctx context.Context, conversationID string) error
}

// SendError wraps a failed send so the UI can tell it apart from fetch
// errors: the draft must be restored and the thread window left alone.
type SendError struct {
	Err error
}

func (e *SendError) Error() string {
	return "send failed: " + e.Err.Error()
}

func (e *SendError) Unwrap() error {
	return e.Err
}
