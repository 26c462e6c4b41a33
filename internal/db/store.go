package db

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fieldhand/fieldhand/internal/logging"
	"github.com/fieldhand/fieldhand/internal/models"
	"github.com/fieldhand/fieldhand/internal/realtime"
)

// Store is the authoritative chat backend: repositories plus realtime
// event publication. Every successful write publishes exactly one event
// after commit, so subscribers only ever see durable rows.
type Store struct {
	db            *DB
	conversations *ConversationRepository
	messages      *MessageRepository
	profiles      *ProfileRepository
	broker        *realtime.Broker
	logger        zerolog.Logger
}

// NewStore creates a Store. broker may be nil, in which case writes are
// persisted without event publication (fetch-only operation).
func NewStore(database *DB, broker *realtime.Broker) *Store {
	return &Store{
		db:            database,
		conversations: NewConversationRepository(database),
		messages:      NewMessageRepository(database),
		profiles:      NewProfileRepository(database),
		broker:        broker,
		logger:        logging.Component("chat-store"),
	}
}

// ConversationsForViewer returns the viewer's conversation summaries,
// most recent activity first.
func (s *Store) ConversationsForViewer(ctx context.Context, viewerID string) ([]models.ConversationSummary, error) {
	return s.conversations.ListForViewer(ctx, viewerID)
}

// MessagesPage fetches one newest-first page of a conversation's history.
func (s *Store) MessagesPage(ctx context.Context, conversationID string, offset, limit int) ([]models.Message, error) {
	return s.messages.Page(ctx, conversationID, offset, limit)
}

// SendMessage persists a message and publishes its insert event.
func (s *Store) SendMessage(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	message, err := s.messages.Insert(ctx, conversationID, senderID, content)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("conversation_id", conversationID).
		Str("sender_id", senderID).
		Str("preview", logging.Preview(content, 0)).
		Msg("message stored")

	s.publish(realtime.Event{
		Type:           realtime.EventMessageInserted,
		ConversationID: conversationID,
		Message:        message,
	})
	return message, nil
}

// StartConversation returns the conversation between the two users,
// creating it first if the pair has none. The bool reports creation.
func (s *Store) StartConversation(ctx context.Context, viewerID, otherUserID string) (*models.Conversation, bool, error) {
	conv, created, err := s.conversations.GetOrCreate(ctx, viewerID, otherUserID)
	if err != nil {
		return nil, false, err
	}

	if created {
		s.publish(realtime.Event{
			Type:           realtime.EventConversationCreated,
			ConversationID: conv.ID,
		})
	}
	return conv, created, nil
}

// DeleteConversation removes a conversation and its messages.
func (s *Store) DeleteConversation(ctx context.Context, conversationID string) error {
	if err := s.conversations.Delete(ctx, conversationID); err != nil {
		return err
	}

	s.publish(realtime.Event{
		Type:           realtime.EventConversationDeleted,
		ConversationID: conversationID,
	})
	return nil
}

// Profile fetches a user's display identity.
func (s *Store) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.profiles.Get(ctx, userID)
}

// UpdateProfile creates or replaces a profile and publishes the update.
func (s *Store) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return err
	}

	s.publish(realtime.Event{
		Type:    realtime.EventProfileUpdated,
		UserID:  profile.UserID,
		Profile: profile,
	})
	return nil
}

func (s *Store) publish(event realtime.Event) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(event)
}
