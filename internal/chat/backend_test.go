package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldhand/fieldhand/internal/models"
)

// fakeBackend is an in-memory Backend with hooks that fire while a
// fetch is "in flight", used to build deterministic interleavings of
// fetches against realtime patches.
type fakeBackend struct {
	mu        sync.Mutex
	summaries []models.ConversationSummary
	history   map[string][]models.Message // conversation -> newest-first
	clock     time.Time

	listErr error
	pageErr error
	sendErr error

	onListFetch func()
	onPageFetch func(offset int)

	deleted []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		history: make(map[string][]models.Message),
		clock:   time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

// seed appends count messages from sender to the conversation history
// and returns them newest-first.
func (b *fakeBackend) seed(conversationID, senderID string, count int) []models.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := 0; i < count; i++ {
		b.clock = b.clock.Add(time.Second)
		msg := models.Message{
			ID:             uuid.New().String(),
			ConversationID: conversationID,
			SenderID:       senderID,
			Content:        fmt.Sprintf("message %d", len(b.history[conversationID])+1),
			CreatedAt:      b.clock,
		}
		b.history[conversationID] = append([]models.Message{msg}, b.history[conversationID]...)
	}
	out := make([]models.Message, len(b.history[conversationID]))
	copy(out, b.history[conversationID])
	return out
}

// next fabricates a new message newer than everything seeded so far,
// without adding it to the fetchable history. That is exactly the shape
// of a realtime event racing a page fetch.
func (b *fakeBackend) next(conversationID, senderID, content string) *models.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clock = b.clock.Add(time.Second)
	return &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      b.clock,
	}
}

func (b *fakeBackend) ConversationsForViewer(ctx context.Context, viewerID string) ([]models.ConversationSummary, error) {
	if b.onListFetch != nil {
		b.onListFetch()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	out := make([]models.ConversationSummary, len(b.summaries))
	copy(out, b.summaries)
	return out, nil
}

func (b *fakeBackend) MessagesPage(ctx context.Context, conversationID string, offset, limit int) ([]models.Message, error) {
	if b.onPageFetch != nil {
		b.onPageFetch(offset)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pageErr != nil {
		return nil, b.pageErr
	}

	history := b.history[conversationID]
	if offset >= len(history) {
		return nil, nil
	}
	end := offset + limit
	if end > len(history) {
		end = len(history)
	}
	out := make([]models.Message, end-offset)
	copy(out, history[offset:end])
	return out, nil
}

func (b *fakeBackend) SendMessage(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return nil, b.sendErr
	}

	b.clock = b.clock.Add(time.Second)
	msg := models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      b.clock,
	}
	b.history[conversationID] = append([]models.Message{msg}, b.history[conversationID]...)
	return &msg, nil
}

func (b *fakeBackend) StartConversation(ctx context.Context, viewerID, otherUserID string) (*models.Conversation, bool, error) {
	first, second := models.ParticipantPair(viewerID, otherUserID)
	return &models.Conversation{
		ID:           "conv-" + first + "-" + second,
		ParticipantA: first,
		ParticipantB: second,
		CreatedAt:    b.clock,
	}, true, nil
}

func (b *fakeBackend) DeleteConversation(ctx context.Context, conversationID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, conversationID)
	delete(b.history, conversationID)
	kept := b.summaries[:0]
	for _, s := range b.summaries {
		if s.ConversationID != conversationID {
			kept = append(kept, s)
		}
	}
	b.summaries = kept
	return nil
}

func summaryFixture(conversationID, counterpart string, lastMessage string, at time.Time) models.ConversationSummary {
	return models.ConversationSummary{
		ConversationID: conversationID,
		CounterpartID:  counterpart,
		CounterpartName: map[string]string{
			"farmer-1": "Greta Olsen",
			"farmer-2": "Jon Berg",
		}[counterpart],
		LastMessage:   lastMessage,
		LastMessageAt: at,
		CreatedAt:     at.Add(-time.Hour),
	}
}
