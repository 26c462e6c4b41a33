package chattui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/fieldhand/fieldhand/internal/chat"
	"github.com/fieldhand/fieldhand/internal/models"
	"github.com/fieldhand/fieldhand/internal/realtime"
)

// stubBackend is a minimal chat.Backend for TUI tests.
type stubBackend struct {
	summaries []models.ConversationSummary
	messages  []models.Message
	sendErr   error
}

func (s *stubBackend) ConversationsForViewer(ctx context.Context, viewerID string) ([]models.ConversationSummary, error) {
	return s.summaries, nil
}

func (s *stubBackend) MessagesPage(ctx context.Context, conversationID string, offset, limit int) ([]models.Message, error) {
	if offset >= len(s.messages) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.messages) {
		end = len(s.messages)
	}
	return s.messages[offset:end], nil
}

func (s *stubBackend) SendMessage(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	return &models.Message{
		ID:             "sent-1",
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      time.Now(),
	}, nil
}

func (s *stubBackend) StartConversation(ctx context.Context, viewerID, otherUserID string) (*models.Conversation, bool, error) {
	return nil, false, errors.New("not supported")
}

func (s *stubBackend) DeleteConversation(ctx context.Context, conversationID string) error {
	return nil
}

func newTestModel(t *testing.T, backend *stubBackend) *Model {
	t.Helper()
	inbox := chat.NewInbox(backend, nil, "worker-1", 20)
	require.NoError(t, inbox.Start(context.Background()))
	t.Cleanup(inbox.Stop)

	model, err := NewModel(inbox, Config{ViewerName: "Kari Moen"})
	require.NoError(t, err)
	t.Cleanup(model.Close)
	return model
}

// applyUpdate feeds a message through Update, then drains any resulting
// command chain synchronously so navigation messages land.
func applyUpdate(t *testing.T, model *Model, msg tea.Msg) *Model {
	t.Helper()
	updated, cmd := model.Update(msg)
	m := updated.(*Model)
	for cmd != nil {
		out := cmd()
		if out == nil {
			return m
		}
		if _, quit := out.(tea.QuitMsg); quit {
			return m
		}
		if batch, ok := out.(tea.BatchMsg); ok {
			_ = batch
			return m
		}
		updated, cmd = m.Update(out)
		m = updated.(*Model)
	}
	return m
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func demoSummaries() []models.ConversationSummary {
	return []models.ConversationSummary{
		{
			ConversationID:  "conv-1",
			CounterpartID:   "farmer-1",
			CounterpartName: "Greta Olsen",
			LastMessage:     "see you at the barn",
			LastMessageAt:   time.Now().Add(-time.Hour),
			CreatedAt:       time.Now().Add(-2 * time.Hour),
		},
	}
}

func TestNewModelRejectsInvalidTheme(t *testing.T) {
	inbox := chat.NewInbox(&stubBackend{}, nil, "worker-1", 20)
	t.Cleanup(inbox.Stop)

	_, err := NewModel(inbox, Config{Theme: "matrix"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid theme")
}

func TestModelStartsInInboxView(t *testing.T) {
	model := newTestModel(t, &stubBackend{summaries: demoSummaries()})

	require.Equal(t, ViewInbox, model.activeViewID())
	require.Equal(t, []ViewID{ViewInbox}, model.viewStack)
}

func TestUpdateHandlesResizeAndQuit(t *testing.T) {
	model := newTestModel(t, &stubBackend{})

	model = applyUpdate(t, model, tea.WindowSizeMsg{Width: 100, Height: 30})
	require.Equal(t, 100, model.width)
	require.Equal(t, 30, model.height)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	require.True(t, ok)
}

func TestEnterOpensThreadAndFocuses(t *testing.T) {
	backend := &stubBackend{summaries: demoSummaries()}
	model := newTestModel(t, backend)

	model = applyUpdate(t, model, tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, ViewThread, model.activeViewID())
	require.Equal(t, "conv-1", model.inbox.Focus.Active())
	require.Equal(t, chat.ThreadReady, model.inbox.Thread.Snapshot().State)
}

func TestEscClosesThreadAndBlurs(t *testing.T) {
	backend := &stubBackend{summaries: demoSummaries()}
	model := newTestModel(t, backend)

	model = applyUpdate(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ViewThread, model.activeViewID())

	model = applyUpdate(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, ViewInbox, model.activeViewID())
	require.Equal(t, "", model.inbox.Focus.Active())
	require.Equal(t, chat.ThreadIdle, model.inbox.Thread.Snapshot().State)
}

func TestThreadComposeTypesInsteadOfQuitting(t *testing.T) {
	backend := &stubBackend{summaries: demoSummaries()}
	model := newTestModel(t, backend)
	model = applyUpdate(t, model, tea.KeyMsg{Type: tea.KeyEnter})

	model = applyUpdate(t, model, runeKey('q'))

	view := model.views[ViewThread].(*threadView)
	require.Equal(t, "q", view.draft)
	require.Equal(t, ViewThread, model.activeViewID())
}

func TestSendFailureRestoresDraft(t *testing.T) {
	backend := &stubBackend{
		summaries: demoSummaries(),
		sendErr:   errors.New("insert rejected"),
	}
	model := newTestModel(t, backend)
	model = applyUpdate(t, model, tea.KeyMsg{Type: tea.KeyEnter})

	for _, r := range "hello" {
		model = applyUpdate(t, model, runeKey(r))
	}
	view := model.views[ViewThread].(*threadView)
	require.Equal(t, "hello", view.draft)

	model = applyUpdate(t, model, tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, "hello", view.draft, "failed send must restore the draft")
	require.Contains(t, view.status, "send failed")
}

func TestThreadOpenWatchesCounterpartProfile(t *testing.T) {
	backend := &stubBackend{summaries: demoSummaries()}
	broker := realtime.NewBroker()
	inbox := chat.NewInbox(backend, broker, "worker-1", 20)
	require.NoError(t, inbox.Start(context.Background()))
	t.Cleanup(inbox.Stop)

	model, err := NewModel(inbox, Config{ViewerName: "Kari Moen"})
	require.NoError(t, err)
	t.Cleanup(model.Close)
	require.Equal(t, 1, broker.SubscriberCount())

	// Opening the thread adds the per-conversation stream and the
	// counterpart profile stream.
	model = applyUpdate(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 3, broker.SubscriberCount())

	model = applyUpdate(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, 1, broker.SubscriberCount())
}

func TestThreadViewShowsLoadingOlderIndicator(t *testing.T) {
	model := newTestModel(t, &stubBackend{summaries: demoSummaries()})
	view := model.views[ViewThread].(*threadView)

	snap := chat.ThreadSnapshot{State: chat.ThreadLoadingMore, HasMore: true}
	out := view.renderMessages(snap, 80, 10, model.theme)
	require.Contains(t, out, "loading older…")

	snap.State = chat.ThreadReady
	out = view.renderMessages(snap, 80, 10, model.theme)
	require.Contains(t, out, "PgUp for older messages")
}

func TestInboxViewRendersUnreadMarker(t *testing.T) {
	backend := &stubBackend{summaries: demoSummaries()}
	model := newTestModel(t, backend)
	model.inbox.Unread.MarkUnread("conv-1")

	view := model.views[ViewInbox].(*inboxView)
	out := view.View(80, 20, model.theme)
	require.Contains(t, out, "●")
	require.Contains(t, out, "Greta Olsen")
}
