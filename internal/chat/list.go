package chat

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldhand/fieldhand/internal/logging"
	"github.com/fieldhand/fieldhand/internal/models"
	"github.com/fieldhand/fieldhand/internal/realtime"
)

// lastMessagePatch remembers an incremental update so it can win over a
// full refresh that was already in flight when the patch arrived.
type lastMessagePatch struct {
	seq       uint64
	preview   string
	timestamp time.Time
}

// ListFeed maintains the viewer's conversation list: wholesale refreshes
// on focus, incremental patches from realtime inserts, and the unread
// marking policy (a message for any conversation other than the focused
// one flips its unread flag).
//
// Refreshes and patches may interleave arbitrarily. Each patch gets a
// sequence number; a refresh captures the sequence before fetching and,
// on completion, re-applies every patch recorded after that point, so a
// slow refresh can never clobber a newer patch.
type ListFeed struct {
	backend Backend
	unread  *UnreadSet
	focus   *FocusTracker
	viewer  string
	logger  zerolog.Logger

	mu        sync.Mutex
	summaries []models.ConversationSummary
	patchSeq  uint64
	patches   map[string]lastMessagePatch

	subs subscribers[[]models.ConversationSummary]
}

// NewListFeed creates a list feed for the viewer.
func NewListFeed(backend Backend, unread *UnreadSet, focus *FocusTracker, viewerID string) *ListFeed {
	return &ListFeed{
		backend: backend,
		unread:  unread,
		focus:   focus,
		viewer:  viewerID,
		logger:  logging.Component("chat-list"),
		patches: make(map[string]lastMessagePatch),
	}
}

// Refresh replaces the list with a full fetch. Safe to call on every
// screen focus; on error the existing list is left untouched.
func (f *ListFeed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	startSeq := f.patchSeq
	f.mu.Unlock()

	summaries, err := f.backend.ConversationsForViewer(ctx, f.viewer)
	if err != nil {
		return fmt.Errorf("failed to refresh conversation list: %w", err)
	}

	f.mu.Lock()
	// Patches recorded while the fetch was in flight carry newer
	// last-message data than the fetch result; lay them back on top.
	for id, patch := range f.patches {
		if patch.seq <= startSeq {
			delete(f.patches, id)
			continue
		}
		for i := range summaries {
			if summaries[i].ConversationID == id {
				summaries[i].LastMessage = patch.preview
				summaries[i].LastMessageAt = patch.timestamp
				break
			}
		}
	}
	sortSummaries(summaries)
	f.summaries = summaries
	snapshot := f.snapshotLocked()
	f.mu.Unlock()

	f.subs.notify(snapshot)
	return nil
}

// ApplyInsert patches the list for a realtime message insert. Reports
// false when the conversation is not in the cached list, in which case
// the caller should fall back to a full Refresh; the counterpart's
// display identity is not available from the message event alone.
//
// Unread policy: the conversation is flagged unless it is the one the
// viewer is focused on, or the viewer sent the message.
func (f *ListFeed) ApplyInsert(message *models.Message) bool {
	if message == nil {
		return true
	}

	f.mu.Lock()
	f.patchSeq++
	f.patches[message.ConversationID] = lastMessagePatch{
		seq:       f.patchSeq,
		preview:   message.Content,
		timestamp: message.CreatedAt,
	}

	found := false
	for i := range f.summaries {
		if f.summaries[i].ConversationID != message.ConversationID {
			continue
		}
		f.summaries[i].LastMessage = message.Content
		f.summaries[i].LastMessageAt = message.CreatedAt
		sortSummaries(f.summaries)
		found = true
		break
	}
	snapshot := f.snapshotLocked()
	f.mu.Unlock()

	f.markUnread(message)

	if found {
		f.subs.notify(snapshot)
	}
	return found
}

// HandleEvent applies one realtime event using the feed's policy:
// inserts patch incrementally (full refresh when the conversation is
// unknown), profile updates refetch rather than patching display
// identity, deletes drop the row and clear its unread flag.
func (f *ListFeed) HandleEvent(ctx context.Context, event realtime.Event) error {
	switch event.Type {
	case realtime.EventMessageInserted:
		if !f.ApplyInsert(event.Message) {
			return f.Refresh(ctx)
		}
		return nil
	case realtime.EventProfileUpdated, realtime.EventConversationCreated:
		return f.Refresh(ctx)
	case realtime.EventConversationDeleted:
		f.dropLocally(event.ConversationID)
		return nil
	default:
		return nil
	}
}

// Run pumps events into HandleEvent until the channel closes or the
// context is cancelled. Event-driven refresh failures are logged and
// swallowed; the next focus-driven Refresh recovers.
func (f *ListFeed) Run(ctx context.Context, events <-chan realtime.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := f.HandleEvent(ctx, event); err != nil {
				f.logger.Warn().Err(err).Str("event", string(event.Type)).Msg("event handling failed")
			}
		}
	}
}

// Delete removes a conversation for the viewer: backend delete, local
// removal, and clearing the unread flag so no ghost badge survives.
func (f *ListFeed) Delete(ctx context.Context, conversationID string) error {
	if err := f.backend.DeleteConversation(ctx, conversationID); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	f.dropLocally(conversationID)
	return nil
}

// Viewer returns the viewer this feed was built for.
func (f *ListFeed) Viewer() string {
	return f.viewer
}

// Snapshot returns a copy of the current list.
func (f *ListFeed) Snapshot() []models.ConversationSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Subscribe registers a callback invoked with the new list after every
// change. Returns an unsubscribe function.
func (f *ListFeed) Subscribe(fn func([]models.ConversationSummary)) func() {
	return f.subs.add(fn)
}

func (f *ListFeed) markUnread(message *models.Message) {
	if message.SenderID == f.viewer {
		return
	}
	if f.focus != nil && f.focus.Active() == message.ConversationID {
		return
	}
	f.unread.MarkUnread(message.ConversationID)
}

func (f *ListFeed) dropLocally(conversationID string) {
	f.mu.Lock()
	kept := f.summaries[:0]
	for _, s := range f.summaries {
		if s.ConversationID != conversationID {
			kept = append(kept, s)
		}
	}
	f.summaries = kept
	delete(f.patches, conversationID)
	snapshot := f.snapshotLocked()
	f.mu.Unlock()

	f.unread.MarkRead(conversationID)
	f.subs.notify(snapshot)
}

func (f *ListFeed) snapshotLocked() []models.ConversationSummary {
	snapshot := make([]models.ConversationSummary, len(f.summaries))
	copy(snapshot, f.summaries)
	return snapshot
}

// sortSummaries orders by most recent activity first, conversation ID as
// the tiebreak so the order is stable.
func sortSummaries(summaries []models.ConversationSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].ActivityTime(), summaries[j].ActivityTime()
		if !a.Equal(b) {
			return a.After(b)
		}
		return summaries[i].ConversationID < summaries[j].ConversationID
	})
}
