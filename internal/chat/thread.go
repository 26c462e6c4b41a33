package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fieldhand/fieldhand/internal/logging"
	"github.com/fieldhand/fieldhand/internal/models"
	"github.com/fieldhand/fieldhand/internal/realtime"
)

// ThreadState is the lifecycle state of the open conversation's window.
type ThreadState string

const (
	// ThreadIdle means no conversation is open.
	ThreadIdle ThreadState = "idle"

	// ThreadInitialLoading means the first page fetch is in flight.
	ThreadInitialLoading ThreadState = "initial-loading"

	// ThreadReady means the window holds a page of messages.
	ThreadReady ThreadState = "ready"

	// ThreadLoadingMore means an older-page fetch is in flight; the
	// existing window stays visible underneath.
	ThreadLoadingMore ThreadState = "loading-more"

	// ThreadFailed means a fetch errored; Retry re-runs the fetch that
	// failed. The window from before the failure is retained.
	ThreadFailed ThreadState = "failed"
)

// ErrNoOpenThread is returned by operations that need an open conversation.
var ErrNoOpenThread = errors.New("no open thread")

type threadOp int

const (
	opInitial threadOp = iota
	opOlder
)

// ThreadSnapshot is the renderable view of a thread feed.
type ThreadSnapshot struct {
	State          ThreadState
	ConversationID string
	// Messages is the loaded window, newest first.
	Messages []models.Message
	// HasMore reports whether older pages remain.
	HasMore bool
	// Err is the fetch error when State is ThreadFailed.
	Err error
}

// ThreadFeed holds the paginated message window for the one open
// conversation. Page fetches and realtime insert events merge into a
// single newest-first window with no duplicates and no inversions,
// whatever order they resolve in.
//
// Staleness is handled with an epoch counter: Open and Close bump it,
// and every asynchronous result re-checks it before touching the
// window, so fetches and events that outlive their conversation are
// discarded instead of applied.
type ThreadFeed struct {
	backend  Backend
	scopes   *realtime.ScopeManager
	viewer   string
	pageSize int
	logger   zerolog.Logger

	mu             sync.Mutex
	epoch          uint64
	state          ThreadState
	conversationID string
	window         []models.Message
	seen           map[string]struct{}
	hasMore        bool
	lastErr        error
	failedOp       threadOp

	subs subscribers[ThreadSnapshot]
}

// NewThreadFeed creates a thread feed. scopes may be nil, in which case
// the feed operates fetch-only with no live updates.
func NewThreadFeed(backend Backend, scopes *realtime.ScopeManager, viewerID string, pageSize int) *ThreadFeed {
	return &ThreadFeed{
		backend:  backend,
		scopes:   scopes,
		viewer:   viewerID,
		pageSize: pageSize,
		logger:   logging.Component("chat-thread"),
		state:    ThreadIdle,
	}
}

// Open switches the feed to a conversation: the previous subscription is
// torn down, the newest page is fetched, and a realtime subscription
// scoped to the conversation starts delivering inserts. Opening the same
// conversation again reloads it; there is never more than one live
// subscription.
func (f *ThreadFeed) Open(ctx context.Context, conversationID string) error {
	f.mu.Lock()
	f.epoch++
	epoch := f.epoch
	f.conversationID = conversationID
	f.state = ThreadInitialLoading
	f.window = nil
	f.seen = make(map[string]struct{})
	f.hasMore = false
	f.lastErr = nil
	snapshot := f.snapshotLocked()
	f.mu.Unlock()
	f.subs.notify(snapshot)

	// Subscribe before fetching so no insert can fall between the page
	// snapshot and the stream start; the overlap is resolved by ID
	// de-duplication. Reusing the thread scope atomically replaces any
	// previous conversation's subscription.
	if f.scopes != nil {
		events := f.scopes.Open(realtime.ScopeThread, realtime.Filter{
			Types:          []realtime.EventType{realtime.EventMessageInserted},
			ConversationID: conversationID,
		})
		go f.pump(epoch, events)
	}

	return f.fetchInitial(ctx, epoch, conversationID)
}

// LoadOlder fetches the next older page. No-op while another load is in
// flight or when no older messages remain.
func (f *ThreadFeed) LoadOlder(ctx context.Context) error {
	f.mu.Lock()
	if f.state != ThreadReady || !f.hasMore {
		f.mu.Unlock()
		return nil
	}
	f.state = ThreadLoadingMore
	epoch := f.epoch
	conversationID := f.conversationID
	offset := len(f.window)
	snapshot := f.snapshotLocked()
	f.mu.Unlock()
	f.subs.notify(snapshot)

	return f.fetchOlder(ctx, epoch, conversationID, offset)
}

// Retry re-runs the fetch that moved the feed into ThreadFailed.
func (f *ThreadFeed) Retry(ctx context.Context) error {
	f.mu.Lock()
	if f.state != ThreadFailed {
		f.mu.Unlock()
		return nil
	}
	epoch := f.epoch
	conversationID := f.conversationID
	op := f.failedOp
	offset := len(f.window)
	if op == opInitial {
		f.state = ThreadInitialLoading
	} else {
		f.state = ThreadLoadingMore
	}
	f.lastErr = nil
	snapshot := f.snapshotLocked()
	f.mu.Unlock()
	f.subs.notify(snapshot)

	if op == opInitial {
		return f.fetchInitial(ctx, epoch, conversationID)
	}
	return f.fetchOlder(ctx, epoch, conversationID, offset)
}

// Send posts a message to the open conversation. The message enters the
// window via the realtime echo only; on failure the window is untouched
// and the returned *SendError tells the UI to restore the draft.
func (f *ThreadFeed) Send(ctx context.Context, content string) error {
	f.mu.Lock()
	conversationID := f.conversationID
	f.mu.Unlock()

	if conversationID == "" {
		return ErrNoOpenThread
	}

	if _, err := f.backend.SendMessage(ctx, conversationID, f.viewer, content); err != nil {
		return &SendError{Err: err}
	}
	return nil
}

// Close tears down the subscription and discards the window. Events and
// fetch results that arrive afterwards are discarded by the epoch check.
func (f *ThreadFeed) Close() {
	f.mu.Lock()
	f.epoch++
	f.state = ThreadIdle
	f.conversationID = ""
	f.window = nil
	f.seen = nil
	f.hasMore = false
	f.lastErr = nil
	snapshot := f.snapshotLocked()
	f.mu.Unlock()

	if f.scopes != nil {
		f.scopes.Close(realtime.ScopeThread)
	}
	f.subs.notify(snapshot)
}

// Snapshot returns the current window state.
func (f *ThreadFeed) Snapshot() ThreadSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Subscribe registers a callback invoked after every state change.
// Returns an unsubscribe function.
func (f *ThreadFeed) Subscribe(fn func(ThreadSnapshot)) func() {
	return f.subs.add(fn)
}

func (f *ThreadFeed) fetchInitial(ctx context.Context, epoch uint64, conversationID string) error {
	page, err := f.backend.MessagesPage(ctx, conversationID, 0, f.pageSize)

	f.mu.Lock()
	if epoch != f.epoch {
		f.mu.Unlock()
		return nil // conversation switched or closed while fetching
	}
	if err != nil {
		f.state = ThreadFailed
		f.failedOp = opInitial
		f.lastErr = err
		snapshot := f.snapshotLocked()
		f.mu.Unlock()
		f.subs.notify(snapshot)
		return fmt.Errorf("failed to load thread: %w", err)
	}

	for i := range page {
		f.insertLocked(&page[i])
	}
	f.state = ThreadReady
	f.hasMore = len(page) == f.pageSize
	snapshot := f.snapshotLocked()
	f.mu.Unlock()
	f.subs.notify(snapshot)
	return nil
}

func (f *ThreadFeed) fetchOlder(ctx context.Context, epoch uint64, conversationID string, offset int) error {
	page, err := f.backend.MessagesPage(ctx, conversationID, offset, f.pageSize)

	f.mu.Lock()
	if epoch != f.epoch {
		f.mu.Unlock()
		return nil
	}
	if err != nil {
		// The window survives; hasMore stays true so the user can retry.
		f.state = ThreadFailed
		f.failedOp = opOlder
		f.lastErr = err
		snapshot := f.snapshotLocked()
		f.mu.Unlock()
		f.subs.notify(snapshot)
		return fmt.Errorf("failed to load older messages: %w", err)
	}

	for i := range page {
		f.insertLocked(&page[i])
	}
	f.state = ThreadReady
	f.hasMore = len(page) == f.pageSize
	snapshot := f.snapshotLocked()
	f.mu.Unlock()
	f.subs.notify(snapshot)
	return nil
}

// pump applies subscription events until the channel closes. The epoch
// pins events to the conversation that opened the subscription.
func (f *ThreadFeed) pump(epoch uint64, events <-chan realtime.Event) {
	for event := range events {
		f.applyInsert(epoch, event.Message)
	}
}

// applyInsert merges one realtime-delivered message into the window.
// Duplicates (the page fetch and the live event racing over the same
// just-created row) are dropped by the ID check.
func (f *ThreadFeed) applyInsert(epoch uint64, message *models.Message) {
	if message == nil {
		return
	}

	f.mu.Lock()
	if epoch != f.epoch || message.ConversationID != f.conversationID {
		f.mu.Unlock()
		return
	}
	if !f.insertLocked(message) {
		f.mu.Unlock()
		return
	}
	snapshot := f.snapshotLocked()
	f.mu.Unlock()
	f.subs.notify(snapshot)
}

// insertLocked places a message at its sorted position in the
// newest-first window. Live inserts are normally newer than everything
// held, but the sort handles out-of-order delivery too. Returns false
// for duplicates.
func (f *ThreadFeed) insertLocked(message *models.Message) bool {
	if _, dup := f.seen[message.ID]; dup {
		return false
	}
	f.seen[message.ID] = struct{}{}

	at := len(f.window)
	for i := range f.window {
		if message.Newer(&f.window[i]) {
			at = i
			break
		}
	}
	f.window = append(f.window, models.Message{})
	copy(f.window[at+1:], f.window[at:])
	f.window[at] = *message
	return true
}

func (f *ThreadFeed) snapshotLocked() ThreadSnapshot {
	messages := make([]models.Message, len(f.window))
	copy(messages, f.window)
	return ThreadSnapshot{
		State:          f.state,
		ConversationID: f.conversationID,
		Messages:       messages,
		HasMore:        f.hasMore,
		Err:            f.lastErr,
	}
}
