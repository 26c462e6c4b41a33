package chat

import (
	"context"
	"sync"

	"github.com/fieldhand/fieldhand/internal/realtime"
)

// Inbox bundles the chat stores for one signed-in viewer and owns their
// shared lifecycle: one global subscription feeding the list, one
// per-conversation subscription inside the thread feed, and the unread
// set both of them report into. Constructed once at app start and
// injected into screens; Stop tears every subscription down.
type Inbox struct {
	Unread *UnreadSet
	Focus  *FocusTracker
	List   *ListFeed
	Thread *ThreadFeed

	scopes *realtime.ScopeManager
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewInbox wires the chat stores for a viewer. broker may be nil for
// fetch-only operation (no live updates).
func NewInbox(backend Backend, broker *realtime.Broker, viewerID string, pageSize int) *Inbox {
	unread := NewUnreadSet()
	focus := NewFocusTracker(unread)

	var scopes *realtime.ScopeManager
	if broker != nil {
		scopes = realtime.NewScopeManager(broker)
	}

	return &Inbox{
		Unread: unread,
		Focus:  focus,
		List:   NewListFeed(backend, unread, focus, viewerID),
		Thread: NewThreadFeed(backend, scopes, viewerID, pageSize),
		scopes: scopes,
	}
}

// Start loads the conversation list and begins consuming the global
// event stream. A broker-less inbox just does the initial fetch.
func (i *Inbox) Start(ctx context.Context) error {
	if i.scopes != nil {
		events := i.scopes.Open(realtime.ScopeList, realtime.Filter{
			Types: []realtime.EventType{
				realtime.EventMessageInserted,
				realtime.EventConversationCreated,
				realtime.EventConversationDeleted,
				realtime.EventProfileUpdated,
			},
		})

		runCtx, cancel := context.WithCancel(context.Background())
		i.cancel = cancel
		i.wg.Add(1)
		go func() {
			defer i.wg.Done()
			i.List.Run(runCtx, events)
		}()
	}

	return i.List.Refresh(ctx)
}

// WatchProfile opens a profile-update subscription for the counterpart
// whose identity is on screen; their updates flow into the list the
// same way the global stream does. Watching a new counterpart replaces
// the previous subscription.
func (i *Inbox) WatchProfile(userID string) {
	if i.scopes == nil || userID == "" {
		return
	}
	events := i.scopes.Open(realtime.ScopeProfile, realtime.Filter{
		Types:  []realtime.EventType{realtime.EventProfileUpdated},
		UserID: userID,
	})

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		// The pump ends when the scope closes its channel.
		i.List.Run(context.Background(), events)
	}()
}

// UnwatchProfile tears down the counterpart profile subscription, if any.
func (i *Inbox) UnwatchProfile() {
	if i.scopes != nil {
		i.scopes.Close(realtime.ScopeProfile)
	}
}

// Stop tears down every live subscription and waits for the event pump
// to drain. Safe to call more than once.
func (i *Inbox) Stop() {
	if i.Thread != nil {
		i.Thread.Close()
	}
	if i.scopes != nil {
		i.scopes.CloseAll()
	}
	if i.cancel != nil {
		i.cancel()
		i.cancel = nil
	}
	i.wg.Wait()
}
