package chat

import "sync"

// UnreadSet is the session-scoped set of conversation IDs with unseen
// messages. It is a cache, not authoritative state: losing it fails safe
// toward "everything read". All mutation goes through MarkUnread and
// MarkRead; consumers never touch the set directly. Reads are
// synchronous so badges can render without a loading state.
//
// Subscribers are notified only when the set actually changes, never on
// redundant marks.
type UnreadSet struct {
	mu   sync.Mutex
	ids  map[string]struct{}
	subs subscribers[map[string]struct{}]
}

// NewUnreadSet creates an empty unread set.
func NewUnreadSet() *UnreadSet {
	return &UnreadSet{ids: make(map[string]struct{})}
}

// MarkUnread adds a conversation to the set. Idempotent; reports whether
// the set changed.
func (u *UnreadSet) MarkUnread(conversationID string) bool {
	if conversationID == "" {
		return false
	}

	u.mu.Lock()
	_, present := u.ids[conversationID]
	if !present {
		u.ids[conversationID] = struct{}{}
	}
	snapshot := u.snapshotLocked()
	u.mu.Unlock()

	if present {
		return false
	}
	u.subs.notify(snapshot)
	return true
}

// MarkRead removes a conversation from the set. Idempotent; reports
// whether the set changed.
func (u *UnreadSet) MarkRead(conversationID string) bool {
	u.mu.Lock()
	_, present := u.ids[conversationID]
	if present {
		delete(u.ids, conversationID)
	}
	snapshot := u.snapshotLocked()
	u.mu.Unlock()

	if !present {
		return false
	}
	u.subs.notify(snapshot)
	return true
}

// Contains reports whether a conversation is unread.
func (u *UnreadSet) Contains(conversationID string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, present := u.ids[conversationID]
	return present
}

// Len returns the number of unread conversations.
func (u *UnreadSet) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.ids)
}

// Snapshot returns a copy of the current set.
func (u *UnreadSet) Snapshot() map[string]struct{} {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.snapshotLocked()
}

// Subscribe registers a callback invoked with the new set after every
// change. Returns an unsubscribe function. Any number of independent
// subscribers is supported.
func (u *UnreadSet) Subscribe(fn func(map[string]struct{})) func() {
	return u.subs.add(fn)
}

func (u *UnreadSet) snapshotLocked() map[string]struct{} {
	snapshot := make(map[string]struct{}, len(u.ids))
	for id := range u.ids {
		snapshot[id] = struct{}{}
	}
	return snapshot
}
