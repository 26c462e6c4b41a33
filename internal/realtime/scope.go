package realtime

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/fieldhand/fieldhand/internal/logging"
)

// Well-known scope names. A scope is a logical owner of at most one
// live subscription: the open thread, the conversation list, the
// counterpart profile being viewed.
const (
	ScopeThread  = "thread"
	ScopeList    = "list"
	ScopeProfile = "profile"
)

// ScopeManager owns subscription lifecycles keyed by scope name. Opening
// a scope that is already open tears the previous stream down first, so
// there is never more than one live subscription per scope. CloseAll is
// the unmount hook: callers defer it so screens cannot leak streams.
type ScopeManager struct {
	broker *Broker
	logger zerolog.Logger

	mu     sync.Mutex
	active map[string]func()
}

// NewScopeManager creates a ScopeManager over the given broker.
func NewScopeManager(broker *Broker) *ScopeManager {
	return &ScopeManager{
		broker: broker,
		logger: logging.Component("realtime-scopes"),
		active: make(map[string]func()),
	}
}

// Open subscribes the scope to events matching the filter, replacing any
// existing subscription for that scope.
func (m *ScopeManager) Open(scope string, filter Filter) <-chan Event {
	m.mu.Lock()
	prev := m.active[scope]
	ch, cancel := m.broker.Subscribe(filter)
	m.active[scope] = cancel
	m.mu.Unlock()

	// Cancel outside the lock; the old channel closes and its consumer
	// drains out.
	if prev != nil {
		prev()
	}

	m.logger.Debug().Str("scope", scope).Msg("subscription opened")
	return ch
}

// Close tears down the scope's subscription, if any.
func (m *ScopeManager) Close(scope string) {
	m.mu.Lock()
	cancel := m.active[scope]
	delete(m.active, scope)
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		m.logger.Debug().Str("scope", scope).Msg("subscription closed")
	}
}

// CloseAll tears down every subscription the manager owns.
func (m *ScopeManager) CloseAll() {
	m.mu.Lock()
	cancels := make([]func(), 0, len(m.active))
	for scope, cancel := range m.active {
		cancels = append(cancels, cancel)
		delete(m.active, scope)
	}
	m.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// ActiveScopes returns the number of scopes with a live subscription.
func (m *ScopeManager) ActiveScopes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}
