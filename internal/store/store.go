// Package store provides storage backends for ChanjoBot conversation state.
//
// The default backend is an in-memory map; SQLite, PostgreSQL and Redis
// backends are available for deployments that want conversations to survive a
// process restart. All backends serialize the full ConversationState as JSON.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/chanjohealth/chanjobot/internal/models"
)

// Store is the conversation state storage abstraction used by the flow engine.
type Store interface {
	// GetConversationState returns the state for a sender, or nil if absent.
	GetConversationState(sender string) (*models.ConversationState, error)

	// SaveConversationState inserts or replaces the state for state.Sender.
	SaveConversationState(state models.ConversationState) error

	// DeleteConversationState removes the state for a sender. Deleting an
	// absent sender is not an error.
	DeleteConversationState(sender string) error

	// Close releases any underlying resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN       string
	RedisAddr string
	RedisTTL  time.Duration
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithRedisAddr sets the Redis server address.
func WithRedisAddr(addr string) Option {
	return func(o *Opts) { o.RedisAddr = addr }
}

// WithRedisTTL sets the expiry applied to conversation state keys in Redis.
func WithRedisTTL(ttl time.Duration) Option {
	return func(o *Opts) { o.RedisTTL = ttl }
}

// DetectDSNType reports "postgres" for PostgreSQL-style DSNs and "sqlite"
// for anything else (assumed to be a file path).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// copyConversationState deep-copies a state. The draft fields are pointers,
// so a plain struct copy would alias them with the stored value.
func copyConversationState(state models.ConversationState) models.ConversationState {
	cp := state
	if state.Guardian != nil {
		g := *state.Guardian
		cp.Guardian = &g
	}
	if state.Baby != nil {
		b := *state.Baby
		cp.Baby = &b
	}
	if state.Appointment != nil {
		a := *state.Appointment
		cp.Appointment = &a
	}
	if state.Modify != nil {
		m := *state.Modify
		m.Appointments = append([]models.Appointment(nil), state.Modify.Appointments...)
		cp.Modify = &m
	}
	return cp
}

// InMemoryStore keeps conversation state in a process-local map. It is the
// default backend and the one used throughout the flow tests. State is lost
// on restart, which resets every in-flight conversation to the menu.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]models.ConversationState
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]models.ConversationState)}
}

// GetConversationState returns the state for a sender, or nil if absent.
func (s *InMemoryStore) GetConversationState(sender string) (*models.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[sender]
	if !ok {
		return nil, nil
	}
	// Copy so callers cannot mutate the stored value in place.
	cp := copyConversationState(state)
	return &cp, nil
}

// SaveConversationState inserts or replaces the state for state.Sender.
func (s *InMemoryStore) SaveConversationState(state models.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.Sender] = copyConversationState(state)
	return nil
}

// DeleteConversationState removes the state for a sender.
func (s *InMemoryStore) DeleteConversationState(sender string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sender)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
