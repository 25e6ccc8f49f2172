// Package store provides storage backends for ChanjoBot conversation state.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "embed"

	"github.com/chanjohealth/chanjobot/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists conversation state in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open PostgreSQL connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("PostgreSQL ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgreSQL migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// GetConversationState returns the state for a sender, or nil if absent.
func (s *PostgresStore) GetConversationState(sender string) (*models.ConversationState, error) {
	var stateJSON string
	err := s.db.QueryRow(`SELECT state_json FROM conversation_states WHERE sender = $1`, sender).Scan(&stateJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetConversationState failed", "error", err, "sender", sender)
		return nil, fmt.Errorf("failed to query conversation state for %s: %w", sender, err)
	}

	var state models.ConversationState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		slog.Error("PostgresStore GetConversationState unmarshal failed", "error", err, "sender", sender)
		return nil, fmt.Errorf("failed to unmarshal conversation state for %s: %w", sender, err)
	}
	return &state, nil
}

// SaveConversationState inserts or replaces the state for state.Sender.
func (s *PostgresStore) SaveConversationState(state models.ConversationState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		slog.Error("PostgresStore SaveConversationState marshal failed", "error", err, "sender", state.Sender)
		return fmt.Errorf("failed to marshal conversation state for %s: %w", state.Sender, err)
	}

	_, err = s.db.Exec(`INSERT INTO conversation_states (sender, state_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sender) DO UPDATE SET state_json = EXCLUDED.state_json, updated_at = EXCLUDED.updated_at`,
		state.Sender, string(stateJSON), state.CreatedAt, state.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveConversationState failed", "error", err, "sender", state.Sender)
		return fmt.Errorf("failed to save conversation state for %s: %w", state.Sender, err)
	}
	slog.Debug("PostgresStore SaveConversationState succeeded", "sender", state.Sender, "flow", state.Flow, "state", state.State)
	return nil
}

// DeleteConversationState removes the state for a sender.
func (s *PostgresStore) DeleteConversationState(sender string) error {
	_, err := s.db.Exec(`DELETE FROM conversation_states WHERE sender = $1`, sender)
	if err != nil {
		slog.Error("PostgresStore DeleteConversationState failed", "error", err, "sender", sender)
		return fmt.Errorf("failed to delete conversation state for %s: %w", sender, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
