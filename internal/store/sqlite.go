// Package store provides storage backends for ChanjoBot conversation state.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/chanjohealth/chanjobot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists conversation state in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN is a file path; its directory is created if missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// GetConversationState returns the state for a sender, or nil if absent.
func (s *SQLiteStore) GetConversationState(sender string) (*models.ConversationState, error) {
	var stateJSON string
	err := s.db.QueryRow(`SELECT state_json FROM conversation_states WHERE sender = ?`, sender).Scan(&stateJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetConversationState failed", "error", err, "sender", sender)
		return nil, fmt.Errorf("failed to query conversation state for %s: %w", sender, err)
	}

	var state models.ConversationState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		slog.Error("SQLiteStore GetConversationState unmarshal failed", "error", err, "sender", sender)
		return nil, fmt.Errorf("failed to unmarshal conversation state for %s: %w", sender, err)
	}
	return &state, nil
}

// SaveConversationState inserts or replaces the state for state.Sender.
func (s *SQLiteStore) SaveConversationState(state models.ConversationState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		slog.Error("SQLiteStore SaveConversationState marshal failed", "error", err, "sender", state.Sender)
		return fmt.Errorf("failed to marshal conversation state for %s: %w", state.Sender, err)
	}

	_, err = s.db.Exec(`INSERT INTO conversation_states (sender, state_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(sender) DO UPDATE SET state_json = excluded.state_json, updated_at = excluded.updated_at`,
		state.Sender, string(stateJSON), state.CreatedAt, state.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveConversationState failed", "error", err, "sender", state.Sender)
		return fmt.Errorf("failed to save conversation state for %s: %w", state.Sender, err)
	}
	slog.Debug("SQLiteStore SaveConversationState succeeded", "sender", state.Sender, "flow", state.Flow, "state", state.State)
	return nil
}

// DeleteConversationState removes the state for a sender.
func (s *SQLiteStore) DeleteConversationState(sender string) error {
	_, err := s.db.Exec(`DELETE FROM conversation_states WHERE sender = ?`, sender)
	if err != nil {
		slog.Error("SQLiteStore DeleteConversationState failed", "error", err, "sender", sender)
		return fmt.Errorf("failed to delete conversation state for %s: %w", sender, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
