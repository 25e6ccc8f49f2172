// Package store provides storage backends for ChanjoBot conversation state.
//
// This file implements the Redis-backed store. Keys expire after the
// configured TTL so abandoned conversations are reclaimed automatically.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/chanjohealth/chanjobot/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisTTL is applied to conversation state keys when no TTL is configured.
const DefaultRedisTTL = 24 * time.Hour

// RedisStore persists conversation state in Redis.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a new Redis store for the given address.
func NewRedisStore(opts ...Option) (*RedisStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewRedisStore invoked", "addr", cfg.RedisAddr)

	if cfg.RedisAddr == "" {
		slog.Error("RedisStore address not set")
		return nil, fmt.Errorf("redis address not set")
	}
	ttl := cfg.RedisTTL
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("Redis ping failed", "error", err, "addr", cfg.RedisAddr)
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

func stateKey(sender string) string {
	return fmt.Sprintf("conversation:%s", sender)
}

// GetConversationState returns the state for a sender, or nil if absent.
func (s *RedisStore) GetConversationState(sender string) (*models.ConversationState, error) {
	val, err := s.rdb.Get(context.Background(), stateKey(sender)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		slog.Error("RedisStore GetConversationState failed", "error", err, "sender", sender)
		return nil, fmt.Errorf("failed to get conversation state for %s: %w", sender, err)
	}

	var state models.ConversationState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		slog.Error("RedisStore GetConversationState unmarshal failed", "error", err, "sender", sender)
		return nil, fmt.Errorf("failed to unmarshal conversation state for %s: %w", sender, err)
	}
	return &state, nil
}

// SaveConversationState inserts or replaces the state for state.Sender.
func (s *RedisStore) SaveConversationState(state models.ConversationState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		slog.Error("RedisStore SaveConversationState marshal failed", "error", err, "sender", state.Sender)
		return fmt.Errorf("failed to marshal conversation state for %s: %w", state.Sender, err)
	}

	if err := s.rdb.Set(context.Background(), stateKey(state.Sender), stateJSON, s.ttl).Err(); err != nil {
		slog.Error("RedisStore SaveConversationState failed", "error", err, "sender", state.Sender)
		return fmt.Errorf("failed to save conversation state for %s: %w", state.Sender, err)
	}
	slog.Debug("RedisStore SaveConversationState succeeded", "sender", state.Sender, "flow", state.Flow, "state", state.State)
	return nil
}

// DeleteConversationState removes the state for a sender.
func (s *RedisStore) DeleteConversationState(sender string) error {
	if err := s.rdb.Del(context.Background(), stateKey(sender)).Err(); err != nil {
		slog.Error("RedisStore DeleteConversationState failed", "error", err, "sender", sender)
		return fmt.Errorf("failed to delete conversation state for %s: %w", sender, err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
