package database

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/examsentry/integrity-backend/internal/config"
)

func TestNewRedisClientDisabledReturnsNil(t *testing.T) {
	cfg := &config.Config{RedisURL: "disabled"}

	rdb, err := NewRedisClient(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rdb != nil {
		t.Fatal("expected a nil client when the backend is disabled")
	}
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	cfg := &config.Config{RedisURL: "not-a-redis-url"}

	if _, err := NewRedisClient(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected an error for a malformed URL")
	}
}
