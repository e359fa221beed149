package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examsentry/integrity-backend/internal/config"
)

// SessionLockService enforces at most one live exam-client session per
// (exam, student) pair through a short-TTL Redis lock. Locking is an
// optional hardening layer: without a Redis backend both operations degrade
// to successful no-ops.
type SessionLockService struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewSessionLockService creates a new SessionLockService. rdb may be nil.
func NewSessionLockService(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *SessionLockService {
	return &SessionLockService{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "session_lock").Logger(),
	}
}

// acquireScript creates the lock if absent, refreshes it if the caller
// already holds it, and rejects otherwise. Single round trip, no window
// between the read and the write.
var acquireScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
	return 1
elseif cur == ARGV[1] then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
	return 1
else
	return 0
end`)

// releaseScript deletes the lock only when the caller still holds it, so a
// stale release can never evict a newer session's lock.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0`)

// AcquireOrRefresh takes or extends the session lock for sessionID. Returns
// ErrConcurrentSession when a different session currently holds it. Backend
// faults are returned as-is, distinct from the business-rule rejection.
func (s *SessionLockService) AcquireOrRefresh(ctx context.Context, examID uuid.UUID, studentID int, sessionID string) error {
	if s.rdb == nil {
		return nil
	}

	key := config.CacheKey.SessionLockKey(examID.String(), studentID)
	ok, err := acquireScript.Run(ctx, s.rdb, []string{key}, sessionID, s.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("acquire session lock: %w", err)
	}
	if ok == 0 {
		return ErrConcurrentSession
	}
	return nil
}

// Release drops the lock if sessionID still holds it. Mismatches and a
// missing backend are silent no-ops; only backend faults are reported.
func (s *SessionLockService) Release(ctx context.Context, examID uuid.UUID, studentID int, sessionID string) error {
	if s.rdb == nil {
		return nil
	}

	key := config.CacheKey.SessionLockKey(examID.String(), studentID)
	if err := releaseScript.Run(ctx, s.rdb, []string{key}, sessionID).Err(); err != nil {
		return fmt.Errorf("release session lock: %w", err)
	}
	return nil
}
