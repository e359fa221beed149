package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newLockService(t *testing.T) (*SessionLockService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewSessionLockService(rdb, 60*time.Second, zerolog.Nop()), mr
}

func TestAcquireOrRefreshMutualExclusion(t *testing.T) {
	svc, _ := newLockService(t)
	ctx := context.Background()
	examID := uuid.New()

	// First session acquires.
	if err := svc.AcquireOrRefresh(ctx, examID, 7, "session-a"); err != nil {
		t.Fatalf("session A acquire: %v", err)
	}

	// A different session is rejected with the business-rule error.
	err := svc.AcquireOrRefresh(ctx, examID, 7, "session-b")
	if !errors.Is(err, ErrConcurrentSession) {
		t.Fatalf("session B acquire: got %v, want ErrConcurrentSession", err)
	}

	// The holder refreshes freely.
	if err := svc.AcquireOrRefresh(ctx, examID, 7, "session-a"); err != nil {
		t.Fatalf("session A refresh: %v", err)
	}
}

func TestAcquireAfterTTLExpiry(t *testing.T) {
	svc, mr := newLockService(t)
	ctx := context.Background()
	examID := uuid.New()

	if err := svc.AcquireOrRefresh(ctx, examID, 7, "session-a"); err != nil {
		t.Fatalf("session A acquire: %v", err)
	}

	// A stops heartbeating; 61 seconds later B takes the lock.
	mr.FastForward(61 * time.Second)

	if err := svc.AcquireOrRefresh(ctx, examID, 7, "session-b"); err != nil {
		t.Fatalf("session B acquire after expiry: %v", err)
	}
}

func TestReleaseOnlyByHolder(t *testing.T) {
	svc, mr := newLockService(t)
	ctx := context.Background()
	examID := uuid.New()

	if err := svc.AcquireOrRefresh(ctx, examID, 7, "session-a"); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// A stale release from another session must not evict the holder.
	if err := svc.Release(ctx, examID, 7, "session-b"); err != nil {
		t.Fatalf("stale release errored: %v", err)
	}
	if !mr.Exists("exam:" + examID.String() + ":student:7:session_lock") {
		t.Fatal("stale release evicted the active lock")
	}

	// The holder's release removes the lock.
	if err := svc.Release(ctx, examID, 7, "session-a"); err != nil {
		t.Fatalf("holder release: %v", err)
	}
	if mr.Exists("exam:" + examID.String() + ":student:7:session_lock") {
		t.Fatal("holder release left the lock behind")
	}
}

func TestLocksAreScopedPerExamAndStudent(t *testing.T) {
	svc, _ := newLockService(t)
	ctx := context.Background()
	examA, examB := uuid.New(), uuid.New()

	if err := svc.AcquireOrRefresh(ctx, examA, 7, "session-a"); err != nil {
		t.Fatalf("exam A acquire: %v", err)
	}
	// Same student, different exam — independent lock.
	if err := svc.AcquireOrRefresh(ctx, examB, 7, "session-b"); err != nil {
		t.Fatalf("exam B acquire: %v", err)
	}
	// Same exam, different student — independent lock.
	if err := svc.AcquireOrRefresh(ctx, examA, 8, "session-c"); err != nil {
		t.Fatalf("student 8 acquire: %v", err)
	}
}

func TestMissingBackendDegradesToNoOp(t *testing.T) {
	svc := NewSessionLockService(nil, 60*time.Second, zerolog.Nop())
	ctx := context.Background()
	examID := uuid.New()

	if err := svc.AcquireOrRefresh(ctx, examID, 7, "session-a"); err != nil {
		t.Fatalf("acquire without backend: %v", err)
	}
	if err := svc.Release(ctx, examID, 7, "session-a"); err != nil {
		t.Fatalf("release without backend: %v", err)
	}
}
