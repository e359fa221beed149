package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examsentry/integrity-backend/internal/config"
	"github.com/examsentry/integrity-backend/internal/policy"
	"github.com/examsentry/integrity-backend/internal/repository"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// MetricsWorker drains the recompute queue and refreshes SecurityMetrics
// rows from their source rows. Because the recompute is a full recalculation
// scoped by submission id, a batch only needs each submission once — the
// queue entries are dedupe-able and safe to drop on double delivery.
type MetricsWorker struct {
	metricsRepo *repository.MetricsRepository
	rdb         *redis.Client
	thresholds  policy.Thresholds
	log         zerolog.Logger
}

// NewMetricsWorker creates a new MetricsWorker.
func NewMetricsWorker(metricsRepo *repository.MetricsRepository, rdb *redis.Client, thresholds policy.Thresholds, log zerolog.Logger) *MetricsWorker {
	return &MetricsWorker{
		metricsRepo: metricsRepo,
		rdb:         rdb,
		thresholds:  thresholds,
		log:         log.With().Str("component", "metrics_worker").Logger(),
	}
}

// Start runs the worker loop until ctx is cancelled.
func (w *MetricsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("MetricsWorker started")

	buffer := make([]string, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		// 1. Check flush conditions (time or size).
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout {
				w.flush(ctx, buffer)
				buffer = buffer[:0] // Clear buffer, keep capacity
				lastFlushTime = time.Now()
			}
		}

		// 2. Check context (graceful shutdown).
		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
			// Continue
		}

		// 3. Fetch from Redis. BLPop blocks for 1 second and returns
		// immediately if data exists.
		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.MetricsRecomputeQueue).Result()

		if err != nil {
			if err == redis.Nil {
				continue // Timeout (queue empty), loop back to check flush timer
			}
			if ctx.Err() != nil {
				return // Context cancelled
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		buffer = append(buffer, result[1])
	}
}

// flush recomputes each distinct submission in the batch. A failed recompute
// is requeued once so a transient database outage doesn't silently leave
// metrics stale; malformed ids are discarded.
func (w *MetricsWorker) flush(ctx context.Context, batch []string) {
	requeueList := make([]string, 0)

	for _, raw := range Dedupe(batch) {
		submissionID, err := uuid.Parse(raw)
		if err != nil {
			w.log.Error().Str("submission_id", raw).Msg("Discarding recompute job with invalid UUID")
			continue
		}

		if _, err := w.metricsRepo.Recalculate(ctx, submissionID, w.thresholds); err != nil {
			w.log.Error().Err(err).Str("submission_id", raw).Msg("Recompute failed, requeueing")
			requeueList = append(requeueList, raw)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *MetricsWorker) requeue(ctx context.Context, items []string) {
	pipe := w.rdb.Pipeline()
	for _, raw := range items {
		pipe.RPush(ctx, config.WorkerKey.MetricsRecomputeQueue, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue recompute jobs; metrics may be stale until the next event")
	} else {
		w.log.Info().Int("count", len(items)).Msg("Requeued failed recompute jobs")
		// Sleep a bit to avoid thrashing if the DB is down hard
		time.Sleep(2 * time.Second)
	}
}

func (w *MetricsWorker) shutdown(buffer []string) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	// Give it 5 seconds to flush to DB
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flush(shutdownCtx, buffer)
	}
}

// Dedupe returns the batch with duplicates removed, preserving first-seen
// order. Recomputing a submission twice in one flush is wasted work.
func Dedupe(batch []string) []string {
	seen := make(map[string]struct{}, len(batch))
	out := make([]string, 0, len(batch))
	for _, id := range batch {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
