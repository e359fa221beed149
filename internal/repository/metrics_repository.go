package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examsentry/integrity-backend/internal/model"
	"github.com/examsentry/integrity-backend/internal/policy"
)

// MetricsRepository maintains the per-submission SecurityMetrics row.
//
// The row is the single shared mutable resource per submission, so it is
// never maintained by read-modify-write in application code. Recalculate
// recomputes everything from the persisted source rows inside one upsert
// statement; concurrent invocations for the same submission both converge on
// the correct totals, and the GREATEST/OR clauses keep risk_score and
// is_flagged_for_review monotonic even when a stale recompute lands last.
type MetricsRepository struct {
	pool *pgxpool.Pool
}

// NewMetricsRepository creates a new MetricsRepository.
func NewMetricsRepository(pool *pgxpool.Pool) *MetricsRepository {
	return &MetricsRepository{pool: pool}
}

const recalculateSQL = `
WITH ev AS (
	SELECT
		COUNT(*) FILTER (WHERE event_type = 'tab_switch')    AS tab_switches,
		COUNT(*) FILTER (WHERE event_type = 'screen_locked') AS screen_locks,
		COUNT(*) FILTER (WHERE event_type = 'window_blur')   AS window_blur_events,
		COUNT(*) FILTER (WHERE event_type = 'copy_attempt')  AS copy_attempts,
		COUNT(*) FILTER (WHERE event_type = 'paste_attempt') AS paste_attempts,
		COUNT(*) FILTER (WHERE event_type = 'zoom_change')   AS zoom_changes
	FROM monitoring_events
	WHERE submission_id = $1
), vi AS (
	SELECT COUNT(*) AS violation_count
	FROM violations
	WHERE submission_id = $1
)
INSERT INTO security_metrics (
	submission_id, tab_switches, screen_locks, window_blur_events,
	copy_attempts, paste_attempts, zoom_changes, violation_count,
	risk_score, risk_level, is_flagged_for_review, updated_at
)
SELECT
	$1, ev.tab_switches, ev.screen_locks, ev.window_blur_events,
	ev.copy_attempts, ev.paste_attempts, ev.zoom_changes, vi.violation_count,
	LEAST(100, vi.violation_count * $2),
	CASE
		WHEN vi.violation_count >= $5 THEN 'critical'
		WHEN vi.violation_count >= $4 THEN 'high'
		WHEN vi.violation_count >= $3 THEN 'medium'
		ELSE 'low'
	END,
	vi.violation_count >= $6,
	NOW()
FROM ev, vi
ON CONFLICT (submission_id) DO UPDATE SET
	tab_switches       = EXCLUDED.tab_switches,
	screen_locks       = EXCLUDED.screen_locks,
	window_blur_events = EXCLUDED.window_blur_events,
	copy_attempts      = EXCLUDED.copy_attempts,
	paste_attempts     = EXCLUDED.paste_attempts,
	zoom_changes       = EXCLUDED.zoom_changes,
	violation_count    = GREATEST(security_metrics.violation_count, EXCLUDED.violation_count),
	risk_score         = GREATEST(security_metrics.risk_score, EXCLUDED.risk_score),
	risk_level = CASE
		WHEN GREATEST(security_metrics.violation_count, EXCLUDED.violation_count) >= $5 THEN 'critical'
		WHEN GREATEST(security_metrics.violation_count, EXCLUDED.violation_count) >= $4 THEN 'high'
		WHEN GREATEST(security_metrics.violation_count, EXCLUDED.violation_count) >= $3 THEN 'medium'
		ELSE security_metrics.risk_level
	END,
	is_flagged_for_review = security_metrics.is_flagged_for_review OR EXCLUDED.is_flagged_for_review,
	updated_at            = NOW()
RETURNING submission_id, tab_switches, screen_locks, window_blur_events,
	copy_attempts, paste_attempts, zoom_changes, violation_count,
	risk_score, risk_level, is_flagged_for_review, updated_at`

// Recalculate atomically recomputes a submission's metrics from the
// persisted event and violation rows and returns the resulting row.
func (r *MetricsRepository) Recalculate(ctx context.Context, submissionID uuid.UUID, th policy.Thresholds) (*model.SecurityMetrics, error) {
	return scanMetrics(r.pool.QueryRow(ctx, recalculateSQL,
		submissionID, th.RiskPerViolation, th.RiskMediumAt, th.RiskHighAt, th.RiskCriticalAt, th.Flag))
}

// Get returns a submission's metrics row, or the zero-valued defaults when
// no activity has been recorded yet (absence is not an error).
func (r *MetricsRepository) Get(ctx context.Context, submissionID uuid.UUID) (*model.SecurityMetrics, error) {
	m, err := scanMetrics(r.pool.QueryRow(ctx,
		`SELECT submission_id, tab_switches, screen_locks, window_blur_events,
			copy_attempts, paste_attempts, zoom_changes, violation_count,
			risk_score, risk_level, is_flagged_for_review, updated_at
		 FROM security_metrics
		 WHERE submission_id = $1`, submissionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ZeroMetrics(submissionID), nil
	}
	return m, err
}

func scanMetrics(row pgx.Row) (*model.SecurityMetrics, error) {
	m := &model.SecurityMetrics{}
	err := row.Scan(
		&m.SubmissionID, &m.TabSwitches, &m.ScreenLocks, &m.WindowBlurEvents,
		&m.CopyAttempts, &m.PasteAttempts, &m.ZoomChanges, &m.ViolationCount,
		&m.RiskScore, &m.RiskLevel, &m.IsFlaggedForReview, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}
