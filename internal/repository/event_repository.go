package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examsentry/integrity-backend/internal/model"
)

// EventRepository handles the append-only monitoring event log. Rows are
// never updated or deleted; created_at is assigned by the database.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Insert appends a monitoring event and fills in the server-assigned id and
// creation time.
func (r *EventRepository) Insert(ctx context.Context, e *model.MonitoringEvent) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO monitoring_events (
			submission_id, exam_id, student_id, event_type, event_category,
			severity, event_message, event_data, duration_ms, question_id,
			section_id, ip_address, user_agent, browser_info, screen_resolution,
			app_version, os_platform, is_vm, vm_details, monitor_count,
			event_timestamp
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		 RETURNING id, created_at`,
		e.SubmissionID, e.ExamID, e.StudentID, e.EventType, e.EventCategory,
		e.Severity, e.EventMessage, e.EventData, e.DurationMs, e.QuestionID,
		e.SectionID, e.IPAddress, e.UserAgent, e.BrowserInfo, e.ScreenResolution,
		e.AppVersion, e.OSPlatform, e.IsVM, e.VMDetails, e.MonitorCount,
		e.EventTimestamp,
	).Scan(&e.ID, &e.CreatedAt)
}

// ListRecent returns the newest events for a submission, ordered by the
// authoritative server receipt order (created_at, then id as tiebreaker).
func (r *EventRepository) ListRecent(ctx context.Context, submissionID uuid.UUID, limit int) ([]model.MonitoringEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, submission_id, exam_id, student_id, event_type, event_category,
			severity, event_message, event_data, duration_ms, question_id,
			section_id, ip_address, user_agent, browser_info, screen_resolution,
			app_version, os_platform, is_vm, vm_details, monitor_count,
			event_timestamp, created_at
		 FROM monitoring_events
		 WHERE submission_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`, submissionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.MonitoringEvent, 0, limit)
	for rows.Next() {
		var e model.MonitoringEvent
		if err := rows.Scan(
			&e.ID, &e.SubmissionID, &e.ExamID, &e.StudentID, &e.EventType, &e.EventCategory,
			&e.Severity, &e.EventMessage, &e.EventData, &e.DurationMs, &e.QuestionID,
			&e.SectionID, &e.IPAddress, &e.UserAgent, &e.BrowserInfo, &e.ScreenResolution,
			&e.AppVersion, &e.OSPlatform, &e.IsVM, &e.VMDetails, &e.MonitorCount,
			&e.EventTimestamp, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountBySubmission returns the total number of events on a submission's
// audit trail.
func (r *EventRepository) CountBySubmission(ctx context.Context, submissionID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM monitoring_events WHERE submission_id = $1`, submissionID,
	).Scan(&n)
	return n, err
}
