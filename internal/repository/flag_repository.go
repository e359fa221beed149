package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examsentry/integrity-backend/internal/model"
)

// FlagRepository handles cheating flags created by the escalation engine.
type FlagRepository struct {
	pool *pgxpool.Pool
}

// NewFlagRepository creates a new FlagRepository.
func NewFlagRepository(pool *pgxpool.Pool) *FlagRepository {
	return &FlagRepository{pool: pool}
}

// CreatePendingOnce inserts a pending flag for the submission unless one
// already exists. The partial unique index on (submission_id) WHERE
// flag_status = 'pending' makes this idempotent under concurrent terminate
// decisions: exactly one caller creates the flag, the rest see created=false.
func (r *FlagRepository) CreatePendingOnce(ctx context.Context, f *model.CheatingFlag) (created bool, err error) {
	err = r.pool.QueryRow(ctx,
		`INSERT INTO cheating_flags (
			submission_id, flag_reason, flag_severity, flag_status,
			violations_count, auto_flagged, requires_manual_review
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (submission_id) WHERE flag_status = 'pending' DO NOTHING
		 RETURNING id, created_at`,
		f.SubmissionID, f.FlagReason, f.FlagSeverity, model.FlagStatusPending,
		f.ViolationsCount, f.AutoFlagged, f.RequiresManualReview,
	).Scan(&f.ID, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Conflict: a pending flag already exists for this submission.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListBySubmission returns all flags for a submission, newest first.
func (r *FlagRepository) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]model.CheatingFlag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, submission_id, flag_reason, flag_severity, flag_status,
			violations_count, auto_flagged, requires_manual_review, created_at
		 FROM cheating_flags
		 WHERE submission_id = $1
		 ORDER BY created_at DESC, id DESC`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []model.CheatingFlag
	for rows.Next() {
		var f model.CheatingFlag
		if err := rows.Scan(
			&f.ID, &f.SubmissionID, &f.FlagReason, &f.FlagSeverity, &f.FlagStatus,
			&f.ViolationsCount, &f.AutoFlagged, &f.RequiresManualReview, &f.CreatedAt,
		); err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}
