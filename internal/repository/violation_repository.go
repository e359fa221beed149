package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examsentry/integrity-backend/internal/model"
)

// ViolationRepository handles classified violation records. The automated
// path only ever appends; is_reviewed belongs to the human reviewer.
type ViolationRepository struct {
	pool *pgxpool.Pool
}

// NewViolationRepository creates a new ViolationRepository.
func NewViolationRepository(pool *pgxpool.Pool) *ViolationRepository {
	return &ViolationRepository{pool: pool}
}

// Insert appends a violation record.
func (r *ViolationRepository) Insert(ctx context.Context, v *model.Violation) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO violations (
			submission_id, violation_type, severity, message, details, violation_timestamp
		 ) VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING id, created_at`,
		v.SubmissionID, v.ViolationType, v.Severity, v.Message, v.Details, v.ViolationTimestamp,
	).Scan(&v.ID, &v.CreatedAt)
}

// ListBySubmission returns all violations for a submission, newest first.
func (r *ViolationRepository) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]model.Violation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, submission_id, violation_type, severity, message, details,
			violation_timestamp, is_reviewed, created_at
		 FROM violations
		 WHERE submission_id = $1
		 ORDER BY created_at DESC, id DESC`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var violations []model.Violation
	for rows.Next() {
		var v model.Violation
		if err := rows.Scan(
			&v.ID, &v.SubmissionID, &v.ViolationType, &v.Severity, &v.Message,
			&v.Details, &v.ViolationTimestamp, &v.IsReviewed, &v.CreatedAt,
		); err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}

// CountBySubmission returns the cumulative violation count for a submission.
func (r *ViolationRepository) CountBySubmission(ctx context.Context, submissionID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM violations WHERE submission_id = $1`, submissionID,
	).Scan(&n)
	return n, err
}
