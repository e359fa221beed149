package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examsentry/integrity-backend/internal/model"
)

// SubmissionRepository handles exam submission data access.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

const submissionColumns = `id, exam_id, student_id, status, started_at, submitted_at, scores`

func scanSubmission(row pgx.Row) (*model.Submission, error) {
	s := &model.Submission{}
	err := row.Scan(&s.ID, &s.ExamID, &s.StudentID, &s.Status, &s.StartedAt, &s.SubmittedAt, &s.Scores)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a submission by id.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	return scanSubmission(r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id))
}

// GetInProgress retrieves the in-progress submission for an exam-student
// pair, if one exists.
func (r *SubmissionRepository) GetInProgress(ctx context.Context, examID uuid.UUID, studentID int) (*model.Submission, error) {
	return scanSubmission(r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+`
		 FROM submissions
		 WHERE exam_id = $1 AND student_id = $2 AND status = $3`,
		examID, studentID, model.SubmissionStatusInProgress))
}

// GetByExamStudent retrieves the submission for an exam-student pair
// regardless of status. The unique constraint guarantees at most one row.
func (r *SubmissionRepository) GetByExamStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.Submission, error) {
	return scanSubmission(r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+`
		 FROM submissions
		 WHERE exam_id = $1 AND student_id = $2`,
		examID, studentID))
}

// Create starts a new in-progress submission at session start. The unique
// (exam_id, student_id) constraint makes concurrent starts collapse onto the
// existing row.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO submissions (exam_id, student_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (exam_id, student_id) DO NOTHING
		 RETURNING id, started_at`,
		s.ExamID, s.StudentID, model.SubmissionStatusInProgress,
	).Scan(&s.ID, &s.StartedAt)
}

// Terminate marks a submission as terminated. Only the escalation engine
// calls this; the status is terminal.
func (r *SubmissionRepository) Terminate(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE submissions
		 SET status = $1, submitted_at = NOW()
		 WHERE id = $2 AND status = $3`,
		model.SubmissionStatusTerminated, id, model.SubmissionStatusInProgress)
	return err
}
