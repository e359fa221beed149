package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examsentry/integrity-backend/internal/model"
)

// InviteRepository handles invite token data access.
type InviteRepository struct {
	pool *pgxpool.Pool
}

// NewInviteRepository creates a new InviteRepository.
func NewInviteRepository(pool *pgxpool.Pool) *InviteRepository {
	return &InviteRepository{pool: pool}
}

// GetByPrefix retrieves an invite token by its public code prefix.
func (r *InviteRepository) GetByPrefix(ctx context.Context, prefix string) (*model.InviteToken, error) {
	t := &model.InviteToken{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, code_prefix, secret_hash, expires_at, revoked,
			max_uses, use_count, created_at
		 FROM invite_tokens
		 WHERE code_prefix = $1`, prefix,
	).Scan(&t.ID, &t.ExamID, &t.CodePrefix, &t.SecretHash, &t.ExpiresAt,
		&t.Revoked, &t.MaxUses, &t.UseCount, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ConsumeUse atomically increments the token's use count, guarded by the
// max-use limit so two racing admissions cannot both take the last slot.
// Returns false when the limit is already exhausted.
func (r *InviteRepository) ConsumeUse(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invite_tokens
		 SET use_count = use_count + 1
		 WHERE id = $1 AND (max_uses = 0 OR use_count < max_uses)`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Create inserts a new invite token (used by the gen-invite tool).
func (r *InviteRepository) Create(ctx context.Context, examID uuid.UUID, t *model.InviteToken) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO invite_tokens (exam_id, code_prefix, secret_hash, expires_at, max_uses)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING id, created_at`,
		examID, t.CodePrefix, t.SecretHash, t.ExpiresAt, t.MaxUses,
	).Scan(&t.ID, &t.CreatedAt)
}
