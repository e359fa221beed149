package model

import (
	"time"

	"github.com/google/uuid"
)

// InviteToken gates admission to an exam that requires an invite. The wire
// format of a token is "<code_prefix>.<secret>"; only a bcrypt hash of the
// secret is stored, so a leaked database cannot be replayed.
type InviteToken struct {
	ID         int64      `json:"id"`
	ExamID     uuid.UUID  `json:"exam_id"`
	CodePrefix string     `json:"code_prefix"`
	SecretHash []byte     `json:"-"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Revoked    bool       `json:"revoked"`
	MaxUses    int        `json:"max_uses"` // 0 = unlimited
	UseCount   int        `json:"use_count"`
	CreatedAt  time.Time  `json:"created_at"`
}
