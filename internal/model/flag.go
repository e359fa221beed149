package model

import (
	"time"

	"github.com/google/uuid"
)

// FlagStatus tracks the review lifecycle of a cheating flag. The automated
// path only ever creates PENDING flags; reviewers move them on out-of-band.
type FlagStatus string

const (
	FlagStatusPending   FlagStatus = "pending"
	FlagStatusReviewed  FlagStatus = "reviewed"
	FlagStatusDismissed FlagStatus = "dismissed"
)

// CheatingFlag is created once when a submission crosses the terminate
// threshold. At most one pending flag exists per submission.
type CheatingFlag struct {
	ID                   int64      `json:"id"`
	SubmissionID         uuid.UUID  `json:"submission_id"`
	FlagReason           string     `json:"flag_reason"`
	FlagSeverity         string     `json:"flag_severity"`
	FlagStatus           FlagStatus `json:"flag_status"`
	ViolationsCount      int        `json:"violations_count"`
	AutoFlagged          bool       `json:"auto_flagged"`
	RequiresManualReview bool       `json:"requires_manual_review"`
	CreatedAt            time.Time  `json:"created_at"`
}
