package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus enumerates exam submission states. TERMINATED is terminal
// and only ever set by the escalation engine.
type SubmissionStatus string

const (
	SubmissionStatusInProgress SubmissionStatus = "in_progress"
	SubmissionStatusSubmitted  SubmissionStatus = "submitted"
	SubmissionStatusGraded     SubmissionStatus = "graded"
	SubmissionStatusTerminated SubmissionStatus = "terminated"
)

// Submission represents one student's attempt instance at a specific exam.
type Submission struct {
	ID          uuid.UUID        `json:"id"`
	ExamID      uuid.UUID        `json:"exam_id"`
	StudentID   int              `json:"student_id"`
	Status      SubmissionStatus `json:"status"`
	StartedAt   time.Time        `json:"started_at"`
	SubmittedAt *time.Time       `json:"submitted_at,omitempty"`
	Scores      json.RawMessage  `json:"scores,omitempty"`
}
