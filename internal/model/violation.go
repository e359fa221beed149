package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Canonical violation types produced by the classifier. Every client input,
// recognized or not, maps onto exactly one of these.
const (
	ViolationForbiddenProcess  = "forbidden_process_detected"
	ViolationMultiMonitor      = "multi_monitor_usage"
	ViolationScreenLock        = "prolonged_screen_lock"
	ViolationTabSwitching      = "excessive_tab_switching"
	ViolationVMUsage           = "vm_usage_detected"
	ViolationRecordingFailure  = "recording_failure"
	ViolationMonitoringFailure = "monitoring_app_failure"
	ViolationSuspicious        = "suspicious_behavior"
)

// Violation is a classified, policy-relevant security event, derived from a
// monitoring event. Rows accumulate monotonically; the automated path never
// deletes them. is_reviewed is flipped later by a human reviewer.
type Violation struct {
	ID                 int64           `json:"id"`
	SubmissionID       uuid.UUID       `json:"submission_id"`
	ViolationType      string          `json:"violation_type"`
	Severity           EventSeverity   `json:"severity"`
	Message            string          `json:"message,omitempty"`
	Details            json.RawMessage `json:"details,omitempty"`
	ViolationTimestamp *time.Time      `json:"violation_timestamp,omitempty"`
	IsReviewed         bool            `json:"is_reviewed"`
	CreatedAt          time.Time       `json:"created_at"`
}

// StrictModeViolationRequest is the payload of
// POST /monitoring/strict-mode-violation, sent by the desktop exam client.
type StrictModeViolationRequest struct {
	UserID        *int            `json:"userId" binding:"required"`
	ExamID        *uuid.UUID      `json:"quizId" binding:"required"`
	ViolationType string          `json:"violationType" binding:"required,min=1,max=64"`
	Details       json.RawMessage `json:"details" binding:"omitempty"`
	Timestamp     *time.Time      `json:"timestamp" binding:"omitempty"`
	// Severity is free-form: the classifier absorbs anything outside the
	// low/medium/high vocabulary, so the boundary never rejects it.
	Severity string `json:"severity" binding:"omitempty,max=16"`
}

// StrictModeViolationResponse tells the exam client how to react. Action is
// the escalation decision the client must enforce locally.
type StrictModeViolationResponse struct {
	Status         string `json:"status"`
	Logged         bool   `json:"logged"`
	Action         string `json:"action"`
	ViolationCount int    `json:"violationCount"`
	Message        string `json:"message"`
}
