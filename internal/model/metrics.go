package model

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel summarizes a submission's accumulated violations.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// SecurityMetrics is the single shared mutable row per submission: cumulative
// counters plus the derived risk score/level. risk_score never decreases and
// is_flagged_for_review only ever transitions false→true within a session.
type SecurityMetrics struct {
	SubmissionID       uuid.UUID `json:"submission_id"`
	TabSwitches        int       `json:"tab_switches"`
	ScreenLocks        int       `json:"screen_locks"`
	WindowBlurEvents   int       `json:"window_blur_events"`
	CopyAttempts       int       `json:"copy_attempts"`
	PasteAttempts      int       `json:"paste_attempts"`
	ZoomChanges        int       `json:"zoom_changes"`
	ViolationCount     int       `json:"violation_count"`
	RiskScore          int       `json:"risk_score"`
	RiskLevel          RiskLevel `json:"risk_level"`
	IsFlaggedForReview bool      `json:"is_flagged_for_review"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ZeroMetrics returns the default metrics row reported for a submission that
// has no recorded activity yet.
func ZeroMetrics(submissionID uuid.UUID) *SecurityMetrics {
	return &SecurityMetrics{
		SubmissionID: submissionID,
		RiskLevel:    RiskLow,
	}
}

// MetricsReport is the response of GET /monitoring/metrics/:submission_id.
type MetricsReport struct {
	Metrics      *SecurityMetrics  `json:"metrics"`
	RecentEvents []MonitoringEvent `json:"recentEvents"`
	Violations   []Violation       `json:"violations"`
	Flags        []CheatingFlag    `json:"flags"`
	Summary      MetricsSummary    `json:"summary"`
}

// MetricsSummary is the at-a-glance block of the metrics report.
type MetricsSummary struct {
	TotalEvents      int       `json:"totalEvents"`
	TotalViolations  int       `json:"totalViolations"`
	RiskScore        int       `json:"riskScore"`
	RiskLevel        RiskLevel `json:"riskLevel"`
	FlaggedForReview bool      `json:"flaggedForReview"`
	Terminated       bool      `json:"terminated"`
}
