package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
	ExamStatusArchived  ExamStatus = "ARCHIVED"
)

// StrictLevel is the exam-configured monitoring intensity consumed by the
// desktop exam client to decide local lockdown behavior.
type StrictLevel int

const (
	StrictLevelRelaxed StrictLevel = 1
	StrictLevelMedium  StrictLevel = 2
	StrictLevelStrict  StrictLevel = 3
)

// Exam represents an exam as seen by the integrity engine: admission
// configuration plus monitoring strictness. Question content lives in the
// authoring service and is out of scope here.
type Exam struct {
	ID             uuid.UUID   `json:"id"`
	Slug           string      `json:"slug"`
	Title          string      `json:"title"`
	Status         ExamStatus  `json:"status"`
	StartsAt       *time.Time  `json:"starts_at,omitempty"`
	EndsAt         *time.Time  `json:"ends_at,omitempty"`
	AllowedIPs     string      `json:"allowed_ips,omitempty"` // comma-separated allow-list, empty = unrestricted
	RequiresInvite bool        `json:"requires_invite"`
	StrictLevel    StrictLevel `json:"strict_level"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// ExecutionType is the lockdown profile the exam client enforces locally.
// It is derived from the exam's strict level and fails open to relaxed.
type ExecutionType struct {
	Type                StrictLevel `json:"type"`
	Proctoring          bool        `json:"proctoring"`
	LockScreen          bool        `json:"lockScreen"`
	PreventTabSwitching bool        `json:"preventTabSwitching"`
}

// ExecutionTypeFor maps a strict level to the client-facing lockdown profile.
func ExecutionTypeFor(level StrictLevel) ExecutionType {
	if level < StrictLevelRelaxed || level > StrictLevelStrict {
		level = StrictLevelRelaxed
	}
	return ExecutionType{
		Type:                level,
		Proctoring:          level >= StrictLevelMedium,
		LockScreen:          level >= StrictLevelStrict,
		PreventTabSwitching: level >= StrictLevelMedium,
	}
}

// ExamAccess is the reduced exam object returned to the desktop client after
// a successful admission check.
type ExamAccess struct {
	ID          uuid.UUID   `json:"id"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	StartsAt    *time.Time  `json:"starts_at,omitempty"`
	EndsAt      *time.Time  `json:"ends_at,omitempty"`
	StrictLevel StrictLevel `json:"strict_level"`
}
