package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventCategory groups monitoring events on the audit trail.
type EventCategory string

const (
	EventCategorySecurity   EventCategory = "security"
	EventCategoryViolation  EventCategory = "violation"
	EventCategoryNavigation EventCategory = "navigation"
	EventCategoryCustom     EventCategory = "custom"
)

// EventSeverity grades monitoring events.
type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityCritical EventSeverity = "critical"
)

// Canonical event types reported by the exam client or synthesized by the
// violation classifier. The counters in SecurityMetrics are keyed off these.
const (
	EventTabSwitch            = "tab_switch"
	EventWindowBlur           = "window_blur"
	EventWindowFocus          = "window_focus"
	EventScreenLocked         = "screen_locked"
	EventScreenUnlocked       = "screen_unlocked"
	EventCopyAttempt          = "copy_attempt"
	EventPasteAttempt         = "paste_attempt"
	EventZoomChange           = "zoom_change"
	EventVMDetected           = "vm_detected"
	EventMultiMonitorDetected = "multi_monitor_detected"
	EventSuspiciousActivity   = "suspicious_activity"
	EventCustom               = "custom_event"
)

// MonitoringEvent is one immutable row of the audit trail. It is never
// updated or deleted; created_at is server-assigned and authoritative for
// ordering, the client timestamp is descriptive metadata only.
type MonitoringEvent struct {
	ID               int64           `json:"id"`
	SubmissionID     uuid.UUID       `json:"submission_id"`
	ExamID           uuid.UUID       `json:"exam_id"`
	StudentID        int             `json:"student_id"`
	EventType        string          `json:"event_type"`
	EventCategory    EventCategory   `json:"event_category"`
	Severity         EventSeverity   `json:"severity"`
	EventMessage     string          `json:"event_message,omitempty"`
	EventData        json.RawMessage `json:"event_data,omitempty"`
	DurationMs       *int64          `json:"duration_ms,omitempty"`
	QuestionID       *string         `json:"question_id,omitempty"`
	SectionID        *string         `json:"section_id,omitempty"`
	IPAddress        string          `json:"ip_address,omitempty"`
	UserAgent        string          `json:"user_agent,omitempty"`
	BrowserInfo      json.RawMessage `json:"browser_info,omitempty"`
	ScreenResolution string          `json:"screen_resolution,omitempty"`
	AppVersion       string          `json:"app_version,omitempty"`
	OSPlatform       string          `json:"os_platform,omitempty"`
	IsVM             bool            `json:"is_vm"`
	VMDetails        json.RawMessage `json:"vm_details,omitempty"`
	MonitorCount     int             `json:"monitor_count"`
	EventTimestamp   *time.Time      `json:"event_timestamp,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// LogEventRequest is the payload of POST /monitoring/log-event.
// SubmissionID may be omitted when ExamID+StudentID resolve an in-progress
// submission. EventType is always required.
type LogEventRequest struct {
	SubmissionID     *uuid.UUID      `json:"submissionId" binding:"omitempty"`
	ExamID           *uuid.UUID      `json:"examId" binding:"omitempty"`
	StudentID        *int            `json:"studentId" binding:"omitempty"`
	EventType        string          `json:"eventType" binding:"required,min=1,max=64"`
	EventCategory    string          `json:"eventCategory" binding:"omitempty,oneof=security violation navigation custom"`
	Severity         string          `json:"severity" binding:"omitempty,oneof=info warning critical"`
	EventMessage     string          `json:"eventMessage" binding:"omitempty,max=1024"`
	EventData        json.RawMessage `json:"eventData" binding:"omitempty"`
	DurationMs       *int64          `json:"durationMs" binding:"omitempty,min=0"`
	QuestionID       *string         `json:"questionId" binding:"omitempty"`
	SectionID        *string         `json:"sectionId" binding:"omitempty"`
	IPAddress        string          `json:"ipAddress" binding:"omitempty,max=64"`
	UserAgent        string          `json:"userAgent" binding:"omitempty,max=512"`
	BrowserInfo      json.RawMessage `json:"browserInfo" binding:"omitempty"`
	ScreenResolution string          `json:"screenResolution" binding:"omitempty,max=32"`
	AppVersion       string          `json:"appVersion" binding:"omitempty,max=64"`
	OSPlatform       string          `json:"osPlatform" binding:"omitempty,max=64"`
	IsVM             bool            `json:"isVm"`
	VMDetails        json.RawMessage `json:"vmDetails" binding:"omitempty"`
	MonitorCount     *int            `json:"monitorCount" binding:"omitempty,min=1"`
	EventTimestamp   *time.Time      `json:"timestamp" binding:"omitempty"`
}

// LogEventResponse acknowledges an accepted monitoring event.
type LogEventResponse struct {
	Success bool   `json:"success"`
	LogID   int64  `json:"logId"`
	Message string `json:"message"`
}
