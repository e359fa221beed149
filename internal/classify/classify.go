// Package classify maps raw exam-client violation reports onto canonical
// violation types, event types, and severities. The mapping is total: every
// input string, including garbage, yields a defined output.
package classify

import (
	"strings"

	"github.com/examsentry/integrity-backend/internal/model"
)

// Classification is the canonical form of a client-reported violation.
type Classification struct {
	ViolationType string
	EventType     string
	Severity      model.EventSeverity
}

// violationTable maps the exam client's violation type vocabulary onto the
// canonical violation type and the event type recorded on the audit trail.
var violationTable = map[string]Classification{
	"FORBIDDEN_PROCESS": {
		ViolationType: model.ViolationForbiddenProcess,
		EventType:     model.EventSuspiciousActivity,
	},
	"MULTIPLE_DISPLAYS": {
		ViolationType: model.ViolationMultiMonitor,
		EventType:     model.EventMultiMonitorDetected,
	},
	"SCREEN_LOCK": {
		ViolationType: model.ViolationScreenLock,
		EventType:     model.EventScreenLocked,
	},
	"WINDOW_BLUR": {
		ViolationType: model.ViolationTabSwitching,
		EventType:     model.EventWindowBlur,
	},
	"VM_DETECTED": {
		ViolationType: model.ViolationVMUsage,
		EventType:     model.EventVMDetected,
	},
	"LOW_DISK_SPACE": {
		ViolationType: model.ViolationRecordingFailure,
		EventType:     model.EventCustom,
	},
	"MONITORING_FAILURE": {
		ViolationType: model.ViolationMonitoringFailure,
		EventType:     model.EventCustom,
	},
}

// Violation classifies a client-reported violation type. Unrecognized input
// falls back to suspicious_behavior / suspicious_activity.
func Violation(clientType string) Classification {
	if c, ok := violationTable[clientType]; ok {
		return c
	}
	return Classification{
		ViolationType: model.ViolationSuspicious,
		EventType:     model.EventSuspiciousActivity,
	}
}

// Severity maps the client's low/medium/high vocabulary onto the canonical
// severity scale. Unrecognized input defaults to warning.
func Severity(clientSeverity string) model.EventSeverity {
	switch strings.ToLower(clientSeverity) {
	case "low":
		return model.SeverityInfo
	case "medium":
		return model.SeverityWarning
	case "high":
		return model.SeverityCritical
	default:
		return model.SeverityWarning
	}
}
