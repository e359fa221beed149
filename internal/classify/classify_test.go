package classify

import (
	"testing"

	"github.com/examsentry/integrity-backend/internal/model"
)

func TestViolationMapping(t *testing.T) {
	tests := []struct {
		clientType    string
		wantViolation string
		wantEvent     string
	}{
		{"FORBIDDEN_PROCESS", model.ViolationForbiddenProcess, model.EventSuspiciousActivity},
		{"MULTIPLE_DISPLAYS", model.ViolationMultiMonitor, model.EventMultiMonitorDetected},
		{"SCREEN_LOCK", model.ViolationScreenLock, model.EventScreenLocked},
		{"WINDOW_BLUR", model.ViolationTabSwitching, model.EventWindowBlur},
		{"VM_DETECTED", model.ViolationVMUsage, model.EventVMDetected},
		{"LOW_DISK_SPACE", model.ViolationRecordingFailure, model.EventCustom},
		{"MONITORING_FAILURE", model.ViolationMonitoringFailure, model.EventCustom},
	}

	for _, tt := range tests {
		t.Run(tt.clientType, func(t *testing.T) {
			got := Violation(tt.clientType)
			if got.ViolationType != tt.wantViolation {
				t.Errorf("ViolationType = %q, want %q", got.ViolationType, tt.wantViolation)
			}
			if got.EventType != tt.wantEvent {
				t.Errorf("EventType = %q, want %q", got.EventType, tt.wantEvent)
			}
		})
	}
}

func TestViolationIsTotal(t *testing.T) {
	// Any string input must classify without panicking and land on the
	// suspicious_behavior fallback.
	inputs := []string{"", "garbage", "forbidden_process", "FORBIDDEN_PROCESS ", "🤖", "DROP TABLE violations;"}

	for _, in := range inputs {
		got := Violation(in)
		if got.ViolationType != model.ViolationSuspicious {
			t.Errorf("Violation(%q).ViolationType = %q, want %q", in, got.ViolationType, model.ViolationSuspicious)
		}
		if got.EventType != model.EventSuspiciousActivity {
			t.Errorf("Violation(%q).EventType = %q, want %q", in, got.EventType, model.EventSuspiciousActivity)
		}
	}
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want model.EventSeverity
	}{
		{"low", model.SeverityInfo},
		{"medium", model.SeverityWarning},
		{"high", model.SeverityCritical},
		{"HIGH", model.SeverityCritical},
		{"", model.SeverityWarning},
		{"critical", model.SeverityWarning},
		{"nonsense", model.SeverityWarning},
	}

	for _, tt := range tests {
		if got := Severity(tt.in); got != tt.want {
			t.Errorf("Severity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
