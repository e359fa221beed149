package policy

import (
	"testing"

	"github.com/examsentry/integrity-backend/internal/model"
)

func defaults() Thresholds {
	return Thresholds{
		Flag:             5,
		Terminate:        10,
		RiskPerViolation: 15,
		RiskMediumAt:     5,
		RiskHighAt:       7,
		RiskCriticalAt:   10,
	}
}

func TestDecideBoundaries(t *testing.T) {
	th := defaults()

	tests := []struct {
		count int
		want  Action
	}{
		{0, ActionContinue},
		{4, ActionContinue},
		{5, ActionReviewRequired},
		{9, ActionReviewRequired},
		{10, ActionTerminate},
		{11, ActionTerminate},
		{100, ActionTerminate},
	}

	for _, tt := range tests {
		if got := Decide(tt.count, th); got != tt.want {
			t.Errorf("Decide(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}

func TestDecideCustomThresholds(t *testing.T) {
	th := defaults()
	th.Flag = 3
	th.Terminate = 6

	if got := Decide(3, th); got != ActionReviewRequired {
		t.Errorf("Decide(3) = %q, want review_required", got)
	}
	if got := Decide(6, th); got != ActionTerminate {
		t.Errorf("Decide(6) = %q, want terminate", got)
	}
}

func TestRiskScore(t *testing.T) {
	th := defaults()

	tests := []struct {
		count int
		want  int
	}{
		{0, 0},
		{1, 15},
		{5, 75},
		{6, 90},
		{7, 100}, // 105 capped
		{10, 100},
		{1000, 100},
	}

	for _, tt := range tests {
		if got := RiskScore(tt.count, th); got != tt.want {
			t.Errorf("RiskScore(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestRiskLevel(t *testing.T) {
	th := defaults()

	tests := []struct {
		count int
		want  model.RiskLevel
	}{
		{0, model.RiskLow},
		{4, model.RiskLow},
		{5, model.RiskMedium},
		{6, model.RiskMedium},
		{7, model.RiskHigh},
		{9, model.RiskHigh},
		{10, model.RiskCritical},
	}

	for _, tt := range tests {
		if got := RiskLevel(tt.count, th); got != tt.want {
			t.Errorf("RiskLevel(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}

// TestEscalationScenario walks the documented escalation path: four
// violations stay quiet, the fifth requires review, the tenth terminates.
func TestEscalationScenario(t *testing.T) {
	th := defaults()

	for n := 1; n <= 4; n++ {
		if got := Decide(n, th); got != ActionContinue {
			t.Fatalf("violation %d: action = %q, want continue", n, got)
		}
	}

	if got := Decide(5, th); got != ActionReviewRequired {
		t.Fatalf("violation 5: action = %q, want review_required", got)
	}
	if got := RiskScore(5, th); got != 75 {
		t.Fatalf("violation 5: risk score = %d, want 75", got)
	}
	if got := RiskLevel(5, th); got != model.RiskMedium {
		t.Fatalf("violation 5: risk level = %q, want medium", got)
	}

	if got := Decide(10, th); got != ActionTerminate {
		t.Fatalf("violation 10: action = %q, want terminate", got)
	}
	if got := RiskScore(10, th); got != 100 {
		t.Fatalf("violation 10: risk score = %d, want 100", got)
	}
	if got := RiskLevel(10, th); got != model.RiskCritical {
		t.Fatalf("violation 10: risk level = %q, want critical", got)
	}
}
