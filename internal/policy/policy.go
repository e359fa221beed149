// Package policy is the escalation state machine: a pure mapping from a
// submission's cumulative violation count to the action the exam client must
// enforce. Transitions are level-triggered — the decision is re-evaluated
// from the total count after every new violation, so it is idempotent and
// independent of arrival order.
package policy

import (
	"github.com/examsentry/integrity-backend/internal/config"
	"github.com/examsentry/integrity-backend/internal/model"
)

// Action is the escalation decision returned to the exam client.
type Action string

const (
	ActionContinue       Action = "continue"
	ActionReviewRequired Action = "review_required"
	ActionTerminate      Action = "terminate"
)

// Thresholds carries the operator-tunable escalation constants.
type Thresholds struct {
	Flag             int // violations at which review is required
	Terminate        int // violations at which the session is ended
	RiskPerViolation int // risk score contributed by each violation
	RiskMediumAt     int
	RiskHighAt       int
	RiskCriticalAt   int
}

// FromConfig extracts the escalation thresholds from application config.
func FromConfig(cfg *config.Config) Thresholds {
	return Thresholds{
		Flag:             cfg.FlagThreshold,
		Terminate:        cfg.TerminateThreshold,
		RiskPerViolation: cfg.RiskPerViolation,
		RiskMediumAt:     cfg.RiskMediumAt,
		RiskHighAt:       cfg.RiskHighAt,
		RiskCriticalAt:   cfg.RiskCriticalAt,
	}
}

// Decide maps a cumulative violation count to an escalation action.
func Decide(violationCount int, th Thresholds) Action {
	switch {
	case violationCount >= th.Terminate:
		return ActionTerminate
	case violationCount >= th.Flag:
		return ActionReviewRequired
	default:
		return ActionContinue
	}
}

// RiskScore computes the derived risk score for a violation count, capped
// at 100. Because the count is monotonic, so is the score.
func RiskScore(violationCount int, th Thresholds) int {
	score := violationCount * th.RiskPerViolation
	if score > 100 {
		return 100
	}
	return score
}

// RiskLevel buckets a violation count into the reporting risk level.
func RiskLevel(violationCount int, th Thresholds) model.RiskLevel {
	switch {
	case violationCount >= th.RiskCriticalAt:
		return model.RiskCritical
	case violationCount >= th.RiskHighAt:
		return model.RiskHigh
	case violationCount >= th.RiskMediumAt:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
