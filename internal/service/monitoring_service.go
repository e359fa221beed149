package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examsentry/integrity-backend/internal/classify"
	"github.com/examsentry/integrity-backend/internal/config"
	"github.com/examsentry/integrity-backend/internal/model"
	"github.com/examsentry/integrity-backend/internal/policy"
	"github.com/examsentry/integrity-backend/internal/repository"
)

const recentEventsLimit = 50

// MonitoringService is the ingestion and escalation core: it accepts
// monitoring events from the exam client, classifies violations, keeps the
// per-submission metrics current, and applies the escalation policy.
//
// The durable audit write always happens first. Everything downstream of it
// (metrics recompute, flag creation, live fanout) degrades to logging — a
// derived computation failing must never lose the audit trail.
type MonitoringService struct {
	submissionRepo *repository.SubmissionRepository
	eventRepo      *repository.EventRepository
	violationRepo  *repository.ViolationRepository
	metricsRepo    *repository.MetricsRepository
	flagRepo       *repository.FlagRepository
	rdb            *redis.Client
	thresholds     policy.Thresholds
	log            zerolog.Logger
}

// NewMonitoringService creates a new MonitoringService. rdb may be nil, in
// which case the async recompute queue and live fanout are disabled and
// metrics are recomputed inline.
func NewMonitoringService(
	submissionRepo *repository.SubmissionRepository,
	eventRepo *repository.EventRepository,
	violationRepo *repository.ViolationRepository,
	metricsRepo *repository.MetricsRepository,
	flagRepo *repository.FlagRepository,
	rdb *redis.Client,
	thresholds policy.Thresholds,
	log zerolog.Logger,
) *MonitoringService {
	return &MonitoringService{
		submissionRepo: submissionRepo,
		eventRepo:      eventRepo,
		violationRepo:  violationRepo,
		metricsRepo:    metricsRepo,
		flagRepo:       flagRepo,
		rdb:            rdb,
		thresholds:     thresholds,
		log:            log.With().Str("component", "monitoring_service").Logger(),
	}
}

// LogEvent validates and persists one monitoring event, then schedules the
// metrics recompute asynchronously. The event row is written before any
// scoring runs; a recompute failure degrades to a log line.
func (s *MonitoringService) LogEvent(ctx context.Context, req *model.LogEventRequest, clientIP, userAgent string) (*model.MonitoringEvent, error) {
	sub, err := s.resolveSubmission(ctx, req.SubmissionID, req.ExamID, req.StudentID)
	if err != nil {
		return nil, err
	}

	event := &model.MonitoringEvent{
		SubmissionID:     sub.ID,
		ExamID:           sub.ExamID,
		StudentID:        sub.StudentID,
		EventType:        req.EventType,
		EventCategory:    model.EventCategorySecurity,
		Severity:         model.SeverityInfo,
		EventMessage:     req.EventMessage,
		EventData:        req.EventData,
		DurationMs:       req.DurationMs,
		QuestionID:       req.QuestionID,
		SectionID:        req.SectionID,
		IPAddress:        req.IPAddress,
		UserAgent:        req.UserAgent,
		BrowserInfo:      req.BrowserInfo,
		ScreenResolution: req.ScreenResolution,
		AppVersion:       req.AppVersion,
		OSPlatform:       req.OSPlatform,
		IsVM:             req.IsVM,
		VMDetails:        req.VMDetails,
		MonitorCount:     1,
		EventTimestamp:   req.EventTimestamp,
	}
	if req.EventCategory != "" {
		event.EventCategory = model.EventCategory(req.EventCategory)
	}
	if req.Severity != "" {
		event.Severity = model.EventSeverity(req.Severity)
	}
	if req.MonitorCount != nil {
		event.MonitorCount = *req.MonitorCount
	}
	if event.IPAddress == "" {
		event.IPAddress = clientIP
	}
	if event.UserAgent == "" {
		event.UserAgent = userAgent
	}

	// The audit write. Nothing below this line may fail the request.
	if err := s.eventRepo.Insert(ctx, event); err != nil {
		return nil, fmt.Errorf("insert monitoring event: %w", err)
	}

	s.scheduleRecompute(ctx, sub.ID)
	s.publishEvent(ctx, event)

	return event, nil
}

// ViolationOutcome is the result of processing one strict-mode violation.
type ViolationOutcome struct {
	Action         policy.Action
	ViolationCount int
	Flagged        bool
	FlagCreated    bool
	Terminated     bool
	Message        string
}

// ReportViolation handles a strict-mode violation from the exam client:
// classify, persist the audit event and the violation record, recompute the
// metrics synchronously (the client needs the action), and escalate.
func (s *MonitoringService) ReportViolation(ctx context.Context, req *model.StrictModeViolationRequest, clientIP, userAgent string) (*ViolationOutcome, error) {
	sub, err := s.submissionRepo.GetInProgress(ctx, *req.ExamID, *req.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("resolve submission: %w", err)
	}

	cls := classify.Violation(req.ViolationType)
	severity := classify.Severity(req.Severity)

	event := &model.MonitoringEvent{
		SubmissionID:   sub.ID,
		ExamID:         sub.ExamID,
		StudentID:      sub.StudentID,
		EventType:      cls.EventType,
		EventCategory:  model.EventCategoryViolation,
		Severity:       severity,
		EventMessage:   fmt.Sprintf("strict-mode violation: %s", cls.ViolationType),
		EventData:      req.Details,
		IPAddress:      clientIP,
		UserAgent:      userAgent,
		MonitorCount:   1,
		EventTimestamp: req.Timestamp,
	}
	if err := s.eventRepo.Insert(ctx, event); err != nil {
		return nil, fmt.Errorf("insert monitoring event: %w", err)
	}

	violation := &model.Violation{
		SubmissionID:       sub.ID,
		ViolationType:      cls.ViolationType,
		Severity:           severity,
		Message:            event.EventMessage,
		Details:            req.Details,
		ViolationTimestamp: req.Timestamp,
	}
	if err := s.violationRepo.Insert(ctx, violation); err != nil {
		return nil, fmt.Errorf("insert violation: %w", err)
	}

	// The violation is durably logged; escalation failures from here on are
	// reported but never roll back the audit trail.
	outcome := s.escalate(ctx, sub, violation)

	s.publishEvent(ctx, event)

	return outcome, nil
}

// escalate recomputes the metrics and applies the threshold policy.
func (s *MonitoringService) escalate(ctx context.Context, sub *model.Submission, violation *model.Violation) *ViolationOutcome {
	outcome := &ViolationOutcome{Message: "Violation recorded"}

	metrics, err := s.metricsRepo.Recalculate(ctx, sub.ID, s.thresholds)
	if err != nil {
		s.log.Error().Err(err).Str("submission_id", sub.ID.String()).
			Msg("Metrics recompute failed after violation write")

		// Fall back to a direct count so the client still gets a decision.
		count, countErr := s.violationRepo.CountBySubmission(ctx, sub.ID)
		if countErr != nil {
			s.log.Error().Err(countErr).Str("submission_id", sub.ID.String()).
				Msg("Violation count fallback failed")
			outcome.Action = policy.ActionContinue
			outcome.Message = "Violation recorded; scoring temporarily unavailable"
			return outcome
		}
		outcome.ViolationCount = count
	} else {
		outcome.ViolationCount = metrics.ViolationCount
		outcome.Flagged = metrics.IsFlaggedForReview
	}

	outcome.Action = policy.Decide(outcome.ViolationCount, s.thresholds)

	switch outcome.Action {
	case policy.ActionReviewRequired:
		outcome.Flagged = true
		outcome.Message = "Submission flagged for review"

	case policy.ActionTerminate:
		outcome.Flagged = true
		outcome.Message = "Violation threshold exceeded, session must be terminated"

		flag := &model.CheatingFlag{
			SubmissionID:         sub.ID,
			FlagReason:           fmt.Sprintf("Automated: %d violations accumulated (latest: %s)", outcome.ViolationCount, violation.ViolationType),
			FlagSeverity:         string(model.SeverityCritical),
			ViolationsCount:      outcome.ViolationCount,
			AutoFlagged:          true,
			RequiresManualReview: true,
		}
		created, err := s.flagRepo.CreatePendingOnce(ctx, flag)
		if err != nil {
			s.log.Error().Err(err).Str("submission_id", sub.ID.String()).
				Msg("Cheating flag creation failed")
			outcome.Message = "Termination required; flag creation failed and was logged"
		}
		outcome.FlagCreated = created

		if err := s.submissionRepo.Terminate(ctx, sub.ID); err != nil {
			s.log.Error().Err(err).Str("submission_id", sub.ID.String()).
				Msg("Submission termination failed")
		} else {
			outcome.Terminated = true
		}
	}

	return outcome
}

// Report assembles the metrics view for a submission. A submission with no
// recorded activity yields zero-valued metrics and empty collections.
func (s *MonitoringService) Report(ctx context.Context, submissionID uuid.UUID) (*model.MetricsReport, error) {
	metrics, err := s.metricsRepo.Get(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("get metrics: %w", err)
	}

	events, err := s.eventRepo.ListRecent(ctx, submissionID, recentEventsLimit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	violations, err := s.violationRepo.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	if violations == nil {
		violations = []model.Violation{}
	}

	flags, err := s.flagRepo.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("list flags: %w", err)
	}
	if flags == nil {
		flags = []model.CheatingFlag{}
	}

	totalEvents, err := s.eventRepo.CountBySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	terminated := false
	if sub, err := s.submissionRepo.GetByID(ctx, submissionID); err == nil {
		terminated = sub.Status == model.SubmissionStatusTerminated
	}

	return &model.MetricsReport{
		Metrics:      metrics,
		RecentEvents: events,
		Violations:   violations,
		Flags:        flags,
		Summary: model.MetricsSummary{
			TotalEvents:      totalEvents,
			TotalViolations:  metrics.ViolationCount,
			RiskScore:        metrics.RiskScore,
			RiskLevel:        metrics.RiskLevel,
			FlaggedForReview: metrics.IsFlaggedForReview,
			Terminated:       terminated,
		},
	}, nil
}

// resolveSubmission finds the submission an event belongs to, either directly
// by id or through the (exam, student) in-progress lookup.
func (s *MonitoringService) resolveSubmission(ctx context.Context, submissionID, examID *uuid.UUID, studentID *int) (*model.Submission, error) {
	if submissionID != nil {
		sub, err := s.submissionRepo.GetByID(ctx, *submissionID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrSubmissionNotFound
			}
			return nil, fmt.Errorf("get submission: %w", err)
		}
		return sub, nil
	}

	// No id and no (exam, student) pair is a malformed request, not a miss.
	if examID == nil || studentID == nil {
		return nil, ErrMissingSubmissionRef
	}

	sub, err := s.submissionRepo.GetInProgress(ctx, *examID, *studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("get in-progress submission: %w", err)
	}
	return sub, nil
}

// scheduleRecompute hands the counter recompute to the metrics worker.
// Without a Redis backend it recomputes inline; either way a failure only
// logs — the event row is already durable.
func (s *MonitoringService) scheduleRecompute(ctx context.Context, submissionID uuid.UUID) {
	if s.rdb == nil {
		if _, err := s.metricsRepo.Recalculate(ctx, submissionID, s.thresholds); err != nil {
			s.log.Warn().Err(err).Str("submission_id", submissionID.String()).
				Msg("Inline metrics recompute failed")
		}
		return
	}

	if err := s.rdb.RPush(ctx, config.WorkerKey.MetricsRecomputeQueue, submissionID.String()).Err(); err != nil {
		s.log.Warn().Err(err).Str("submission_id", submissionID.String()).
			Msg("Failed to enqueue metrics recompute")
	}
}

// liveEvent is the compact fanout payload forwarded to proctor streams.
type liveEvent struct {
	Type         string    `json:"type"`
	SubmissionID uuid.UUID `json:"submission_id"`
	EventType    string    `json:"event_type"`
	Category     string    `json:"category"`
	Severity     string    `json:"severity"`
	Message      string    `json:"message,omitempty"`
	CreatedAt    string    `json:"created_at"`
}

// publishEvent fans the event out to any attached proctor stream. Best
// effort only.
func (s *MonitoringService) publishEvent(ctx context.Context, event *model.MonitoringEvent) {
	if s.rdb == nil {
		return
	}

	payload, err := json.Marshal(liveEvent{
		Type:         "monitoring_event",
		SubmissionID: event.SubmissionID,
		EventType:    event.EventType,
		Category:     string(event.EventCategory),
		Severity:     string(event.Severity),
		Message:      event.EventMessage,
		CreatedAt:    event.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return
	}

	channel := config.CacheKey.SubmissionEventChannel(event.SubmissionID.String())
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Debug().Err(err).Str("submission_id", event.SubmissionID.String()).
			Msg("Live event publish failed")
	}
}
