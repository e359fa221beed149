package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/examsentry/integrity-backend/internal/clientip"
	"github.com/examsentry/integrity-backend/internal/model"
	"github.com/examsentry/integrity-backend/internal/repository"
)

// AccessService performs the pre-session admission checks. Admission is
// fail-closed; only the strictness-level lookup fails open so a transient
// read error cannot brick a legitimate session.
type AccessService struct {
	examRepo       *repository.ExamRepository
	inviteRepo     *repository.InviteRepository
	submissionRepo *repository.SubmissionRepository
	log            zerolog.Logger
}

// NewAccessService creates a new AccessService.
func NewAccessService(
	examRepo *repository.ExamRepository,
	inviteRepo *repository.InviteRepository,
	submissionRepo *repository.SubmissionRepository,
	log zerolog.Logger,
) *AccessService {
	return &AccessService{
		examRepo:       examRepo,
		inviteRepo:     inviteRepo,
		submissionRepo: submissionRepo,
		log:            log.With().Str("component", "access_service").Logger(),
	}
}

// Validate runs the ordered admission checks for an exam slug (first failure
// wins): existence → published → invite token → IP allow-list → time window.
// The time window is only enforced when enforceWindow is set — session starts
// are window-sensitive, a mid-exam revalidation is not.
func (s *AccessService) Validate(ctx context.Context, slug, inviteToken, clientIP string, enforceWindow bool) (*model.ExamAccess, error) {
	exam, _, err := s.admit(ctx, slug, inviteToken, clientIP, enforceWindow)
	if err != nil {
		return nil, err
	}
	return accessView(exam), nil
}

// StartSession admits the student and opens the in-progress submission,
// consuming one invite use when the exam requires an invite. Concurrent
// starts for the same (exam, student) converge on the existing submission.
func (s *AccessService) StartSession(ctx context.Context, slug, inviteToken, clientIP string, studentID int) (*model.Submission, *model.ExamAccess, error) {
	exam, invite, err := s.admit(ctx, slug, inviteToken, clientIP, true)
	if err != nil {
		return nil, nil, err
	}

	if invite != nil {
		consumed, err := s.inviteRepo.ConsumeUse(ctx, invite.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("consume invite use: %w", err)
		}
		if !consumed {
			return nil, nil, ErrInviteInvalid
		}
	}

	sub := &model.Submission{ExamID: exam.ID, StudentID: studentID}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The unique constraint swallowed the insert: this student
			// already has a submission for the exam. Resume it if it is
			// still open; a terminated or submitted session stays closed.
			existing, fetchErr := s.submissionRepo.GetByExamStudent(ctx, exam.ID, studentID)
			if fetchErr != nil {
				return nil, nil, fmt.Errorf("fetch existing submission: %w", fetchErr)
			}
			if resumeErr := resumable(existing); resumeErr != nil {
				return nil, nil, resumeErr
			}
			return existing, accessView(exam), nil
		}
		return nil, nil, fmt.Errorf("create submission: %w", err)
	}
	sub.Status = model.SubmissionStatusInProgress

	return sub, accessView(exam), nil
}

// resumable rejects a session start against a submission that has left the
// in-progress state. This is a business denial, not a fault: a terminated
// student retrying the start flow is an expected client path.
func resumable(sub *model.Submission) error {
	if sub.Status != model.SubmissionStatusInProgress {
		return ErrSubmissionClosed
	}
	return nil
}

// ExecutionType returns the lockdown profile for an exam. Any lookup failure
// falls back to the relaxed profile: monitoring strictness fails open even
// though admission fails closed.
func (s *AccessService) ExecutionType(ctx context.Context, examID uuid.UUID) model.ExecutionType {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).
			Msg("Execution type lookup failed, defaulting to relaxed")
		return model.ExecutionTypeFor(model.StrictLevelRelaxed)
	}
	return model.ExecutionTypeFor(exam.StrictLevel)
}

// admit performs the ordered checks and returns the exam plus the validated
// invite (nil when the exam does not require one).
func (s *AccessService) admit(ctx context.Context, slug, inviteToken, clientIP string, enforceWindow bool) (*model.Exam, *model.InviteToken, error) {
	exam, err := s.examRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrExamNotFound
		}
		return nil, nil, fmt.Errorf("get exam: %w", err)
	}

	if exam.Status != model.ExamStatusPublished {
		return nil, nil, ErrExamNotPublished
	}

	var invite *model.InviteToken
	if exam.RequiresInvite {
		invite, err = s.checkInvite(ctx, exam.ID, inviteToken)
		if err != nil {
			return nil, nil, err
		}
	}

	if !clientip.Allowed(clientIP, exam.AllowedIPs) {
		return nil, nil, &IPNotAllowedError{IP: clientIP}
	}

	if enforceWindow && !WithinWindow(time.Now(), exam.StartsAt, exam.EndsAt) {
		return nil, nil, ErrOutsideExamWindow
	}

	return exam, invite, nil
}

// checkInvite validates an invite token string ("prefix.secret") against the
// exam: bcrypt match, not expired, not revoked, under its use limit.
func (s *AccessService) checkInvite(ctx context.Context, examID uuid.UUID, token string) (*model.InviteToken, error) {
	if token == "" {
		return nil, ErrInviteRequired
	}
	prefix, secret, ok := strings.Cut(token, ".")
	if !ok || prefix == "" || secret == "" {
		return nil, ErrInviteInvalid
	}

	invite, err := s.inviteRepo.GetByPrefix(ctx, prefix)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteInvalid
		}
		return nil, fmt.Errorf("get invite token: %w", err)
	}

	if invite.ExamID != examID || invite.Revoked {
		return nil, ErrInviteInvalid
	}
	if invite.ExpiresAt != nil && time.Now().After(*invite.ExpiresAt) {
		return nil, ErrInviteInvalid
	}
	if invite.MaxUses > 0 && invite.UseCount >= invite.MaxUses {
		return nil, ErrInviteInvalid
	}
	if bcrypt.CompareHashAndPassword(invite.SecretHash, []byte(secret)) != nil {
		return nil, ErrInviteInvalid
	}

	return invite, nil
}

func accessView(exam *model.Exam) *model.ExamAccess {
	return &model.ExamAccess{
		ID:          exam.ID,
		Slug:        exam.Slug,
		Title:       exam.Title,
		StartsAt:    exam.StartsAt,
		EndsAt:      exam.EndsAt,
		StrictLevel: exam.StrictLevel,
	}
}

// WithinWindow reports whether now falls inside [start, end]. Open bounds
// are unrestricted.
func WithinWindow(now time.Time, start, end *time.Time) bool {
	if start != nil && now.Before(*start) {
		return false
	}
	if end != nil && now.After(*end) {
		return false
	}
	return true
}
