package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/examsentry/integrity-backend/internal/config"
	"github.com/examsentry/integrity-backend/internal/model"
	"github.com/examsentry/integrity-backend/internal/response"
	"github.com/examsentry/integrity-backend/internal/service"
	"github.com/examsentry/integrity-backend/internal/validator"
)

type SessionHandler struct {
	lockService *service.SessionLockService
	cfg         *config.Config
	log         zerolog.Logger
}

func NewSessionHandler(lockService *service.SessionLockService, cfg *config.Config, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		lockService: lockService,
		cfg:         cfg,
		log:         log.With().Str("component", "session_handler").Logger(),
	}
}

// Heartbeat godoc
// POST /api/v1/exams/:exam_id/session/heartbeat
//
// Acquires or extends the exclusive session lock. A second device presenting
// a different session id gets 403 CONCURRENT_SESSION and must not enter the
// exam.
func (h *SessionHandler) Heartbeat(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.HeartbeatRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		return
	}

	err = h.lockService.AcquireOrRefresh(c.Request.Context(), examID, *req.StudentID, req.SessionID)
	if err != nil {
		if errors.Is(err, service.ErrConcurrentSession) {
			response.Fail(c, http.StatusForbidden, response.ErrConcurrentSession)
			return
		}
		h.log.Error().Err(err).Str("exam_id", examID.String()).
			Msg("Session lock backend failure")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.OK(c, http.StatusOK, model.HeartbeatResponse{
		Success:          true,
		ExpiresInSeconds: int64(h.cfg.SessionLockTTL.Seconds()),
	})
}

// Release godoc
// POST /api/v1/exams/:exam_id/session/release
//
// Gives up the session lock on clean client shutdown. Idempotent: a stale or
// repeated release still returns 200.
func (h *SessionHandler) Release(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReleaseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		return
	}

	if err := h.lockService.Release(c.Request.Context(), examID, *req.StudentID, req.SessionID); err != nil {
		// Release must never strand a client on shutdown; log and ack anyway.
		h.log.Warn().Err(err).Str("exam_id", examID.String()).
			Msg("Session lock release failed")
	}

	response.OK(c, http.StatusOK, model.ReleaseResponse{Success: true})
}
