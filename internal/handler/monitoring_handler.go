package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/examsentry/integrity-backend/internal/clientip"
	"github.com/examsentry/integrity-backend/internal/model"
	"github.com/examsentry/integrity-backend/internal/response"
	"github.com/examsentry/integrity-backend/internal/service"
	"github.com/examsentry/integrity-backend/internal/validator"
)

type MonitoringHandler struct {
	monitoringService *service.MonitoringService
	log               zerolog.Logger
}

func NewMonitoringHandler(monitoringService *service.MonitoringService, log zerolog.Logger) *MonitoringHandler {
	return &MonitoringHandler{
		monitoringService: monitoringService,
		log:               log.With().Str("component", "monitoring_handler").Logger(),
	}
}

// LogEvent godoc
// POST /api/v1/monitoring/log-event
func (h *MonitoringHandler) LogEvent(c *gin.Context) {
	var req model.LogEventRequest
	if fields := validator.Bind(c, &req); fields != nil {
		h.failValidation(c, fields)
		return
	}

	clientIP := clientip.Resolve(c.Request.Header, c.Request.RemoteAddr)
	event, err := h.monitoringService.LogEvent(c.Request.Context(), &req, clientIP, c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, service.ErrMissingSubmissionRef) {
			response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation,
				"submissionId or examId+studentId is required")
			return
		}
		if errors.Is(err, service.ErrSubmissionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrSubmissionNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Failed to log monitoring event")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.OK(c, http.StatusCreated, model.LogEventResponse{
		Success: true,
		LogID:   event.ID,
		Message: "Event logged",
	})
}

// StrictModeViolation godoc
// POST /api/v1/monitoring/strict-mode-violation
func (h *MonitoringHandler) StrictModeViolation(c *gin.Context) {
	var req model.StrictModeViolationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		h.failValidation(c, fields)
		return
	}

	clientIP := clientip.Resolve(c.Request.Header, c.Request.RemoteAddr)
	outcome, err := h.monitoringService.ReportViolation(c.Request.Context(), &req, clientIP, c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrSubmissionNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Failed to record strict-mode violation")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.OK(c, http.StatusOK, model.StrictModeViolationResponse{
		Status:         "ok",
		Logged:         true,
		Action:         string(outcome.Action),
		ViolationCount: outcome.ViolationCount,
		Message:        outcome.Message,
	})
}

// Metrics godoc
// GET /api/v1/monitoring/metrics/:submission_id
func (h *MonitoringHandler) Metrics(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	report, err := h.monitoringService.Report(c.Request.Context(), submissionID)
	if err != nil {
		h.log.Error().Err(err).Str("submission_id", submissionID.String()).
			Msg("Failed to build metrics report")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.OK(c, http.StatusOK, report)
}

func (h *MonitoringHandler) failValidation(c *gin.Context, fields map[string]string) {
	first := ""
	for k, v := range fields {
		first = k + ": " + v
		break
	}
	response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation, first)
}
