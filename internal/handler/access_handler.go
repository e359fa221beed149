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

type AccessHandler struct {
	accessService *service.AccessService
	log           zerolog.Logger
}

func NewAccessHandler(accessService *service.AccessService, log zerolog.Logger) *AccessHandler {
	return &AccessHandler{
		accessService: accessService,
		log:           log.With().Str("component", "access_handler").Logger(),
	}
}

// StartSessionRequest is the payload of POST /access/:slug/start.
type StartSessionRequest struct {
	StudentID   *int   `json:"studentId" binding:"required"`
	InviteToken string `json:"inviteToken" binding:"omitempty,max=256"`
}

// StartSessionResponse returns the opened submission plus the admitted exam.
type StartSessionResponse struct {
	Submission *model.Submission `json:"submission"`
	Exam       *model.ExamAccess `json:"exam"`
}

// Validate godoc
// GET /api/v1/access/:slug?invite=...
//
// Runs the admission checks without opening a session. The desktop client
// calls this before rendering the exam lobby; the time window is not
// enforced here so a student can see the lobby before the exam opens.
func (h *AccessHandler) Validate(c *gin.Context) {
	clientIP := clientip.Resolve(c.Request.Header, c.Request.RemoteAddr)

	access, err := h.accessService.Validate(c.Request.Context(), c.Param("slug"), c.Query("invite"), clientIP, false)
	if err != nil {
		h.failAdmission(c, err)
		return
	}

	response.OK(c, http.StatusOK, access)
}

// StartSession godoc
// POST /api/v1/access/:slug/start
func (h *AccessHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		return
	}

	clientIP := clientip.Resolve(c.Request.Header, c.Request.RemoteAddr)

	sub, access, err := h.accessService.StartSession(c.Request.Context(), c.Param("slug"), req.InviteToken, clientIP, *req.StudentID)
	if err != nil {
		h.failAdmission(c, err)
		return
	}

	response.OK(c, http.StatusCreated, StartSessionResponse{
		Submission: sub,
		Exam:       access,
	})
}

// ExecutionType godoc
// GET /api/v1/exams/:exam_id/execution-type
//
// Returns the lockdown profile the desktop client enforces locally. Never
// errors on lookup failure — the profile falls back to relaxed.
func (h *AccessHandler) ExecutionType(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	response.OK(c, http.StatusOK, h.accessService.ExecutionType(c.Request.Context(), examID))
}

// failAdmission maps the ordered admission errors onto the HTTP taxonomy.
func (h *AccessHandler) failAdmission(c *gin.Context, err error) {
	var ipErr *service.IPNotAllowedError

	switch {
	case errors.Is(err, service.ErrExamNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
	case errors.Is(err, service.ErrExamNotPublished):
		response.Fail(c, http.StatusForbidden, response.ErrExamNotPublished)
	case errors.Is(err, service.ErrInviteRequired):
		response.Fail(c, http.StatusForbidden, response.ErrInviteRequired)
	case errors.Is(err, service.ErrInviteInvalid):
		response.Fail(c, http.StatusForbidden, response.ErrInviteInvalid)
	case errors.As(err, &ipErr):
		response.FailWithDetails(c, http.StatusForbidden, response.ErrIPNotAllowed, ipErr.Error())
	case errors.Is(err, service.ErrOutsideExamWindow):
		response.Fail(c, http.StatusForbidden, response.ErrOutsideExamWindow)
	case errors.Is(err, service.ErrSubmissionClosed):
		response.Fail(c, http.StatusForbidden, response.ErrSubmissionClosed)
	default:
		h.log.Error().Err(err).Msg("Admission check failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
