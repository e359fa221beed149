package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/examsentry/integrity-backend/internal/classify"
	"github.com/examsentry/integrity-backend/internal/model"
	"github.com/examsentry/integrity-backend/internal/policy"
	"github.com/examsentry/integrity-backend/internal/response"
	"github.com/examsentry/integrity-backend/internal/service"
	"github.com/examsentry/integrity-backend/internal/validator"
)

func newMonitoringRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	monitoringService := service.NewMonitoringService(
		nil, nil, nil, nil, nil, nil, policy.Thresholds{}, zerolog.Nop(),
	)
	h := NewMonitoringHandler(monitoringService, zerolog.Nop())

	r := gin.New()
	r.POST("/api/v1/monitoring/log-event", h.LogEvent)
	return r
}

// An event naming neither a submission nor an (exam, student) pair is a
// malformed request, answered 400, not a lookup miss answered 404.
func TestLogEventWithoutSubmissionRefIsValidationError(t *testing.T) {
	r := newMonitoringRouter(t)

	body := `{"eventType":"tab_switch"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/monitoring/log-event", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), string(response.ErrValidation)) {
		t.Fatalf("body missing validation code: %s", w.Body.String())
	}
}

// The severity vocabulary is total on the classifier side, so the request
// boundary accepts any string rather than 400-ing on unrecognized values.
func TestStrictModeViolationSeverityNeverRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	validator.Setup()

	body := `{"userId":7,"quizId":"` + uuid.NewString() + `","violationType":"WINDOW_BLUR","severity":"weird"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/monitoring/strict-mode-violation", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	var payload model.StrictModeViolationRequest
	if fields := validator.Bind(c, &payload); fields != nil {
		t.Fatalf("unexpected validation failure: %v", fields)
	}
	if got := classify.Severity(payload.Severity); got != model.SeverityWarning {
		t.Fatalf("severity %q classified as %q, want warning", payload.Severity, got)
	}
}
