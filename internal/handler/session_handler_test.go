package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examsentry/integrity-backend/internal/config"
	"github.com/examsentry/integrity-backend/internal/response"
	"github.com/examsentry/integrity-backend/internal/service"
	"github.com/examsentry/integrity-backend/internal/validator"
)

func newSessionRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{SessionLockTTL: 60 * time.Second}
	lockService := service.NewSessionLockService(rdb, cfg.SessionLockTTL, zerolog.Nop())
	h := NewSessionHandler(lockService, cfg, zerolog.Nop())

	r := gin.New()
	r.POST("/api/v1/exams/:exam_id/session/heartbeat", h.Heartbeat)
	r.POST("/api/v1/exams/:exam_id/session/release", h.Release)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHeartbeatRejectsSecondDevice(t *testing.T) {
	r := newSessionRouter(t)
	examID := uuid.New()
	path := "/api/v1/exams/" + examID.String() + "/session/heartbeat"
	studentID := 7

	// First device takes the lock.
	w := postJSON(t, r, path, gin.H{"studentId": studentID, "sessionId": "device-a"})
	if w.Code != http.StatusOK {
		t.Fatalf("device A heartbeat: status %d, body %s", w.Code, w.Body.String())
	}

	var ack struct {
		Success          bool  `json:"success"`
		ExpiresInSeconds int64 `json:"expiresInSeconds"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if !ack.Success || ack.ExpiresInSeconds != 60 {
		t.Fatalf("unexpected ack: %+v", ack)
	}

	// Second device is rejected with the machine-readable code.
	w = postJSON(t, r, path, gin.H{"studentId": studentID, "sessionId": "device-b"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("device B heartbeat: status %d, body %s", w.Code, w.Body.String())
	}

	var errBody response.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody.Code != response.ErrConcurrentSession {
		t.Fatalf("error code = %q, want %q", errBody.Code, response.ErrConcurrentSession)
	}

	// The holder keeps refreshing.
	w = postJSON(t, r, path, gin.H{"studentId": studentID, "sessionId": "device-a"})
	if w.Code != http.StatusOK {
		t.Fatalf("device A refresh: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	r := newSessionRouter(t)
	examID := uuid.New()
	heartbeat := "/api/v1/exams/" + examID.String() + "/session/heartbeat"
	release := "/api/v1/exams/" + examID.String() + "/session/release"

	if w := postJSON(t, r, heartbeat, gin.H{"studentId": 7, "sessionId": "device-a"}); w.Code != http.StatusOK {
		t.Fatalf("heartbeat: status %d", w.Code)
	}

	// Stale release from a different session still acks.
	if w := postJSON(t, r, release, gin.H{"studentId": 7, "sessionId": "device-b"}); w.Code != http.StatusOK {
		t.Fatalf("stale release: status %d", w.Code)
	}

	// Holder releases, then the slot is free for a new session.
	if w := postJSON(t, r, release, gin.H{"studentId": 7, "sessionId": "device-a"}); w.Code != http.StatusOK {
		t.Fatalf("holder release: status %d", w.Code)
	}
	if w := postJSON(t, r, release, gin.H{"studentId": 7, "sessionId": "device-a"}); w.Code != http.StatusOK {
		t.Fatalf("repeated release: status %d", w.Code)
	}
	if w := postJSON(t, r, heartbeat, gin.H{"studentId": 7, "sessionId": "device-b"}); w.Code != http.StatusOK {
		t.Fatalf("device B after release: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestHeartbeatValidation(t *testing.T) {
	r := newSessionRouter(t)

	// Bad exam id.
	w := postJSON(t, r, "/api/v1/exams/not-a-uuid/session/heartbeat", gin.H{"studentId": 7, "sessionId": "x"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad exam id: status %d", w.Code)
	}

	// Missing session id.
	w = postJSON(t, r, "/api/v1/exams/"+uuid.NewString()+"/session/heartbeat", gin.H{"studentId": 7})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing session id: status %d", w.Code)
	}
}
