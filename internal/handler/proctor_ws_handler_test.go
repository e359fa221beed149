package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examsentry/integrity-backend/internal/config"
	"github.com/examsentry/integrity-backend/internal/model"
	ws "github.com/examsentry/integrity-backend/internal/websocket"
)

type staticReporter struct{}

func (staticReporter) Report(_ context.Context, submissionID uuid.UUID) (*model.MetricsReport, error) {
	return &model.MetricsReport{
		Metrics:      model.ZeroMetrics(submissionID),
		RecentEvents: []model.MonitoringEvent{},
		Violations:   []model.Violation{},
		Flags:        []model.CheatingFlag{},
	}, nil
}

func newStreamServer(t *testing.T) (*httptest.Server, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	h := NewProctorWSHandler(rdb, staticReporter{}, zerolog.Nop(), nil)
	r := gin.New()
	r.GET("/ws/v1/proctor/submissions/:submission_id/stream", h.SubmissionStream)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, mr
}

type streamFrame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func readFrame(t *testing.T, conn *websocket.Conn) streamFrame {
	t.Helper()
	var frame streamFrame
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

// Pongs and live events share one writer: the select loop. Interleaving
// client pings with published events must never corrupt the frame stream or
// drop the connection.
func TestSubmissionStreamInterleavesPingsAndLiveEvents(t *testing.T) {
	srv, mr := newStreamServer(t)
	submissionID := uuid.NewString()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/ws/v1/proctor/submissions/" + submissionID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if frame := readFrame(t, conn); frame.Event != string(ws.EventSnapshot) {
		t.Fatalf("first frame event = %q, want snapshot", frame.Event)
	}

	channel := config.CacheKey.SubmissionEventChannel(submissionID)
	for i := 0; i < 5; i++ {
		mr.Publish(channel, `{"type":"monitoring_event","event_type":"tab_switch"}`)
		if frame := readFrame(t, conn); frame.Event != string(ws.EventLive) {
			t.Fatalf("round %d: event = %q, want live", i, frame.Event)
		}

		if err := conn.WriteJSON(map[string]string{"action": "ping"}); err != nil {
			t.Fatalf("round %d: write ping: %v", i, err)
		}
		if frame := readFrame(t, conn); frame.Event != string(ws.EventPong) {
			t.Fatalf("round %d: event = %q, want pong", i, frame.Event)
		}
	}
}

func TestSubmissionStreamRejectsBadID(t *testing.T) {
	srv, _ := newStreamServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/ws/v1/proctor/submissions/not-a-uuid/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		conn.Close()
		t.Fatal("expected handshake failure for a bad submission id")
	}
	if resp == nil || resp.StatusCode != 400 {
		t.Fatalf("expected 400 handshake response, got %+v", resp)
	}
}
