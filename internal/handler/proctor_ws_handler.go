package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examsentry/integrity-backend/internal/config"
	"github.com/examsentry/integrity-backend/internal/model"
	ws "github.com/examsentry/integrity-backend/internal/websocket"
)

const proctorPingInterval = 30 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MetricsReporter is the slice of the monitoring service the stream needs
// for its connect-time snapshot.
type MetricsReporter interface {
	Report(ctx context.Context, submissionID uuid.UUID) (*model.MetricsReport, error)
}

// ProctorWSHandler streams a submission's monitoring activity to the proctor
// dashboard in real time.
type ProctorWSHandler struct {
	rdb      *redis.Client
	reporter MetricsReporter
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewProctorWSHandler creates a new ProctorWSHandler.
func NewProctorWSHandler(rdb *redis.Client, reporter MetricsReporter, log zerolog.Logger, allowedOrigins []string) *ProctorWSHandler {
	return &ProctorWSHandler{
		rdb:      rdb,
		reporter: reporter,
		log:      log.With().Str("component", "proctor_ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SubmissionStream godoc
// WS /ws/v1/proctor/submissions/:submission_id/stream
//
// Sends a metrics snapshot on connect, then forwards every monitoring event
// published for the submission as it arrives. The read side only answers
// pings; the proctor console is a passive observer.
func (h *ProctorWSHandler) SubmissionStream(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission ID"})
		return
	}

	if h.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live streaming requires the event backend"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("submission_id", submissionID.String()).Logger()
	wsLog.Info().Msg("Proctor attached to submission stream")

	reqCtx := c.Request.Context()

	// Subscribe before the snapshot so no event published in between is lost.
	channel := config.CacheKey.SubmissionEventChannel(submissionID.String())
	pubsub := h.rdb.Subscribe(reqCtx, channel)
	defer pubsub.Close()

	// Initial snapshot so the console has a baseline before live events.
	if report, err := h.reporter.Report(reqCtx, submissionID); err != nil {
		wsLog.Warn().Err(err).Msg("Snapshot build failed")
		ws.WriteError(conn, "snapshot unavailable")
	} else if payload, err := json.Marshal(report); err == nil {
		if err := ws.WriteTyped(conn, ws.SnapshotResponse{Event: ws.EventSnapshot, Payload: payload}); err != nil {
			return
		}
	}

	// Reader goroutine. It never writes: gorilla allows a single concurrent
	// writer per connection, so pings are handed to the select loop below,
	// which owns all data frames.
	done := make(chan struct{})
	pings := make(chan struct{}, 8)
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
					// A full queue means the writer is busy; dropping a
					// keepalive request is harmless.
				}
			}
		}
	}()

	events := pubsub.Channel()
	pingTicker := time.NewTicker(proctorPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-reqCtx.Done():
			wsLog.Info().Msg("Proctor detached from submission stream")
			return

		case <-done:
			return

		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}

		case msg, ok := <-events:
			if !ok {
				return
			}
			// Forward the published JSON untouched.
			live := ws.LiveResponse{Event: ws.EventLive, Payload: json.RawMessage(msg.Payload)}
			if err := ws.WriteTyped(conn, live); err != nil {
				wsLog.Debug().Err(err).Msg("Live forward failed, dropping connection")
				return
			}

		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
