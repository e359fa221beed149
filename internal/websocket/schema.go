package websocket

import "encoding/json"

// ─── Actions (Proctor → Server) ─────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Proctor) ──────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventSnapshot Event = "snapshot"
	EventLive     Event = "live"
	EventPong     Event = "pong"
)

// SnapshotResponse carries the current metrics state, sent once on connect
// so the proctor console has a baseline before live events arrive.
type SnapshotResponse struct {
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// LiveResponse forwards a single monitoring event or violation as it is
// recorded. Payload is the JSON published on the submission's channel,
// passed through unparsed.
type LiveResponse struct {
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
