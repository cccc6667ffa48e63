package websocket

import "encoding/json"

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventPrediction Event = "prediction"
	EventError      Event = "error"
)

// PredictionEvent relays one persisted prediction document to live
// dashboard consumers. Payload is the stored prediction JSON as
// published on the Redis channel.
type PredictionEvent struct {
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorEvent struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
