package websocket

import "github.com/kelaslive/kelaslive-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionHeartbeat Action = "heartbeat"
	ActionPing      Action = "ping"
)

// RequestEnvelope is the only client frame shape.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventAttendance Event = "attendance"
	EventError      Event = "error"
	EventPong       Event = "pong"
)

// AttendanceEvent carries the record after a tracked contact.
type AttendanceEvent struct {
	Event      Event             `json:"event"`
	Created    bool              `json:"created"`
	Attendance *model.Attendance `json:"attendance"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
