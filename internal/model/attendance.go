package model

import (
	"time"

	"github.com/google/uuid"
)

// Attendance accrues a user's presence in one live session. There is at most
// one record per (SessionID, UserID); DurationSec never decreases.
type Attendance struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	UserID      uuid.UUID `json:"user_id"`
	JoinedAt    time.Time `json:"joined_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	DurationSec int64     `json:"duration_sec"`
}

// TrackAttendanceRequest is the heartbeat payload.
type TrackAttendanceRequest struct {
	SessionID string `json:"session_id" binding:"required,uuid"`
}
