package model

import (
	"time"

	"github.com/google/uuid"
)

// LiveSession is one scheduled or running occurrence of a class. RoomName
// and ClassID never change after creation.
type LiveSession struct {
	ID        uuid.UUID  `json:"id"`
	ClassID   uuid.UUID  `json:"class_id"`
	RoomName  string     `json:"room_name"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// SessionSummary is the compact session entry embedded in class listings.
type SessionSummary struct {
	ID       uuid.UUID  `json:"id"`
	RoomName string     `json:"room_name"`
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

// Summary returns the compact view of s.
func (s *LiveSession) Summary() SessionSummary {
	return SessionSummary{ID: s.ID, RoomName: s.RoomName, StartsAt: s.StartsAt, EndsAt: s.EndsAt}
}

// CreateSessionRequest is the payload for scheduling a live session.
type CreateSessionRequest struct {
	ClassID  string     `json:"class_id" binding:"required,uuid"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}
