package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kelaslive/kelaslive-backend/internal/middleware"
	"github.com/kelaslive/kelaslive-backend/internal/response"
	"github.com/kelaslive/kelaslive-backend/internal/service"
	ws "github.com/kelaslive/kelaslive-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
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

// WSHandler streams presence heartbeats into the attendance tracker.
type WSHandler struct {
	attendanceService *service.AttendanceService
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attendanceService *service.AttendanceService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attendanceService: attendanceService,
		log:               log.With().Str("component", "ws_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// Presence godoc
// WS /ws/v1/sessions/:session_id/presence
// Tracks once on connect, then on every {"action":"heartbeat"} frame.
func (h *WSHandler) Presence(c *gin.Context) {
	id := middleware.MustIdentity(c)

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	// Reject before upgrading so plain HTTP clients get a proper status.
	ctx := c.Request.Context()
	first, created, err := h.attendanceService.Track(ctx, id, sessionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", id.UserID.String()).
		Str("session_id", sessionID.String()).
		Logger()
	wsLog.Info().Msg("Presence connected")

	if err := ws.WriteTyped(conn, ws.AttendanceEvent{Event: ws.EventAttendance, Created: created, Attendance: first}); err != nil {
		return
	}

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Presence closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionHeartbeat:
			if !h.heartbeat(ctx, conn, wsLog, id, sessionID) {
				return
			}
		case ws.ActionPing:
			_ = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			_ = ws.WriteError(conn, string(response.ErrInvalidPayload), "unknown action: "+string(msg.Action))
		}
	}
}

// heartbeat tracks one contact. It reports false when the connection must
// close because access was lost or the caller's token expired.
func (h *WSHandler) heartbeat(ctx context.Context, conn *websocket.Conn, log zerolog.Logger, id service.Identity, sessionID uuid.UUID) bool {
	a, created, err := h.attendanceService.Track(ctx, id, sessionID)
	if err == nil {
		return ws.WriteTyped(conn, ws.AttendanceEvent{Event: ws.EventAttendance, Created: created, Attendance: a}) == nil
	}

	_, code := classify(err)
	_ = ws.WriteError(conn, string(code), response.GetMessage(code))
	if errors.Is(err, service.ErrUnauthorized) || errors.Is(err, service.ErrForbidden) || errors.Is(err, service.ErrNotFound) {
		ws.CloseWith(conn, websocket.ClosePolicyViolation, string(code))
		return false
	}
	log.Error().Err(err).Msg("Heartbeat failed")
	return true
}
