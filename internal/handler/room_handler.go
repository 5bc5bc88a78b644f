package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kelaslive/kelaslive-backend/internal/middleware"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/response"
	"github.com/kelaslive/kelaslive-backend/internal/service"
	"github.com/kelaslive/kelaslive-backend/internal/validator"
	"github.com/rs/zerolog"
)

// RoomHandler issues video room credentials. The route is wrapped by
// middleware.RoomTokenRateLimit.
type RoomHandler struct {
	roomService *service.RoomService
	log         zerolog.Logger
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(roomService *service.RoomService, log zerolog.Logger) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
		log:         log.With().Str("component", "room_handler").Logger(),
	}
}

// IssueToken godoc
// POST /api/v1/livekit/token
// Body fields are returned top-level, without the envelope, so video SDK
// clients can consume them directly.
func (h *RoomHandler) IssueToken(c *gin.Context) {
	var req model.RoomTokenRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	creds, err := h.roomService.Issue(c.Request.Context(), middleware.MustIdentity(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, creds)
}
