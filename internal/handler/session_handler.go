package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kelaslive/kelaslive-backend/internal/middleware"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/response"
	"github.com/kelaslive/kelaslive-backend/internal/service"
	"github.com/kelaslive/kelaslive-backend/internal/validator"
	"github.com/rs/zerolog"
)

// SessionHandler handles live session scheduling and listing.
type SessionHandler struct {
	sessionService *service.LiveSessionService
	log            zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.LiveSessionService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "session_handler").Logger(),
	}
}

type listSessionsQuery struct {
	ClassID string `form:"class_id" binding:"required,uuid"`
}

// ListSessions godoc
// GET /api/v1/sessions?class_id=
func (h *SessionHandler) ListSessions(c *gin.Context) {
	var q listSessionsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sessions, err := h.sessionService.List(c.Request.Context(), middleware.MustIdentity(c), uuid.MustParse(q.ClassID))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// CreateSession godoc
// POST /api/v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), middleware.MustIdentity(c),
		uuid.MustParse(req.ClassID), req.StartsAt, req.EndsAt)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session})
}
