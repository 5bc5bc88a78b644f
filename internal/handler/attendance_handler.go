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

// AttendanceHandler handles HTTP attendance heartbeats.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
	log               zerolog.Logger
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService, log zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
		log:               log.With().Str("component", "attendance_handler").Logger(),
	}
}

// Track godoc
// POST /api/v1/attendance
// 201 on first contact, 200 afterwards.
func (h *AttendanceHandler) Track(c *gin.Context) {
	var req model.TrackAttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attendance, created, err := h.attendanceService.Track(c.Request.Context(), middleware.MustIdentity(c), uuid.MustParse(req.SessionID))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"attendance": attendance})
}
