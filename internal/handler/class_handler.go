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

// ClassHandler handles class listing, creation and enrolment.
type ClassHandler struct {
	classService *service.ClassService
	log          zerolog.Logger
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService, log zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		classService: classService,
		log:          log.With().Str("component", "class_handler").Logger(),
	}
}

// ListClasses godoc
// GET /api/v1/classes
// Teachers see owned classes, students see enrolled ones.
func (h *ClassHandler) ListClasses(c *gin.Context) {
	classes, err := h.classService.List(c.Request.Context(), middleware.MustIdentity(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// CreateClass godoc
// POST /api/v1/classes
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req model.CreateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Create(c.Request.Context(), middleware.MustIdentity(c), req.Title)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"class": class})
}

// JoinClass godoc
// POST /api/v1/classes/join
func (h *ClassHandler) JoinClass(c *gin.Context) {
	var req model.JoinClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Join(c.Request.Context(), middleware.MustIdentity(c), req.Code)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}
