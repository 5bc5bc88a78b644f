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

// AuthHandler handles registration, login, logout and the current profile.
type AuthHandler struct {
	authService *service.AuthService
	cookie      middleware.SessionCookie
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, cookie middleware.SessionCookie, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// Register godoc
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user.Profile()})
}

// Login godoc
// POST /api/v1/auth/login
// Sets the session cookie and also returns the token for non-browser clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.cookie.Bind(c, token)
	response.Success(c, http.StatusOK, gin.H{
		"user":       user.Profile(),
		"token":      token,
		"expires_in": int(h.cookie.TTL.Seconds()),
	})
}

// Logout godoc
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookie.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"message": "Logged out"})
}

// Me godoc
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), middleware.MustIdentity(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user.Profile()})
}
