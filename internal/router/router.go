package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kelaslive/kelaslive-backend/internal/config"
	"github.com/kelaslive/kelaslive-backend/internal/handler"
	"github.com/kelaslive/kelaslive-backend/internal/middleware"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/response"
	"github.com/kelaslive/kelaslive-backend/internal/service"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Class      *handler.ClassHandler
	Session    *handler.SessionHandler
	Attendance *handler.AttendanceHandler
	Room       *handler.RoomHandler
	WS         *handler.WSHandler
	System     *handler.SystemHandler
}

// Deps are the non-handler collaborators the route table needs.
type Deps struct {
	Guard *service.Guard
	Rooms middleware.Throttler
	Log   zerolog.Logger
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(deps Deps, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// Credentials (the session cookie) are only allowed with an explicit
	// origin list; the allow-all dev default cannot carry cookies.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Authenticate(deps.Guard, cfg.SessionCookieName))
	router.Use(middleware.AccessLog(deps.Log))

	router.GET("/health", handlers.System.Health)
	router.GET("/ready", handlers.System.Ready)

	api := router.Group("/api/v1")
	api.Use(middleware.Brotli())

	// ─── 1. Accounts ───────────────────────────────────────────────────
	auth := api.Group("/auth")
	auth.Use(middleware.NoStore())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/logout", handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireSession(), handlers.Auth.Me)
	}

	// ─── 2. Classes & sessions (any signed-in role) ────────────────────
	member := api.Group("")
	member.Use(middleware.RequireSession())
	{
		member.GET("/classes", handlers.Class.ListClasses)
		member.POST("/classes", middleware.RequireSession(model.RoleTeacher), handlers.Class.CreateClass)
		member.POST("/classes/join", middleware.RequireSession(model.RoleStudent), handlers.Class.JoinClass)

		member.GET("/sessions", handlers.Session.ListSessions)
		member.POST("/sessions", middleware.RequireSession(model.RoleTeacher), handlers.Session.CreateSession)

		member.POST("/attendance", handlers.Attendance.Track)

		member.POST("/livekit/token",
			middleware.NoStore(),
			middleware.RoomTokenRateLimit(deps.Rooms, deps.Log),
			handlers.Room.IssueToken,
		)
	}

	// ─── 3. WebSocket ──────────────────────────────────────────────────
	wsGroup := router.Group("/ws/v1")
	wsGroup.Use(middleware.RequireSession())
	{
		wsGroup.GET("/sessions/:session_id/presence", handlers.WS.Presence)
	}

	return router
}
