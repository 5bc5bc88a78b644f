package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/kelaslive/kelaslive-backend/internal/config"
	"github.com/kelaslive/kelaslive-backend/internal/database"
	"github.com/kelaslive/kelaslive-backend/internal/handler"
	"github.com/kelaslive/kelaslive-backend/internal/logger"
	"github.com/kelaslive/kelaslive-backend/internal/middleware"
	"github.com/kelaslive/kelaslive-backend/internal/ratelimit"
	"github.com/kelaslive/kelaslive-backend/internal/repository"
	"github.com/kelaslive/kelaslive-backend/internal/repository/repofake"
	"github.com/kelaslive/kelaslive-backend/internal/roomgrant"
	"github.com/kelaslive/kelaslive-backend/internal/router"
	"github.com/kelaslive/kelaslive-backend/internal/service"
	"github.com/kelaslive/kelaslive-backend/internal/validator"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// stores bundles the storage backends selected by STORAGE_DRIVER.
type stores struct {
	users      service.UserStore
	classes    service.ClassStore
	sessions   service.SessionStore
	attendance service.AttendanceStore
	pingers    []database.Pinger
	close      func()
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if cfg.LogFormat == "pretty" {
		figure.NewFigure("KelasLive", "cybermedium", true).Print()
		fmt.Println()
	}
	log.Info().
		Str("port", cfg.ServerPort).
		Str("env", cfg.AppEnv).
		Str("storage", cfg.StorageDriver).
		Str("rate_limit", cfg.RateLimitBackend).
		Msg("Starting KelasLive Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Storage ───────────────────────────────────────────────────────
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer st.close()

	// ─── Rate Limiter ──────────────────────────────────────────────────
	limiterStore, limiterPingers, closeLimiter, err := openLimiter(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open rate limiter")
	}
	defer closeLimiter()
	limiter := ratelimit.New(limiterStore, cfg.RateLimitSalt)

	// ─── Initialize Services ──────────────────────────────────────────
	tokens := service.NewTokenAuthority(cfg.JWTSecret, cfg.SessionTTL)
	guard := service.NewGuard(tokens, st.classes, st.sessions)
	authService := service.NewAuthService(st.users, tokens, cfg.BcryptCost, log)
	classService := service.NewClassService(st.classes, st.sessions, log)
	sessionService := service.NewLiveSessionService(guard, st.sessions, log)
	attendanceService := service.NewAttendanceService(guard, st.attendance)
	roomService := service.NewRoomService(
		guard,
		limiter,
		roomgrant.NewSigner(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, roomgrant.DefaultTTL),
		service.RoomPolicy{Limit: cfg.RoomTokenLimit, Window: cfg.RoomTokenWindow},
		service.RoomEndpoints{URL: cfg.LiveKitURL, TurnServer: cfg.TurnURL},
		log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	cookie := middleware.SessionCookie{
		Name:   cfg.SessionCookieName,
		Secure: cfg.SecureCookies(),
		TTL:    cfg.SessionTTL,
	}
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, cookie, log),
		Class:      handler.NewClassHandler(classService, log),
		Session:    handler.NewSessionHandler(sessionService, log),
		Attendance: handler.NewAttendanceHandler(attendanceService, log),
		Room:       handler.NewRoomHandler(roomService, log),
		WS:         handler.NewWSHandler(attendanceService, log, cfg.AllowedOrigins),
		System:     handler.NewSystemHandler(append(st.pingers, limiterPingers...), log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(router.Deps{Guard: guard, Rooms: roomService, Log: log}, handlers, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Stops the limiter janitor.
	cancel()

	log.Info().Msg("Shutdown complete")
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		log.Warn().Msg("Using in-memory storage; data is lost on restart")
		db := repofake.New()
		return &stores{
			users:      db.Users(),
			classes:    db.Classes(),
			sessions:   db.Sessions(),
			attendance: db.Attendance(),
			close:      func() {},
		}, nil
	case config.DriverPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:      repository.NewUserRepository(pool),
			classes:    repository.NewClassRepository(pool),
			sessions:   repository.NewLiveSessionRepository(pool),
			attendance: repository.NewAttendanceRepository(pool),
			pingers:    []database.Pinger{database.PostgresPinger(pool)},
			close:      pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func openLimiter(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ratelimit.Store, []database.Pinger, func(), error) {
	switch cfg.RateLimitBackend {
	case config.DriverRedis:
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, nil, nil, err
		}
		return ratelimit.NewRedis(rdb), []database.Pinger{database.RedisPinger(rdb)}, func() { closeRedis(rdb, log) }, nil
	case config.DriverMemory:
		mem := ratelimit.NewMemory()
		go mem.RunJanitor(ctx, time.Minute, log)
		return mem, nil, func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown rate limit backend %q", cfg.RateLimitBackend)
	}
}

func closeRedis(rdb *redis.Client, log zerolog.Logger) {
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("Redis close error")
	}
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
