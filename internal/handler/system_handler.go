package handler

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kelaslive/kelaslive-backend/internal/database"
	"github.com/kelaslive/kelaslive-backend/internal/response"
	"github.com/rs/zerolog"
)

const readyTimeout = 2 * time.Second

// SystemHandler serves liveness and readiness checks.
type SystemHandler struct {
	pingers   []database.Pinger
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(pingers []database.Pinger, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		pingers:   pingers,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthStatus struct {
	Status     string `json:"status"`
	Uptime     string `json:"uptime"`
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
}

// Health godoc
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, healthStatus{
		Status:     "ok",
		Uptime:     time.Since(h.startTime).Truncate(time.Second).String(),
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
	})
}

// Ready godoc
// GET /ready
// Answers 503 while any backing store is unreachable.
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	checks := make(map[string]string, len(h.pingers))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, p := range h.pingers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state := "ok"
			if err := p.Ping(ctx); err != nil {
				h.log.Warn().Err(err).Str("store", p.Name).Msg("Readiness check failed")
				state = "unavailable"
			}
			mu.Lock()
			checks[p.Name] = state
			mu.Unlock()
		}()
	}
	wg.Wait()

	for _, state := range checks {
		if state != "ok" {
			c.JSON(http.StatusServiceUnavailable, response.Envelope(c, gin.H{"checks": checks}, response.ErrUnavailable))
			return
		}
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
