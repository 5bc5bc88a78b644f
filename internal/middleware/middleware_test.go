package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kelaslive/kelaslive-backend/internal/middleware"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/ratelimit"
	"github.com/kelaslive/kelaslive-backend/internal/response"
	"github.com/kelaslive/kelaslive-backend/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "kelas_live_session"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens() *service.TokenAuthority {
	return service.NewTokenAuthority("middleware-test-secret-0123456789abcdef", time.Hour)
}

func protectedRouter(tokens *service.TokenAuthority, roles ...model.Role) *gin.Engine {
	r := gin.New()
	r.Use(response.RequestIDMiddleware(), middleware.Authenticate(service.NewGuard(tokens, nil, nil), cookieName))
	r.GET("/p", middleware.RequireSession(roles...), func(c *gin.Context) {
		id := middleware.MustIdentity(c)
		c.String(http.StatusOK, id.Email)
	})
	return r
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func TestRequireSession(t *testing.T) {
	tokens := newTokens()
	teacher := service.Identity{UserID: uuid.New(), Email: "guru@example.com", Name: "Guru", Role: model.RoleTeacher}
	token, err := tokens.Issue(teacher)
	require.NoError(t, err)

	expired, err := service.NewTokenAuthority("middleware-test-secret-0123456789abcdef", time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		Issue(teacher)
	require.NoError(t, err)

	tests := []struct {
		name     string
		roles    []model.Role
		setup    func(r *http.Request)
		wantCode int
		wantErr  response.ErrCode
	}{
		{"no token", nil, func(*http.Request) {}, http.StatusUnauthorized, response.ErrTokenRequired},
		{"garbage cookie", nil, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: cookieName, Value: "junk"})
		}, http.StatusUnauthorized, response.ErrTokenInvalid},
		{"expired", nil, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: cookieName, Value: expired})
		}, http.StatusUnauthorized, response.ErrTokenExpired},
		{"cookie ok", nil, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: cookieName, Value: token})
		}, http.StatusOK, ""},
		{"bearer ok", []model.Role{model.RoleTeacher}, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token)
		}, http.StatusOK, ""},
		{"query token ignored outside websocket", nil, func(r *http.Request) {
			r.URL.RawQuery = "token=" + token
		}, http.StatusUnauthorized, response.ErrTokenRequired},
		{"wrong role", []model.Role{model.RoleStudent}, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: cookieName, Value: token})
		}, http.StatusForbidden, response.ErrStudentAccessOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := protectedRouter(tokens, tt.roles...)
			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errCode(t, w))
			} else {
				assert.Equal(t, teacher.Email, w.Body.String())
			}
		})
	}
}

func TestSessionCookie_BindAndClear(t *testing.T) {
	cookie := middleware.SessionCookie{Name: cookieName, Secure: true, TTL: 6 * time.Hour}
	r := gin.New()
	r.POST("/login", func(c *gin.Context) { cookie.Bind(c, "tok"); c.Status(http.StatusOK) })
	r.POST("/logout", func(c *gin.Context) { cookie.Clear(c); c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	set := w.Header().Get("Set-Cookie")
	assert.Contains(t, set, cookieName+"=tok")
	assert.Contains(t, set, "Max-Age=21600")
	assert.Contains(t, set, "Path=/")
	assert.Contains(t, set, "HttpOnly")
	assert.Contains(t, set, "Secure")
	assert.Contains(t, set, "SameSite=Lax")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

type stubThrottler struct {
	res ratelimit.Result
	err error
}

func (s stubThrottler) Throttle(context.Context, service.Identity, string) (ratelimit.Result, error) {
	return s.res, s.err
}

func TestRoomTokenRateLimit(t *testing.T) {
	run := func(th middleware.Throttler) *httptest.ResponseRecorder {
		r := gin.New()
		r.POST("/t", middleware.RoomTokenRateLimit(th, zerolog.Nop()), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/t", nil))
		return w
	}

	w := run(stubThrottler{res: ratelimit.Result{Allowed: true, Limit: 10, Remaining: 7}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "7", w.Header().Get("X-RateLimit-Remaining"))

	w = run(stubThrottler{err: &service.RateLimitedError{Limit: 10, RetryAfter: 42}})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "42", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, response.ErrRateLimitExceeded, errCode(t, w))

	w = run(stubThrottler{err: io.ErrUnexpectedEOF})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestBrotli(t *testing.T) {
	big := strings.Repeat("kelas live ", 500)
	r := gin.New()
	r.Use(middleware.Brotli())
	r.GET("/big", func(c *gin.Context) { c.String(http.StatusCreated, big) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=1.0")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "br", w.Header().Get("Content-Encoding"))
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, big, string(plain))

	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/big", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, big, w.Body.String())
}

func TestAccessLog(t *testing.T) {
	tokens := newTokens()
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	r := gin.New()
	r.Use(response.RequestIDMiddleware(), middleware.Authenticate(service.NewGuard(tokens, nil, nil), cookieName), middleware.AccessLog(log))
	r.GET("/classes/:id", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	userID := uuid.New()
	token, err := tokens.Issue(service.Identity{UserID: userID, Email: "a@b.c", Name: "A", Role: model.RoleTeacher})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/classes/42", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", "trace-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "error", first["level"])
	assert.Equal(t, "/classes/:id", first["route"])
	assert.Equal(t, "trace-1", first["request_id"])
	assert.Equal(t, userID.String(), first["user_id"])

	assert.Equal(t, "warn", second["level"])
	assert.Equal(t, "unmatched", second["route"])
	assert.NotContains(t, second, "user_id")
}
