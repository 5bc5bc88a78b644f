package middleware

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliConfig tunes response compression.
type BrotliConfig struct {
	Quality   int
	MinLength int
}

// DefaultBrotliConfig compresses JSON bodies of 1 KiB or more.
var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// bufferedWriter holds the body until the handler chain finishes so the
// encoding decision can be made on the full length.
type bufferedWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bufferedWriter) Write(data []byte) (int, error) {
	return w.body.Write(data)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// WriteHeaderNow is deferred to flush.
func (w *bufferedWriter) WriteHeaderNow() {}

// Brotli compresses API responses for clients that accept "br".
func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

// BrotliWithConfig is Brotli with explicit settings.
func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < brotli.BestSpeed || cfg.Quality > brotli.BestCompression {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if skipCompression(c) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		original := c.Writer
		bw := &bufferedWriter{ResponseWriter: original}
		c.Writer = bw
		c.Next()
		c.Writer = original

		c.Header("Vary", "Accept-Encoding")
		if bw.body.Len() < cfg.MinLength {
			if bw.body.Len() > 0 {
				_, _ = original.Write(bw.body.Bytes())
			}
			return
		}

		original.Header().Set("Content-Encoding", "br")
		original.Header().Del("Content-Length")
		enc := brotli.NewWriterLevel(original, cfg.Quality)
		if _, err := enc.Write(bw.body.Bytes()); err != nil {
			_ = c.Error(err)
		}
		if err := enc.Close(); err != nil {
			_ = c.Error(err)
		}
	}
}

// skipCompression passes WebSocket upgrades through untouched; the hijacked
// connection must not be wrapped.
func skipCompression(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}
