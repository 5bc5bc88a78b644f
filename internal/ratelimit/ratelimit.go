// Package ratelimit implements fixed-window request counting keyed by a
// salted one-way digest of the caller identifier.
//
// A window opens on the first hit for a key and lasts exactly the configured
// duration; bursts straddling two windows are accepted. Stores differ only in
// where counters live: Memory keeps them in process, Redis shares them across
// replicas.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrInvalidPolicy is returned for a non-positive limit or window.
var ErrInvalidPolicy = errors.New("ratelimit: limit and window must be positive")

// Result is the outcome of one Check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is zero when Allowed; otherwise whole seconds until the
	// window closes, never less than one.
	RetryAfter int
}

// Store counts hits for already-hashed keys. Hit must be atomic per key.
type Store interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

// Limiter hashes identifiers and delegates counting to a Store.
type Limiter struct {
	store Store
	salt  string
}

// New creates a Limiter. salt is a server-held secret mixed into every key.
func New(store Store, salt string) *Limiter {
	return &Limiter{store: store, salt: salt}
}

// Check records one hit for identifier and reports whether it is allowed.
func (l *Limiter) Check(ctx context.Context, identifier string, limit int, window time.Duration) (Result, error) {
	if limit < 1 || window <= 0 {
		return Result{}, ErrInvalidPolicy
	}
	return l.store.Hit(ctx, Digest(l.salt, identifier), limit, window)
}

// Digest returns the hex SHA-256 of salt and identifier. Raw identifiers are
// never used as keys.
func Digest(salt, identifier string) string {
	sum := sha256.Sum256([]byte(salt + "-" + identifier))
	return hex.EncodeToString(sum[:])
}

// retryAfterSeconds rounds the remaining window up to whole seconds.
func retryAfterSeconds(remaining time.Duration) int {
	if remaining <= 0 {
		return 1
	}
	secs := int((remaining + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
