// Package database opens the backing stores and exposes readiness checks for
// them.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	connectAttempts = 5
	firstBackoff    = 500 * time.Millisecond
)

// Pinger is a named readiness check run by the /ready endpoint.
type Pinger struct {
	Name string
	Ping func(ctx context.Context) error
}

// connectWithRetry calls connect until it succeeds, the attempts run out or
// ctx is done. Containers started together rarely accept connections on the
// first try.
func connectWithRetry(ctx context.Context, log zerolog.Logger, what string, connect func(context.Context) error) error {
	backoff := firstBackoff
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = connect(ctx); err == nil {
			return nil
		}
		if attempt == connectAttempts {
			break
		}
		log.Warn().
			Err(err).
			Str("store", what).
			Int("attempt", attempt).
			Dur("retry_in", backoff).
			Msg("Store not reachable yet")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("%s unreachable after %d attempts: %w", what, connectAttempts, err)
}
