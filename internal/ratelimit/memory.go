package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
)

const shardCount = 32

type entry struct {
	count     int
	expiresAt time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// Memory is a process-local Store. Keys are spread over independently locked
// shards so unrelated callers do not contend. Expired entries are ignored on
// read; Sweep only reclaims memory.
type Memory struct {
	shards [shardCount]*shard
	now    func() time.Time
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock creates a store reading time from now.
func NewMemoryWithClock(now func() time.Time) *Memory {
	m := &Memory{now: now}
	for i := range m.shards {
		m.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	return m
}

func (m *Memory) shardFor(key string) *shard {
	return m.shards[xxhash.Sum64String(key)%shardCount]
}

// Hit implements Store.
func (m *Memory) Hit(_ context.Context, key string, limit int, window time.Duration) (Result, error) {
	s := m.shardFor(key)
	now := m.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !e.expiresAt.After(now) {
		s.entries[key] = &entry{count: 1, expiresAt: now.Add(window)}
		return Result{Allowed: true, Limit: limit, Remaining: limit - 1}, nil
	}

	if e.count >= limit {
		return Result{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			RetryAfter: retryAfterSeconds(e.expiresAt.Sub(now)),
		}, nil
	}

	e.count++
	return Result{Allowed: true, Limit: limit, Remaining: limit - e.count}, nil
}

// Sweep drops entries whose window has closed and returns how many were removed.
func (m *Memory) Sweep() int {
	now := m.now()
	removed := 0
	for _, s := range m.shards {
		s.mu.Lock()
		for k, e := range s.entries {
			if !e.expiresAt.After(now) {
				delete(s.entries, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of tracked keys, expired or not.
func (m *Memory) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// RunJanitor sweeps every interval until ctx is cancelled. Call in a goroutine.
func (m *Memory) RunJanitor(ctx context.Context, interval time.Duration, log zerolog.Logger) {
	log = log.With().Str("component", "ratelimit_janitor").Logger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Janitor stopped")
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("Swept expired rate limit windows")
			}
		}
	}
}
