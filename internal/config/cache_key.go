package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RateLimitKey returns the Redis key holding a fixed-window counter.
// digest is the salted hash of the caller identifier, never the raw value.
func (r *CacheKeyStruct) RateLimitKey(digest string) string {
	return fmt.Sprintf("ratelimit:%s", digest)
}

var CacheKey = NewCacheKeyStruct()
