package outbound

import (
	"context"
	"time"
)

// RateLimiter counts requests per key inside a window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
