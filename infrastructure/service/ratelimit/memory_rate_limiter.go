package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const sweepInterval = time.Minute

// MemoryRateLimiter keeps a token bucket per key in process. It is the
// fallback for single-instance deployments without Redis.
type MemoryRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		now:      time.Now,
	}
}

func (m *MemoryRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweep(now)
	}

	limiter, ok := m.limiters[key]
	if !ok {
		// a full bucket of limit tokens refilled evenly across window
		limiter = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		m.limiters[key] = limiter
	}
	return limiter.AllowN(now, 1), nil
}

// sweep drops buckets that have refilled completely. A full bucket behaves
// exactly like a missing one, so only idle keys go.
func (m *MemoryRateLimiter) sweep(now time.Time) {
	for key, limiter := range m.limiters {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(m.limiters, key)
		}
	}
	m.lastSweep = now
}

// Keys reports how many buckets are currently tracked.
func (m *MemoryRateLimiter) Keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}
