package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"

	keyPrefix = "ratelimit:"
)

type RateLimitConfig struct {
	Enabled  bool
	Backend  string
	RedisURL string
}

// NewRateLimiter picks the limiter backend from config. A disabled limiter
// admits everything.
func NewRateLimiter(ctx context.Context, config RateLimitConfig, log logger.Logger) (outbound.RateLimiter, error) {
	if !config.Enabled {
		log.Info(ctx, "Rate limiting disabled", nil)
		return NoopRateLimiter{}, nil
	}

	switch config.Backend {
	case BackendMemory:
		log.Info(ctx, "Rate limiting initialized", map[string]interface{}{"backend": BackendMemory})
		return NewMemoryRateLimiter(), nil
	case BackendRedis, "":
		opt, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opt)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}

		log.Info(ctx, "Rate limiting initialized", map[string]interface{}{"backend": BackendRedis})
		return NewRedisRateLimiter(client, log), nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend: %s", config.Backend)
	}
}

// RedisRateLimiter is a fixed-window counter shared by every instance that
// points at the same Redis.
type RedisRateLimiter struct {
	client *redis.Client
	logger logger.Logger
}

func NewRedisRateLimiter(client *redis.Client, log logger.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		logger: log,
	}
}

func (s *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := keyPrefix + key

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// first hit opens the window
	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	allowed := count <= int64(limit)
	if !allowed {
		s.logger.Debug(ctx, "Rate limit exceeded", map[string]interface{}{
			"key":   key,
			"count": count,
			"limit": limit,
		})
	}
	return allowed, nil
}

// GetAttempts returns the current window's count for key.
func (s *RedisRateLimiter) GetAttempts(ctx context.Context, key string) (int, error) {
	count, err := s.client.Get(ctx, keyPrefix+key).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get attempts: %w", err)
	}
	return count, nil
}

func (s *RedisRateLimiter) Close() error {
	return s.client.Close()
}

type NoopRateLimiter struct{}

func (NoopRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return true, nil
}
