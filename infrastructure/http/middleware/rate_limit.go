package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/apperror"
	"github.com/bookworm/bookworm/infrastructure/http/response"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
)

type RateLimitMiddleware struct {
	limiter outbound.RateLimiter
	logger  logger.Logger
}

func NewRateLimitMiddleware(limiter outbound.RateLimiter, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  log,
	}
}

// Limit allows limit requests per client IP and window on the wrapped route.
// Limiter failures let the request through.
func (m *RateLimitMiddleware) Limit(scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.limiter == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			clientIP := ClientIP(r)
			key := fmt.Sprintf("%s:ip:%s", scope, clientIP)

			allowed, err := m.limiter.Allow(ctx, key, limit, window)
			if err != nil {
				m.logger.Error(ctx, "Failed to check rate limit", err, map[string]interface{}{
					"ip":  clientIP,
					"key": key,
				})
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				logger.LogSecurityEvent(ctx, m.logger, "rate_limit_exceeded", "HIGH", map[string]interface{}{
					"ip":        clientIP,
					"path":      r.URL.Path,
					"key":       key,
					"userAgent": r.UserAgent(),
				})
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				response.Error(w, apperror.RateLimited(key))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
