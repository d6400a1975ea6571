package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/bookworm/bookworm/domain/apperror"
	"github.com/bookworm/bookworm/infrastructure/http/response"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs method, path, status and duration of every request.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.Info(r.Context(), "HTTP request", map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"ip":          ClientIP(r),
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

// Recovery turns a panic outside the handler boundary into a 500.
func Recovery(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error(r.Context(), "Panic recovered", fmt.Errorf("%v", rec), map[string]interface{}{
						"path":  r.URL.Path,
						"stack": string(debug.Stack()),
					})
					response.Error(w, apperror.Internal("panic", nil))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
