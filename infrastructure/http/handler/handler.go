package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/bookworm/bookworm/domain/apperror"
	"github.com/bookworm/bookworm/infrastructure/http/response"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
)

const maxBodyBytes = 1 << 20

// HandlerFunc is an HTTP handler that reports failure by returning an error
// instead of writing it.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts fn to http.Handler. It is the only place failures are
// written to the client, and it recovers panics from fn.
func Handle(log logger.Logger, fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				writeError(w, r, log, apperror.Internal("panic", fmt.Errorf("%v", rec)), string(debug.Stack()))
			}
		}()

		if err := fn(w, r); err != nil {
			writeError(w, r, log, err, "")
		}
	})
}

func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error, stack string) {
	appErr := apperror.From(err)
	fields := map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
		"code":   string(appErr.Code),
		"status": appErr.HTTPStatus(),
	}
	if appErr.Details != "" {
		fields["details"] = appErr.Details
	}
	if stack != "" {
		fields["stack"] = stack
	}

	if appErr.HTTPStatus() >= http.StatusInternalServerError {
		log.Error(r.Context(), "Request failed", err, fields)
	} else {
		log.Debug(r.Context(), "Request rejected", fields)
	}

	response.Error(w, appErr)
}

// decodeJSON reads a single JSON value from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.InvalidInput("Request body too large")
		}
		if errors.Is(err, io.EOF) {
			return apperror.InvalidInput("Request body is required")
		}
		return apperror.InvalidInput("Invalid request body")
	}
	return nil
}
