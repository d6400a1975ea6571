package response

import (
	"encoding/json"
	"net/http"

	"github.com/bookworm/bookworm/domain/apperror"
)

// Envelope wraps status messages and every error body. Resource payloads are
// written as-is with JSON.
type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data"`
}

func JSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func WriteJSON(w http.ResponseWriter, statusCode int, status bool, message string, data interface{}) {
	JSON(w, statusCode, Envelope{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, true, message, data)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes the client-safe part of err. Details and causes stay in logs.
func Error(w http.ResponseWriter, err *apperror.AppError) {
	JSON(w, err.HTTPStatus(), Envelope{
		Status:  false,
		Message: err.Message,
		Code:    string(err.Code),
	})
}
