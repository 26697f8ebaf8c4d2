// internal/app/features/errors/errors.go
//
// Package errors writes JSON error bodies for every API route. Callers see
// a stable message; Internal failures are logged under a fresh error id
// that is also returned so a report can be matched to the log line.
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/sharediary/internal/app/system/apperr"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Body is the JSON shape of every error response.
type Body struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	ErrorID string `json:"errorId,omitempty"`
}

// ErrorLogger writes classified errors and logs the ones callers cannot act on.
type ErrorLogger struct {
	Log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

// Write responds with err's status and public message.
func (el *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, op string, err error) {
	kind := apperr.KindOf(err)
	body := Body{Error: apperr.PublicMessage(err), Kind: kind.String()}

	if kind == apperr.Internal {
		body.ErrorID = uuid.NewString()
		el.Log.Error("request failed",
			zap.String("op", op),
			zap.String("error_id", body.ErrorID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}

	WriteJSON(w, kind.Status(), body)
}

// Status responds with a fixed status and message, for failures detected
// before any registry call (bad JSON, missing session, rate limits).
func Status(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Body{Error: msg, Kind: kindForStatus(status)})
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func kindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperr.InvalidArgument.String()
	case http.StatusForbidden:
		return apperr.Forbidden.String()
	case http.StatusNotFound:
		return apperr.NotFound.String()
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		return apperr.Internal.String()
	}
}

// NotFound is the router's fallback for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Status(w, http.StatusNotFound, "no such route")
}

// MethodNotAllowed is the router's fallback for known routes with the
// wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Status(w, http.StatusMethodNotAllowed, "method not allowed")
}

// Unauthorized is used when a route needs a signed-in user.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	Status(w, http.StatusUnauthorized, "sign in required")
}
