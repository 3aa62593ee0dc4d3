// Package response defines the JSON envelope shared by every API
// endpoint. A success carries its payload under "data", a failure a
// Problem under "error", and both carry a "meta" block with the
// serving timestamp.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/uodit05/algo-trade-test-1/internal/core"
)

// Meta is attached to every envelope, success or failure.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// Problem describes a failure to the client. Code mirrors the
// classified error codes from core; Cause is included only when the
// underlying error adds detail beyond the message.
type Problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

type envelope struct {
	Data  any      `json:"data,omitempty"`
	Error *Problem `json:"error,omitempty"`
	Meta  Meta     `json:"meta"`
}

func write(w http.ResponseWriter, status int, env envelope) {
	env.Meta = Meta{Timestamp: time.Now().UTC()}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

// JSON writes a success envelope with the given payload.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, envelope{Data: data})
}

// Error writes a failure envelope. Unclassified errors collapse to a
// generic INTERNAL_ERROR so internals never leak to the client.
func Error(w http.ResponseWriter, status int, err error) {
	p := Problem{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		p.Code = coreErr.Code
		p.Message = coreErr.Message
		if coreErr.Cause != nil {
			p.Cause = coreErr.Cause.Error()
		}
	}
	write(w, status, envelope{Error: &p})
}

// Fail writes a failure envelope with the status derived from the
// error's classification.
func Fail(w http.ResponseWriter, err error) {
	Error(w, StatusFor(err), err)
}

// StatusFor maps classified errors to HTTP status codes, defaulting to
// 500 for anything unrecognized.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrStrategyNotFound),
		errors.Is(err, core.ErrDataUnavailable):
		return http.StatusNotFound
	case errors.Is(err, core.ErrRunActive),
		errors.Is(err, core.ErrRunNotActive):
		return http.StatusConflict
	case errors.Is(err, core.ErrConfigInvalid),
		errors.Is(err, core.ErrConfigMissing),
		errors.Is(err, core.ErrInsufficientData):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
