package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rpggio/meetflow/internal/domain/activity"
	"github.com/rpggio/meetflow/internal/domain/project"
)

// maxBodyBytes caps request bodies; prompts and templates are short text.
const maxBodyBytes = 1 << 20

// ErrorBody is the payload of every non-2xx response.
type ErrorBody struct {
	Error Error `json:"error"`
}

// Error describes a failed request.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeJSON parses a request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

var errBadRequest = errors.New("malformed request")

// statusFor maps domain errors to HTTP status codes and error codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, project.ErrInvalidInput), errors.Is(err, activity.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, project.ErrProjectNotFound):
		return http.StatusNotFound, "PROJECT_NOT_FOUND"
	case errors.Is(err, project.ErrRunNotFound):
		return http.StatusNotFound, "RUN_NOT_FOUND"
	case errors.Is(err, project.ErrRunInProgress):
		return http.StatusConflict, "RUN_IN_PROGRESS"
	case errors.Is(err, project.ErrDuplicateID):
		return http.StatusConflict, "DUPLICATE_ID"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// WriteResult writes a JSON success response.
func WriteResult(w http.ResponseWriter, status int, result any) {
	writeJSON(w, status, result)
}

// WriteError writes a JSON error response for err.
func WriteError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, ErrorBody{Error: Error{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
