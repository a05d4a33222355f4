package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/meetflow/internal/domain/activity"
	"github.com/rpggio/meetflow/internal/domain/project"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects to find valid ids"}
	case errors.Is(err, project.ErrRunNotFound):
		return &APIError{Code: "RUN_NOT_FOUND", Message: "run not found", RecoveryHint: "Call get_run_history for the project"}
	case errors.Is(err, project.ErrRunInProgress):
		return &APIError{Code: "RUN_IN_PROGRESS", Message: "the latest run is still processing", RecoveryHint: "Wait for it to finish, then retry"}
	case errors.Is(err, project.ErrRunTerminal):
		return &APIError{Code: "RUN_FINISHED", Message: "run already finished"}
	case errors.Is(err, project.ErrDuplicateID):
		return &APIError{Code: "DUPLICATE_ID", Message: err.Error(), RecoveryHint: "Omit id to generate one"}
	case errors.Is(err, project.ErrInvalidInput), errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Please fill in all required fields"}
	default:
		return nil
	}
}

// toolError converts err to the value returned from a tool handler.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
