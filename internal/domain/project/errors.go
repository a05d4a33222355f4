package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrRunNotFound indicates the run doesn't exist within its project.
	ErrRunNotFound = errors.New("run not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrRunInProgress indicates the project's latest run is still processing.
	ErrRunInProgress = errors.New("run already in progress")
	// ErrRunTerminal indicates the run already reached completed or failed.
	ErrRunTerminal = errors.New("run already finished")
	// ErrDuplicateID indicates a project with the same id already exists.
	ErrDuplicateID = errors.New("duplicate project id")
)
