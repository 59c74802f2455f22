package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for job and tool lookup failures.
// Handlers map these onto HTTP status codes with errors.Is.
var (
	ErrJobNotFound     = errors.New("job not found")
	ErrDuplicateJobID  = errors.New("duplicate job id")
	ErrToolNotFound    = errors.New("tool not found")
	ErrJobNotCompleted = errors.New("job is not completed")
	ErrNoArtifact      = errors.New("job has no downloadable artifact")
)

// InvalidProgressError is returned when a progress update falls outside
// the [0,100] range. The job record is left untouched.
type InvalidProgressError struct {
	Progress int
}

func (e *InvalidProgressError) Error() string {
	return fmt.Sprintf("invalid progress %d: must be between 0 and 100", e.Progress)
}

// InvalidInputError signals a request whose inputs cannot drive the
// requested tool (missing upload, malformed URL, bad option value).
// The API maps it to a 400 response.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// NewInvalidInputError builds an InvalidInputError with a formatted message.
func NewInvalidInputError(format string, args ...interface{}) *InvalidInputError {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// UnknownToolError wraps ErrToolNotFound with the requested name so the
// API can report exactly what failed to resolve.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

func (e *UnknownToolError) Unwrap() error {
	return ErrToolNotFound
}
