package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service matches at most one of these
// through errors.Is, which is what the HTTP layer maps to status codes.
var (
	ErrNotFound         = errors.New("not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidState     = errors.New("invalid state")
	ErrConcurrentUpdate = errors.New("resource was modified concurrently, please retry")
)

var (
	ErrExerciseNotFound        = fmt.Errorf("exercise %w", ErrNotFound)
	ErrRoutineNotFound         = fmt.Errorf("routine %w", ErrNotFound)
	ErrSessionNotFound         = fmt.Errorf("workout session %w", ErrNotFound)
	ErrSessionExerciseNotFound = fmt.Errorf("session exercise %w", ErrNotFound)

	ErrRoutineAccessDenied = fmt.Errorf("%w to this routine", ErrAccessDenied)
	ErrSessionAccessDenied = fmt.Errorf("%w to this workout session", ErrAccessDenied)

	ErrSessionFinished = fmt.Errorf("%w: workout session is already finished", ErrInvalidState)
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}
