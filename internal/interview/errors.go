package interview

import (
	"errors"
	"fmt"
)

// ErrStaleResponse is returned when a collaborator result arrives for a call
// the session has already moved past.
var ErrStaleResponse = errors.New("stale response ignored")

// ValidationError reports input that violates a stated constraint.
// It is never retryable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// GenerationError reports a failure contacting or interpreting the question
// generation service.
type GenerationError struct {
	Reason    string
	Retryable bool
	Err       error
}

func (e *GenerationError) Error() string {
	return "question generation failed: " + e.Reason
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ScoringError reports a failure contacting or interpreting the scoring service.
type ScoringError struct {
	Reason    string
	Retryable bool
	Err       error
}

func (e *ScoringError) Error() string {
	return "scoring failed: " + e.Reason
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

// PreconditionError reports an operation invoked against a session in the
// wrong state. It indicates an integration fault rather than bad user input.
type PreconditionError struct {
	Op    string
	State State
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("cannot %s while session is %s", e.Op, e.State)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func precondition(op string, state State) error {
	return &PreconditionError{Op: op, State: state}
}

// IsRetryable reports whether err is a transient collaborator failure.
func IsRetryable(err error) bool {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Retryable
	}
	var scoreErr *ScoringError
	if errors.As(err, &scoreErr) {
		return scoreErr.Retryable
	}
	return false
}
