package interview

import (
	"errors"
	"time"
)

type FailureKind string

const (
	FailureValidation FailureKind = "validation"
	FailureGeneration FailureKind = "generation"
	FailureScoring    FailureKind = "scoring"
	FailureAbandoned  FailureKind = "abandoned"
)

// Failure is the display-safe record of what terminated a session.
type Failure struct {
	Kind      FailureKind `json:"kind"`
	Stage     Stage       `json:"stage"`
	Field     string      `json:"field,omitempty"`
	Message   string      `json:"message"`
	Retryable bool        `json:"retryable"`
	At        time.Time   `json:"at"`
}

// Err rebuilds the typed error described by the failure.
func (f Failure) Err() error {
	return f.errWithCause(nil)
}

func (f Failure) errWithCause(cause error) error {
	switch f.Kind {
	case FailureValidation:
		var validationErr *ValidationError
		if errors.As(cause, &validationErr) {
			return validationErr
		}
		return &ValidationError{Field: f.Field, Reason: f.Message}
	case FailureGeneration:
		var genErr *GenerationError
		if errors.As(cause, &genErr) {
			return genErr
		}
		return &GenerationError{Reason: f.Message, Retryable: f.Retryable, Err: cause}
	case FailureScoring:
		var scoreErr *ScoringError
		if errors.As(cause, &scoreErr) {
			return scoreErr
		}
		return &ScoringError{Reason: f.Message, Retryable: f.Retryable, Err: cause}
	case FailureAbandoned:
		return ErrAbandoned
	}
	return errors.New(f.Message)
}

func classifyFailure(stage Stage, cause error, now time.Time) Failure {
	f := Failure{Stage: stage, At: now}

	var validationErr *ValidationError
	var genErr *GenerationError
	var scoreErr *ScoringError
	switch {
	case errors.As(cause, &validationErr):
		f.Kind = FailureValidation
		f.Field = validationErr.Field
		f.Message = validationErr.Reason
	case errors.As(cause, &genErr):
		f.Kind = FailureGeneration
		f.Message = genErr.Reason
		f.Retryable = genErr.Retryable
	case errors.As(cause, &scoreErr):
		f.Kind = FailureScoring
		f.Message = scoreErr.Reason
		f.Retryable = scoreErr.Retryable
	case stage == StageScoring:
		f.Kind = FailureScoring
		f.Message = "unexpected scoring failure"
	default:
		f.Kind = FailureGeneration
		f.Message = "unexpected generation failure"
	}
	return f
}
