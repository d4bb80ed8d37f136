package services

import (
	"context"
	"errors"
	"net"

	"nihith303/interview-ace/internal/interview"
)

// Prompt is one request to a text generation backend.
type Prompt struct {
	System      string
	User        string
	Attachment  interview.ResumeContent
	Temperature float32
	JSON        bool
}

// Generator is the external completion service used for both question
// generation and scoring. Implementations mark transient failures so callers
// can tell infrastructure trouble from content problems.
type Generator interface {
	GenerateText(ctx context.Context, prompt Prompt) (string, error)
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func markTransient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err is a network, timeout, or overload failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te *transientError
	if errors.As(err, &te) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func transientStatus(code int) bool {
	return code == 408 || code == 429 || code >= 500
}
