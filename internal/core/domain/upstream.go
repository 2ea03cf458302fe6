package domain

import (
	"fmt"
	"net/http"
)

// UpstreamError is a non-2xx answer of the EduLearn backend. Message is the
// backend's own user-facing message when it sent one.
type UpstreamError struct {
	Status  int
	Message string
	// Kind overrides the sentinel the error unwraps to.
	Kind error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("backend status %d: %s", e.Status, e.Message)
}

// Unwrap maps the status onto the domain sentinels so callers can use errors.Is.
func (e *UpstreamError) Unwrap() error {
	if e.Kind != nil {
		return e.Kind
	}
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusForbidden:
		return ErrForbidden
	default:
		return ErrUpstream
	}
}
