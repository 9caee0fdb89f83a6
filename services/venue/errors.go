package venue

import (
	"errors"
	"fmt"
)

// ErrNoCandidates signals that the directory returned zero usable venues;
// a proposal cannot be created without one.
var ErrNoCandidates = errors.New("no venues found near the midpoint")

// ErrInvalidInstant signals that the target instant is not a valid point in
// time.
var ErrInvalidInstant = errors.New("invalid target instant")

// UpstreamError wraps a directory provider failure. Body is diagnostic only
// and must never reach an end user; callers log it and surface a generic
// message. The operation is retryable since nothing was persisted.
type UpstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("venue directory unavailable: %v", e.Err)
	}
	return fmt.Sprintf("venue directory returned status %d", e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
