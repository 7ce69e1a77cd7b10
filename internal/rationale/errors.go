package rationale

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a generation failed.
type ErrorKind string

const (
	KindProvider    ErrorKind = "provider"
	KindRateLimited ErrorKind = "rate_limited"
	KindMalformed   ErrorKind = "malformed"
	KindTimeout     ErrorKind = "timeout"
)

// ErrRateLimited is returned by providers when the upstream refused the call for quota reasons.
var ErrRateLimited = errors.New("rate limited by generation provider")

// ErrMalformedResponse is returned by providers when the upstream answered without a usable completion.
var ErrMalformedResponse = errors.New("malformed generation response")

// GenerationError reports that the external generation capability could not
// produce a rationale. Its text is for operators, never for API callers.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generation failed (%s)", e.Kind)
	}
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
