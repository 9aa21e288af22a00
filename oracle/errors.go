package oracle

import "errors"

var (
	// ErrNotConfigured indicates the oracle is disabled or has no API key.
	ErrNotConfigured = errors.New("estimation oracle not configured")

	// ErrUnavailable indicates the estimation service could not be reached.
	ErrUnavailable = errors.New("estimation oracle unavailable")

	// ErrTimeout indicates the request exceeded the task timeout.
	ErrTimeout = errors.New("estimation oracle timed out")

	// ErrInvalidOutput indicates the response could not be parsed into the
	// expected JSON shape, or failed validation.
	ErrInvalidOutput = errors.New("invalid estimation oracle output")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("estimation oracle retry attempts exhausted")
)
