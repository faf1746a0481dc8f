package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidQueue   = errors.New("invalid queue: must be premium, recommended, general, or boost")
	ErrInvalidCount   = errors.New("count must be between 1 and the configured maximum")
	ErrInvalidID      = errors.New("listing id must be a positive integer")
	ErrNotActivatable = errors.New("listing cannot join this exposure queue in its current state")
	ErrQueueFull      = errors.New("rotation task queue is at capacity")
	ErrUnauthorized   = errors.New("missing or invalid bearer token")
)
