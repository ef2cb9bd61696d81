package notification

import "errors"

var (
	// ErrInvalidInput marks malformed create input (bad type or channel enum).
	ErrInvalidInput = errors.New("invalid notification input")
	// ErrNotFound marks a missing notification or preferences document.
	ErrNotFound = errors.New("notification not found")
	// ErrUnauthorized marks a mutation on a notification the caller does not own.
	ErrUnauthorized = errors.New("notification not owned by caller")
	// ErrProvider marks a channel-level delivery failure: missing device
	// token, missing phone or email, or a provider transport error. It is
	// recorded in a delivery log and never propagates past one channel.
	ErrProvider = errors.New("channel provider error")
	// ErrRetriesExhausted marks a notification that failed every channel on
	// every allowed attempt.
	ErrRetriesExhausted = errors.New("max retries exceeded")
)
