package domain

import "errors"

var (
	// ErrInvalidEntry is returned when an index batch is malformed
	// (mismatched slice lengths, unusable vectors).
	ErrInvalidEntry = errors.New("invalid index entry")

	// ErrIndexUnavailable is returned when the vector index cannot be
	// reached or answered. Fatal for the current operation.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrEmptyAnswer is returned when the model produced a blank completion.
	ErrEmptyAnswer = errors.New("model returned an empty answer")
)
