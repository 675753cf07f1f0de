package playlist

import "errors"

var (
	// ErrDuplicateMembership is returned when a track is already in the
	// playlist. Not retryable; it is a logical conflict.
	ErrDuplicateMembership = errors.New("track already in playlist")

	// ErrMembershipNotFound is returned when a remove or move targets a
	// track that is not in the playlist. Indicates stale client state.
	ErrMembershipNotFound = errors.New("track not in playlist")

	// ErrInvalidPosition is returned when a move targets a position below 1.
	ErrInvalidPosition = errors.New("position must be a positive integer")
)
