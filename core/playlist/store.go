package playlist

import (
	"context"

	"focustracks/model"
)

// Store is the persistence collaborator for playlist memberships. The
// manager is defined in terms of these primitives and does not assume a
// specific query language. Write primitives that touch more than one row
// must apply all rows or none: a partially committed renumbering would leave
// duplicate or missing positions behind.
type Store interface {
	// MembershipsByPlaylist returns all memberships of a playlist ordered
	// by position.
	MembershipsByPlaylist(ctx context.Context, playlistID int64) ([]*model.PlaylistTrack, error)

	// PlaylistIDsByTrack returns the IDs of every playlist containing the
	// track.
	PlaylistIDsByTrack(ctx context.Context, trackID int64) ([]int64, error)

	// InsertMembership stores a new membership. Returns
	// ErrDuplicateMembership when the (playlist, track) pair already exists.
	InsertMembership(ctx context.Context, m *model.PlaylistTrack) error

	// DeleteMembership removes a membership and applies the accompanying
	// position updates in a single atomic unit. Returns
	// ErrMembershipNotFound when the pair does not exist; no updates are
	// applied in that case.
	DeleteMembership(ctx context.Context, playlistID, trackID int64, updates []*model.PlaylistTrack) error

	// UpdatePositions applies a batch of position changes atomically.
	UpdatePositions(ctx context.Context, updates []*model.PlaylistTrack) error

	// DeleteAllMemberships removes every membership of a playlist.
	DeleteAllMemberships(ctx context.Context, playlistID int64) error
}
