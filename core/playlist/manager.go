package playlist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"focustracks/model"

	"github.com/google/uuid"
)

// Manager maintains the ordered membership list for each playlist. After
// every successful operation the positions within a playlist are exactly
// 1..N with no gaps or duplicates.
//
// Mutating operations on the same playlist are serialized through a
// per-playlist mutex: each operation is a whole read-modify-write unit, so
// concurrent requests can never observe or persist duplicate positions.
type Manager struct {
	store Store

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewManager creates a Manager backed by the given store.
func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		locks: make(map[int64]*sync.Mutex),
	}
}

// playlistLock returns the mutex guarding one playlist's memberships.
func (m *Manager) playlistLock(playlistID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[playlistID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[playlistID] = l
	}
	return l
}

// Memberships returns a playlist's memberships sorted by position.
func (m *Manager) Memberships(ctx context.Context, playlistID int64) ([]*model.PlaylistTrack, error) {
	members, err := m.store.MembershipsByPlaylist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist %d memberships: %w", playlistID, err)
	}
	sortByPosition(members)
	return members, nil
}

// AddTrack appends a track to the end of a playlist. Returns
// ErrDuplicateMembership if the track is already in the playlist.
func (m *Manager) AddTrack(ctx context.Context, playlistID, trackID int64) (*model.PlaylistTrack, error) {
	l := m.playlistLock(playlistID)
	l.Lock()
	defer l.Unlock()

	members, err := m.store.MembershipsByPlaylist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist %d memberships: %w", playlistID, err)
	}

	maxPos := 0
	for _, member := range members {
		if member.TrackID == trackID {
			return nil, ErrDuplicateMembership
		}
		if member.Position > maxPos {
			maxPos = member.Position
		}
	}

	now := time.Now()
	membership := &model.PlaylistTrack{
		ID:         uuid.NewString(),
		PlaylistID: playlistID,
		TrackID:    trackID,
		Position:   maxPos + 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := m.store.InsertMembership(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// RemoveTrack deletes a membership and renumbers the remaining tracks so
// positions stay dense, preserving relative order. The delete and the
// renumbering are one atomic store write. Returns ErrMembershipNotFound if
// the track is not in the playlist.
func (m *Manager) RemoveTrack(ctx context.Context, playlistID, trackID int64) error {
	l := m.playlistLock(playlistID)
	l.Lock()
	defer l.Unlock()

	members, err := m.store.MembershipsByPlaylist(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("failed to load playlist %d memberships: %w", playlistID, err)
	}

	var removed *model.PlaylistTrack
	for _, member := range members {
		if member.TrackID == trackID {
			removed = member
			break
		}
	}
	if removed == nil {
		return ErrMembershipNotFound
	}

	sortByPosition(members)
	changed := make([]*model.PlaylistTrack, 0, len(members))
	want := 1
	for _, member := range members {
		if member == removed {
			continue
		}
		if member.Position != want {
			member.Position = want
			changed = append(changed, member)
		}
		want++
	}

	if err := m.store.DeleteMembership(ctx, playlistID, trackID, changed); err != nil {
		return err
	}
	return nil
}

// RemoveTrackFromAllPlaylists removes a track from every playlist that
// contains it, keeping each playlist's positions dense. Returns the affected
// playlist IDs so callers can invalidate caches and notify subscribers.
// Used when a track is deleted from the catalog.
func (m *Manager) RemoveTrackFromAllPlaylists(ctx context.Context, trackID int64) ([]int64, error) {
	playlistIDs, err := m.store.PlaylistIDsByTrack(ctx, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to find playlists containing track %d: %w", trackID, err)
	}

	affected := make([]int64, 0, len(playlistIDs))
	for _, playlistID := range playlistIDs {
		err := m.RemoveTrack(ctx, playlistID, trackID)
		if errors.Is(err, ErrMembershipNotFound) {
			// Removed concurrently; nothing left to renumber.
			continue
		}
		if err != nil {
			return affected, err
		}
		affected = append(affected, playlistID)
	}
	return affected, nil
}

// MoveTrack moves a track to newPosition, shifting the tracks between the
// old and new positions by one. Positions beyond the end of the playlist are
// clamped to the last valid position (append semantics); positions below 1
// are rejected with ErrInvalidPosition. Returns the playlist's memberships
// sorted by their new positions.
func (m *Manager) MoveTrack(ctx context.Context, playlistID, trackID int64, newPosition int) ([]*model.PlaylistTrack, error) {
	if newPosition < 1 {
		return nil, ErrInvalidPosition
	}

	l := m.playlistLock(playlistID)
	l.Lock()
	defer l.Unlock()

	members, err := m.store.MembershipsByPlaylist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist %d memberships: %w", playlistID, err)
	}

	var moved *model.PlaylistTrack
	for _, member := range members {
		if member.TrackID == trackID {
			moved = member
			break
		}
	}
	if moved == nil {
		return nil, ErrMembershipNotFound
	}

	if newPosition > len(members) {
		newPosition = len(members)
	}

	oldPosition := moved.Position
	if newPosition == oldPosition {
		sortByPosition(members)
		return members, nil
	}

	// Shift every membership strictly between the old and new position by
	// one, then drop the moved track into the freed slot. The interval
	// bounds are half-open on the old side: items at the old position have
	// already vacated it.
	changed := make([]*model.PlaylistTrack, 0, len(members))
	for _, member := range members {
		if member == moved {
			continue
		}
		switch {
		case oldPosition < member.Position && member.Position <= newPosition:
			member.Position--
			changed = append(changed, member)
		case newPosition <= member.Position && member.Position < oldPosition:
			member.Position++
			changed = append(changed, member)
		}
	}
	moved.Position = newPosition
	changed = append(changed, moved)

	if err := m.store.UpdatePositions(ctx, changed); err != nil {
		return nil, fmt.Errorf("failed to update positions in playlist %d: %w", playlistID, err)
	}

	sortByPosition(members)
	return members, nil
}

// RemovePlaylist deletes every membership of a playlist.
func (m *Manager) RemovePlaylist(ctx context.Context, playlistID int64) error {
	l := m.playlistLock(playlistID)
	l.Lock()
	defer l.Unlock()

	if err := m.store.DeleteAllMemberships(ctx, playlistID); err != nil {
		return fmt.Errorf("failed to delete memberships of playlist %d: %w", playlistID, err)
	}
	return nil
}

func sortByPosition(members []*model.PlaylistTrack) {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Position < members[j].Position
	})
}
