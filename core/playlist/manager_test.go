package playlist

import (
	"context"
	"errors"
	"testing"

	"focustracks/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store. It hands out copies so position changes
// only become visible through the write primitives, like a real database.
// Batched writes apply all rows or none, matching the transactional MySQL
// implementation; writeErr makes the next write fail without applying
// anything.
type fakeStore struct {
	members  map[int64][]model.PlaylistTrack
	updates  int // rows written through position updates
	writeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{members: make(map[int64][]model.PlaylistTrack)}
}

func (s *fakeStore) MembershipsByPlaylist(_ context.Context, playlistID int64) ([]*model.PlaylistTrack, error) {
	out := make([]*model.PlaylistTrack, 0, len(s.members[playlistID]))
	for _, m := range s.members[playlistID] {
		m := m
		out = append(out, &m)
	}
	return out, nil
}

func (s *fakeStore) InsertMembership(_ context.Context, m *model.PlaylistTrack) error {
	for _, existing := range s.members[m.PlaylistID] {
		if existing.TrackID == m.TrackID {
			return ErrDuplicateMembership
		}
	}
	s.members[m.PlaylistID] = append(s.members[m.PlaylistID], *m)
	return nil
}

func (s *fakeStore) PlaylistIDsByTrack(_ context.Context, trackID int64) ([]int64, error) {
	ids := make([]int64, 0)
	for playlistID, members := range s.members {
		for _, m := range members {
			if m.TrackID == trackID {
				ids = append(ids, playlistID)
				break
			}
		}
	}
	return ids, nil
}

func (s *fakeStore) DeleteMembership(_ context.Context, playlistID, trackID int64, updates []*model.PlaylistTrack) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	members := s.members[playlistID]
	for i, m := range members {
		if m.TrackID == trackID {
			s.members[playlistID] = append(members[:i], members[i+1:]...)
			s.applyUpdates(updates)
			return nil
		}
	}
	return ErrMembershipNotFound
}

func (s *fakeStore) UpdatePositions(_ context.Context, updates []*model.PlaylistTrack) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.applyUpdates(updates)
	return nil
}

func (s *fakeStore) applyUpdates(updates []*model.PlaylistTrack) {
	for _, u := range updates {
		for playlistID, members := range s.members {
			for i, m := range members {
				if m.ID == u.ID {
					s.members[playlistID][i].Position = u.Position
				}
			}
		}
	}
	s.updates += len(updates)
}

func (s *fakeStore) DeleteAllMemberships(_ context.Context, playlistID int64) error {
	delete(s.members, playlistID)
	return nil
}

// trackOrder returns the playlist's track IDs sorted by stored position, and
// asserts positions are exactly 1..N.
func trackOrder(t *testing.T, s *fakeStore, playlistID int64) []int64 {
	t.Helper()

	byPosition := make(map[int]int64, len(s.members[playlistID]))
	for _, m := range s.members[playlistID] {
		_, taken := byPosition[m.Position]
		require.False(t, taken, "duplicate position %d", m.Position)
		byPosition[m.Position] = m.TrackID
	}

	order := make([]int64, 0, len(byPosition))
	for pos := 1; pos <= len(byPosition); pos++ {
		trackID, ok := byPosition[pos]
		require.True(t, ok, "gap at position %d", pos)
		order = append(order, trackID)
	}
	return order
}

func addTracks(t *testing.T, m *Manager, playlistID int64, trackIDs ...int64) {
	t.Helper()
	for _, id := range trackIDs {
		_, err := m.AddTrack(context.Background(), playlistID, id)
		require.NoError(t, err)
	}
}

func TestAddTrackAppendsToEnd(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)

	first, err := m.AddTrack(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Position)
	assert.NotEmpty(t, first.ID)

	second, err := m.AddTrack(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Position)

	assert.Equal(t, []int64{10, 20}, trackOrder(t, store, 1))
}

func TestAddTrackRejectsDuplicate(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10)

	_, err := m.AddTrack(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrDuplicateMembership)
	assert.Equal(t, []int64{10}, trackOrder(t, store, 1))
}

func TestAddTrackIndependentPlaylists(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20)

	membership, err := m.AddTrack(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, membership.Position)
}

func TestRemoveTrackClosesGap(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20, 30, 40)

	require.NoError(t, m.RemoveTrack(context.Background(), 1, 20))
	assert.Equal(t, []int64{10, 30, 40}, trackOrder(t, store, 1))
}

func TestRemoveTrackLastPosition(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20, 30)
	store.updates = 0

	require.NoError(t, m.RemoveTrack(context.Background(), 1, 30))
	assert.Equal(t, []int64{10, 20}, trackOrder(t, store, 1))
	// Nothing after the removed track, so no positions change.
	assert.Equal(t, 0, store.updates)
}

func TestRemoveTrackNotFound(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10)

	err := m.RemoveTrack(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrMembershipNotFound)
}

func TestRemoveThenAddAppendsAtEnd(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20, 30)

	require.NoError(t, m.RemoveTrack(context.Background(), 1, 10))

	membership, err := m.AddTrack(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, membership.Position)
	assert.Equal(t, []int64{20, 30, 10}, trackOrder(t, store, 1))
}

func TestMoveTrackForward(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20, 30, 40)

	members, err := m.MoveTrack(context.Background(), 1, 10, 3)
	require.NoError(t, err)

	assert.Equal(t, []int64{20, 30, 10, 40}, trackOrder(t, store, 1))
	require.Len(t, members, 4)
	for i, member := range members {
		assert.Equal(t, i+1, member.Position)
	}
}

func TestMoveTrackBackward(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20, 30, 40)

	_, err := m.MoveTrack(context.Background(), 1, 40, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 40, 20, 30}, trackOrder(t, store, 1))
}

func TestMoveTrackToFrontThenRemove(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20, 30)

	_, err := m.MoveTrack(context.Background(), 1, 30, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 10, 20}, trackOrder(t, store, 1))

	require.NoError(t, m.RemoveTrack(context.Background(), 1, 10))
	assert.Equal(t, []int64{30, 20}, trackOrder(t, store, 1))
}

func TestMoveTrackClampsBeyondEnd(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20, 30)

	_, err := m.MoveTrack(context.Background(), 1, 10, 99)
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 30, 10}, trackOrder(t, store, 1))
}

func TestMoveTrackRejectsNonPositive(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20)

	_, err := m.MoveTrack(context.Background(), 1, 20, 0)
	assert.ErrorIs(t, err, ErrInvalidPosition)

	_, err = m.MoveTrack(context.Background(), 1, 20, -3)
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestMoveTrackSamePositionIsNoOp(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20, 30)
	store.updates = 0

	members, err := m.MoveTrack(context.Background(), 1, 20, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, store.updates)
	assert.Equal(t, []int64{10, 20, 30}, trackOrder(t, store, 1))
	require.Len(t, members, 3)
}

func TestMoveTrackOnlyTouchesShiftedRows(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20, 30, 40, 50)
	store.updates = 0

	// Moving 20 to position 3 shifts only 30; 10, 40 and 50 stay put.
	_, err := m.MoveTrack(context.Background(), 1, 20, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, store.updates)
	assert.Equal(t, []int64{10, 30, 20, 40, 50}, trackOrder(t, store, 1))
}

func TestMoveTrackNotFound(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10)

	_, err := m.MoveTrack(context.Background(), 1, 99, 1)
	assert.ErrorIs(t, err, ErrMembershipNotFound)
}

func TestRemovePlaylistDropsAllMemberships(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20, 30)
	addTracks(t, m, 2, 10)

	require.NoError(t, m.RemovePlaylist(context.Background(), 1))
	assert.Empty(t, store.members[1])
	assert.Equal(t, []int64{10}, trackOrder(t, store, 2))
}

func TestMembershipsSortedByPosition(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20, 30)
	_, err := m.MoveTrack(context.Background(), 1, 30, 1)
	require.NoError(t, err)

	members, err := m.Memberships(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, int64(30), members[0].TrackID)
	assert.Equal(t, int64(10), members[1].TrackID)
	assert.Equal(t, int64(20), members[2].TrackID)
}

func TestMoveTrackWriteFaultLeavesPositionsUntouched(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20, 30)
	store.writeErr = errors.New("connection reset")

	_, err := m.MoveTrack(context.Background(), 1, 10, 3)
	require.Error(t, err)

	// A failed move must not commit any of the shifted rows.
	assert.Equal(t, []int64{10, 20, 30}, trackOrder(t, store, 1))
}

func TestRemoveTrackWriteFaultLeavesMembershipsUntouched(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20, 30)
	store.writeErr = errors.New("connection reset")

	err := m.RemoveTrack(context.Background(), 1, 10)
	require.Error(t, err)

	assert.Equal(t, []int64{10, 20, 30}, trackOrder(t, store, 1))
}

func TestRemoveTrackFromAllPlaylists(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10, 20, 30)
	addTracks(t, m, 2, 20, 10)
	addTracks(t, m, 3, 30)

	affected, err := m.RemoveTrackFromAllPlaylists(context.Background(), 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, affected)

	assert.Equal(t, []int64{20, 30}, trackOrder(t, store, 1))
	assert.Equal(t, []int64{20}, trackOrder(t, store, 2))
	assert.Equal(t, []int64{30}, trackOrder(t, store, 3))
}

func TestRemoveTrackFromAllPlaylistsNoMemberships(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	addTracks(t, m, 1, 10)

	affected, err := m.RemoveTrackFromAllPlaylists(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, affected)
	assert.Equal(t, []int64{10}, trackOrder(t, store, 1))
}

func TestPositionsStayDenseAcrossMixedOperations(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	ctx := context.Background()

	addTracks(t, m, 1, 10, 20, 30, 40, 50)

	_, err := m.MoveTrack(ctx, 1, 50, 1)
	require.NoError(t, err)
	require.NoError(t, m.RemoveTrack(ctx, 1, 30))
	_, err = m.AddTrack(ctx, 1, 60)
	require.NoError(t, err)
	_, err = m.MoveTrack(ctx, 1, 10, 4)
	require.NoError(t, err)
	require.NoError(t, m.RemoveTrack(ctx, 1, 50))

	// trackOrder fails on any gap or duplicate position.
	order := trackOrder(t, store, 1)
	assert.Len(t, order, 4)
}
