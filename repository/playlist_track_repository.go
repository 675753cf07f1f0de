package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"focustracks/core/playlist"
	"focustracks/model"
)

// mysqlPlaylistTrackRepository implements playlist.Store for MySQL. Multi-row
// position rewrites run inside a transaction so a fault mid-renumbering never
// commits a partial state.
type mysqlPlaylistTrackRepository struct {
	db *sql.DB
}

// NewMySQLPlaylistTrackRepository creates the MySQL playlist membership store.
func NewMySQLPlaylistTrackRepository(db *sql.DB) playlist.Store {
	return &mysqlPlaylistTrackRepository{db: db}
}

// MembershipsByPlaylist returns all memberships of a playlist ordered by position.
func (r *mysqlPlaylistTrackRepository) MembershipsByPlaylist(ctx context.Context, playlistID int64) ([]*model.PlaylistTrack, error) {
	query := `SELECT id, playlist_id, track_id, position, created_at, updated_at
	           FROM playlist_tracks WHERE playlist_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships for playlist %d: %w", playlistID, err)
	}
	defer rows.Close()

	members := make([]*model.PlaylistTrack, 0)
	for rows.Next() {
		member := &model.PlaylistTrack{}
		err := rows.Scan(&member.ID, &member.PlaylistID, &member.TrackID, &member.Position,
			&member.CreatedAt, &member.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership in MembershipsByPlaylist: %w", err)
		}
		members = append(members, member)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in MembershipsByPlaylist: %w", err)
	}
	return members, nil
}

// PlaylistIDsByTrack returns the IDs of every playlist containing the track.
func (r *mysqlPlaylistTrackRepository) PlaylistIDsByTrack(ctx context.Context, trackID int64) ([]int64, error) {
	query := `SELECT playlist_id FROM playlist_tracks WHERE track_id = ?`
	rows, err := r.db.QueryContext(ctx, query, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists for track %d: %w", trackID, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan playlist ID in PlaylistIDsByTrack: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in PlaylistIDsByTrack: %w", err)
	}
	return ids, nil
}

// InsertMembership stores a new membership.
func (r *mysqlPlaylistTrackRepository) InsertMembership(ctx context.Context, m *model.PlaylistTrack) error {
	query := `INSERT INTO playlist_tracks (id, playlist_id, track_id, position, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.PlaylistID, m.TrackID, m.Position, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isDuplicateEntry(err) {
			return playlist.ErrDuplicateMembership
		}
		return fmt.Errorf("failed to execute InsertMembership: %w", err)
	}
	return nil
}

// DeleteMembership removes a membership by (playlist, track) pair and applies
// the renumbering updates in the same transaction.
func (r *mysqlPlaylistTrackRepository) DeleteMembership(ctx context.Context, playlistID, trackID int64, updates []*model.PlaylistTrack) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for DeleteMembership: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?`, playlistID, trackID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute DeleteMembership: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to get rows affected for DeleteMembership: %w", err)
	}
	if affected == 0 {
		tx.Rollback()
		return playlist.ErrMembershipNotFound
	}

	if err := applyPositionUpdates(ctx, tx, updates); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit DeleteMembership: %w", err)
	}
	return nil
}

// UpdatePositions applies a batch of position changes in one transaction.
func (r *mysqlPlaylistTrackRepository) UpdatePositions(ctx context.Context, updates []*model.PlaylistTrack) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for UpdatePositions: %w", err)
	}

	if err := applyPositionUpdates(ctx, tx, updates); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit UpdatePositions: %w", err)
	}
	return nil
}

func applyPositionUpdates(ctx context.Context, tx *sql.Tx, updates []*model.PlaylistTrack) error {
	if len(updates) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `UPDATE playlist_tracks SET position = ?, updated_at = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare position update statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, m := range updates {
		if _, err := stmt.ExecContext(ctx, m.Position, now, m.ID); err != nil {
			return fmt.Errorf("failed to update position of membership %s: %w", m.ID, err)
		}
	}
	return nil
}

// DeleteAllMemberships removes every membership of a playlist.
func (r *mysqlPlaylistTrackRepository) DeleteAllMemberships(ctx context.Context, playlistID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM playlist_tracks WHERE playlist_id = ?`, playlistID)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteAllMemberships for playlist %d: %w", playlistID, err)
	}
	return nil
}
