package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"focustracks/model"
)

// PlaylistRepository defines the interface for playlist data operations.
type PlaylistRepository interface {
	CreatePlaylist(ctx context.Context, playlist *model.Playlist) (int64, error)
	GetPlaylistByID(ctx context.Context, id int64) (*model.Playlist, error)
	GetPlaylistsByUserID(ctx context.Context, userID int64) ([]*model.Playlist, error)
	UpdatePlaylist(ctx context.Context, playlist *model.Playlist) error
	DeletePlaylist(ctx context.Context, id int64) error
}

// mysqlPlaylistRepository implements PlaylistRepository for MySQL.
type mysqlPlaylistRepository struct {
	db *sql.DB
}

// NewMySQLPlaylistRepository creates a new mysqlPlaylistRepository.
func NewMySQLPlaylistRepository(db *sql.DB) PlaylistRepository {
	return &mysqlPlaylistRepository{db: db}
}

// CreatePlaylist adds a new playlist.
func (r *mysqlPlaylistRepository) CreatePlaylist(ctx context.Context, playlist *model.Playlist) (int64, error) {
	query := `INSERT INTO playlists (user_id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, playlist.UserID, playlist.Name, playlist.Description, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreatePlaylist: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreatePlaylist: %w", err)
	}
	return id, nil
}

// GetPlaylistByID retrieves a playlist by its ID.
func (r *mysqlPlaylistRepository) GetPlaylistByID(ctx context.Context, id int64) (*model.Playlist, error) {
	query := `SELECT id, user_id, name, description, created_at, updated_at FROM playlists WHERE id = ?`
	playlist := &model.Playlist{}
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&playlist.ID, &playlist.UserID, &playlist.Name, &description,
		&playlist.CreatedAt, &playlist.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Playlist not found
		}
		return nil, fmt.Errorf("failed to scan playlist by ID %d: %w", id, err)
	}
	playlist.Description = description.String
	return playlist, nil
}

// GetPlaylistsByUserID retrieves all playlists owned by a user.
func (r *mysqlPlaylistRepository) GetPlaylistsByUserID(ctx context.Context, userID int64) ([]*model.Playlist, error) {
	query := `SELECT id, user_id, name, description, created_at, updated_at FROM playlists WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists for user ID %d: %w", userID, err)
	}
	defer rows.Close()

	playlists := make([]*model.Playlist, 0)
	for rows.Next() {
		playlist := &model.Playlist{}
		var description sql.NullString
		err := rows.Scan(&playlist.ID, &playlist.UserID, &playlist.Name, &description,
			&playlist.CreatedAt, &playlist.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist in GetPlaylistsByUserID: %w", err)
		}
		playlist.Description = description.String
		playlists = append(playlists, playlist)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetPlaylistsByUserID: %w", err)
	}
	return playlists, nil
}

// UpdatePlaylist updates a playlist's name and description.
func (r *mysqlPlaylistRepository) UpdatePlaylist(ctx context.Context, playlist *model.Playlist) error {
	query := `UPDATE playlists SET name = ?, description = ?, updated_at = ? WHERE id = ? AND user_id = ?`
	_, err := r.db.ExecContext(ctx, query, playlist.Name, playlist.Description, time.Now(), playlist.ID, playlist.UserID)
	if err != nil {
		return fmt.Errorf("failed to execute UpdatePlaylist for ID %d: %w", playlist.ID, err)
	}
	return nil
}

// DeletePlaylist removes a playlist row. Memberships are removed by the
// membership manager before this is called.
func (r *mysqlPlaylistRepository) DeletePlaylist(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to execute DeletePlaylist for ID %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for DeletePlaylist: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
