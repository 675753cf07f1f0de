package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"focustracks/model"
)

// TrackFilter narrows track listings.
type TrackFilter struct {
	Genre  string
	Search string // matched against title and artist
}

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	CreateTrack(ctx context.Context, track *model.Track) (int64, error)
	GetTrackByID(ctx context.Context, id int64) (*model.Track, error)
	ListTracks(ctx context.Context, filter TrackFilter) ([]*model.Track, error)
	GetTracksByIDs(ctx context.Context, ids []int64) (map[int64]*model.Track, error)
	UpdateTrackCoverArtPath(ctx context.Context, trackID int64, coverPath string) error
	DeleteTrack(ctx context.Context, id int64) error
}

const trackColumns = "id, title, artist, genre, duration, youtube_url, spotify_url, primary_url, cover_art_path, submitted_by, created_at, updated_at"

// mysqlTrackRepository implements TrackRepository for MySQL.
type mysqlTrackRepository struct {
	db *sql.DB
}

// NewMySQLTrackRepository creates a new instance of mysqlTrackRepository.
func NewMySQLTrackRepository(db *sql.DB) TrackRepository {
	return &mysqlTrackRepository{db: db}
}

// CreateTrack adds a new track to the catalog.
func (r *mysqlTrackRepository) CreateTrack(ctx context.Context, track *model.Track) (int64, error) {
	query := `INSERT INTO tracks (title, artist, genre, duration, youtube_url, spotify_url, primary_url, cover_art_path, submitted_by, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateTrack: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	res, err := stmt.ExecContext(ctx,
		track.Title, track.Artist, track.Genre, track.Duration,
		nullString(track.YouTubeURL), nullString(track.SpotifyURL), track.PrimaryURL,
		nullString(track.CoverArtPath), nullInt64(track.SubmittedBy), now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateTrack: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateTrack: %w", err)
	}
	return id, nil
}

// GetTrackByID retrieves a track by its ID.
func (r *mysqlTrackRepository) GetTrackByID(ctx context.Context, id int64) (*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = ?`
	track, err := scanTrack(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to scan track by ID %d: %w", id, err)
	}
	return track, nil
}

// ListTracks retrieves catalog tracks, optionally filtered by genre and a
// title/artist search term, newest first.
func (r *mysqlTrackRepository) ListTracks(ctx context.Context, filter TrackFilter) ([]*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE 1=1`
	args := []interface{}{}

	if filter.Genre != "" {
		query += " AND genre = ?"
		args = append(args, filter.Genre)
	}
	if filter.Search != "" {
		query += " AND (title LIKE ? OR artist LIKE ?)"
		like := "%" + filter.Search + "%"
		args = append(args, like, like)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrackRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track in ListTracks: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in ListTracks: %w", err)
	}
	return tracks, nil
}

// GetTracksByIDs retrieves tracks for a set of IDs, keyed by ID.
func (r *mysqlTrackRepository) GetTracksByIDs(ctx context.Context, ids []int64) (map[int64]*model.Track, error) {
	result := make(map[int64]*model.Track, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id IN (?` +
		repeatPlaceholder(len(ids)-1) + `)`
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		track, err := scanTrackRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track in GetTracksByIDs: %w", err)
		}
		result[track.ID] = track
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetTracksByIDs: %w", err)
	}
	return result, nil
}

// UpdateTrackCoverArtPath updates the cover art path for a given track ID.
func (r *mysqlTrackRepository) UpdateTrackCoverArtPath(ctx context.Context, trackID int64, coverPath string) error {
	query := `UPDATE tracks SET cover_art_path = ?, updated_at = ? WHERE id = ?`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for UpdateTrackCoverArtPath: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, coverPath, time.Now(), trackID)
	if err != nil {
		return fmt.Errorf("failed to execute UpdateTrackCoverArtPath for track ID %d: %w", trackID, err)
	}
	return nil
}

// DeleteTrack removes a track from the catalog. Playlist memberships go with
// it via the foreign key cascade.
func (r *mysqlTrackRepository) DeleteTrack(ctx context.Context, id int64) error {
	query := `DELETE FROM tracks WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteTrack for track ID %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for DeleteTrack: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrack(row *sql.Row) (*model.Track, error) {
	track, err := scanTrackRows(row)
	if err == sql.ErrNoRows {
		return nil, nil // Track not found
	}
	return track, err
}

func scanTrackRows(row rowScanner) (*model.Track, error) {
	track := &model.Track{}
	var youtubeURL, spotifyURL, coverArtPath sql.NullString
	var submittedBy sql.NullInt64
	err := row.Scan(&track.ID, &track.Title, &track.Artist, &track.Genre, &track.Duration,
		&youtubeURL, &spotifyURL, &track.PrimaryURL, &coverArtPath, &submittedBy,
		&track.CreatedAt, &track.UpdatedAt)
	if err != nil {
		return nil, err
	}
	track.YouTubeURL = youtubeURL.String
	track.SpotifyURL = spotifyURL.String
	track.CoverArtPath = coverArtPath.String
	track.SubmittedBy = submittedBy.Int64
	return track, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}
