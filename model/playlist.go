package model

import "time"

// Playlist represents a user-owned playlist.
type Playlist struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistTrack represents one track's membership in a playlist.
// Positions within a playlist are dense: always exactly 1..N.
type PlaylistTrack struct {
	ID         string    `json:"id"` // UUID assigned on creation
	PlaylistID int64     `json:"playlistId"`
	TrackID    int64     `json:"trackId"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PlaylistWithTracks bundles a playlist with its ordered tracks.
type PlaylistWithTracks struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []*Track `json:"tracks"`
}
