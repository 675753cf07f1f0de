package model

import "time"

// Track represents an approved track in the focus music catalog.
type Track struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Artist       string    `json:"artist"`
	Genre        string    `json:"genre"`
	Duration     int       `json:"duration"` // Duration in seconds, 0 if unknown
	YouTubeURL   string    `json:"youtubeUrl,omitempty"`
	SpotifyURL   string    `json:"spotifyUrl,omitempty"`
	PrimaryURL   string    `json:"primaryUrl"` // Canonical playback URL, derived by the normalizer
	CoverArtPath string    `json:"coverArtPath,omitempty"`
	SubmittedBy  int64     `json:"submittedBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
