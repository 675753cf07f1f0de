package model

import "time"

// Submission statuses.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// Submission is a user-submitted track awaiting moderation. Approved
// submissions become catalog tracks.
type Submission struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     int64     `json:"userId" gorm:"index;not null"`
	Title      string    `json:"title" gorm:"size:255;not null"`
	Artist     string    `json:"artist" gorm:"size:255"`
	Genre      string    `json:"genre" gorm:"size:100"`
	Duration   int       `json:"duration" gorm:"default:0"`
	YouTubeURL string    `json:"youtubeUrl" gorm:"column:youtube_url;size:512"`
	SpotifyURL string    `json:"spotifyUrl" gorm:"column:spotify_url;size:512"`
	LegacyURL  string    `json:"url,omitempty" gorm:"column:legacy_url;size:512"`
	PrimaryURL string    `json:"primaryUrl" gorm:"column:primary_url;size:512"`
	Status     string    `json:"status" gorm:"size:20;default:'pending';index"` // pending, approved, rejected
	ReviewNote string    `json:"reviewNote,omitempty" gorm:"size:512"`
	ReviewedBy *int64    `json:"reviewedBy,omitempty" gorm:"index"`
	TrackID    *int64    `json:"trackId,omitempty"` // Set once approved
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName overrides the GORM table name.
func (Submission) TableName() string {
	return "submissions"
}

// SubmitTrackRequest is the request body for creating a submission.
type SubmitTrackRequest struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Genre      string `json:"genre"`
	Duration   int    `json:"duration"`
	YouTubeURL string `json:"youtubeUrl"`
	SpotifyURL string `json:"spotifyUrl"`
	LegacyURL  string `json:"url"`
}
