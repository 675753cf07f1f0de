package repository

import (
	"context"
	"time"

	"focustracks/model"

	"gorm.io/gorm"
)

// SubmissionRepository defines data access for the moderation queue.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	GetByID(ctx context.Context, id int64) (*model.Submission, error)
	ListByStatus(ctx context.Context, status string) ([]*model.Submission, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Submission, error)
	MarkReviewed(ctx context.Context, id int64, status string, reviewerID int64, note string, trackID *int64) error
}

// gormSubmissionRepository is the GORM implementation.
type gormSubmissionRepository struct {
	db *gorm.DB
}

// NewGormSubmissionRepository creates the GORM submission repository.
func NewGormSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &gormSubmissionRepository{db: db}
}

// Create stores a new submission.
func (r *gormSubmissionRepository) Create(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// GetByID returns a submission by ID, or nil if it does not exist.
func (r *gormSubmissionRepository) GetByID(ctx context.Context, id int64) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.WithContext(ctx).First(&submission, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

// ListByStatus returns submissions with the given status, oldest first so
// moderators work through the queue in order.
func (r *gormSubmissionRepository) ListByStatus(ctx context.Context, status string) ([]*model.Submission, error) {
	var submissions []*model.Submission
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&submissions).Error
	return submissions, err
}

// ListByUser returns all submissions created by a user, newest first.
func (r *gormSubmissionRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Submission, error) {
	var submissions []*model.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&submissions).Error
	return submissions, err
}

// MarkReviewed records a moderation decision.
func (r *gormSubmissionRepository) MarkReviewed(ctx context.Context, id int64, status string, reviewerID int64, note string, trackID *int64) error {
	updates := map[string]interface{}{
		"status":      status,
		"reviewed_by": reviewerID,
		"review_note": note,
		"updated_at":  time.Now(),
	}
	if trackID != nil {
		updates["track_id"] = *trackID
	}
	return r.db.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ?", id).
		Updates(updates).Error
}
