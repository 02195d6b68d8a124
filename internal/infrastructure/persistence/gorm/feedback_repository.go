package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/JamieKoz/platepicker-api/internal/domain/feedback"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
	apperrors "github.com/JamieKoz/platepicker-api/pkg/errors"
)

// FeedbackRepository implements outbound.FeedbackRepository using GORM.
type FeedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *gorm.DB) outbound.FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create persists a feedback submission.
func (r *FeedbackRepository) Create(ctx context.Context, f *feedback.Feedback) (*feedback.Feedback, error) {
	model := FeedbackModel{Name: f.Name, Email: f.Email, Message: f.Message}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create feedback", err)
	}
	return feedbackToDomain(&model), nil
}

// List returns all feedback rows, newest first.
func (r *FeedbackRepository) List(ctx context.Context) ([]feedback.Feedback, error) {
	var models []FeedbackModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, apperrors.NewDatabaseError("list feedback", err)
	}
	out := make([]feedback.Feedback, len(models))
	for i := range models {
		out[i] = *feedbackToDomain(&models[i])
	}
	return out, nil
}

// GetByID returns one feedback row.
func (r *FeedbackRepository) GetByID(ctx context.Context, id uint) (*feedback.Feedback, error) {
	var model FeedbackModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("feedback")
		}
		return nil, apperrors.NewDatabaseError("get feedback", err)
	}
	return feedbackToDomain(&model), nil
}

// SetResolved updates the resolved flag.
func (r *FeedbackRepository) SetResolved(ctx context.Context, id uint, resolved bool) error {
	res := r.db.WithContext(ctx).Model(&FeedbackModel{}).Where("id = ?", id).Update("resolved", resolved)
	if res.Error != nil {
		return apperrors.NewDatabaseError("update feedback", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("feedback")
	}
	return nil
}
