package gorm

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
	apperrors "github.com/JamieKoz/platepicker-api/pkg/errors"
)

// TallyRepository implements outbound.TallyRepository using GORM.
type TallyRepository struct {
	db *gorm.DB
}

// NewTallyRepository creates a new tally repository
func NewTallyRepository(db *gorm.DB) outbound.TallyRepository {
	return &TallyRepository{db: db}
}

// Increment creates or bumps the (user, meal) counter in a single
// INSERT ... ON CONFLICT DO UPDATE statement, so concurrent selections
// never lose a count.
func (r *TallyRepository) Increment(ctx context.Context, userID string, mealID uint, at time.Time) error {
	row := UserMealTallyModel{
		UserID:         userID,
		UserMealID:     mealID,
		Tally:          1,
		LastSelectedAt: &at,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "user_meal_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"tally":            gorm.Expr("user_meal_tally.tally + 1"),
			"last_selected_at": at,
			"updated_at":       at,
		}),
	}).Create(&row).Error
	if err != nil {
		return apperrors.NewDatabaseError("increment tally", err)
	}
	return nil
}

// TopForUser returns the user's highest counters, tally descending.
func (r *TallyRepository) TopForUser(ctx context.Context, userID string, limit int) ([]meal.TallyRow, error) {
	var models []UserMealTallyModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("tally DESC, last_selected_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("list favourites", err)
	}
	out := make([]meal.TallyRow, len(models))
	for i, m := range models {
		out[i] = tallyToDomain(m)
	}
	return out, nil
}

// TopOverall returns cross-user tally sums per meal, descending.
func (r *TallyRepository) TopOverall(ctx context.Context, limit int) ([]meal.TallyAggregate, error) {
	var rows []meal.TallyAggregate
	err := r.db.WithContext(ctx).
		Model(&UserMealTallyModel{}).
		Select("user_meal_id, SUM(tally) AS total_tally").
		Group("user_meal_id").
		Order("total_tally DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("list top meals", err)
	}
	return rows, nil
}
