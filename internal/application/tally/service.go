// Package tally tracks which meals users actually pick and ranks
// favourites from those counts.
package tally

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
	apperrors "github.com/JamieKoz/platepicker-api/pkg/errors"
)

// rankLimit caps the favourites and top-meals rankings.
const rankLimit = 3

// MealFinder resolves meals by id; the full user-meal repository
// satisfies it.
type MealFinder interface {
	GetByID(ctx context.Context, id uint) (*meal.UserMeal, error)
}

// Service implements the tally operations.
type Service struct {
	tallies  outbound.TallyRepository
	meals    MealFinder
	identity outbound.IdentityVerifier
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a tally service.
func NewService(
	tallies outbound.TallyRepository,
	meals MealFinder,
	identity outbound.IdentityVerifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		tallies:  tallies,
		meals:    meals,
		identity: identity,
		now:      time.Now,
		logger:   logger.Named("tally"),
	}
}

// Increment records one selection of a meal by a user. An unknown user
// is a hard error; an unknown meal is logged and swallowed so a stale
// client selection cannot fail the request.
func (s *Service) Increment(ctx context.Context, userID string, mealID uint) error {
	exists, err := s.identity.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewUserNotFoundError(userID)
	}

	if _, err := s.meals.GetByID(ctx, mealID); err != nil {
		if apperrors.Is(err, apperrors.CodeMealNotFound) {
			s.logger.Warn("tally skipped for missing meal",
				zap.String("user_id", userID),
				zap.Uint("meal_id", mealID),
			)
			return nil
		}
		return err
	}

	return s.tallies.Increment(ctx, userID, mealID, s.now())
}

// Favourites returns the user's top meals by personal tally. Rows
// whose meal has since been deleted are skipped with a warning.
func (s *Service) Favourites(ctx context.Context, userID string) ([]meal.RankedMeal, error) {
	rows, err := s.tallies.TopForUser(ctx, userID, rankLimit)
	if err != nil {
		return nil, err
	}

	out := make([]meal.RankedMeal, 0, len(rows))
	for _, row := range rows {
		m, err := s.meals.GetByID(ctx, row.UserMealID)
		if err != nil {
			if apperrors.Is(err, apperrors.CodeMealNotFound) {
				s.logger.Warn("favourite references missing meal",
					zap.String("user_id", userID),
					zap.Uint("meal_id", row.UserMealID),
				)
				continue
			}
			return nil, err
		}
		out = append(out, meal.RankedMeal{
			Tally:          row.Tally,
			LastSelectedAt: row.LastSelectedAt,
			Meal:           m,
		})
	}
	return out, nil
}

// TopMeals returns the globally most selected meals across all users.
func (s *Service) TopMeals(ctx context.Context) ([]meal.RankedMeal, error) {
	aggs, err := s.tallies.TopOverall(ctx, rankLimit)
	if err != nil {
		return nil, err
	}

	out := make([]meal.RankedMeal, 0, len(aggs))
	for _, agg := range aggs {
		m, err := s.meals.GetByID(ctx, agg.UserMealID)
		if err != nil {
			if apperrors.Is(err, apperrors.CodeMealNotFound) {
				s.logger.Warn("top meal references missing meal", zap.Uint("meal_id", agg.UserMealID))
				continue
			}
			return nil, err
		}
		out = append(out, meal.RankedMeal{
			Tally: agg.TotalTally,
			Meal:  m,
		})
	}
	return out, nil
}
