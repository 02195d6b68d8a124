// Package usermeal implements the per-user meal collection use cases.
// Every operation is scoped to the calling user; acting on another
// user's meal is forbidden.
package usermeal

import (
	"context"

	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/application/listing"
	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
	apperrors "github.com/JamieKoz/platepicker-api/pkg/errors"
)

const randomCount = 27

// Service implements the user meal operations.
type Service struct {
	meals   outbound.UserMealRepository
	recipes outbound.RecipeRepository
	engine  *listing.Engine
	logger  *zap.Logger
}

// NewService creates a user meal service.
func NewService(
	meals outbound.UserMealRepository,
	recipes outbound.RecipeRepository,
	engine *listing.Engine,
	logger *zap.Logger,
) *Service {
	return &Service{
		meals:   meals,
		recipes: recipes,
		engine:  engine,
		logger:  logger.Named("usermeal"),
	}
}

// owned loads a meal and verifies the caller owns it.
func (s *Service) owned(ctx context.Context, userID string, mealID uint) (*meal.UserMeal, error) {
	m, err := s.meals.GetByID(ctx, mealID)
	if err != nil {
		return nil, err
	}
	if m.UserID != userID {
		return nil, apperrors.NewForbiddenError("meal belongs to another user")
	}
	return m, nil
}

// ListGrouped renders one page of taxonomy groups over the user's
// meals.
func (s *Service) ListGrouped(ctx context.Context, userID string, params meal.ListParams) (*meal.GroupedPage, error) {
	return s.engine.ListGrouped(ctx, s.meals.ForUser(userID), "/api/v1/user-meals", params)
}

// ListFlat renders one ungrouped page over the user's meals.
func (s *Service) ListFlat(ctx context.Context, userID string, params meal.ListParams) (*meal.FlatPage, error) {
	return s.engine.ListFlat(ctx, s.meals.ForUser(userID), "/api/v1/user-meals", params)
}

// Get returns one of the caller's meals.
func (s *Service) Get(ctx context.Context, userID string, mealID uint) (*meal.UserMeal, error) {
	return s.owned(ctx, userID, mealID)
}

// Create persists an original meal for the caller.
func (s *Service) Create(ctx context.Context, userID string, m *meal.UserMeal, lines []meal.LineInput) (*meal.UserMeal, error) {
	m.UserID = userID
	created, err := s.meals.Create(ctx, m, lines)
	if err != nil {
		return nil, err
	}
	s.logger.Info("meal created",
		zap.String("user_id", userID),
		zap.Uint("meal_id", created.ID),
	)
	return created, nil
}

// Update replaces a meal's fields, taxonomy and lines.
func (s *Service) Update(ctx context.Context, userID string, m *meal.UserMeal, lines []meal.LineInput) (*meal.UserMeal, error) {
	if _, err := s.owned(ctx, userID, m.ID); err != nil {
		return nil, err
	}
	return s.meals.Update(ctx, m, lines)
}

// ToggleStatus flips or sets the active flag on one of the caller's
// meals.
func (s *Service) ToggleStatus(ctx context.Context, userID string, mealID uint, active bool) error {
	if _, err := s.owned(ctx, userID, mealID); err != nil {
		return err
	}
	return s.meals.SetActive(ctx, mealID, active)
}

// Delete removes one of the caller's meals.
func (s *Service) Delete(ctx context.Context, userID string, mealID uint) error {
	if _, err := s.owned(ctx, userID, mealID); err != nil {
		return err
	}
	if err := s.meals.Delete(ctx, mealID); err != nil {
		return err
	}
	s.logger.Info("meal deleted", zap.String("user_id", userID), zap.Uint("meal_id", mealID))
	return nil
}

// AddFromRecipe deep-copies a catalog recipe into the caller's
// collection.
func (s *Service) AddFromRecipe(ctx context.Context, userID string, recipeID uint) (*meal.UserMeal, error) {
	rec, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	created, err := s.meals.CopyFromRecipe(ctx, userID, rec)
	if err != nil {
		return nil, err
	}
	s.logger.Info("meal copied from recipe",
		zap.String("user_id", userID),
		zap.Uint("recipe_id", recipeID),
		zap.Uint("meal_id", created.ID),
	)
	return created, nil
}

// Random returns a random selection of the caller's active meals for
// the pick-meals flow.
func (s *Service) Random(ctx context.Context, userID string, count int, filter meal.TaxonomyFilter) ([]meal.Summary, error) {
	if count <= 0 || count > randomCount {
		count = randomCount
	}
	return s.meals.RandomActive(ctx, userID, count, filter)
}

// Groups lists a meal's ingredient groups.
func (s *Service) Groups(ctx context.Context, userID string, mealID uint) ([]meal.LineGroup, error) {
	if _, err := s.owned(ctx, userID, mealID); err != nil {
		return nil, err
	}
	return s.meals.Groups(ctx, mealID)
}

// CreateGroup adds an ingredient group to one of the caller's meals.
func (s *Service) CreateGroup(ctx context.Context, userID string, mealID uint, g *meal.LineGroup) (*meal.LineGroup, error) {
	if _, err := s.owned(ctx, userID, mealID); err != nil {
		return nil, err
	}
	return s.meals.CreateGroup(ctx, mealID, g)
}

// UpdateGroup renames or reorders an ingredient group.
func (s *Service) UpdateGroup(ctx context.Context, userID string, mealID uint, g *meal.LineGroup) (*meal.LineGroup, error) {
	if _, err := s.owned(ctx, userID, mealID); err != nil {
		return nil, err
	}
	return s.meals.UpdateGroup(ctx, mealID, g)
}

// DeleteGroup removes an ingredient group.
func (s *Service) DeleteGroup(ctx context.Context, userID string, mealID, groupID uint) error {
	if _, err := s.owned(ctx, userID, mealID); err != nil {
		return err
	}
	return s.meals.DeleteGroup(ctx, mealID, groupID)
}
