// Package recipe implements the catalog use cases: grouped listing,
// CRUD, random selection and initial meal seeding for new users.
package recipe

import (
	"context"

	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/application/listing"
	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
)

// seedLimit is the number of starter meals copied for a new user.
const seedLimit = 30

// randomCount is the default size of a random selection.
const randomCount = 27

// Service implements the recipe catalog operations.
type Service struct {
	recipes outbound.RecipeRepository
	meals   outbound.UserMealRepository
	terms   outbound.TermRepository
	engine  *listing.Engine
	logger  *zap.Logger
}

// NewService creates a recipe service.
func NewService(
	recipes outbound.RecipeRepository,
	meals outbound.UserMealRepository,
	terms outbound.TermRepository,
	engine *listing.Engine,
	logger *zap.Logger,
) *Service {
	return &Service{
		recipes: recipes,
		meals:   meals,
		terms:   terms,
		engine:  engine,
		logger:  logger.Named("recipe"),
	}
}

// ListGrouped renders one page of taxonomy groups over the catalog.
func (s *Service) ListGrouped(ctx context.Context, params meal.ListParams) (*meal.GroupedPage, error) {
	return s.engine.ListGrouped(ctx, s.recipes, "/api/v1/recipes", params)
}

// ListFlat renders one ungrouped page over the catalog.
func (s *Service) ListFlat(ctx context.Context, params meal.ListParams) (*meal.FlatPage, error) {
	return s.engine.ListFlat(ctx, s.recipes, "/api/v1/recipes", params)
}

// Get returns one recipe with lines and groups.
func (s *Service) Get(ctx context.Context, id uint) (*meal.Recipe, error) {
	return s.recipes.GetByID(ctx, id)
}

// Create persists a new recipe.
func (s *Service) Create(ctx context.Context, r *meal.Recipe, lines []meal.LineInput) (*meal.Recipe, error) {
	created, err := s.recipes.Create(ctx, r, lines)
	if err != nil {
		return nil, err
	}
	s.logger.Info("recipe created", zap.Uint("recipe_id", created.ID), zap.String("title", created.Title))
	return created, nil
}

// Update replaces a recipe's fields, taxonomy and lines.
func (s *Service) Update(ctx context.Context, r *meal.Recipe, lines []meal.LineInput) (*meal.Recipe, error) {
	updated, err := s.recipes.Update(ctx, r, lines)
	if err != nil {
		return nil, err
	}
	s.logger.Info("recipe updated", zap.Uint("recipe_id", updated.ID))
	return updated, nil
}

// ToggleStatus flips or sets the active flag.
func (s *Service) ToggleStatus(ctx context.Context, id uint, active bool) error {
	return s.recipes.SetActive(ctx, id, active)
}

// Delete removes a recipe.
func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.recipes.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("recipe deleted", zap.Uint("recipe_id", id))
	return nil
}

// Random returns a random selection of active recipes, used for
// unauthenticated pick-meals flows.
func (s *Service) Random(ctx context.Context, count int, filter meal.TaxonomyFilter) ([]meal.Summary, error) {
	if count <= 0 || count > randomCount {
		count = randomCount
	}
	return s.recipes.RandomActive(ctx, count, filter)
}

// GroupValues lists the terms of one grouping dimension, for building
// filter pickers.
func (s *Service) GroupValues(ctx context.Context, dim meal.Dimension) ([]meal.Term, error) {
	switch dim {
	case meal.DimensionCategory:
		return s.terms.List(ctx, outbound.TaxonomyCategory)
	case meal.DimensionCuisine:
		return s.terms.List(ctx, outbound.TaxonomyCuisine)
	case meal.DimensionDietary:
		return s.terms.List(ctx, outbound.TaxonomyDietary)
	default:
		return []meal.Term{}, nil
	}
}

// AssignInitialMeals seeds a new user's collection from up to 30
// random active recipes. Re-running is a no-op for recipes already
// copied.
func (s *Service) AssignInitialMeals(ctx context.Context, userID string) (int, error) {
	recipes, err := s.recipes.RandomActive(ctx, seedLimit, meal.TaxonomyFilter{})
	if err != nil {
		return 0, err
	}
	created, err := s.meals.SeedFromRecipes(ctx, userID, recipes)
	if err != nil {
		return 0, err
	}
	s.logger.Info("initial meals assigned",
		zap.String("user_id", userID),
		zap.Int("created", created),
		zap.Int("candidates", len(recipes)),
	)
	return created, nil
}

// Groups lists a recipe's ingredient groups.
func (s *Service) Groups(ctx context.Context, recipeID uint) ([]meal.LineGroup, error) {
	if _, err := s.recipes.GetByID(ctx, recipeID); err != nil {
		return nil, err
	}
	return s.recipes.Groups(ctx, recipeID)
}

// CreateGroup adds an ingredient group to a recipe.
func (s *Service) CreateGroup(ctx context.Context, recipeID uint, g *meal.LineGroup) (*meal.LineGroup, error) {
	if _, err := s.recipes.GetByID(ctx, recipeID); err != nil {
		return nil, err
	}
	return s.recipes.CreateGroup(ctx, recipeID, g)
}

// UpdateGroup renames or reorders an ingredient group.
func (s *Service) UpdateGroup(ctx context.Context, recipeID uint, g *meal.LineGroup) (*meal.LineGroup, error) {
	return s.recipes.UpdateGroup(ctx, recipeID, g)
}

// DeleteGroup removes an ingredient group.
func (s *Service) DeleteGroup(ctx context.Context, recipeID, groupID uint) error {
	return s.recipes.DeleteGroup(ctx, recipeID, groupID)
}
