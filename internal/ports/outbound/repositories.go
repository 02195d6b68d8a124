// Package outbound defines the driven-side ports: persistence, cache
// and external service contracts implemented by the infrastructure
// layer.
package outbound

import (
	"context"
	"time"

	"github.com/JamieKoz/platepicker-api/internal/domain/feedback"
	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
)

// GroupLister is the query surface the Grouping Engine needs. It is
// implemented for the recipe catalog and, scoped to one user, for user
// meals.
type GroupLister interface {
	// GroupCounts returns one row per taxonomy term of the dimension
	// with the number of matching rows, ordered by term name, plus the
	// count of rows carrying no term (the uncategorized remainder).
	GroupCounts(ctx context.Context, dim meal.Dimension, search string) ([]meal.GroupCount, int, error)

	// GroupMembers returns up to limit members of one group with the
	// given ordering. Group id 0 selects rows with no term in the
	// dimension.
	GroupMembers(ctx context.Context, dim meal.Dimension, groupID uint, search string, sort meal.Sort, limit int) ([]meal.Summary, error)

	// Page returns one flat page with the total row count.
	Page(ctx context.Context, search string, sort meal.Sort, page, perPage int) ([]meal.Summary, int, error)
}

// RecipeRepository persists the canonical recipe catalog.
type RecipeRepository interface {
	GroupLister

	GetByID(ctx context.Context, id uint) (*meal.Recipe, error)
	Create(ctx context.Context, r *meal.Recipe, lines []meal.LineInput) (*meal.Recipe, error)
	Update(ctx context.Context, r *meal.Recipe, lines []meal.LineInput) (*meal.Recipe, error)
	SetActive(ctx context.Context, id uint, active bool) error
	Delete(ctx context.Context, id uint) error

	// RandomActive returns up to count random active recipes matching
	// the filter.
	RandomActive(ctx context.Context, count int, filter meal.TaxonomyFilter) ([]meal.Summary, error)

	// Groups lists the named ingredient groups of one recipe.
	Groups(ctx context.Context, recipeID uint) ([]meal.LineGroup, error)
	CreateGroup(ctx context.Context, recipeID uint, g *meal.LineGroup) (*meal.LineGroup, error)
	UpdateGroup(ctx context.Context, recipeID uint, g *meal.LineGroup) (*meal.LineGroup, error)
	DeleteGroup(ctx context.Context, recipeID, groupID uint) error
}

// UserMealRepository persists per-user meals. Listing queries are
// obtained through ForUser so the Grouping Engine stays scope-agnostic.
type UserMealRepository interface {
	ForUser(userID string) GroupLister

	GetByID(ctx context.Context, id uint) (*meal.UserMeal, error)
	Create(ctx context.Context, m *meal.UserMeal, lines []meal.LineInput) (*meal.UserMeal, error)
	Update(ctx context.Context, m *meal.UserMeal, lines []meal.LineInput) (*meal.UserMeal, error)
	SetActive(ctx context.Context, id uint, active bool) error
	Delete(ctx context.Context, id uint) error

	// CopyFromRecipe deep-copies a recipe (lines, groups, taxonomy)
	// into a new meal owned by userID.
	CopyFromRecipe(ctx context.Context, userID string, recipe *meal.Recipe) (*meal.UserMeal, error)

	// SeedFromRecipes idempotently creates meals for userID from the
	// given recipes, skipping ones already copied.
	SeedFromRecipes(ctx context.Context, userID string, recipes []meal.Summary) (int, error)

	RandomActive(ctx context.Context, userID string, count int, filter meal.TaxonomyFilter) ([]meal.Summary, error)
	CountForUser(ctx context.Context, userID string) (int, error)

	Groups(ctx context.Context, mealID uint) ([]meal.LineGroup, error)
	CreateGroup(ctx context.Context, mealID uint, g *meal.LineGroup) (*meal.LineGroup, error)
	UpdateGroup(ctx context.Context, mealID uint, g *meal.LineGroup) (*meal.LineGroup, error)
	DeleteGroup(ctx context.Context, mealID, groupID uint) error
}

// TallyRepository persists per-user meal selection counters.
type TallyRepository interface {
	// Increment atomically creates or bumps the (userID, mealID)
	// counter in a single statement and stamps last_selected_at.
	Increment(ctx context.Context, userID string, mealID uint, at time.Time) error

	// TopForUser returns the user's rows ordered by tally desc, at
	// most limit.
	TopForUser(ctx context.Context, userID string, limit int) ([]meal.TallyRow, error)

	// TopOverall returns cross-user SUM(tally) per meal, ordered desc,
	// at most limit.
	TopOverall(ctx context.Context, limit int) ([]meal.TallyAggregate, error)
}

// Taxonomy names the term tables served by TermRepository.
type Taxonomy string

const (
	TaxonomyCategory    Taxonomy = "categories"
	TaxonomyCuisine     Taxonomy = "cuisines"
	TaxonomyDietary     Taxonomy = "dietary"
	TaxonomyIngredient  Taxonomy = "ingredients"
	TaxonomyMeasurement Taxonomy = "measurements"
)

// TermRepository is keyed CRUD over one taxonomy table.
type TermRepository interface {
	List(ctx context.Context, tax Taxonomy) ([]meal.Term, error)
	Search(ctx context.Context, tax Taxonomy, q string, limit int) ([]meal.Term, error)
	GetByID(ctx context.Context, tax Taxonomy, id uint) (*meal.Term, error)
	Create(ctx context.Context, tax Taxonomy, t *meal.Term) (*meal.Term, error)
	Update(ctx context.Context, tax Taxonomy, t *meal.Term) (*meal.Term, error)
	Delete(ctx context.Context, tax Taxonomy, id uint) error
}

// FeedbackRepository persists user feedback rows.
type FeedbackRepository interface {
	Create(ctx context.Context, f *feedback.Feedback) (*feedback.Feedback, error)
	List(ctx context.Context) ([]feedback.Feedback, error)
	GetByID(ctx context.Context, id uint) (*feedback.Feedback, error)
	SetResolved(ctx context.Context, id uint, resolved bool) error
}

// CacheRepository is the redis-backed cache port.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
