// Package meal holds the domain types shared by the recipe catalog and
// each user's private meal collection.
package meal

import "time"

// Term is a simple taxonomy row (category, cuisine, dietary tag,
// ingredient or measurement).
type Term struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
}

// Line is an ordered ingredient line belonging to either a recipe or a
// user meal, never both.
type Line struct {
	ID            uint     `json:"id"`
	IngredientID  uint     `json:"ingredient_id"`
	Ingredient    *Term    `json:"ingredient,omitempty"`
	MeasurementID *uint    `json:"measurement_id,omitempty"`
	Measurement   *Term    `json:"measurement,omitempty"`
	Quantity      *float64 `json:"quantity,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	SortOrder     int      `json:"sort_order"`
	GroupID       *uint    `json:"group_id,omitempty"`
}

// LineGroup is a named ingredient sub-section within a recipe or meal.
type LineGroup struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sort_order"`
}

// Recipe is the canonical, shared meal definition.
type Recipe struct {
	ID           uint        `json:"id"`
	Title        string      `json:"title"`
	Instructions string      `json:"instructions"`
	ImageName    string      `json:"image_name,omitempty"`
	CookingTime  *int        `json:"cooking_time,omitempty"`
	Serves       *int        `json:"serves,omitempty"`
	Active       bool        `json:"active"`
	Categories   []Term      `json:"categories"`
	Cuisines     []Term      `json:"cuisines"`
	Dietary      []Term      `json:"dietary"`
	Lines        []Line      `json:"recipe_lines,omitempty"`
	Groups       []LineGroup `json:"groups,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// UserMeal is a user's private, independently editable copy of a recipe
// or an original creation.
type UserMeal struct {
	ID           uint        `json:"id"`
	UserID       string      `json:"user_id"`
	RecipeID     *uint       `json:"recipe_id,omitempty"`
	Title        string      `json:"title"`
	Instructions string      `json:"instructions"`
	ImageName    string      `json:"image_name,omitempty"`
	CookingTime  *int        `json:"cooking_time,omitempty"`
	Serves       *int        `json:"serves,omitempty"`
	Active       bool        `json:"active"`
	Categories   []Term      `json:"categories"`
	Cuisines     []Term      `json:"cuisines"`
	Dietary      []Term      `json:"dietary"`
	Lines        []Line      `json:"recipe_lines,omitempty"`
	Groups       []LineGroup `json:"groups,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Summary is the lightweight list representation used by the grouped
// listing and random-selection endpoints.
type Summary struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	ImageName   string `json:"image_name,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	CookingTime *int   `json:"cooking_time,omitempty"`
	Serves      *int   `json:"serves,omitempty"`
	Active      bool   `json:"active"`
	Categories  []Term `json:"categories"`
	Cuisines    []Term `json:"cuisines"`
	Dietary     []Term `json:"dietary"`
}

// TallyRow is one user's selection counter for one meal. Exactly one
// row exists per (user, meal) pair.
type TallyRow struct {
	ID             uint       `json:"id"`
	UserID         string     `json:"user_id"`
	UserMealID     uint       `json:"user_meal_id"`
	Tally          int        `json:"tally"`
	LastSelectedAt *time.Time `json:"last_selected_at,omitempty"`
}

// TallyAggregate is a cross-user tally sum for one meal.
type TallyAggregate struct {
	UserMealID uint `json:"user_meal_id"`
	TotalTally int  `json:"total_tally"`
}

// RankedMeal pairs a tally score with the resolved meal detail for the
// favourites and top-meals rankings.
type RankedMeal struct {
	Tally          int        `json:"tally"`
	LastSelectedAt *time.Time `json:"last_selected_at,omitempty"`
	Meal           *UserMeal  `json:"meal"`
}

// LineInput is the write shape for ingredient lines. Either an
// ingredient id or a name to find-or-create must be supplied.
type LineInput struct {
	IngredientID    uint     `json:"ingredient_id"`
	IngredientName  string   `json:"ingredient_name"`
	MeasurementID   *uint    `json:"measurement_id"`
	MeasurementName string   `json:"measurement_name"`
	Quantity        *float64 `json:"quantity"`
	Notes           string   `json:"notes"`
	SortOrder       int      `json:"sort_order"`
	GroupID         *uint    `json:"group_id"`
}

// TaxonomyFilter restricts a selection to meals attached to any of the
// given taxonomy ids. Empty slices mean no restriction.
type TaxonomyFilter struct {
	CategoryIDs []uint
	CuisineIDs  []uint
	DietaryIDs  []uint
}
