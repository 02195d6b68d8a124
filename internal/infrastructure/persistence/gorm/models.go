// Package gorm provides GORM models and repository implementations
// backing the outbound persistence ports.
package gorm

import "time"

// RecipeModel is the GORM model for the canonical recipe catalog.
type RecipeModel struct {
	ID           uint   `gorm:"primaryKey"`
	Title        string `gorm:"size:255;not null;index"`
	Instructions string `gorm:"type:text"`
	ImageName    string `gorm:"size:255"`
	CookingTime  *int
	Serves       *int
	Active       bool `gorm:"default:true;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Categories []CategoryModel    `gorm:"many2many:recipe_categories;joinForeignKey:recipe_id;joinReferences:category_id"`
	Cuisines   []CuisineModel     `gorm:"many2many:recipes_cuisine;joinForeignKey:recipe_id;joinReferences:cuisine_id"`
	Dietary    []DietaryModel     `gorm:"many2many:recipes_dietary;joinForeignKey:recipe_id;joinReferences:dietary_id"`
	Lines      []RecipeLineModel  `gorm:"foreignKey:RecipeID"`
	Groups     []RecipeGroupModel `gorm:"foreignKey:RecipeID"`
}

// TableName returns the table name for RecipeModel
func (RecipeModel) TableName() string { return "recipes" }

// UserMealModel is the GORM model for a user's private meal.
type UserMealModel struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       string `gorm:"size:255;not null;index"`
	RecipeID     *uint  `gorm:"index"`
	Title        string `gorm:"size:255;not null;index"`
	Instructions string `gorm:"type:text"`
	ImageName    string `gorm:"size:255"`
	CookingTime  *int
	Serves       *int
	Active       bool `gorm:"default:true;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Categories []CategoryModel      `gorm:"many2many:user_meal_categories;joinForeignKey:user_meal_id;joinReferences:category_id"`
	Cuisines   []CuisineModel       `gorm:"many2many:user_meals_cuisine;joinForeignKey:user_meal_id;joinReferences:cuisine_id"`
	Dietary    []DietaryModel       `gorm:"many2many:user_meals_dietary;joinForeignKey:user_meal_id;joinReferences:dietary_id"`
	Lines      []RecipeLineModel    `gorm:"foreignKey:UserMealID"`
	Groups     []UserMealGroupModel `gorm:"foreignKey:UserMealID"`
}

// TableName returns the table name for UserMealModel
func (UserMealModel) TableName() string { return "user_meals" }

// RecipeLineModel is one ingredient line, owned by exactly one of a
// recipe or a user meal.
type RecipeLineModel struct {
	ID              uint  `gorm:"primaryKey"`
	RecipeID        *uint `gorm:"index"`
	UserMealID      *uint `gorm:"index"`
	IngredientID    uint  `gorm:"not null"`
	MeasurementID   *uint
	Quantity        *float64 `gorm:"type:decimal(8,2)"`
	Notes           string   `gorm:"size:255"`
	SortOrder       int      `gorm:"default:0"`
	RecipeGroupID   *uint
	UserMealGroupID *uint
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Ingredient  *IngredientModel  `gorm:"foreignKey:IngredientID"`
	Measurement *MeasurementModel `gorm:"foreignKey:MeasurementID"`
}

// TableName returns the table name for RecipeLineModel
func (RecipeLineModel) TableName() string { return "recipe_lines" }

// RecipeGroupModel is a named ingredient sub-section of a recipe.
type RecipeGroupModel struct {
	ID          uint   `gorm:"primaryKey"`
	RecipeID    uint   `gorm:"not null;index"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"size:255"`
	SortOrder   int    `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for RecipeGroupModel
func (RecipeGroupModel) TableName() string { return "recipe_groups" }

// UserMealGroupModel mirrors RecipeGroupModel for user meals.
type UserMealGroupModel struct {
	ID          uint   `gorm:"primaryKey"`
	UserMealID  uint   `gorm:"not null;index"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"size:255"`
	SortOrder   int    `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for UserMealGroupModel
func (UserMealGroupModel) TableName() string { return "user_meal_groups" }

// TermModel backs every simple taxonomy table. The concrete table is
// chosen at query time with Table(), so the struct carries no fixed
// table name.
type TermModel struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:255;not null"`
	Abbreviation string `gorm:"size:50"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserMealTallyModel counts selections of one meal by one user.
type UserMealTallyModel struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         string `gorm:"size:255;not null;uniqueIndex:idx_user_meal_tally_pair"`
	UserMealID     uint   `gorm:"not null;uniqueIndex:idx_user_meal_tally_pair"`
	Tally          int    `gorm:"default:0;not null"`
	LastSelectedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for UserMealTallyModel
func (UserMealTallyModel) TableName() string { return "user_meal_tally" }

// FeedbackModel persists user feedback submissions.
type FeedbackModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Email     string `gorm:"size:255;not null"`
	Message   string `gorm:"type:text;not null"`
	Resolved  bool   `gorm:"default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for FeedbackModel
func (FeedbackModel) TableName() string { return "feedback" }

// Concrete per-table types over the shared TermModel shape, so
// relations and AutoMigrate resolve the right table names.

type CategoryModel struct{ TermModel }

// TableName returns the table name for CategoryModel
func (CategoryModel) TableName() string { return "categories" }

type CuisineModel struct{ TermModel }

// TableName returns the table name for CuisineModel
func (CuisineModel) TableName() string { return "cuisines" }

type DietaryModel struct{ TermModel }

// TableName returns the table name for DietaryModel
func (DietaryModel) TableName() string { return "dietary" }

type IngredientModel struct{ TermModel }

// TableName returns the table name for IngredientModel
func (IngredientModel) TableName() string { return "ingredients" }

type MeasurementModel struct{ TermModel }

// TableName returns the table name for MeasurementModel
func (MeasurementModel) TableName() string { return "measurements" }

// AllModels lists every model for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&CategoryModel{},
		&CuisineModel{},
		&DietaryModel{},
		&IngredientModel{},
		&MeasurementModel{},
		&RecipeModel{},
		&UserMealModel{},
		&RecipeGroupModel{},
		&UserMealGroupModel{},
		&RecipeLineModel{},
		&UserMealTallyModel{},
		&FeedbackModel{},
	}
}
