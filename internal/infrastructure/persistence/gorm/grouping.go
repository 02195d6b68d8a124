package gorm

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
)

// dimensionConfig describes how one grouping dimension joins onto a
// base table. Dispatch is table-driven so adding a taxonomy is one map
// entry, not another switch arm.
type dimensionConfig struct {
	termTable string
	joinTable string
	termFK    string
	ownerFK   string
}

var recipeDimensions = map[meal.Dimension]dimensionConfig{
	meal.DimensionCuisine:  {termTable: "cuisines", joinTable: "recipes_cuisine", termFK: "cuisine_id", ownerFK: "recipe_id"},
	meal.DimensionCategory: {termTable: "categories", joinTable: "recipe_categories", termFK: "category_id", ownerFK: "recipe_id"},
	meal.DimensionDietary:  {termTable: "dietary", joinTable: "recipes_dietary", termFK: "dietary_id", ownerFK: "recipe_id"},
}

var userMealDimensions = map[meal.Dimension]dimensionConfig{
	meal.DimensionCuisine:  {termTable: "cuisines", joinTable: "user_meals_cuisine", termFK: "cuisine_id", ownerFK: "user_meal_id"},
	meal.DimensionCategory: {termTable: "categories", joinTable: "user_meal_categories", termFK: "category_id", ownerFK: "user_meal_id"},
	meal.DimensionDietary:  {termTable: "dietary", joinTable: "user_meals_dietary", termFK: "dietary_id", ownerFK: "user_meal_id"},
}

// orderClause renders the shared two-key ordering. Directions are
// typed, so the interpolation cannot carry user input.
func orderClause(sort meal.Sort) string {
	active := string(meal.ParseDirection(string(sort.ActiveDirection), meal.Desc))
	title := string(meal.ParseDirection(string(sort.TitleDirection), meal.Asc))
	return fmt.Sprintf("active %s, title %s", active, title)
}

func searchPattern(search string) string {
	return "%" + strings.ToLower(search) + "%"
}

// groupCountRows runs the single aggregate query for a dimension:
// one row per term that has at least one matching base row, ordered by
// term name. extraWhere scopes the base table (user_id for meals).
func groupCountRows(ctx context.Context, db *gorm.DB, base string, cfg dimensionConfig, search string, extraWhere string, extraArgs ...interface{}) ([]meal.GroupCount, error) {
	q := db.WithContext(ctx).
		Table(cfg.termTable+" AS t").
		Select("t.id AS id, t.name AS name, COUNT(DISTINCT b.id) AS count").
		Joins(fmt.Sprintf("JOIN %s j ON j.%s = t.id", cfg.joinTable, cfg.termFK)).
		Joins(fmt.Sprintf("JOIN %s b ON b.id = j.%s", base, cfg.ownerFK)).
		Group("t.id, t.name").
		Order("t.name")

	if search != "" {
		q = q.Where("LOWER(b.title) LIKE ?", searchPattern(search))
	}
	if extraWhere != "" {
		q = q.Where(extraWhere, extraArgs...)
	}

	var rows []meal.GroupCount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// uncategorizedCount counts base rows with no term in the dimension.
func uncategorizedCount(ctx context.Context, db *gorm.DB, base string, cfg dimensionConfig, search string, extraWhere string, extraArgs ...interface{}) (int, error) {
	q := db.WithContext(ctx).
		Table(base+" AS b").
		Where(fmt.Sprintf("NOT EXISTS (SELECT 1 FROM %s j WHERE j.%s = b.id)", cfg.joinTable, cfg.ownerFK))

	if search != "" {
		q = q.Where("LOWER(b.title) LIKE ?", searchPattern(search))
	}
	if extraWhere != "" {
		q = q.Where(extraWhere, extraArgs...)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// memberScope restricts a query over the base table to one group of
// the dimension. Group id 0 selects the uncategorized rows.
func memberScope(db *gorm.DB, base string, cfg dimensionConfig, groupID uint) *gorm.DB {
	if groupID == meal.UncategorizedID {
		return db.Where(fmt.Sprintf(
			"NOT EXISTS (SELECT 1 FROM %s j WHERE j.%s = %s.id)",
			cfg.joinTable, cfg.ownerFK, base,
		))
	}
	return db.Where(fmt.Sprintf(
		"EXISTS (SELECT 1 FROM %s j WHERE j.%s = %s.id AND j.%s = ?)",
		cfg.joinTable, cfg.ownerFK, base, cfg.termFK,
	), groupID)
}
