package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
	apperrors "github.com/JamieKoz/platepicker-api/pkg/errors"
)

// RecipeRepository implements outbound.RecipeRepository using GORM.
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db}
}

const recipeTable = "recipes"

func (r *RecipeRepository) withTaxonomy(q *gorm.DB) *gorm.DB {
	return q.Preload("Categories").Preload("Cuisines").Preload("Dietary")
}

// GroupCounts returns per-term counts for the dimension plus the
// uncategorized remainder.
func (r *RecipeRepository) GroupCounts(ctx context.Context, dim meal.Dimension, search string) ([]meal.GroupCount, int, error) {
	cfg, ok := recipeDimensions[dim]
	if !ok {
		return nil, 0, nil
	}
	rows, err := groupCountRows(ctx, r.db, recipeTable, cfg, search, "")
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("count recipe groups", err)
	}
	unc, err := uncategorizedCount(ctx, r.db, recipeTable, cfg, search, "")
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("count uncategorized recipes", err)
	}
	return rows, unc, nil
}

// GroupMembers returns up to limit recipes of one group.
func (r *RecipeRepository) GroupMembers(ctx context.Context, dim meal.Dimension, groupID uint, search string, sort meal.Sort, limit int) ([]meal.Summary, error) {
	cfg, ok := recipeDimensions[dim]
	if !ok {
		return nil, nil
	}
	q := r.withTaxonomy(r.db.WithContext(ctx).Model(&RecipeModel{}))
	q = memberScope(q, recipeTable, cfg, groupID)
	if search != "" {
		q = q.Where("LOWER(title) LIKE ?", searchPattern(search))
	}

	var models []RecipeModel
	if err := q.Order(orderClause(sort)).Limit(limit).Find(&models).Error; err != nil {
		return nil, apperrors.NewDatabaseError("list recipe group members", err)
	}
	out := make([]meal.Summary, len(models))
	for i := range models {
		out[i] = recipeSummary(&models[i])
	}
	return out, nil
}

// Page returns one flat page of recipes with the total count.
func (r *RecipeRepository) Page(ctx context.Context, search string, sort meal.Sort, page, perPage int) ([]meal.Summary, int, error) {
	q := r.db.WithContext(ctx).Model(&RecipeModel{})
	if search != "" {
		q = q.Where("LOWER(title) LIKE ?", searchPattern(search))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError("count recipes", err)
	}

	var models []RecipeModel
	err := r.withTaxonomy(q).
		Order(orderClause(sort)).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("page recipes", err)
	}
	out := make([]meal.Summary, len(models))
	for i := range models {
		out[i] = recipeSummary(&models[i])
	}
	return out, int(total), nil
}

// GetByID retrieves one recipe with its taxonomy, lines and groups.
func (r *RecipeRepository) GetByID(ctx context.Context, id uint) (*meal.Recipe, error) {
	var model RecipeModel
	err := r.withTaxonomy(r.db.WithContext(ctx)).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		Preload("Lines.Ingredient").
		Preload("Lines.Measurement").
		Preload("Groups", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewRecipeNotFoundError(id)
		}
		return nil, apperrors.NewDatabaseError("get recipe", err)
	}
	return recipeToDomain(&model), nil
}

// Create persists a recipe with its taxonomy and lines in one
// transaction.
func (r *RecipeRepository) Create(ctx context.Context, rec *meal.Recipe, lines []meal.LineInput) (*meal.Recipe, error) {
	model := RecipeModel{
		Title:        rec.Title,
		Instructions: rec.Instructions,
		ImageName:    rec.ImageName,
		CookingTime:  rec.CookingTime,
		Serves:       rec.Serves,
		Active:       rec.Active,
		Categories:   categoryRefs(termIDs(rec.Categories)),
		Cuisines:     cuisineRefs(termIDs(rec.Cuisines)),
		Dietary:      dietaryRefs(termIDs(rec.Dietary)),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Categories.*", "Cuisines.*", "Dietary.*").Create(&model).Error; err != nil {
			return err
		}
		return replaceRecipeLines(tx, "recipe_id", model.ID, lines)
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("create recipe", err)
	}
	return r.GetByID(ctx, model.ID)
}

// Update saves the recipe fields, replaces its taxonomy attachments
// wholesale and recreates its lines.
func (r *RecipeRepository) Update(ctx context.Context, rec *meal.Recipe, lines []meal.LineInput) (*meal.Recipe, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model RecipeModel
		if err := tx.First(&model, rec.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewRecipeNotFoundError(rec.ID)
			}
			return err
		}

		model.Title = rec.Title
		model.Instructions = rec.Instructions
		model.ImageName = rec.ImageName
		model.CookingTime = rec.CookingTime
		model.Serves = rec.Serves
		model.Active = rec.Active
		if err := tx.Save(&model).Error; err != nil {
			return err
		}

		if err := tx.Model(&model).Association("Categories").Replace(categoryRefs(termIDs(rec.Categories))); err != nil {
			return err
		}
		if err := tx.Model(&model).Association("Cuisines").Replace(cuisineRefs(termIDs(rec.Cuisines))); err != nil {
			return err
		}
		if err := tx.Model(&model).Association("Dietary").Replace(dietaryRefs(termIDs(rec.Dietary))); err != nil {
			return err
		}
		return replaceRecipeLines(tx, "recipe_id", model.ID, lines)
	})
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			return nil, appErr
		}
		return nil, apperrors.NewDatabaseError("update recipe", err)
	}
	return r.GetByID(ctx, rec.ID)
}

// SetActive toggles the active flag.
func (r *RecipeRepository) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).Model(&RecipeModel{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return apperrors.NewDatabaseError("toggle recipe status", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewRecipeNotFoundError(id)
	}
	return nil
}

// Delete removes a recipe with its lines, groups and taxonomy rows.
func (r *RecipeRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model RecipeModel
		if err := tx.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewRecipeNotFoundError(id)
			}
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&RecipeLineModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&RecipeGroupModel{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model).Association("Categories").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&model).Association("Cuisines").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&model).Association("Dietary").Clear(); err != nil {
			return err
		}
		return tx.Delete(&model).Error
	})
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			return appErr
		}
		return apperrors.NewDatabaseError("delete recipe", err)
	}
	return nil
}

// RandomActive returns up to count random active recipes matching the
// taxonomy filter.
func (r *RecipeRepository) RandomActive(ctx context.Context, count int, filter meal.TaxonomyFilter) ([]meal.Summary, error) {
	q := r.db.WithContext(ctx).Model(&RecipeModel{}).Where("active = ?", true)
	q = applyTaxonomyFilter(q, recipeTable, recipeDimensions, filter)

	var models []RecipeModel
	if err := r.withTaxonomy(q).Order("RANDOM()").Limit(count).Find(&models).Error; err != nil {
		return nil, apperrors.NewDatabaseError("select random recipes", err)
	}
	out := make([]meal.Summary, len(models))
	for i := range models {
		out[i] = recipeSummary(&models[i])
	}
	return out, nil
}

// Groups lists the ingredient groups of a recipe ordered by sort_order.
func (r *RecipeRepository) Groups(ctx context.Context, recipeID uint) ([]meal.LineGroup, error) {
	var models []RecipeGroupModel
	err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("sort_order").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("list recipe groups", err)
	}
	out := make([]meal.LineGroup, len(models))
	for i, m := range models {
		out[i] = meal.LineGroup{ID: m.ID, Name: m.Name, Description: m.Description, SortOrder: m.SortOrder}
	}
	return out, nil
}

// CreateGroup adds a named ingredient group to a recipe.
func (r *RecipeRepository) CreateGroup(ctx context.Context, recipeID uint, g *meal.LineGroup) (*meal.LineGroup, error) {
	model := RecipeGroupModel{
		RecipeID:    recipeID,
		Name:        g.Name,
		Description: g.Description,
		SortOrder:   g.SortOrder,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create recipe group", err)
	}
	return &meal.LineGroup{ID: model.ID, Name: model.Name, Description: model.Description, SortOrder: model.SortOrder}, nil
}

// UpdateGroup renames or reorders a recipe's ingredient group.
func (r *RecipeRepository) UpdateGroup(ctx context.Context, recipeID uint, g *meal.LineGroup) (*meal.LineGroup, error) {
	var model RecipeGroupModel
	err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		First(&model, g.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("recipe group")
		}
		return nil, apperrors.NewDatabaseError("get recipe group", err)
	}
	model.Name = g.Name
	model.Description = g.Description
	model.SortOrder = g.SortOrder
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return nil, apperrors.NewDatabaseError("update recipe group", err)
	}
	return &meal.LineGroup{ID: model.ID, Name: model.Name, Description: model.Description, SortOrder: model.SortOrder}, nil
}

// DeleteGroup removes an ingredient group, detaching its lines.
func (r *RecipeRepository) DeleteGroup(ctx context.Context, recipeID, groupID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&RecipeLineModel{}).
			Where("recipe_group_id = ?", groupID).
			Update("recipe_group_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("recipe_id = ?", recipeID).Delete(&RecipeGroupModel{}, groupID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NewNotFoundError("recipe group")
		}
		return nil
	})
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			return appErr
		}
		return apperrors.NewDatabaseError("delete recipe group", err)
	}
	return nil
}

// applyTaxonomyFilter adds EXISTS clauses for each non-empty id list.
func applyTaxonomyFilter(q *gorm.DB, base string, dims map[meal.Dimension]dimensionConfig, filter meal.TaxonomyFilter) *gorm.DB {
	apply := func(q *gorm.DB, dim meal.Dimension, ids []uint) *gorm.DB {
		if len(ids) == 0 {
			return q
		}
		cfg := dims[dim]
		return q.Where(
			"EXISTS (SELECT 1 FROM "+cfg.joinTable+" j WHERE j."+cfg.ownerFK+" = "+base+".id AND j."+cfg.termFK+" IN ?)",
			ids,
		)
	}
	q = apply(q, meal.DimensionCategory, filter.CategoryIDs)
	q = apply(q, meal.DimensionCuisine, filter.CuisineIDs)
	q = apply(q, meal.DimensionDietary, filter.DietaryIDs)
	return q
}
