package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
	apperrors "github.com/JamieKoz/platepicker-api/pkg/errors"
)

// UserMealRepository implements outbound.UserMealRepository using GORM.
type UserMealRepository struct {
	db *gorm.DB
}

// NewUserMealRepository creates a new user meal repository
func NewUserMealRepository(db *gorm.DB) outbound.UserMealRepository {
	return &UserMealRepository{db: db}
}

const userMealTable = "user_meals"

func (r *UserMealRepository) withTaxonomy(q *gorm.DB) *gorm.DB {
	return q.Preload("Categories").Preload("Cuisines").Preload("Dietary")
}

// ForUser returns the grouped-listing query surface scoped to one user.
func (r *UserMealRepository) ForUser(userID string) outbound.GroupLister {
	return &userMealLister{repo: r, userID: userID}
}

// userMealLister scopes every listing query to one user's meals.
type userMealLister struct {
	repo   *UserMealRepository
	userID string
}

func (l *userMealLister) GroupCounts(ctx context.Context, dim meal.Dimension, search string) ([]meal.GroupCount, int, error) {
	cfg, ok := userMealDimensions[dim]
	if !ok {
		return nil, 0, nil
	}
	rows, err := groupCountRows(ctx, l.repo.db, userMealTable, cfg, search, "b.user_id = ?", l.userID)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("count meal groups", err)
	}
	unc, err := uncategorizedCount(ctx, l.repo.db, userMealTable, cfg, search, "b.user_id = ?", l.userID)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("count uncategorized meals", err)
	}
	return rows, unc, nil
}

func (l *userMealLister) GroupMembers(ctx context.Context, dim meal.Dimension, groupID uint, search string, sort meal.Sort, limit int) ([]meal.Summary, error) {
	cfg, ok := userMealDimensions[dim]
	if !ok {
		return nil, nil
	}
	q := l.repo.withTaxonomy(l.repo.db.WithContext(ctx).Model(&UserMealModel{})).
		Where("user_id = ?", l.userID)
	q = memberScope(q, userMealTable, cfg, groupID)
	if search != "" {
		q = q.Where("LOWER(title) LIKE ?", searchPattern(search))
	}

	var models []UserMealModel
	if err := q.Order(orderClause(sort)).Limit(limit).Find(&models).Error; err != nil {
		return nil, apperrors.NewDatabaseError("list meal group members", err)
	}
	out := make([]meal.Summary, len(models))
	for i := range models {
		out[i] = userMealSummary(&models[i])
	}
	return out, nil
}

func (l *userMealLister) Page(ctx context.Context, search string, sort meal.Sort, page, perPage int) ([]meal.Summary, int, error) {
	q := l.repo.db.WithContext(ctx).Model(&UserMealModel{}).Where("user_id = ?", l.userID)
	if search != "" {
		q = q.Where("LOWER(title) LIKE ?", searchPattern(search))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError("count meals", err)
	}

	var models []UserMealModel
	err := l.repo.withTaxonomy(q).
		Order(orderClause(sort)).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("page meals", err)
	}
	out := make([]meal.Summary, len(models))
	for i := range models {
		out[i] = userMealSummary(&models[i])
	}
	return out, int(total), nil
}

// GetByID retrieves one meal with taxonomy, lines and groups.
func (r *UserMealRepository) GetByID(ctx context.Context, id uint) (*meal.UserMeal, error) {
	var model UserMealModel
	err := r.withTaxonomy(r.db.WithContext(ctx)).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		Preload("Lines.Ingredient").
		Preload("Lines.Measurement").
		Preload("Groups", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewMealNotFoundError(id)
		}
		return nil, apperrors.NewDatabaseError("get meal", err)
	}
	return userMealToDomain(&model), nil
}

// Create persists an original meal for a user.
func (r *UserMealRepository) Create(ctx context.Context, m *meal.UserMeal, lines []meal.LineInput) (*meal.UserMeal, error) {
	model := UserMealModel{
		UserID:       m.UserID,
		RecipeID:     m.RecipeID,
		Title:        m.Title,
		Instructions: m.Instructions,
		ImageName:    m.ImageName,
		CookingTime:  m.CookingTime,
		Serves:       m.Serves,
		Active:       m.Active,
		Categories:   categoryRefs(termIDs(m.Categories)),
		Cuisines:     cuisineRefs(termIDs(m.Cuisines)),
		Dietary:      dietaryRefs(termIDs(m.Dietary)),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Categories.*", "Cuisines.*", "Dietary.*").Create(&model).Error; err != nil {
			return err
		}
		return replaceRecipeLines(tx, "user_meal_id", model.ID, lines)
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("create meal", err)
	}
	return r.GetByID(ctx, model.ID)
}

// Update saves meal fields, replaces taxonomy wholesale and recreates
// lines.
func (r *UserMealRepository) Update(ctx context.Context, m *meal.UserMeal, lines []meal.LineInput) (*meal.UserMeal, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model UserMealModel
		if err := tx.First(&model, m.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewMealNotFoundError(m.ID)
			}
			return err
		}

		model.Title = m.Title
		model.Instructions = m.Instructions
		model.ImageName = m.ImageName
		model.CookingTime = m.CookingTime
		model.Serves = m.Serves
		model.Active = m.Active
		if err := tx.Save(&model).Error; err != nil {
			return err
		}

		if err := tx.Model(&model).Association("Categories").Replace(categoryRefs(termIDs(m.Categories))); err != nil {
			return err
		}
		if err := tx.Model(&model).Association("Cuisines").Replace(cuisineRefs(termIDs(m.Cuisines))); err != nil {
			return err
		}
		if err := tx.Model(&model).Association("Dietary").Replace(dietaryRefs(termIDs(m.Dietary))); err != nil {
			return err
		}
		return replaceRecipeLines(tx, "user_meal_id", model.ID, lines)
	})
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			return nil, appErr
		}
		return nil, apperrors.NewDatabaseError("update meal", err)
	}
	return r.GetByID(ctx, m.ID)
}

// SetActive toggles the active flag.
func (r *UserMealRepository) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).Model(&UserMealModel{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return apperrors.NewDatabaseError("toggle meal status", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewMealNotFoundError(id)
	}
	return nil
}

// Delete removes a meal with its lines, groups, taxonomy and tallies.
func (r *UserMealRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model UserMealModel
		if err := tx.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewMealNotFoundError(id)
			}
			return err
		}
		if err := tx.Where("user_meal_id = ?", id).Delete(&RecipeLineModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_meal_id = ?", id).Delete(&UserMealGroupModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_meal_id = ?", id).Delete(&UserMealTallyModel{}).Error; err != nil {
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
		return apperrors.NewDatabaseError("delete meal", err)
	}
	return nil
}

// CopyFromRecipe deep-copies a recipe into a new meal for the user:
// fields, taxonomy attachments, ingredient groups and lines, with line
// group references remapped onto the copied groups.
func (r *UserMealRepository) CopyFromRecipe(ctx context.Context, userID string, recipe *meal.Recipe) (*meal.UserMeal, error) {
	var mealID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := copyRecipe(tx, userID, recipe.ID)
		if err != nil {
			return err
		}
		mealID = id
		return nil
	})
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			return nil, appErr
		}
		return nil, apperrors.NewDatabaseError("copy recipe to meal", err)
	}
	return r.GetByID(ctx, mealID)
}

// SeedFromRecipes idempotently copies the given recipes into meals for
// the user. Recipes already copied are skipped; the number of new
// meals is returned.
func (r *UserMealRepository) SeedFromRecipes(ctx context.Context, userID string, recipes []meal.Summary) (int, error) {
	created := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range recipes {
			var count int64
			if err := tx.Model(&UserMealModel{}).
				Where("user_id = ? AND recipe_id = ?", userID, rec.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if _, err := copyRecipe(tx, userID, rec.ID); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.NewDatabaseError("seed meals", err)
	}
	return created, nil
}

// RandomActive returns up to count random active meals for the user
// matching the taxonomy filter.
func (r *UserMealRepository) RandomActive(ctx context.Context, userID string, count int, filter meal.TaxonomyFilter) ([]meal.Summary, error) {
	q := r.db.WithContext(ctx).Model(&UserMealModel{}).
		Where("user_id = ? AND active = ?", userID, true)
	q = applyTaxonomyFilter(q, userMealTable, userMealDimensions, filter)

	var models []UserMealModel
	if err := r.withTaxonomy(q).Order("RANDOM()").Limit(count).Find(&models).Error; err != nil {
		return nil, apperrors.NewDatabaseError("select random meals", err)
	}
	out := make([]meal.Summary, len(models))
	for i := range models {
		out[i] = userMealSummary(&models[i])
	}
	return out, nil
}

// CountForUser returns the number of meals the user owns.
func (r *UserMealRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&UserMealModel{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.NewDatabaseError("count user meals", err)
	}
	return int(count), nil
}

// Groups lists the ingredient groups of a meal ordered by sort_order.
func (r *UserMealRepository) Groups(ctx context.Context, mealID uint) ([]meal.LineGroup, error) {
	var models []UserMealGroupModel
	err := r.db.WithContext(ctx).
		Where("user_meal_id = ?", mealID).
		Order("sort_order").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("list meal groups", err)
	}
	out := make([]meal.LineGroup, len(models))
	for i, m := range models {
		out[i] = meal.LineGroup{ID: m.ID, Name: m.Name, Description: m.Description, SortOrder: m.SortOrder}
	}
	return out, nil
}

// CreateGroup adds a named ingredient group to a meal.
func (r *UserMealRepository) CreateGroup(ctx context.Context, mealID uint, g *meal.LineGroup) (*meal.LineGroup, error) {
	model := UserMealGroupModel{
		UserMealID:  mealID,
		Name:        g.Name,
		Description: g.Description,
		SortOrder:   g.SortOrder,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create meal group", err)
	}
	return &meal.LineGroup{ID: model.ID, Name: model.Name, Description: model.Description, SortOrder: model.SortOrder}, nil
}

// UpdateGroup renames or reorders a meal's ingredient group.
func (r *UserMealRepository) UpdateGroup(ctx context.Context, mealID uint, g *meal.LineGroup) (*meal.LineGroup, error) {
	var model UserMealGroupModel
	err := r.db.WithContext(ctx).
		Where("user_meal_id = ?", mealID).
		First(&model, g.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("meal group")
		}
		return nil, apperrors.NewDatabaseError("get meal group", err)
	}
	model.Name = g.Name
	model.Description = g.Description
	model.SortOrder = g.SortOrder
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return nil, apperrors.NewDatabaseError("update meal group", err)
	}
	return &meal.LineGroup{ID: model.ID, Name: model.Name, Description: model.Description, SortOrder: model.SortOrder}, nil
}

// DeleteGroup removes an ingredient group, detaching its lines.
func (r *UserMealRepository) DeleteGroup(ctx context.Context, mealID, groupID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&RecipeLineModel{}).
			Where("user_meal_group_id = ?", groupID).
			Update("user_meal_group_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("user_meal_id = ?", mealID).Delete(&UserMealGroupModel{}, groupID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NewNotFoundError("meal group")
		}
		return nil
	})
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			return appErr
		}
		return apperrors.NewDatabaseError("delete meal group", err)
	}
	return nil
}

// copyRecipe clones one recipe into a meal row for userID inside an
// open transaction and returns the new meal id.
func copyRecipe(tx *gorm.DB, userID string, recipeID uint) (uint, error) {
	var src RecipeModel
	err := tx.
		Preload("Categories").Preload("Cuisines").Preload("Dietary").
		Preload("Lines").Preload("Groups").
		First(&src, recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.NewRecipeNotFoundError(recipeID)
		}
		return 0, err
	}

	recID := src.ID
	dst := UserMealModel{
		UserID:       userID,
		RecipeID:     &recID,
		Title:        src.Title,
		Instructions: src.Instructions,
		ImageName:    src.ImageName,
		CookingTime:  src.CookingTime,
		Serves:       src.Serves,
		Active:       src.Active,
		Categories:   src.Categories,
		Cuisines:     src.Cuisines,
		Dietary:      src.Dietary,
	}
	if err := tx.Omit("Categories.*", "Cuisines.*", "Dietary.*").Create(&dst).Error; err != nil {
		return 0, err
	}

	// Copy groups first so lines can be remapped onto them.
	groupMap := make(map[uint]uint, len(src.Groups))
	for _, g := range src.Groups {
		copied := UserMealGroupModel{
			UserMealID:  dst.ID,
			Name:        g.Name,
			Description: g.Description,
			SortOrder:   g.SortOrder,
		}
		if err := tx.Create(&copied).Error; err != nil {
			return 0, err
		}
		groupMap[g.ID] = copied.ID
	}

	for _, l := range src.Lines {
		mealID := dst.ID
		copied := RecipeLineModel{
			UserMealID:    &mealID,
			IngredientID:  l.IngredientID,
			MeasurementID: l.MeasurementID,
			Quantity:      l.Quantity,
			Notes:         l.Notes,
			SortOrder:     l.SortOrder,
		}
		if l.RecipeGroupID != nil {
			if mapped, ok := groupMap[*l.RecipeGroupID]; ok {
				copied.UserMealGroupID = &mapped
			}
		}
		if err := tx.Create(&copied).Error; err != nil {
			return 0, err
		}
	}
	return dst.ID, nil
}
