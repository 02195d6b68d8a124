package gorm

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
)

// resolveIngredientID returns the ingredient id for a line input,
// finding or creating by name when no id was given.
func resolveIngredientID(tx *gorm.DB, in meal.LineInput) (uint, error) {
	if in.IngredientID != 0 {
		return in.IngredientID, nil
	}
	if in.IngredientName == "" {
		return 0, fmt.Errorf("ingredient line requires an id or a name")
	}
	var ing IngredientModel
	if err := tx.Where("name = ?", in.IngredientName).
		FirstOrCreate(&ing, IngredientModel{TermModel: TermModel{Name: in.IngredientName}}).Error; err != nil {
		return 0, err
	}
	return ing.ID, nil
}

func resolveMeasurementID(tx *gorm.DB, in meal.LineInput) (*uint, error) {
	if in.MeasurementID != nil {
		return in.MeasurementID, nil
	}
	if in.MeasurementName == "" {
		return nil, nil
	}
	var m MeasurementModel
	if err := tx.Where("name = ?", in.MeasurementName).
		FirstOrCreate(&m, MeasurementModel{TermModel: TermModel{Name: in.MeasurementName}}).Error; err != nil {
		return nil, err
	}
	id := m.ID
	return &id, nil
}

// replaceRecipeLines deletes and recreates the lines of one owner.
// ownerColumn is "recipe_id" or "user_meal_id".
func replaceRecipeLines(tx *gorm.DB, ownerColumn string, ownerID uint, inputs []meal.LineInput) error {
	if err := tx.Where(ownerColumn+" = ?", ownerID).Delete(&RecipeLineModel{}).Error; err != nil {
		return err
	}
	for i, in := range inputs {
		ingID, err := resolveIngredientID(tx, in)
		if err != nil {
			return err
		}
		measID, err := resolveMeasurementID(tx, in)
		if err != nil {
			return err
		}
		sortOrder := in.SortOrder
		if sortOrder == 0 {
			sortOrder = i
		}
		line := RecipeLineModel{
			IngredientID:  ingID,
			MeasurementID: measID,
			Quantity:      in.Quantity,
			Notes:         in.Notes,
			SortOrder:     sortOrder,
		}
		switch ownerColumn {
		case "recipe_id":
			id := ownerID
			line.RecipeID = &id
			line.RecipeGroupID = in.GroupID
		case "user_meal_id":
			id := ownerID
			line.UserMealID = &id
			line.UserMealGroupID = in.GroupID
		}
		if err := tx.Create(&line).Error; err != nil {
			return err
		}
	}
	return nil
}

func termModels[T any](ids []uint, wrap func(TermModel) T) []T {
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = wrap(TermModel{ID: id})
	}
	return out
}

func categoryRefs(ids []uint) []CategoryModel {
	return termModels(ids, func(t TermModel) CategoryModel { return CategoryModel{TermModel: t} })
}

func cuisineRefs(ids []uint) []CuisineModel {
	return termModels(ids, func(t TermModel) CuisineModel { return CuisineModel{TermModel: t} })
}

func dietaryRefs(ids []uint) []DietaryModel {
	return termModels(ids, func(t TermModel) DietaryModel { return DietaryModel{TermModel: t} })
}

func termIDs(ts []meal.Term) []uint {
	out := make([]uint, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}
