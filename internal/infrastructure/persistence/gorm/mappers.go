package gorm

import (
	"github.com/JamieKoz/platepicker-api/internal/domain/feedback"
	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
)

func termToDomain(m TermModel) meal.Term {
	return meal.Term{ID: m.ID, Name: m.Name, Abbreviation: m.Abbreviation}
}

func categoriesToDomain(ms []CategoryModel) []meal.Term {
	out := make([]meal.Term, len(ms))
	for i, m := range ms {
		out[i] = termToDomain(m.TermModel)
	}
	return out
}

func cuisinesToDomain(ms []CuisineModel) []meal.Term {
	out := make([]meal.Term, len(ms))
	for i, m := range ms {
		out[i] = termToDomain(m.TermModel)
	}
	return out
}

func dietaryToDomain(ms []DietaryModel) []meal.Term {
	out := make([]meal.Term, len(ms))
	for i, m := range ms {
		out[i] = termToDomain(m.TermModel)
	}
	return out
}

func lineToDomain(m RecipeLineModel) meal.Line {
	l := meal.Line{
		ID:            m.ID,
		IngredientID:  m.IngredientID,
		MeasurementID: m.MeasurementID,
		Quantity:      m.Quantity,
		Notes:         m.Notes,
		SortOrder:     m.SortOrder,
	}
	if m.RecipeGroupID != nil {
		l.GroupID = m.RecipeGroupID
	} else if m.UserMealGroupID != nil {
		l.GroupID = m.UserMealGroupID
	}
	if m.Ingredient != nil {
		t := termToDomain(m.Ingredient.TermModel)
		l.Ingredient = &t
	}
	if m.Measurement != nil {
		t := termToDomain(m.Measurement.TermModel)
		l.Measurement = &t
	}
	return l
}

func linesToDomain(ms []RecipeLineModel) []meal.Line {
	out := make([]meal.Line, len(ms))
	for i, m := range ms {
		out[i] = lineToDomain(m)
	}
	return out
}

func recipeToDomain(m *RecipeModel) *meal.Recipe {
	r := &meal.Recipe{
		ID:           m.ID,
		Title:        m.Title,
		Instructions: m.Instructions,
		ImageName:    m.ImageName,
		CookingTime:  m.CookingTime,
		Serves:       m.Serves,
		Active:       m.Active,
		Categories:   categoriesToDomain(m.Categories),
		Cuisines:     cuisinesToDomain(m.Cuisines),
		Dietary:      dietaryToDomain(m.Dietary),
		Lines:        linesToDomain(m.Lines),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	for _, g := range m.Groups {
		r.Groups = append(r.Groups, meal.LineGroup{
			ID: g.ID, Name: g.Name, Description: g.Description, SortOrder: g.SortOrder,
		})
	}
	return r
}

func userMealToDomain(m *UserMealModel) *meal.UserMeal {
	um := &meal.UserMeal{
		ID:           m.ID,
		UserID:       m.UserID,
		RecipeID:     m.RecipeID,
		Title:        m.Title,
		Instructions: m.Instructions,
		ImageName:    m.ImageName,
		CookingTime:  m.CookingTime,
		Serves:       m.Serves,
		Active:       m.Active,
		Categories:   categoriesToDomain(m.Categories),
		Cuisines:     cuisinesToDomain(m.Cuisines),
		Dietary:      dietaryToDomain(m.Dietary),
		Lines:        linesToDomain(m.Lines),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	for _, g := range m.Groups {
		um.Groups = append(um.Groups, meal.LineGroup{
			ID: g.ID, Name: g.Name, Description: g.Description, SortOrder: g.SortOrder,
		})
	}
	return um
}

func recipeSummary(m *RecipeModel) meal.Summary {
	return meal.Summary{
		ID:          m.ID,
		Title:       m.Title,
		ImageName:   m.ImageName,
		CookingTime: m.CookingTime,
		Serves:      m.Serves,
		Active:      m.Active,
		Categories:  categoriesToDomain(m.Categories),
		Cuisines:    cuisinesToDomain(m.Cuisines),
		Dietary:     dietaryToDomain(m.Dietary),
	}
}

func userMealSummary(m *UserMealModel) meal.Summary {
	return meal.Summary{
		ID:          m.ID,
		Title:       m.Title,
		ImageName:   m.ImageName,
		CookingTime: m.CookingTime,
		Serves:      m.Serves,
		Active:      m.Active,
		Categories:  categoriesToDomain(m.Categories),
		Cuisines:    cuisinesToDomain(m.Cuisines),
		Dietary:     dietaryToDomain(m.Dietary),
	}
}

func tallyToDomain(m UserMealTallyModel) meal.TallyRow {
	return meal.TallyRow{
		ID:             m.ID,
		UserID:         m.UserID,
		UserMealID:     m.UserMealID,
		Tally:          m.Tally,
		LastSelectedAt: m.LastSelectedAt,
	}
}

func feedbackToDomain(m *FeedbackModel) *feedback.Feedback {
	return &feedback.Feedback{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Message:   m.Message,
		Resolved:  m.Resolved,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
