package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/application/recipe"
	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
)

// RecipeHandler serves the recipe catalog endpoints.
type RecipeHandler struct {
	service *recipe.Service
	logger  *zap.Logger
}

// NewRecipeHandler creates a recipe handler.
func NewRecipeHandler(service *recipe.Service, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{service: service, logger: logger.Named("handlers.recipe")}
}

type linePayload struct {
	IngredientID    uint     `json:"ingredient_id"`
	IngredientName  string   `json:"ingredient_name" validate:"max=255"`
	MeasurementID   *uint    `json:"measurement_id"`
	MeasurementName string   `json:"measurement_name" validate:"max=255"`
	Quantity        *float64 `json:"quantity" validate:"omitempty,gte=0"`
	Notes           string   `json:"notes" validate:"max=255"`
	SortOrder       int      `json:"sort_order"`
	GroupID         *uint    `json:"group_id"`
}

func (p linePayload) toInput() meal.LineInput {
	return meal.LineInput{
		IngredientID:    p.IngredientID,
		IngredientName:  p.IngredientName,
		MeasurementID:   p.MeasurementID,
		MeasurementName: p.MeasurementName,
		Quantity:        p.Quantity,
		Notes:           p.Notes,
		SortOrder:       p.SortOrder,
		GroupID:         p.GroupID,
	}
}

type recipePayload struct {
	Title        string        `json:"title" validate:"required,max=255"`
	Instructions string        `json:"instructions"`
	ImageName    string        `json:"image_name" validate:"max=255"`
	CookingTime  *int          `json:"cooking_time" validate:"omitempty,gte=0"`
	Serves       *int          `json:"serves" validate:"omitempty,gte=1"`
	Active       *bool         `json:"active"`
	CategoryIDs  []uint        `json:"category_ids"`
	CuisineIDs   []uint        `json:"cuisine_ids"`
	DietaryIDs   []uint        `json:"dietary_ids"`
	Lines        []linePayload `json:"recipe_lines" validate:"dive"`
}

func terms(ids []uint) []meal.Term {
	out := make([]meal.Term, len(ids))
	for i, id := range ids {
		out[i] = meal.Term{ID: id}
	}
	return out
}

func (p recipePayload) toDomain(id uint) (*meal.Recipe, []meal.LineInput) {
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	r := &meal.Recipe{
		ID:           id,
		Title:        p.Title,
		Instructions: p.Instructions,
		ImageName:    p.ImageName,
		CookingTime:  p.CookingTime,
		Serves:       p.Serves,
		Active:       active,
		Categories:   terms(p.CategoryIDs),
		Cuisines:     terms(p.CuisineIDs),
		Dietary:      terms(p.DietaryIDs),
	}
	lines := make([]meal.LineInput, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = l.toInput()
	}
	return r, lines
}

// List serves grouped or flat listing depending on group_by.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	if params.GroupBy == meal.DimensionNone {
		page, err := h.service.ListFlat(r.Context(), params)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
		return
	}

	page, err := h.service.ListGrouped(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get serves one recipe.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Create persists a new recipe.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload recipePayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	rec, lines := payload.toDomain(0)
	created, err := h.service.Create(r.Context(), rec, lines)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update replaces a recipe.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var payload recipePayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	rec, lines := payload.toDomain(id)
	updated, err := h.service.Update(r.Context(), rec, lines)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type togglePayload struct {
	Active bool `json:"active"`
}

// ToggleStatus sets the active flag.
func (h *RecipeHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var payload togglePayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.ToggleStatus(r.Context(), id, payload.Active); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "active": payload.Active})
}

// Delete removes a recipe.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Random serves a random active selection for unauthenticated pickers.
func (h *RecipeHandler) Random(w http.ResponseWriter, r *http.Request) {
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	items, err := h.service.Random(r.Context(), count, taxonomyFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// GroupValues lists the terms of a grouping dimension.
func (h *RecipeHandler) GroupValues(w http.ResponseWriter, r *http.Request) {
	dim := meal.ParseDimension(r.URL.Query().Get("group_by"))
	values, err := h.service.GroupValues(r.Context(), dim)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"values": values})
}

// AssignInitialMeals seeds the caller's collection with starter meals.
func (h *RecipeHandler) AssignInitialMeals(w http.ResponseWriter, r *http.Request) {
	created, err := h.service.AssignInitialMeals(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"created": created})
}

type groupPayload struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=255"`
	SortOrder   int    `json:"sort_order"`
}

// Groups lists a recipe's ingredient groups.
func (h *RecipeHandler) Groups(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	groups, err := h.service.Groups(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

// CreateGroup adds an ingredient group.
func (h *RecipeHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var payload groupPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.service.CreateGroup(r.Context(), id, &meal.LineGroup{
		Name:        payload.Name,
		Description: payload.Description,
		SortOrder:   payload.SortOrder,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateGroup renames or reorders an ingredient group.
func (h *RecipeHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	groupID, err := idParam(r, "groupID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var payload groupPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.service.UpdateGroup(r.Context(), id, &meal.LineGroup{
		ID:          groupID,
		Name:        payload.Name,
		Description: payload.Description,
		SortOrder:   payload.SortOrder,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteGroup removes an ingredient group.
func (h *RecipeHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	groupID, err := idParam(r, "groupID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.DeleteGroup(r.Context(), id, groupID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
