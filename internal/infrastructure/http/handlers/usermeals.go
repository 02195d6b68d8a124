package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/application/tally"
	"github.com/JamieKoz/platepicker-api/internal/application/usermeal"
	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
)

// UserMealHandler serves the per-user meal endpoints, including the
// tally operations.
type UserMealHandler struct {
	meals   *usermeal.Service
	tallies *tally.Service
	logger  *zap.Logger
}

// NewUserMealHandler creates a user meal handler.
func NewUserMealHandler(meals *usermeal.Service, tallies *tally.Service, logger *zap.Logger) *UserMealHandler {
	return &UserMealHandler{meals: meals, tallies: tallies, logger: logger.Named("handlers.usermeal")}
}

type userMealPayload struct {
	recipePayload
	RecipeID *uint `json:"recipe_id"`
}

func (p userMealPayload) toDomain(id uint) (*meal.UserMeal, []meal.LineInput) {
	rec, lines := p.recipePayload.toDomain(0)
	m := &meal.UserMeal{
		ID:           id,
		RecipeID:     p.RecipeID,
		Title:        rec.Title,
		Instructions: rec.Instructions,
		ImageName:    rec.ImageName,
		CookingTime:  rec.CookingTime,
		Serves:       rec.Serves,
		Active:       rec.Active,
		Categories:   rec.Categories,
		Cuisines:     rec.Cuisines,
		Dietary:      rec.Dietary,
	}
	return m, lines
}

// List serves grouped or flat listing of the caller's meals.
func (h *UserMealHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	if params.GroupBy == meal.DimensionNone {
		page, err := h.meals.ListFlat(r.Context(), userID(r), params)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
		return
	}

	page, err := h.meals.ListGrouped(r.Context(), userID(r), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get serves one of the caller's meals.
func (h *UserMealHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.meals.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Create persists an original meal.
func (h *UserMealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload userMealPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	m, lines := payload.toDomain(0)
	created, err := h.meals.Create(r.Context(), userID(r), m, lines)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update replaces one of the caller's meals.
func (h *UserMealHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var payload userMealPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	m, lines := payload.toDomain(id)
	updated, err := h.meals.Update(r.Context(), userID(r), m, lines)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ToggleStatus sets the active flag.
func (h *UserMealHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
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
	if err := h.meals.ToggleStatus(r.Context(), userID(r), id, payload.Active); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "active": payload.Active})
}

// Delete removes one of the caller's meals.
func (h *UserMealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.meals.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddFromRecipe copies a catalog recipe into the caller's collection.
func (h *UserMealHandler) AddFromRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID, err := idParam(r, "recipeID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.meals.AddFromRecipe(r.Context(), userID(r), recipeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Random serves a random selection of the caller's active meals.
func (h *UserMealHandler) Random(w http.ResponseWriter, r *http.Request) {
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	items, err := h.meals.Random(r.Context(), userID(r), count, taxonomyFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// IncrementTally records one selection of a meal.
func (h *UserMealHandler) IncrementTally(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.tallies.Increment(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "recorded"})
}

// Favourites serves the caller's top-3 meals by tally.
func (h *UserMealHandler) Favourites(w http.ResponseWriter, r *http.Request) {
	favs, err := h.tallies.Favourites(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"favourites": favs})
}

// TopMeals serves the global top-3 meals by summed tally.
func (h *UserMealHandler) TopMeals(w http.ResponseWriter, r *http.Request) {
	top, err := h.tallies.TopMeals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"top_meals": top})
}

// Groups lists a meal's ingredient groups.
func (h *UserMealHandler) Groups(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	groups, err := h.meals.Groups(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

// CreateGroup adds an ingredient group to a meal.
func (h *UserMealHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
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
	created, err := h.meals.CreateGroup(r.Context(), userID(r), id, &meal.LineGroup{
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
func (h *UserMealHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
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
	updated, err := h.meals.UpdateGroup(r.Context(), userID(r), id, &meal.LineGroup{
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
func (h *UserMealHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
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
	if err := h.meals.DeleteGroup(r.Context(), userID(r), id, groupID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
