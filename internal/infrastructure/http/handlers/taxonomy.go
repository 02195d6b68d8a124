package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/application/taxonomy"
	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
)

// TaxonomyHandler serves CRUD for one taxonomy; the server mounts one
// instance per term table.
type TaxonomyHandler struct {
	service *taxonomy.Service
	tax     outbound.Taxonomy
	logger  *zap.Logger
}

// NewTaxonomyHandler creates a handler bound to one taxonomy.
func NewTaxonomyHandler(service *taxonomy.Service, tax outbound.Taxonomy, logger *zap.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{service: service, tax: tax, logger: logger.Named("handlers." + string(tax))}
}

type termPayload struct {
	Name         string `json:"name" validate:"required,max=255"`
	Abbreviation string `json:"abbreviation" validate:"max=50"`
}

// List returns every term.
func (h *TaxonomyHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), h.tax)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// Search returns terms matching a name substring.
func (h *TaxonomyHandler) Search(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Search(r.Context(), h.tax, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// Get returns one term.
func (h *TaxonomyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	term, err := h.service.Get(r.Context(), h.tax, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, term)
}

// Create persists a new term.
func (h *TaxonomyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload termPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.service.Create(r.Context(), h.tax, &meal.Term{
		Name:         payload.Name,
		Abbreviation: payload.Abbreviation,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update renames a term.
func (h *TaxonomyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var payload termPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.service.Update(r.Context(), h.tax, &meal.Term{
		ID:           id,
		Name:         payload.Name,
		Abbreviation: payload.Abbreviation,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a term.
func (h *TaxonomyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), h.tax, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
