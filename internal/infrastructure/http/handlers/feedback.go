package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/application/feedback"
	domain "github.com/JamieKoz/platepicker-api/internal/domain/feedback"
)

// FeedbackHandler serves feedback submission and admin triage.
type FeedbackHandler struct {
	service *feedback.Service
	logger  *zap.Logger
}

// NewFeedbackHandler creates a feedback handler.
func NewFeedbackHandler(service *feedback.Service, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{service: service, logger: logger.Named("handlers.feedback")}
}

type feedbackPayload struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Submit accepts a feedback message.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload feedbackPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.service.Submit(r.Context(), &domain.Feedback{
		Name:    payload.Name,
		Email:   payload.Email,
		Message: payload.Message,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List returns all feedback rows.
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// Get returns one feedback row.
func (h *FeedbackHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type resolvePayload struct {
	Resolved bool `json:"resolved"`
}

// SetResolved updates the resolved flag.
func (h *FeedbackHandler) SetResolved(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var payload resolvePayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.SetResolved(r.Context(), id, payload.Resolved); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "resolved": payload.Resolved})
}
