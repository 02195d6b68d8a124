package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/application/restaurant"
	domain "github.com/JamieKoz/platepicker-api/internal/domain/restaurant"
	apperrors "github.com/JamieKoz/platepicker-api/pkg/errors"
)

// RestaurantHandler serves the restaurant aggregation endpoints.
type RestaurantHandler struct {
	service *restaurant.Service
	logger  *zap.Logger
}

// NewRestaurantHandler creates a restaurant handler.
func NewRestaurantHandler(service *restaurant.Service, logger *zap.Logger) *RestaurantHandler {
	return &RestaurantHandler{service: service, logger: logger.Named("handlers.restaurant")}
}

func latLng(r *http.Request) (float64, float64, error) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, apperrors.NewBadRequestError("Invalid lat")
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, apperrors.NewBadRequestError("Invalid lng")
	}
	return lat, lng, nil
}

func searchOptions(r *http.Request) restaurant.SearchOptions {
	q := r.URL.Query()
	radius, _ := strconv.Atoi(q.Get("radius"))
	return restaurant.SearchOptions{
		Radius:       radius,
		DiningOption: domain.DiningOption(q.Get("dining_option")),
		Keyword:      q.Get("keyword"),
		Dietary:      dietaryTags(q.Get("dietary")),
	}
}

// dietaryTags splits the comma-separated dietary query value.
func dietaryTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Nearby aggregates restaurants around a coordinate.
func (h *RestaurantHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	lat, lng, err := latLng(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	results, err := h.service.FetchNearby(r.Context(), lat, lng, searchOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"restaurants": results})
}

// NearbyPlace aggregates restaurants around a known place.
func (h *RestaurantHandler) NearbyPlace(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")
	if placeID == "" {
		writeError(w, r, apperrors.NewBadRequestError("Missing place id"))
		return
	}
	results, err := h.service.FetchNearbyPlace(r.Context(), placeID, searchOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"restaurants": results})
}

// ReverseGeocode resolves a coordinate to an address.
func (h *RestaurantHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, lng, err := latLng(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	address, err := h.service.ReverseGeocode(r.Context(), lat, lng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"address": address})
}

// AddressSuggestions serves autocomplete predictions.
func (h *RestaurantHandler) AddressSuggestions(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("input")
	if input == "" {
		writeError(w, r, apperrors.NewBadRequestError("Missing input"))
		return
	}
	suggestions, err := h.service.AddressSuggestions(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

// Photos lists the photo references of one place.
func (h *RestaurantHandler) Photos(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")
	if placeID == "" {
		writeError(w, r, apperrors.NewBadRequestError("Missing place id"))
		return
	}
	photos, err := h.service.Photos(r.Context(), placeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"photos": photos})
}

// Photo proxies one photo binary addressed by path parameter.
func (h *RestaurantHandler) Photo(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		writeError(w, r, apperrors.NewBadRequestError("Missing photo reference"))
		return
	}
	h.servePhoto(w, r, reference)
}

// PhotoProxy proxies one photo binary addressed by query parameter.
func (h *RestaurantHandler) PhotoProxy(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("photo_reference")
	if reference == "" {
		writeError(w, r, apperrors.NewBadRequestError("Missing photo_reference"))
		return
	}
	h.servePhoto(w, r, reference)
}

// servePhoto streams the binary with long-lived cache headers, so
// browsers and the CDN absorb repeat views.
func (h *RestaurantHandler) servePhoto(w http.ResponseWriter, r *http.Request, reference string) {
	maxWidth, _ := strconv.Atoi(r.URL.Query().Get("max_width"))

	data, contentType, err := h.service.Photo(r.Context(), reference, maxWidth)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=2592000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
