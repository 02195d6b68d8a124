// Package handlers contains the JSON HTTP handlers for every API
// resource.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
	"github.com/JamieKoz/platepicker-api/internal/infrastructure/http/middleware"
	apperrors "github.com/JamieKoz/platepicker-api/pkg/errors"
)

var validate = validator.New()

// writeJSON renders a JSON body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError renders any error through the shared envelope, mapping
// unknown errors to 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.Wrap(err, "request failed")
	writeJSON(w, appErr.StatusCode(), apperrors.ToErrorResponse(appErr, middleware.RequestIDFrom(r.Context())))
}

// decodeAndValidate parses the JSON body into dst and applies the
// validator tags, translating failures to a 422 field map.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewBadRequestError("Invalid JSON body")
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			out := make([]apperrors.ValidationError, len(fieldErrs))
			for i, fe := range fieldErrs {
				out[i] = apperrors.ValidationError{
					Field:   fe.Field(),
					Value:   fe.Value(),
					Tag:     fe.Tag(),
					Message: fe.Field() + " failed " + fe.Tag() + " validation",
				}
			}
			return apperrors.NewValidationErrors(out)
		}
		return apperrors.NewBadRequestError("Invalid request body")
	}
	return nil
}

// idParam parses a numeric chi URL parameter.
func idParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.NewBadRequestError("Invalid " + name)
	}
	return uint(id), nil
}

// listParams parses the shared listing query surface. The search term
// is accepted as either search or q, the latter for the search routes.
func listParams(r *http.Request) meal.ListParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	search := q.Get("search")
	if search == "" {
		search = q.Get("q")
	}
	return meal.ListParams{
		GroupBy: meal.ParseDimension(q.Get("group_by")),
		Sort: meal.Sort{
			ActiveDirection: meal.ParseDirection(q.Get("active_direction"), meal.Desc),
			TitleDirection:  meal.ParseDirection(q.Get("title_direction"), meal.Asc),
		},
		Page:   page,
		Search: search,
	}
}

// taxonomyFilter parses repeated category/cuisine/dietary id params.
func taxonomyFilter(r *http.Request) meal.TaxonomyFilter {
	q := r.URL.Query()
	parse := func(key string) []uint {
		var out []uint
		for _, raw := range q[key] {
			if id, err := strconv.ParseUint(raw, 10, 32); err == nil && id > 0 {
				out = append(out, uint(id))
			}
		}
		return out
	}
	return meal.TaxonomyFilter{
		CategoryIDs: parse("category_ids[]"),
		CuisineIDs:  parse("cuisine_ids[]"),
		DietaryIDs:  parse("dietary_ids[]"),
	}
}

// userID returns the authenticated caller id; RequireUser guarantees
// presence on protected routes.
func userID(r *http.Request) string {
	return middleware.UserIDFrom(r.Context())
}
