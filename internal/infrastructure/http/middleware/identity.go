package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/infrastructure/identity"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
	apperrors "github.com/JamieKoz/platepicker-api/pkg/errors"
)

const (
	userIDHeader   = "X-User-Id"
	userDataHeader = "X-User-Data"

	userIDKey   contextKey = "user_id"
	userDataKey contextKey = "user_data"
)

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the request id stored in the context.
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// UserIDFrom returns the caller's external id, or "" when anonymous.
func UserIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// UserDataFrom returns the verified user-data claims, if present.
func UserDataFrom(ctx context.Context) *identity.UserData {
	if d, ok := ctx.Value(userDataKey).(*identity.UserData); ok {
		return d
	}
	return nil
}

// Identity extracts the caller's identity headers. A missing id leaves
// the request anonymous; a present but invalid user-data blob is a
// 401.
func Identity(userDataSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	log := logger.Named("identity")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if userID := r.Header.Get(userIDHeader); userID != "" {
				ctx = context.WithValue(ctx, userIDKey, userID)
			}

			if blob := r.Header.Get(userDataHeader); blob != "" {
				data, err := identity.ParseUserData(blob, userDataSecret)
				if err != nil {
					log.Warn("rejected user data blob", zap.Error(err))
					writeError(w, r, apperrors.NewUnauthorizedError("Invalid user data"))
					return
				}
				ctx = context.WithValue(ctx, userDataKey, data)
				if UserIDFrom(ctx) == "" {
					ctx = context.WithValue(ctx, userIDKey, data.UserID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests with 400, matching the
// missing-identifier contract.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserIDFrom(r.Context()) == "" {
			writeError(w, r, apperrors.NewBadRequestError("Missing user identifier"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects non-admin callers with 403.
func RequireAdmin(verifier outbound.IdentityVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFrom(r.Context())
			if userID == "" {
				writeError(w, r, apperrors.NewBadRequestError("Missing user identifier"))
				return
			}
			if data := UserDataFrom(r.Context()); data != nil && data.Admin {
				next.ServeHTTP(w, r)
				return
			}
			admin, err := verifier.IsAdmin(r.Context(), userID)
			if err != nil {
				writeError(w, r, apperrors.Wrap(err, "admin check failed"))
				return
			}
			if !admin {
				writeError(w, r, apperrors.NewForbiddenError(""))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeError renders the shared error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode())
	_ = json.NewEncoder(w).Encode(apperrors.ToErrorResponse(err, RequestIDFrom(r.Context())))
}
