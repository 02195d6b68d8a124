// Package identity integrates the external identity provider: user
// existence/role checks against its admin API and verification of the
// signed user-data blob forwarded on requests.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/infrastructure/config"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
	apperrors "github.com/JamieKoz/platepicker-api/pkg/errors"
)

// ProviderVerifier checks users against the identity provider's admin
// API.
type ProviderVerifier struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewProviderVerifier creates a verifier from configuration.
func NewProviderVerifier(cfg *config.Config, logger *zap.Logger) outbound.IdentityVerifier {
	return &ProviderVerifier{
		baseURL:    cfg.Auth.ProviderURL,
		apiKey:     cfg.Auth.ProviderKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     logger.Named("identity"),
	}
}

type providerUser struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
}

func (v *ProviderVerifier) fetchUser(ctx context.Context, userID string) (*providerUser, error) {
	endpoint := fmt.Sprintf("%s/users/%s", v.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalServiceError("identity provider", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var u providerUser
		if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
			return nil, apperrors.NewExternalServiceError("identity provider", err)
		}
		return &u, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, apperrors.NewExternalServiceError("identity provider",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}

// Exists reports whether the user is known to the provider.
func (v *ProviderVerifier) Exists(ctx context.Context, userID string) (bool, error) {
	u, err := v.fetchUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

// IsAdmin reports whether the user carries the admin role.
func (v *ProviderVerifier) IsAdmin(ctx context.Context, userID string) (bool, error) {
	u, err := v.fetchUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}
	for _, role := range u.Roles {
		if role == "admin" {
			return true, nil
		}
	}
	return false, nil
}
