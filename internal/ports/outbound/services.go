package outbound

import (
	"context"

	"github.com/JamieKoz/platepicker-api/internal/domain/restaurant"
)

// PlacesClient talks to the Google Places / Geocoding APIs.
type PlacesClient interface {
	// NearbyPage fetches one page of nearby results. pageToken is
	// empty for the first page.
	NearbyPage(ctx context.Context, lat, lng float64, radius int, keyword, pageToken string) (*restaurant.Page, error)

	Details(ctx context.Context, placeID string) (*restaurant.Details, error)
	Autocomplete(ctx context.Context, input string) ([]restaurant.Suggestion, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)

	// Photo streams the photo binary with its content type.
	Photo(ctx context.Context, photoReference string, maxWidth int) ([]byte, string, error)
}

// IdentityVerifier consults the external identity provider.
type IdentityVerifier interface {
	Exists(ctx context.Context, userID string) (bool, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// MailSender delivers transactional mail.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
