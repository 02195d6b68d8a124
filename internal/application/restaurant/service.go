// Package restaurant aggregates nearby dining options from the Places
// API: multi-page fetch, filtering, dedup, photo enrichment and a
// shuffled, capped result set.
package restaurant

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	domain "github.com/JamieKoz/platepicker-api/internal/domain/restaurant"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
	apperrors "github.com/JamieKoz/platepicker-api/pkg/errors"
)

const (
	// targetResults is the number of unique restaurants a response
	// aims for; fetching stops as soon as it is reached.
	targetResults = 27
	// maxPages bounds upstream page fetches per request.
	maxPages = 3
	// maxPhotos caps the merged photo list per restaurant.
	maxPhotos = 5

	defaultRadius = 1500
	photoMaxWidth = 800
)

// SearchOptions shape one nearby aggregation request.
type SearchOptions struct {
	Radius       int
	DiningOption domain.DiningOption
	Keyword      string
	Dietary      []string
}

// Service implements the restaurant aggregation pipeline.
type Service struct {
	places outbound.PlacesClient
	logger *zap.Logger

	// pageWait is the delay before a next_page_token becomes valid
	// upstream. sleep and shuffle are injectable for tests.
	pageWait time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	shuffle  func(n int, swap func(i, j int))
}

// NewService creates a restaurant service.
func NewService(places outbound.PlacesClient, pageWait time.Duration, logger *zap.Logger) *Service {
	return &Service{
		places:   places,
		logger:   logger.Named("restaurant"),
		pageWait: pageWait,
		sleep:    sleepContext,
		shuffle:  rand.Shuffle,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FetchNearby aggregates up to 27 unique restaurants around a
// coordinate. Page fetch failures truncate the contribution rather
// than failing the whole request once results exist.
func (s *Service) FetchNearby(ctx context.Context, lat, lng float64, opts SearchOptions) ([]domain.Candidate, error) {
	radius := opts.Radius
	if radius <= 0 {
		radius = defaultRadius
	}
	keyword := domain.Keyword(opts.DiningOption, opts.Keyword, opts.Dietary)

	seen := make(map[string]struct{})
	var results []domain.Candidate
	pageToken := ""

	for page := 0; page < maxPages && len(results) < targetResults; page++ {
		if pageToken != "" {
			// The continuation token is not valid immediately.
			if err := s.sleep(ctx, s.pageWait); err != nil {
				return nil, err
			}
		}

		fetched, err := s.places.NearbyPage(ctx, lat, lng, radius, keyword, pageToken)
		if err != nil {
			if len(results) > 0 {
				s.logger.Warn("page fetch failed, returning partial results",
					zap.Int("page", page),
					zap.Int("results", len(results)),
					zap.Error(err),
				)
				break
			}
			return nil, err
		}

		for _, c := range fetched.Results {
			if len(results) >= targetResults {
				break
			}
			if !c.Eligible() {
				continue
			}
			key := c.DedupKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			results = append(results, c)
		}

		pageToken = fetched.NextPageToken
		if pageToken == "" {
			break
		}
	}

	for i := range results {
		s.enrichPhotos(ctx, &results[i])
	}

	s.shuffle(len(results), func(i, j int) {
		results[i], results[j] = results[j], results[i]
	})

	s.logger.Info("nearby aggregation complete",
		zap.Float64("lat", lat),
		zap.Float64("lng", lng),
		zap.String("keyword", keyword),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// FetchNearbyPlace resolves a place to its coordinates and aggregates
// around it. A place with no geometry is a terminal not-found.
func (s *Service) FetchNearbyPlace(ctx context.Context, placeID string, opts SearchOptions) ([]domain.Candidate, error) {
	details, err := s.places.Details(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if details.Geometry == nil {
		return nil, apperrors.NewLocationNotFoundError(placeID)
	}
	return s.FetchNearby(ctx, details.Geometry.Lat, details.Geometry.Lng, opts)
}

// enrichPhotos merges the candidate's photos with its place details
// photos, unique by reference, capped at maxPhotos. Detail failures
// leave the candidate's own photos in place.
func (s *Service) enrichPhotos(ctx context.Context, c *domain.Candidate) {
	details, err := s.places.Details(ctx, c.PlaceID)
	if err != nil {
		s.logger.Warn("photo enrichment skipped",
			zap.String("place_id", c.PlaceID),
			zap.Error(err),
		)
	} else {
		c.Photos = append(c.Photos, details.Photos...)
	}

	seen := make(map[string]struct{}, len(c.Photos))
	merged := c.Photos[:0]
	for _, p := range c.Photos {
		if _, dup := seen[p.PhotoReference]; dup {
			continue
		}
		seen[p.PhotoReference] = struct{}{}
		merged = append(merged, p)
		if len(merged) == maxPhotos {
			break
		}
	}
	c.Photos = merged
}

// Photos returns the photo references of one place.
func (s *Service) Photos(ctx context.Context, placeID string) ([]domain.Photo, error) {
	details, err := s.places.Details(ctx, placeID)
	if err != nil {
		return nil, err
	}
	photos := details.Photos
	if len(photos) > maxPhotos {
		photos = photos[:maxPhotos]
	}
	return photos, nil
}

// Photo streams one photo binary for proxying.
func (s *Service) Photo(ctx context.Context, photoReference string, maxWidth int) ([]byte, string, error) {
	if maxWidth <= 0 {
		maxWidth = photoMaxWidth
	}
	return s.places.Photo(ctx, photoReference, maxWidth)
}

// ReverseGeocode resolves a coordinate to a formatted address.
func (s *Service) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	return s.places.ReverseGeocode(ctx, lat, lng)
}

// AddressSuggestions returns autocomplete predictions for an input.
func (s *Service) AddressSuggestions(ctx context.Context, input string) ([]domain.Suggestion, error) {
	return s.places.Autocomplete(ctx, input)
}

// Details returns the detail view of one place.
func (s *Service) Details(ctx context.Context, placeID string) (*domain.Details, error) {
	return s.places.Details(ctx, placeID)
}
