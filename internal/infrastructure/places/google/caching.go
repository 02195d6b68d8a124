package google

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/domain/restaurant"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
)

// Cache TTLs per upstream call class. Pages and geocodes churn with
// opening hours and new venues; details and photo binaries barely
// change.
const (
	nearbyTTL  = time.Hour
	geocodeTTL = time.Hour
	detailsTTL = 7 * 24 * time.Hour
	photoTTL   = 30 * 24 * time.Hour
)

// CachingClient memoizes every upstream call through the cache
// repository. Cache failures fall through to the inner client.
type CachingClient struct {
	inner  outbound.PlacesClient
	cache  outbound.CacheRepository
	logger *zap.Logger
}

// NewCachingClient wraps a places client with cache memoization.
func NewCachingClient(inner outbound.PlacesClient, cache outbound.CacheRepository, logger *zap.Logger) outbound.PlacesClient {
	return &CachingClient{inner: inner, cache: cache, logger: logger.Named("places.cache")}
}

func (c *CachingClient) lookup(ctx context.Context, key string, out interface{}) bool {
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("corrupt cache entry dropped", zap.String("key", key))
		_ = c.cache.Delete(ctx, key)
		return false
	}
	return true
}

func (c *CachingClient) store(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, raw, ttl); err != nil {
		c.logger.Debug("cache store skipped", zap.String("key", key), zap.Error(err))
	}
}

// NearbyPage memoizes one result page per location/keyword/token.
func (c *CachingClient) NearbyPage(ctx context.Context, lat, lng float64, radius int, keyword, pageToken string) (*restaurant.Page, error) {
	key := fmt.Sprintf("places:nearby:%.4f:%.4f:%d:%s:%s", lat, lng, radius, keyword, pageToken)
	var cached restaurant.Page
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	page, err := c.inner.NearbyPage(ctx, lat, lng, radius, keyword, pageToken)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, page, nearbyTTL)
	return page, nil
}

// Details memoizes place details.
func (c *CachingClient) Details(ctx context.Context, placeID string) (*restaurant.Details, error) {
	key := "places:details:" + placeID
	var cached restaurant.Details
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	d, err := c.inner.Details(ctx, placeID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, d, detailsTTL)
	return d, nil
}

// Autocomplete memoizes predictions per input.
func (c *CachingClient) Autocomplete(ctx context.Context, input string) ([]restaurant.Suggestion, error) {
	key := "places:autocomplete:" + input
	var cached []restaurant.Suggestion
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}
	out, err := c.inner.Autocomplete(ctx, input)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out, geocodeTTL)
	return out, nil
}

// ReverseGeocode memoizes the formatted address per coordinate.
func (c *CachingClient) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	key := fmt.Sprintf("places:geocode:%.5f:%.5f", lat, lng)
	var cached string
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}
	addr, err := c.inner.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return "", err
	}
	c.store(ctx, key, addr, geocodeTTL)
	return addr, nil
}

type cachedPhoto struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Photo memoizes the photo binary with its content type.
func (c *CachingClient) Photo(ctx context.Context, photoReference string, maxWidth int) ([]byte, string, error) {
	key := fmt.Sprintf("places:photo:%s:%d", photoReference, maxWidth)
	var cached cachedPhoto
	if c.lookup(ctx, key, &cached) {
		return cached.Data, cached.ContentType, nil
	}
	data, ct, err := c.inner.Photo(ctx, photoReference, maxWidth)
	if err != nil {
		return nil, "", err
	}
	c.store(ctx, key, cachedPhoto{ContentType: ct, Data: data}, photoTTL)
	return data, ct, nil
}
