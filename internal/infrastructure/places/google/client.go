// Package google implements the PlacesClient port against the Google
// Places and Geocoding web services.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/domain/restaurant"
	"github.com/JamieKoz/platepicker-api/internal/infrastructure/config"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
	apperrors "github.com/JamieKoz/platepicker-api/pkg/errors"
)

const (
	nearbyURL       = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	detailsURL      = "https://maps.googleapis.com/maps/api/place/details/json"
	autocompleteURL = "https://maps.googleapis.com/maps/api/place/autocomplete/json"
	geocodeURL      = "https://maps.googleapis.com/maps/api/geocode/json"
	photoURL        = "https://maps.googleapis.com/maps/api/place/photo"
)

// Client is the HTTP Places client.
type Client struct {
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Places client from configuration.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		apiKey:     cfg.Google.MapsAPIKey,
		httpClient: &http.Client{Timeout: cfg.Google.Timeout},
		logger:     logger.Named("places"),
	}
}

var _ outbound.PlacesClient = (*Client)(nil)

type nearbyResponse struct {
	Status        string        `json:"status"`
	NextPageToken string        `json:"next_page_token"`
	Results       []placeResult `json:"results"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity"`
	FormattedAddress string   `json:"formatted_address"`
	Types            []string `json:"types"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	PriceLevel       *int     `json:"price_level"`
	Photos           []struct {
		PhotoReference string `json:"photo_reference"`
		Width          int    `json:"width"`
		Height         int    `json:"height"`
	} `json:"photos"`
	OpeningHours *struct {
		OpenNow *bool    `json:"open_now"`
		Weekday []string `json:"weekday_text"`
	} `json:"opening_hours"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	IntlPhoneNumber string `json:"international_phone_number"`
	Website         string `json:"website"`
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// NearbyPage fetches one page of nearby places. An empty pageToken
// fetches the first page.
func (c *Client) NearbyPage(ctx context.Context, lat, lng float64, radius int, keyword, pageToken string) (*restaurant.Page, error) {
	params := url.Values{}
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
	} else {
		params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
		params.Set("radius", strconv.Itoa(radius))
		params.Set("keyword", keyword)
		params.Set("type", "restaurant")
	}

	var resp nearbyResponse
	if err := c.getJSON(ctx, nearbyURL, params, &resp); err != nil {
		return nil, apperrors.NewExternalServiceError("google places", err)
	}
	if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		c.logger.Warn("nearby search rejected", zap.String("status", resp.Status))
		return nil, apperrors.NewExternalServiceError("google places",
			fmt.Errorf("nearby search status %s", resp.Status))
	}

	page := &restaurant.Page{NextPageToken: resp.NextPageToken}
	for _, r := range resp.Results {
		page.Results = append(page.Results, toCandidate(r))
	}
	return page, nil
}

func toCandidate(r placeResult) restaurant.Candidate {
	c := restaurant.Candidate{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		Vicinity:         r.Vicinity,
		Types:            r.Types,
		Rating:           r.Rating,
		UserRatingsTotal: r.UserRatingsTotal,
		PriceLevel:       r.PriceLevel,
		Lat:              r.Geometry.Location.Lat,
		Lng:              r.Geometry.Location.Lng,
	}
	if r.OpeningHours != nil {
		c.OpenNow = r.OpeningHours.OpenNow
	}
	for _, p := range r.Photos {
		c.Photos = append(c.Photos, restaurant.Photo{
			PhotoReference: p.PhotoReference,
			Width:          p.Width,
			Height:         p.Height,
		})
	}
	return c
}

type detailsResponse struct {
	Status string      `json:"status"`
	Result placeResult `json:"result"`
}

// Details fetches place details for photo enrichment and geometry
// resolution.
func (c *Client) Details(ctx context.Context, placeID string) (*restaurant.Details, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "place_id,name,formatted_address,geometry,photos,international_phone_number,website,opening_hours,rating")

	var resp detailsResponse
	if err := c.getJSON(ctx, detailsURL, params, &resp); err != nil {
		return nil, apperrors.NewExternalServiceError("google places", err)
	}
	if resp.Status != "OK" {
		return nil, apperrors.NewExternalServiceError("google places",
			fmt.Errorf("place details status %s", resp.Status))
	}

	r := resp.Result
	d := &restaurant.Details{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		PhoneNumber:      r.IntlPhoneNumber,
		Website:          r.Website,
		Rating:           r.Rating,
	}
	if r.Geometry.Location.Lat != 0 || r.Geometry.Location.Lng != 0 {
		d.Geometry = &restaurant.Location{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng}
	}
	if r.OpeningHours != nil {
		d.OpeningHours = r.OpeningHours.Weekday
	}
	for _, p := range r.Photos {
		d.Photos = append(d.Photos, restaurant.Photo{
			PhotoReference: p.PhotoReference,
			Width:          p.Width,
			Height:         p.Height,
		})
	}
	return d, nil
}

type autocompleteResponse struct {
	Status      string `json:"status"`
	Predictions []struct {
		PlaceID     string `json:"place_id"`
		Description string `json:"description"`
	} `json:"predictions"`
}

// Autocomplete returns address predictions for an input string.
func (c *Client) Autocomplete(ctx context.Context, input string) ([]restaurant.Suggestion, error) {
	params := url.Values{}
	params.Set("input", input)
	params.Set("types", "geocode")

	var resp autocompleteResponse
	if err := c.getJSON(ctx, autocompleteURL, params, &resp); err != nil {
		return nil, apperrors.NewExternalServiceError("google places", err)
	}
	if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		return nil, apperrors.NewExternalServiceError("google places",
			fmt.Errorf("autocomplete status %s", resp.Status))
	}

	out := make([]restaurant.Suggestion, len(resp.Predictions))
	for i, p := range resp.Predictions {
		out[i] = restaurant.Suggestion{PlaceID: p.PlaceID, Description: p.Description}
	}
	return out, nil
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

// ReverseGeocode resolves coordinates to a formatted address.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))

	var resp geocodeResponse
	if err := c.getJSON(ctx, geocodeURL, params, &resp); err != nil {
		return "", apperrors.NewExternalServiceError("google geocoding", err)
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		return "", apperrors.NewExternalServiceError("google geocoding",
			fmt.Errorf("reverse geocode status %s", resp.Status))
	}
	return resp.Results[0].FormattedAddress, nil
}

// Photo streams one photo binary, following the redirect Google issues
// to the image host.
func (c *Client) Photo(ctx context.Context, photoReference string, maxWidth int) ([]byte, string, error) {
	params := url.Values{}
	params.Set("photo_reference", photoReference)
	params.Set("maxwidth", strconv.Itoa(maxWidth))
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", apperrors.NewExternalServiceError("google places", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", apperrors.NewExternalServiceError("google places",
			fmt.Errorf("photo fetch status %d", resp.StatusCode))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", apperrors.NewExternalServiceError("google places", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}
