// Package restaurant holds the value types for the restaurant
// aggregation pipeline fed by the Google Places API.
package restaurant

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// DiningOption selects the keyword used for nearby searches.
type DiningOption string

const (
	DiningDelivery  DiningOption = "delivery"
	DiningBars      DiningOption = "bars"
	DiningDineIn    DiningOption = "dine_in"
	DiningTakeaway  DiningOption = "takeaway"
	DiningDriveThru DiningOption = "drive_thru"
)

// Keyword returns the search keyword for a dining option. A custom
// keyword, when given, is suffixed with the generic restaurant terms.
// Dietary tags are prefixed so they restrict whichever base applies;
// they also vary the upstream cache key, which is derived from the
// full keyword.
func Keyword(option DiningOption, custom string, dietary []string) string {
	base := "restaurant, food"
	if custom != "" {
		base = custom + ", restaurant, food"
	} else {
		switch option {
		case DiningDelivery:
			base = "meal delivery, restaurant"
		case DiningBars:
			base = "bar, pub"
		case DiningDineIn:
			base = "restaurant, dine in"
		case DiningTakeaway:
			base = "takeaway, meal takeaway"
		case DiningDriveThru:
			base = "drive thru, fast food"
		}
	}
	if len(dietary) > 0 {
		return strings.Join(dietary, ", ") + ", " + base
	}
	return base
}

// Photo is a single place photo reference.
type Photo struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
}

// Candidate is one raw nearby-search result prior to filtering.
type Candidate struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity"`
	Types            []string `json:"types"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	PriceLevel       *int     `json:"price_level,omitempty"`
	Photos           []Photo  `json:"photos,omitempty"`
	OpenNow          *bool    `json:"open_now,omitempty"`
	Lat              float64  `json:"lat"`
	Lng              float64  `json:"lng"`
}

// Location is a resolved coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Details is the subset of place details the pipeline consumes.
type Details struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	PhoneNumber      string   `json:"phone_number,omitempty"`
	Website          string   `json:"website,omitempty"`
	Photos           []Photo  `json:"photos,omitempty"`
	Geometry         *Location `json:"geometry,omitempty"`
	OpeningHours     []string `json:"opening_hours,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
}

// Suggestion is one autocomplete prediction.
type Suggestion struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

// Page is one page of nearby-search results with its continuation token.
type Page struct {
	Results       []Candidate `json:"results"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}

var validTypes = map[string]struct{}{
	"restaurant":    {},
	"cafe":          {},
	"meal_takeaway": {},
	"food":          {},
	"hamburger":     {},
	"greek":         {},
}

var blacklistedTerms = []string{
	"bp",
	"7-eleven",
	"hotel",
	"motel",
	"lodge",
	"airport",
	"convenience store",
	"gas station",
	"service station",
	"childcare",
	"child care",
	"early learning",
	"kindergarten",
}

// Eligible reports whether a candidate passes the type allow-list and
// the name blacklist.
func (c Candidate) Eligible() bool {
	typed := false
	for _, t := range c.Types {
		if _, ok := validTypes[t]; ok {
			typed = true
			break
		}
	}
	if !typed {
		return false
	}
	name := strings.ToLower(c.Name)
	for _, term := range blacklistedTerms {
		if strings.Contains(name, term) {
			return false
		}
	}
	return true
}

// DedupKey hashes the candidate name with every whitespace-delimited
// vicinity token stripped case-insensitively, so "Ray's Cafe Fitzroy"
// and "ray's cafe" at the same vicinity collapse to one entry.
func (c Candidate) DedupKey() string {
	name := strings.ToLower(c.Name)
	for _, token := range strings.Fields(strings.ToLower(c.Vicinity)) {
		name = strings.ReplaceAll(name, token, "")
	}
	name = strings.TrimSpace(name)
	sum := md5.Sum([]byte(name))
	return hex.EncodeToString(sum[:])
}
