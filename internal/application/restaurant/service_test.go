package restaurant

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/JamieKoz/platepicker-api/internal/domain/restaurant"
)

// fakePlaces serves scripted pages and place details, recording calls.
type fakePlaces struct {
	pages       []domain.Page
	pageErr     map[int]error
	pageCalls   int
	lastKeyword string
	details     map[string]*domain.Details
	detailCalls int
}

func (f *fakePlaces) NearbyPage(_ context.Context, _, _ float64, _ int, keyword, pageToken string) (*domain.Page, error) {
	call := f.pageCalls
	f.pageCalls++
	f.lastKeyword = keyword
	if err, ok := f.pageErr[call]; ok {
		return nil, err
	}
	if call >= len(f.pages) {
		return &domain.Page{}, nil
	}
	page := f.pages[call]
	return &page, nil
}

func (f *fakePlaces) Details(_ context.Context, placeID string) (*domain.Details, error) {
	f.detailCalls++
	if d, ok := f.details[placeID]; ok {
		return d, nil
	}
	return &domain.Details{PlaceID: placeID}, nil
}

func (f *fakePlaces) Autocomplete(_ context.Context, _ string) ([]domain.Suggestion, error) {
	return nil, nil
}

func (f *fakePlaces) ReverseGeocode(_ context.Context, _, _ float64) (string, error) {
	return "1 Test St", nil
}

func (f *fakePlaces) Photo(_ context.Context, _ string, _ int) ([]byte, string, error) {
	return []byte("img"), "image/jpeg", nil
}

func candidate(name string) domain.Candidate {
	return domain.Candidate{
		PlaceID:  "place-" + name,
		Name:     name,
		Vicinity: "Fitzroy",
		Types:    []string{"restaurant"},
	}
}

func newTestService(places *fakePlaces) (*Service, *[]time.Duration) {
	var waits []time.Duration
	svc := NewService(places, 1500*time.Millisecond, zap.NewNop())
	svc.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	// Deterministic order for assertions.
	svc.shuffle = func(int, func(i, j int)) {}
	return svc, &waits
}

func TestFetchNearbyFiltersAndDedupes(t *testing.T) {
	page := domain.Page{}
	for i := 0; i < 20; i++ {
		page.Results = append(page.Results, candidate(fmt.Sprintf("Cafe %d", i)))
	}
	// Duplicates of existing entries under vicinity decoration.
	page.Results = append(page.Results,
		domain.Candidate{PlaceID: "dup1", Name: "Cafe 1 Fitzroy", Vicinity: "Fitzroy", Types: []string{"restaurant"}},
		domain.Candidate{PlaceID: "dup2", Name: "CAFE 2", Vicinity: "Fitzroy", Types: []string{"cafe"}},
	)
	// Blacklisted names and disallowed types.
	page.Results = append(page.Results,
		domain.Candidate{PlaceID: "x1", Name: "Shell Gas Station Cafe", Vicinity: "", Types: []string{"restaurant"}},
		domain.Candidate{PlaceID: "x2", Name: "Airport Hotel Bistro", Vicinity: "", Types: []string{"restaurant"}},
		domain.Candidate{PlaceID: "x3", Name: "7-Eleven Fitzroy", Vicinity: "", Types: []string{"convenience_store"}},
		domain.Candidate{PlaceID: "x4", Name: "Happy Kids Childcare", Vicinity: "", Types: []string{"restaurant"}},
		domain.Candidate{PlaceID: "x5", Name: "Laundromat", Vicinity: "", Types: []string{"laundry"}},
		domain.Candidate{PlaceID: "x6", Name: "Grand Lodge Dining", Vicinity: "", Types: []string{"restaurant"}},
		domain.Candidate{PlaceID: "x7", Name: "Corner Convenience Store", Vicinity: "", Types: []string{"food"}},
		domain.Candidate{PlaceID: "x8", Name: "Motel Diner", Vicinity: "", Types: []string{"restaurant"}},
	)
	require.Len(t, page.Results, 30)

	svc, _ := newTestService(&fakePlaces{pages: []domain.Page{page}})
	results, err := svc.FetchNearby(context.Background(), -37.8, 144.9, SearchOptions{})
	require.NoError(t, err)

	assert.Len(t, results, 20)
	for _, r := range results {
		assert.NotContains(t, r.Name, "Gas Station")
		assert.NotContains(t, r.Name, "7-Eleven")
	}
}

func TestFetchNearbyStopsAtTarget(t *testing.T) {
	var pages []domain.Page
	for p := 0; p < 3; p++ {
		page := domain.Page{NextPageToken: fmt.Sprintf("token-%d", p)}
		for i := 0; i < 20; i++ {
			page.Results = append(page.Results, candidate(fmt.Sprintf("Place %d-%d", p, i)))
		}
		pages = append(pages, page)
	}

	places := &fakePlaces{pages: pages}
	svc, waits := newTestService(places)

	results, err := svc.FetchNearby(context.Background(), -37.8, 144.9, SearchOptions{})
	require.NoError(t, err)

	assert.Len(t, results, targetResults)
	// 27 uniques need two pages; the third is never fetched.
	assert.Equal(t, 2, places.pageCalls)
	// Only the token-bearing second fetch waited.
	require.Len(t, *waits, 1)
	assert.Equal(t, 1500*time.Millisecond, (*waits)[0])
}

func TestFetchNearbyHonorsPageBudget(t *testing.T) {
	var pages []domain.Page
	for p := 0; p < 5; p++ {
		pages = append(pages, domain.Page{
			Results:       []domain.Candidate{candidate(fmt.Sprintf("Only %d", p))},
			NextPageToken: fmt.Sprintf("token-%d", p),
		})
	}

	places := &fakePlaces{pages: pages}
	svc, _ := newTestService(places)

	results, err := svc.FetchNearby(context.Background(), -37.8, 144.9, SearchOptions{})
	require.NoError(t, err)

	assert.Len(t, results, 3)
	assert.Equal(t, maxPages, places.pageCalls)
}

func TestFetchNearbyPartialOnPageFailure(t *testing.T) {
	first := domain.Page{NextPageToken: "token"}
	for i := 0; i < 8; i++ {
		first.Results = append(first.Results, candidate(fmt.Sprintf("Partial %d", i)))
	}

	places := &fakePlaces{
		pages:   []domain.Page{first},
		pageErr: map[int]error{1: errors.New("upstream timeout")},
	}
	svc, _ := newTestService(places)

	results, err := svc.FetchNearby(context.Background(), -37.8, 144.9, SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 8)
}

func TestFetchNearbyFirstPageFailureIsFatal(t *testing.T) {
	places := &fakePlaces{pageErr: map[int]error{0: errors.New("denied")}}
	svc, _ := newTestService(places)

	_, err := svc.FetchNearby(context.Background(), -37.8, 144.9, SearchOptions{})
	require.Error(t, err)
}

func TestPhotoEnrichmentMergesUniqueCapped(t *testing.T) {
	c := candidate("Enriched")
	c.Photos = []domain.Photo{{PhotoReference: "a"}, {PhotoReference: "b"}}

	places := &fakePlaces{
		pages: []domain.Page{{Results: []domain.Candidate{c}}},
		details: map[string]*domain.Details{
			c.PlaceID: {
				PlaceID: c.PlaceID,
				Photos: []domain.Photo{
					{PhotoReference: "b"},
					{PhotoReference: "c"},
					{PhotoReference: "d"},
					{PhotoReference: "e"},
					{PhotoReference: "f"},
					{PhotoReference: "g"},
				},
			},
		},
	}
	svc, _ := newTestService(places)

	results, err := svc.FetchNearby(context.Background(), -37.8, 144.9, SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	refs := make([]string, len(results[0].Photos))
	for i, p := range results[0].Photos {
		refs[i] = p.PhotoReference
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, refs)
}

func TestFetchNearbyPlaceWithoutGeometry(t *testing.T) {
	places := &fakePlaces{
		details: map[string]*domain.Details{
			"nowhere": {PlaceID: "nowhere"},
		},
	}
	svc, _ := newTestService(places)

	_, err := svc.FetchNearbyPlace(context.Background(), "nowhere", SearchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOCATION_NOT_FOUND")
}

func TestDedupKeyStripsVicinityTokens(t *testing.T) {
	a := domain.Candidate{Name: "Ray's Cafe Fitzroy", Vicinity: "Fitzroy North"}
	b := domain.Candidate{Name: "RAY'S CAFE", Vicinity: "Fitzroy North"}
	c := domain.Candidate{Name: "Ray's Diner", Vicinity: "Fitzroy North"}

	assert.Equal(t, a.DedupKey(), b.DedupKey())
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())

	// Short vicinity tokens are stripped too, so chain outlets
	// decorated with "St"-style suburb fragments still collapse.
	d := domain.Candidate{Name: "Subway St Kilda", Vicinity: "2 St Kilda Rd"}
	e := domain.Candidate{Name: "Subway", Vicinity: "CBD"}
	assert.Equal(t, d.DedupKey(), e.DedupKey())
}

func TestKeywordDerivation(t *testing.T) {
	assert.Equal(t, "meal delivery, restaurant", domain.Keyword(domain.DiningDelivery, "", nil))
	assert.Equal(t, "bar, pub", domain.Keyword(domain.DiningBars, "", nil))
	assert.Equal(t, "restaurant, food", domain.Keyword("", "", nil))
	assert.Equal(t, "ramen, restaurant, food", domain.Keyword(domain.DiningDineIn, "ramen", nil))
	assert.Equal(t, "vegan, halal, bar, pub", domain.Keyword(domain.DiningBars, "", []string{"vegan", "halal"}))
	assert.Equal(t, "vegan, ramen, restaurant, food", domain.Keyword("", "ramen", []string{"vegan"}))
}

func TestFetchNearbyAppliesDietaryToKeyword(t *testing.T) {
	places := &fakePlaces{pages: []domain.Page{{Results: []domain.Candidate{candidate("Greens")}}}}
	svc, _ := newTestService(places)

	_, err := svc.FetchNearby(context.Background(), -37.8, 144.9, SearchOptions{
		DiningOption: domain.DiningTakeaway,
		Dietary:      []string{"vegetarian", "gluten free"},
	})
	require.NoError(t, err)
	assert.Equal(t, "vegetarian, gluten free, takeaway, meal takeaway", places.lastKeyword)
}
