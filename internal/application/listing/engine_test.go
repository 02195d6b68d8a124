package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
)

// fakeLister serves canned group counts and synthesizes members per
// group id.
type fakeLister struct {
	counts        []meal.GroupCount
	uncategorized int
	flatTotal     int
	lastPerPage   int
	lastPage      int
}

func (f *fakeLister) GroupCounts(_ context.Context, dim meal.Dimension, _ string) ([]meal.GroupCount, int, error) {
	return f.counts, f.uncategorized, nil
}

func (f *fakeLister) GroupMembers(_ context.Context, _ meal.Dimension, groupID uint, _ string, _ meal.Sort, limit int) ([]meal.Summary, error) {
	count := 0
	for _, c := range f.counts {
		if c.ID == groupID {
			count = c.Count
		}
	}
	if groupID == meal.UncategorizedID {
		count = f.uncategorized
	}
	if count > limit {
		count = limit
	}
	out := make([]meal.Summary, count)
	for i := range out {
		out[i] = meal.Summary{ID: groupID*1000 + uint(i), Title: fmt.Sprintf("meal-%d-%d", groupID, i)}
	}
	return out, nil
}

func (f *fakeLister) Page(_ context.Context, _ string, _ meal.Sort, page, perPage int) ([]meal.Summary, int, error) {
	f.lastPerPage = perPage
	f.lastPage = page
	remaining := f.flatTotal - (page-1)*perPage
	if remaining < 0 {
		remaining = 0
	}
	if remaining > perPage {
		remaining = perPage
	}
	out := make([]meal.Summary, remaining)
	return out, f.flatTotal, nil
}

func newTestEngine() *Engine {
	return NewEngine("http://api.test", zap.NewNop())
}

func sevenCuisines() *fakeLister {
	counts := make([]meal.GroupCount, 7)
	for i := range counts {
		counts[i] = meal.GroupCount{ID: uint(i + 1), Name: fmt.Sprintf("Cuisine %c", 'A'+i), Count: 4}
	}
	return &fakeLister{counts: counts, uncategorized: 2}
}

func TestListGroupedFirstPage(t *testing.T) {
	engine := newTestEngine()
	lister := sevenCuisines()

	page, err := engine.ListGrouped(context.Background(), lister, "/api/v1/recipes", meal.ListParams{
		GroupBy: meal.DimensionCuisine,
		Sort:    meal.DefaultSort(),
		Page:    1,
	})
	require.NoError(t, err)

	assert.True(t, page.Grouped)
	assert.Equal(t, meal.DimensionCuisine, page.GroupBy)
	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.Equal(t, 2, page.Pagination.LastPage)
	assert.Equal(t, meal.GroupsPerPage, page.Pagination.PerPage)
	assert.Equal(t, 8, page.Pagination.TotalGroups)
	assert.Equal(t, 1, page.Pagination.From)
	assert.Equal(t, 5, page.Pagination.To)
	assert.Len(t, page.Groups, 5)
	assert.Nil(t, page.Pagination.PrevURL)
	require.NotNil(t, page.Pagination.NextURL)
	assert.Contains(t, *page.Pagination.NextURL, "page=2")
	assert.Contains(t, *page.Pagination.NextURL, "group_by=cuisine")
}

func TestListGroupedSecondPageEndsWithUncategorized(t *testing.T) {
	engine := newTestEngine()
	lister := sevenCuisines()

	page, err := engine.ListGrouped(context.Background(), lister, "/api/v1/recipes", meal.ListParams{
		GroupBy: meal.DimensionCuisine,
		Sort:    meal.DefaultSort(),
		Page:    2,
	})
	require.NoError(t, err)

	require.Len(t, page.Groups, 3)
	last := page.Groups[len(page.Groups)-1]
	assert.Equal(t, meal.UncategorizedID, last.ID)
	assert.Equal(t, "Uncategorized", last.Name)
	assert.Equal(t, 2, last.TotalCount)
	assert.Equal(t, 6, page.Pagination.From)
	assert.Equal(t, 8, page.Pagination.To)
	assert.Nil(t, page.Pagination.NextURL)
	require.NotNil(t, page.Pagination.PrevURL)
	assert.Contains(t, *page.Pagination.PrevURL, "page=1")
}

func TestListGroupedOmitsEmptyUncategorized(t *testing.T) {
	engine := newTestEngine()
	lister := sevenCuisines()
	lister.uncategorized = 0

	page, err := engine.ListGrouped(context.Background(), lister, "/api/v1/recipes", meal.ListParams{
		GroupBy: meal.DimensionCuisine,
		Sort:    meal.DefaultSort(),
		Page:    2,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, page.Pagination.TotalGroups)
	require.Len(t, page.Groups, 2)
	for _, g := range page.Groups {
		assert.NotEqual(t, meal.UncategorizedID, g.ID)
	}
}

func TestListGroupedClampsPage(t *testing.T) {
	engine := newTestEngine()

	cases := []struct {
		name      string
		requested int
		want      int
	}{
		{"zero clamps to first", 0, 1},
		{"negative clamps to first", -3, 1},
		{"past end clamps to last", 99, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := engine.ListGrouped(context.Background(), sevenCuisines(), "/api/v1/recipes", meal.ListParams{
				GroupBy: meal.DimensionCuisine,
				Sort:    meal.DefaultSort(),
				Page:    tc.requested,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, page.Pagination.CurrentPage)
			assert.NotEmpty(t, page.Groups)
		})
	}
}

// Every group appears exactly once across the page sequence, in the
// same order on repeated renders.
func TestListGroupedPartitionsGroups(t *testing.T) {
	engine := newTestEngine()
	lister := sevenCuisines()

	seen := map[uint]int{}
	var order []uint
	for p := 1; p <= 2; p++ {
		page, err := engine.ListGrouped(context.Background(), lister, "/api/v1/recipes", meal.ListParams{
			GroupBy: meal.DimensionCuisine,
			Sort:    meal.DefaultSort(),
			Page:    p,
		})
		require.NoError(t, err)
		for _, g := range page.Groups {
			seen[g.ID]++
			order = append(order, g.ID)
		}
	}
	assert.Len(t, seen, 8)
	for id, n := range seen {
		assert.Equalf(t, 1, n, "group %d appeared %d times", id, n)
	}

	// Second render yields the identical sequence.
	var again []uint
	for p := 1; p <= 2; p++ {
		page, err := engine.ListGrouped(context.Background(), lister, "/api/v1/recipes", meal.ListParams{
			GroupBy: meal.DimensionCuisine,
			Sort:    meal.DefaultSort(),
			Page:    p,
		})
		require.NoError(t, err)
		for _, g := range page.Groups {
			again = append(again, g.ID)
		}
	}
	assert.Equal(t, order, again)
}

func TestListGroupedHasMore(t *testing.T) {
	engine := newTestEngine()
	lister := &fakeLister{counts: []meal.GroupCount{
		{ID: 1, Name: "Big", Count: 40},
		{ID: 2, Name: "Exact", Count: 15},
		{ID: 3, Name: "Small", Count: 3},
	}}

	page, err := engine.ListGrouped(context.Background(), lister, "/api/v1/recipes", meal.ListParams{
		GroupBy: meal.DimensionCategory,
		Sort:    meal.DefaultSort(),
		Page:    1,
	})
	require.NoError(t, err)
	require.Len(t, page.Groups, 3)

	assert.True(t, page.Groups[0].HasMore)
	assert.Len(t, page.Groups[0].Items, 15)
	assert.False(t, page.Groups[1].HasMore)
	assert.Len(t, page.Groups[1].Items, 15)
	assert.False(t, page.Groups[2].HasMore)
	assert.Len(t, page.Groups[2].Items, 3)
}

func TestListGroupedUnknownDimension(t *testing.T) {
	engine := newTestEngine()

	page, err := engine.ListGrouped(context.Background(), &fakeLister{}, "/api/v1/recipes", meal.ListParams{
		GroupBy: meal.ParseDimension("colour"),
		Sort:    meal.DefaultSort(),
		Page:    1,
	})
	require.NoError(t, err)

	assert.True(t, page.Grouped)
	assert.Empty(t, page.Groups)
	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.Equal(t, 1, page.Pagination.LastPage)
	assert.Nil(t, page.Pagination.PrevURL)
	assert.Nil(t, page.Pagination.NextURL)
}

// The grouped envelope serializes with the documented keys: grouped,
// group_by, groups, and a nested pagination block.
func TestGroupedEnvelopeShape(t *testing.T) {
	engine := newTestEngine()

	page, err := engine.ListGrouped(context.Background(), sevenCuisines(), "/api/v1/recipes", meal.ListParams{
		GroupBy: meal.DimensionCuisine,
		Sort:    meal.DefaultSort(),
		Page:    1,
	})
	require.NoError(t, err)

	raw, err := json.Marshal(page)
	require.NoError(t, err)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &envelope))
	for _, key := range []string{"grouped", "group_by", "groups", "pagination"} {
		assert.Containsf(t, envelope, key, "envelope missing %q", key)
	}

	var pagination map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(envelope["pagination"], &pagination))
	for _, key := range []string{
		"current_page", "last_page", "per_page", "total_groups",
		"from", "to", "prev_url", "next_url",
	} {
		assert.Containsf(t, pagination, key, "pagination missing %q", key)
	}
	assert.Equal(t, json.RawMessage(`true`), envelope["grouped"])
	assert.Equal(t, json.RawMessage(`"cuisine"`), envelope["group_by"])
}

// The flat envelope serializes as a paginator: data plus page fields
// at the top level.
func TestFlatEnvelopeShape(t *testing.T) {
	engine := newTestEngine()

	page, err := engine.ListFlat(context.Background(), &fakeLister{flatTotal: 60}, "/api/v1/recipes", meal.ListParams{
		Sort: meal.DefaultSort(),
		Page: 1,
	})
	require.NoError(t, err)

	raw, err := json.Marshal(page)
	require.NoError(t, err)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &envelope))
	for _, key := range []string{
		"data", "current_page", "last_page", "per_page", "total",
		"from", "to", "prev_url", "next_url",
	} {
		assert.Containsf(t, envelope, key, "envelope missing %q", key)
	}
	assert.NotContains(t, envelope, "items")
	assert.NotContains(t, envelope, "grouped")
}

func TestListFlatPageSizes(t *testing.T) {
	engine := newTestEngine()

	lister := &fakeLister{flatTotal: 120}
	_, err := engine.ListFlat(context.Background(), lister, "/api/v1/recipes", meal.ListParams{
		Sort: meal.DefaultSort(),
		Page: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, meal.ListPerPage, lister.lastPerPage)

	_, err = engine.ListFlat(context.Background(), lister, "/api/v1/recipes", meal.ListParams{
		Sort:   meal.DefaultSort(),
		Page:   1,
		Search: "curry",
	})
	require.NoError(t, err)
	assert.Equal(t, meal.SearchPerPage, lister.lastPerPage)
}

func TestListFlatClampsPastEnd(t *testing.T) {
	engine := newTestEngine()
	lister := &fakeLister{flatTotal: 60}

	page, err := engine.ListFlat(context.Background(), lister, "/api/v1/recipes", meal.ListParams{
		Sort: meal.DefaultSort(),
		Page: 9,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 2, page.LastPage)
	assert.Len(t, page.Data, 10)
	assert.Equal(t, 51, page.From)
	assert.Equal(t, 60, page.To)
	assert.Nil(t, page.NextURL)
}
