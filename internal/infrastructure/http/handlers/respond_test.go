package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
)

func TestListParamsDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/recipes", nil)
	params := listParams(r)

	assert.Equal(t, meal.DimensionNone, params.GroupBy)
	assert.Equal(t, meal.Desc, params.Sort.ActiveDirection)
	assert.Equal(t, meal.Asc, params.Sort.TitleDirection)
	assert.Zero(t, params.Page)
	assert.Empty(t, params.Search)
}

func TestListParamsParsed(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/v1/recipes?group_by=cuisine&active_direction=asc&title_direction=desc&page=3&search=curry", nil)
	params := listParams(r)

	assert.Equal(t, meal.DimensionCuisine, params.GroupBy)
	assert.Equal(t, meal.Asc, params.Sort.ActiveDirection)
	assert.Equal(t, meal.Desc, params.Sort.TitleDirection)
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, "curry", params.Search)
}

func TestListParamsAcceptsQAsSearch(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/recipes/search?q=laksa", nil)
	assert.Equal(t, "laksa", listParams(r).Search)

	// An explicit search param wins over q.
	r = httptest.NewRequest("GET", "/api/v1/recipes/search?search=pho&q=laksa", nil)
	assert.Equal(t, "pho", listParams(r).Search)
}

func TestListParamsInvalidDirectionsFallBack(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/v1/recipes?active_direction=sideways&title_direction=up", nil)
	params := listParams(r)

	assert.Equal(t, meal.Desc, params.Sort.ActiveDirection)
	assert.Equal(t, meal.Asc, params.Sort.TitleDirection)
}

func TestDietaryTagsParsing(t *testing.T) {
	assert.Equal(t, []string{"vegan", "halal"}, dietaryTags("vegan, halal"))
	assert.Equal(t, []string{"gluten free"}, dietaryTags("gluten free"))
	assert.Nil(t, dietaryTags(""))
	assert.Nil(t, dietaryTags(" , "))
}

func TestTaxonomyFilterParsing(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/v1/recipes/random?category_ids[]=1&category_ids[]=2&cuisine_ids[]=7&dietary_ids[]=junk", nil)
	filter := taxonomyFilter(r)

	assert.Equal(t, []uint{1, 2}, filter.CategoryIDs)
	assert.Equal(t, []uint{7}, filter.CuisineIDs)
	assert.Empty(t, filter.DietaryIDs)
}
