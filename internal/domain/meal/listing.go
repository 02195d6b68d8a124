package meal

// Pagination constants for the grouped and flat listing envelopes.
const (
	GroupsPerPage   = 5
	MembersPerGroup = 15
	ListPerPage     = 50
	SearchPerPage   = 10

	// UncategorizedID is the pseudo-group for rows with no term in the
	// active dimension. It is synthesized at query time, never stored.
	UncategorizedID uint = 0
)

// Dimension is a grouping axis for the two-level listing.
type Dimension string

const (
	DimensionNone     Dimension = "none"
	DimensionCuisine  Dimension = "cuisine"
	DimensionCategory Dimension = "category"
	DimensionDietary  Dimension = "dietary"
)

// ParseDimension normalizes a group_by query value. Empty means none;
// anything unrecognized is returned as-is and treated as an unknown
// dimension (empty grouped envelope).
func ParseDimension(s string) Dimension {
	switch Dimension(s) {
	case "", DimensionNone:
		return DimensionNone
	case DimensionCuisine:
		return DimensionCuisine
	case DimensionCategory:
		return DimensionCategory
	case DimensionDietary:
		return DimensionDietary
	default:
		return Dimension(s)
	}
}

// Known reports whether the dimension maps to a real taxonomy.
func (d Dimension) Known() bool {
	switch d {
	case DimensionCuisine, DimensionCategory, DimensionDietary:
		return true
	}
	return false
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection falls back to the given default on anything that is
// not exactly "asc" or "desc".
func ParseDirection(s string, fallback Direction) Direction {
	switch Direction(s) {
	case Asc, Desc:
		return Direction(s)
	}
	return fallback
}

// Sort carries the two-key ordering applied to every member and flat
// query: active first, then title.
type Sort struct {
	ActiveDirection Direction
	TitleDirection  Direction
}

// DefaultSort matches the listing defaults: active desc, title asc.
func DefaultSort() Sort {
	return Sort{ActiveDirection: Desc, TitleDirection: Asc}
}

// ListParams is the parsed query surface of the listing endpoints.
type ListParams struct {
	GroupBy Dimension
	Sort    Sort
	Page    int
	Search  string
}

// GroupCount is one row of the per-dimension aggregate query.
type GroupCount struct {
	ID    uint
	Name  string
	Count int
}

// Group is one rendered group in the grouped envelope.
type Group struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	TotalCount int       `json:"total_count"`
	Items      []Summary `json:"items"`
	HasMore    bool      `json:"has_more"`
}

// GroupPagination is the pagination block of the grouped envelope,
// windowed over the group list rather than the entities.
type GroupPagination struct {
	CurrentPage int     `json:"current_page"`
	LastPage    int     `json:"last_page"`
	PerPage     int     `json:"per_page"`
	TotalGroups int     `json:"total_groups"`
	From        int     `json:"from"`
	To          int     `json:"to"`
	PrevURL     *string `json:"prev_url"`
	NextURL     *string `json:"next_url"`
}

// GroupedPage is the two-level listing envelope.
type GroupedPage struct {
	Grouped    bool            `json:"grouped"`
	GroupBy    Dimension       `json:"group_by"`
	Groups     []Group         `json:"groups"`
	Pagination GroupPagination `json:"pagination"`
}

// FlatPage is the ungrouped paginator envelope.
type FlatPage struct {
	Data        []Summary `json:"data"`
	CurrentPage int       `json:"current_page"`
	LastPage    int       `json:"last_page"`
	PerPage     int       `json:"per_page"`
	Total       int       `json:"total"`
	From        int       `json:"from"`
	To          int       `json:"to"`
	PrevURL     *string   `json:"prev_url"`
	NextURL     *string   `json:"next_url"`
}

// ClampPage confines a requested page to [1, max(1, lastPage)].
func ClampPage(page, lastPage int) int {
	if lastPage < 1 {
		lastPage = 1
	}
	if page < 1 {
		return 1
	}
	if page > lastPage {
		return lastPage
	}
	return page
}
