// Package listing implements the grouped two-level listing over
// recipes and user meals: one page of taxonomy groups, each with a
// capped preview of its members.
package listing

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/domain/meal"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
)

// uncategorizedName labels the synthetic group of rows carrying no
// term in the active dimension.
const uncategorizedName = "Uncategorized"

// Engine renders grouped and flat listing envelopes from any
// GroupLister.
type Engine struct {
	publicURL string
	logger    *zap.Logger
}

// NewEngine creates a listing engine. publicURL is the base for
// pagination links.
func NewEngine(publicURL string, logger *zap.Logger) *Engine {
	return &Engine{publicURL: publicURL, logger: logger.Named("listing")}
}

// ListGrouped returns one page of groups for the dimension. An unknown
// dimension yields an empty envelope with last_page 1 rather than an
// error, so clients probing new group keys degrade gracefully.
func (e *Engine) ListGrouped(ctx context.Context, lister outbound.GroupLister, path string, params meal.ListParams) (*meal.GroupedPage, error) {
	if !params.GroupBy.Known() {
		return &meal.GroupedPage{
			Grouped: true,
			GroupBy: params.GroupBy,
			Groups:  []meal.Group{},
			Pagination: meal.GroupPagination{
				CurrentPage: 1,
				LastPage:    1,
				PerPage:     meal.GroupsPerPage,
			},
		}, nil
	}

	counts, uncategorized, err := lister.GroupCounts(ctx, params.GroupBy, params.Search)
	if err != nil {
		return nil, err
	}
	if uncategorized > 0 {
		counts = append(counts, meal.GroupCount{
			ID:    meal.UncategorizedID,
			Name:  uncategorizedName,
			Count: uncategorized,
		})
	}

	total := len(counts)
	lastPage := (total + meal.GroupsPerPage - 1) / meal.GroupsPerPage
	if lastPage < 1 {
		lastPage = 1
	}
	page := meal.ClampPage(params.Page, lastPage)

	start := (page - 1) * meal.GroupsPerPage
	end := start + meal.GroupsPerPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	groups := make([]meal.Group, 0, end-start)
	for _, gc := range counts[start:end] {
		items, err := lister.GroupMembers(ctx, params.GroupBy, gc.ID, params.Search, params.Sort, meal.MembersPerGroup)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []meal.Summary{}
		}
		groups = append(groups, meal.Group{
			ID:         gc.ID,
			Name:       gc.Name,
			TotalCount: gc.Count,
			Items:      items,
			HasMore:    gc.Count > meal.MembersPerGroup,
		})
	}

	e.logger.Debug("grouped listing rendered",
		zap.String("dimension", string(params.GroupBy)),
		zap.Int("page", page),
		zap.Int("groups", len(groups)),
		zap.Int("total", total),
	)

	return &meal.GroupedPage{
		Grouped: true,
		GroupBy: params.GroupBy,
		Groups:  groups,
		Pagination: meal.GroupPagination{
			CurrentPage: page,
			LastPage:    lastPage,
			PerPage:     meal.GroupsPerPage,
			TotalGroups: total,
			From:        start + 1,
			To:          end,
			PrevURL:     e.pageURL(path, params, page-1, page > 1),
			NextURL:     e.pageURL(path, params, page+1, page < lastPage),
		},
	}, nil
}

// ListFlat returns one ungrouped page: 50 rows for plain listing, 10
// when a search term narrows it.
func (e *Engine) ListFlat(ctx context.Context, lister outbound.GroupLister, path string, params meal.ListParams) (*meal.FlatPage, error) {
	perPage := meal.ListPerPage
	if params.Search != "" {
		perPage = meal.SearchPerPage
	}

	page := params.Page
	if page < 1 {
		page = 1
	}

	items, total, err := lister.Page(ctx, params.Search, params.Sort, page, perPage)
	if err != nil {
		return nil, err
	}

	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	if page > lastPage {
		page = lastPage
		items, total, err = lister.Page(ctx, params.Search, params.Sort, page, perPage)
		if err != nil {
			return nil, err
		}
	}
	if items == nil {
		items = []meal.Summary{}
	}

	from, to := 0, 0
	if len(items) > 0 {
		from = (page-1)*perPage + 1
		to = from + len(items) - 1
	}

	return &meal.FlatPage{
		Data:        items,
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
		From:        from,
		To:          to,
		PrevURL:     e.pageURL(path, params, page-1, page > 1),
		NextURL:     e.pageURL(path, params, page+1, page < lastPage),
	}, nil
}

// pageURL builds an absolute link to another page of the same query,
// or nil when there is no such page.
func (e *Engine) pageURL(path string, params meal.ListParams, page int, ok bool) *string {
	if !ok {
		return nil
	}
	q := url.Values{}
	if params.GroupBy != meal.DimensionNone && params.GroupBy != "" {
		q.Set("group_by", string(params.GroupBy))
	}
	q.Set("active_direction", string(params.Sort.ActiveDirection))
	q.Set("title_direction", string(params.Sort.TitleDirection))
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	q.Set("page", strconv.Itoa(page))

	u := fmt.Sprintf("%s%s?%s", e.publicURL, path, q.Encode())
	return &u
}
