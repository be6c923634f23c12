package handlers

import (
	"net/http"
	"strconv"

	"github.com/prepcheck/prepcheck/internal/app/api/core/request"
	"github.com/prepcheck/prepcheck/internal/app/api/v0/model"
	"github.com/prepcheck/prepcheck/internal/app/tableview"
)

// pagedResponse projects a full result set onto a single page when the request
// carries a page query parameter. Without one the full set is returned
// unchanged. The query parameters search, sort, direction, page and pageSize
// control the projection.
func pagedResponse[T any](r *http.Request, rows []T, opts tableview.Options) any {
	pageParam := request.Query(r, "page")
	if pageParam == "" {
		return rows
	}

	if pageSize, err := strconv.Atoi(request.Query(r, "pageSize")); err == nil {
		opts.PageSize = pageSize
	}
	if sortBy := request.Query(r, "sort"); sortBy != "" {
		opts.DefaultSort = sortBy
	}

	view := tableview.New(rows, opts)
	if !opts.DisableLocalFiltering {
		view.SetQuery(request.Query(r, "search"))
	}
	if opts.DefaultSort != "" && request.Query(r, "direction") == string(tableview.SortDescending) {
		view.Sort(opts.DefaultSort) // toggles the default ascending order
	}
	if page, err := strconv.Atoi(pageParam); err == nil {
		view.ChangePage(page)
	}

	projection := view.Recompute()

	return model.Page[T]{
		Rows:          projection.Rows,
		TotalFiltered: projection.TotalFiltered,
		TotalPages:    projection.TotalPages,
		Page:          projection.Page,
		StartIndex:    projection.StartIndex,
		EndIndex:      projection.EndIndex,
		VisiblePages:  projection.VisiblePages,
	}
}
