// Package tableview provides a pure projection of an in-memory collection into a
// filtered, sorted and paginated page of rows. The projection is recomputed from
// scratch on every call, the caller is responsible for re-invocation after an
// input change.
package tableview

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

const defaultPageSize = 10
const defaultWindowRadius = 2

// Options configure a View. The zero value is usable.
type Options struct {
	// PageSize is the number of rows per page, defaults to 10.
	PageSize int
	// DefaultSort is the initial sort field, ascending. Empty means unsorted.
	DefaultSort string
	// DefaultFilters is the initial set of exact-match field filters.
	DefaultFilters map[string]any
	// DisableLocalFiltering skips the search and field-filter steps. It is used when
	// the source collection has already been filtered upstream, e.g. by a database
	// query, to prevent double-filtering.
	DisableLocalFiltering bool
	// WindowRadius is the number of page links shown on each side of the current
	// page, defaults to 2.
	WindowRadius int
}

// View holds the current filter, sort and page state for a source collection.
// All mutators are total functions, invalid input leaves the state unchanged.
type View[T any] struct {
	source []T
	opts   Options

	page          int
	sortBy        string
	sortDirection SortDirection
	query         string
	filters       map[string]any
}

// Projection is the display-ready result of a Recompute call.
type Projection[T any] struct {
	Rows          []T
	TotalFiltered int
	TotalPages    int
	Page          int
	// StartIndex and EndIndex are the 1-indexed item numbers of the first and last
	// row on the current page. Both are 0 for an empty result.
	StartIndex int
	EndIndex   int
	// VisiblePages is a bounded window of page numbers centered on the current page.
	VisiblePages []int
}

// New creates a view over the given source collection.
func New[T any](source []T, opts Options) *View[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.WindowRadius <= 0 {
		opts.WindowRadius = defaultWindowRadius
	}

	v := &View[T]{
		source:        source,
		opts:          opts,
		page:          1,
		sortBy:        opts.DefaultSort,
		sortDirection: SortAscending,
		query:         "",
		filters:       cloneFilters(opts.DefaultFilters),
	}

	return v
}

// SetSource replaces the source collection. The page is kept and gets clamped
// on the next Recompute.
func (v *View[T]) SetSource(source []T) {
	v.source = source
}

// SetQuery sets the free-text search query and resets to the first page.
func (v *View[T]) SetQuery(query string) {
	v.query = query
	v.page = 1
}

// SetFilter sets an exact-match filter for the given field and resets to the
// first page. An empty value deactivates the filter.
func (v *View[T]) SetFilter(field string, value any) {
	if v.filters == nil {
		v.filters = make(map[string]any)
	}
	v.filters[field] = value
	v.page = 1
}

// Query returns the current free-text search query.
func (v *View[T]) Query() string {
	return v.query
}

// Page returns the current 1-indexed page number.
func (v *View[T]) Page() int {
	return v.page
}

// SortState returns the current sort field and direction.
func (v *View[T]) SortState() (string, SortDirection) {
	return v.sortBy, v.sortDirection
}

// Filters returns a copy of the current field filters.
func (v *View[T]) Filters() map[string]any {
	return cloneFilters(v.filters)
}

// ChangePage switches to the given page. Out-of-range pages are a no-op.
func (v *View[T]) ChangePage(page int) {
	if page < 1 || page > v.totalPages() {
		return
	}
	v.page = page
}

// Sort selects the given sort field. Selecting the already active field toggles
// the direction, a new field sorts ascending. Sorting resets to the first page.
func (v *View[T]) Sort(field string) {
	if v.sortBy == field {
		if v.sortDirection == SortAscending {
			v.sortDirection = SortDescending
		} else {
			v.sortDirection = SortAscending
		}
	} else {
		v.sortBy = field
		v.sortDirection = SortAscending
	}
	v.page = 1
}

// ResetFilters restores the default filter set, clears the search query and
// resets to the first page.
func (v *View[T]) ResetFilters() {
	v.filters = cloneFilters(v.opts.DefaultFilters)
	v.query = ""
	v.page = 1
}

// Recompute produces a fresh projection from the current inputs.
// It never panics, malformed input degrades to an empty result.
func (v *View[T]) Recompute() Projection[T] {
	filtered := v.filteredSorted()

	total := len(filtered)
	totalPages := pageCount(total, v.opts.PageSize)

	page := v.page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	v.page = page

	start := (page - 1) * v.opts.PageSize
	end := start + v.opts.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	p := Projection[T]{
		Rows:          filtered[start:end],
		TotalFiltered: total,
		TotalPages:    totalPages,
		Page:          page,
		VisiblePages:  pageWindow(page, totalPages, v.opts.WindowRadius),
	}
	if total > 0 && start < end {
		p.StartIndex = start + 1
		p.EndIndex = end
	}

	return p
}

func (v *View[T]) filteredSorted() []T {
	filtered := v.source

	if !v.opts.DisableLocalFiltering {
		if query := strings.ToLower(strings.TrimSpace(v.query)); query != "" {
			matched := make([]T, 0, len(filtered))
			for _, item := range filtered {
				if matchesQuery(item, query) {
					matched = append(matched, item)
				}
			}
			filtered = matched
		}

		for field, value := range v.filters {
			if !filterActive(value) {
				continue
			}
			matched := make([]T, 0, len(filtered))
			for _, item := range filtered {
				fieldValue, ok := lookupField(item, field)
				if ok && strictEqual(fieldValue, value) {
					matched = append(matched, item)
				}
			}
			filtered = matched
		}
	}

	if v.sortBy != "" {
		sorted := make([]T, len(filtered))
		copy(sorted, filtered)

		modifier := 1
		if v.sortDirection == SortDescending {
			modifier = -1
		}
		sort.SliceStable(sorted, func(i, j int) bool {
			a, _ := lookupField(sorted[i], v.sortBy)
			b, _ := lookupField(sorted[j], v.sortBy)
			return compareValues(a, b)*modifier < 0
		})
		filtered = sorted
	}

	return filtered
}

func (v *View[T]) totalPages() int {
	return pageCount(len(v.filteredSorted()), v.opts.PageSize)
}

// pageCount returns the number of pages, at least 1 to avoid a zero-page state.
func pageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

func pageWindow(page, totalPages, radius int) []int {
	lo := page - radius
	if lo < 1 {
		lo = 1
	}
	hi := page + radius
	if hi > totalPages {
		hi = totalPages
	}

	window := make([]int, 0, hi-lo+1)
	for p := lo; p <= hi; p++ {
		window = append(window, p)
	}
	return window
}

func cloneFilters(filters map[string]any) map[string]any {
	cloned := make(map[string]any, len(filters))
	for k, val := range filters {
		cloned[k] = val
	}
	return cloned
}

func filterActive(value any) bool {
	if value == nil {
		return false
	}
	if s, ok := value.(string); ok && s == "" {
		return false
	}
	return true
}

// matchesQuery checks whether any field of the item, converted to its string
// form, contains the lower-cased query as a substring.
func matchesQuery(item any, query string) bool {
	for _, value := range fieldValues(item) {
		if strings.Contains(strings.ToLower(fmt.Sprint(value)), query) {
			return true
		}
	}
	return false
}

// fieldValues returns all field values of a struct, map values of a map, or the
// item itself for scalar types.
func fieldValues(item any) []any {
	rv := reflect.ValueOf(item)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		values := make([]any, 0, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			if !rv.Type().Field(i).IsExported() {
				continue
			}
			values = append(values, rv.Field(i).Interface())
		}
		return values
	case reflect.Map:
		values := make([]any, 0, rv.Len())
		for _, key := range rv.MapKeys() {
			values = append(values, rv.MapIndex(key).Interface())
		}
		return values
	case reflect.Invalid:
		return nil
	default:
		return []any{item}
	}
}

// lookupField resolves a field by name on a struct (case-insensitive) or a map
// with string keys. The second return value is false if the field is missing.
func lookupField(item any, name string) (any, bool) {
	rv := reflect.ValueOf(item)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		field := rv.FieldByNameFunc(func(fieldName string) bool {
			return strings.EqualFold(fieldName, name)
		})
		if !field.IsValid() || !field.CanInterface() {
			return nil, false
		}
		return field.Interface(), true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		value := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !value.IsValid() {
			return nil, false
		}
		return value.Interface(), true
	default:
		return nil, false
	}
}

func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two field values using their native ordering where one
// exists. Mismatched or unordered types fall back to their string form.
func compareValues(a, b any) int {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}

	as := fmt.Sprint(a)
	bs := fmt.Sprint(b)
	return strings.Compare(as, bs)
}

func toFloat(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
