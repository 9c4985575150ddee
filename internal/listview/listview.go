// Package listview derives what the directory shows from the full record
// set: filter by search term and group, sort, then cut one page.
//
// Everything here is a pure function of its inputs. Nothing is cached;
// callers re-derive after every change.
package listview

import (
	"slices"
	"strings"

	"github.com/aanand-mishra/student-directory/internal/types"
)

// DefaultPageSize is the number of records on one page.
const DefaultPageSize = 22

// SortField names the record field the view is ordered by.
type SortField string

const (
	SortByName  SortField = "name"
	SortByAge   SortField = "age"
	SortByGroup SortField = "group"
	SortByEmail SortField = "email"
)

// SortFields lists the fields offered for sorting, in menu order.
var SortFields = []SortField{SortByName, SortByAge, SortByGroup}

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Flip returns the opposite direction.
func (o Order) Flip() Order {
	if o == Desc {
		return Asc
	}
	return Desc
}

// Query is the complete set of inputs to Derive besides the records.
type Query struct {
	Search   string
	Group    string
	SortBy   SortField
	Order    Order
	Page     int
	PageSize int
}

// DefaultQuery is the initial query: everything, by name ascending, page 1.
func DefaultQuery() Query {
	return Query{
		SortBy:   SortByName,
		Order:    Asc,
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// View is the result of applying a Query.
type View struct {
	// Items is the current page.
	Items []types.Student
	// Filtered is the whole filtered and sorted list, all pages.
	Filtered []types.Student
	// Page is the page actually shown, after clamping.
	Page       int
	TotalPages int
	Total      int
}

// Derive filters, sorts and paginates records according to q.
func Derive(records []types.Student, q Query) View {
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	filtered := Sort(Filter(records, q.Search, q.Group), q.SortBy, q.Order)
	pages := TotalPages(len(filtered), size)
	page := clampPage(q.Page, pages)

	return View{
		Items:      Paginate(filtered, page, size),
		Filtered:   filtered,
		Page:       page,
		TotalPages: pages,
		Total:      len(filtered),
	}
}

// Filter keeps records whose name contains search (case-insensitively)
// and whose group equals group exactly. Empty arguments do not restrict.
// The result is a new slice; records is not modified.
func Filter(records []types.Student, search, group string) []types.Student {
	term := strings.ToLower(search)
	out := make([]types.Student, 0, len(records))
	for _, r := range records {
		if term != "" && (r.Name == "" || !strings.Contains(strings.ToLower(r.Name), term)) {
			continue
		}
		if group != "" && r.Group != group {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Sort returns a stably sorted copy of records. Age compares numerically
// with unparseable values as 0; every other field compares as lowercase
// text. Equal elements keep their relative order in both directions.
func Sort(records []types.Student, field SortField, order Order) []types.Student {
	out := slices.Clone(records)
	cmp := compareBy(field)
	slices.SortStableFunc(out, func(a, b types.Student) int {
		c := cmp(a, b)
		if order == Desc {
			return -c
		}
		return c
	})
	return out
}

func compareBy(field SortField) func(a, b types.Student) int {
	if field == SortByAge {
		return func(a, b types.Student) int {
			x, y := a.Age.Int(), b.Age.Int()
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	key := textKey(field)
	return func(a, b types.Student) int {
		return strings.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
	}
}

func textKey(field SortField) func(types.Student) string {
	switch field {
	case SortByName:
		return func(s types.Student) string { return s.Name }
	case SortByGroup:
		return func(s types.Student) string { return s.Group }
	case SortByEmail:
		return func(s types.Student) string { return s.Email }
	default:
		return func(types.Student) string { return "" }
	}
}

// Paginate returns page (1-based) of records. Out-of-range pages are
// clamped to the nearest valid page.
func Paginate(records []types.Student, page, size int) []types.Student {
	if size <= 0 {
		size = DefaultPageSize
	}
	page = clampPage(page, TotalPages(len(records), size))
	start := (page - 1) * size
	if start >= len(records) {
		return []types.Student{}
	}
	end := min(start+size, len(records))
	return records[start:end]
}

// TotalPages is ceil(n/size), and at least 1.
func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n == 0 {
		return 1
	}
	return (n + size - 1) / size
}

func clampPage(page, pages int) int {
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}

// Groups returns the distinct non-empty groups of the full record set in
// first-seen order.
func Groups(records []types.Student) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range records {
		if r.Group == "" {
			continue
		}
		if _, ok := seen[r.Group]; ok {
			continue
		}
		seen[r.Group] = struct{}{}
		out = append(out, r.Group)
	}
	return out
}
