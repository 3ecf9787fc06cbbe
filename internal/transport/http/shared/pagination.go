package shared

import (
	"net/http"
	"strconv"
)

// PageLimits bounds the page size a list endpoint accepts.
type PageLimits struct {
	Default int
	Max     int
}

var (
	DirectoryPages    = PageLimits{Default: 100, Max: 500}
	AuditPages        = PageLimits{Default: 100, Max: 500}
	NotificationPages = PageLimits{Default: 50, Max: 200}
)

type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit and offset from the query. Values that do not
// parse or are out of range fall back to the defaults; limit is capped at Max.
func ParsePagination(r *http.Request, limits PageLimits) Pagination {
	page := Pagination{Limit: limits.Default}
	query := r.URL.Query()
	if v, err := strconv.Atoi(query.Get("limit")); err == nil && v > 0 {
		page.Limit = v
	}
	if v, err := strconv.Atoi(query.Get("offset")); err == nil && v >= 0 {
		page.Offset = v
	}
	if limits.Max > 0 && page.Limit > limits.Max {
		page.Limit = limits.Max
	}
	return page
}

// SetCount exposes a collection count, such as the total for a paged list,
// as a response header.
func SetCount(w http.ResponseWriter, header string, count int) {
	w.Header().Set(header, strconv.Itoa(count))
}
