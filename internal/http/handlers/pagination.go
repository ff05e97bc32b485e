// Offset pagination shared by the activity and blocklist listings.
//
// Requests carry `top` (page size, default 25, max 1000) and `skip`
// (offset, default 0) query parameters. Responses wrap the items in the
// Page envelope so clients can drive "load more" UIs without extra
// round-trips: next_offset is always skip+len(items), valid to pass back
// as the next skip whenever has_more is true.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/akaris/go-dns-admin-backend/internal/services"
)

// Page is the envelope for every paginated listing.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Top        int   `json:"top"`
	Skip       int   `json:"skip"`
	HasMore    bool  `json:"has_more"`
	NextOffset int   `json:"next_offset"`
}

// NewPage assembles a Page from one fetched window and the total row
// count. Items is never serialized as null.
func NewPage[T any](items []T, total int64, top, skip int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Top:        top,
		Skip:       skip,
		HasMore:    int64(skip+len(items)) < total,
		NextOffset: skip + len(items),
	}
}

// pageParams parses top and skip from the query string. Absent or
// non-numeric values fall back to defaults; range validation is left to
// the service layer so the API returns invalid_argument consistently.
func pageParams(c *gin.Context) (top, skip int) {
	top = atoiDefault(c.Query("top"), services.DefaultPageSize)
	skip = atoiDefault(c.Query("skip"), 0)
	return
}

// atoiDefault parses s as an int, falling back to def when s is empty or
// not numeric.
func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
