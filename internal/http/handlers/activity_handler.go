// Activity HTTP handlers.
//
// GET /api/activity returns the merged query/error event stream, newest
// first, as one stable paginated feed.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akaris/go-dns-admin-backend/internal/services"
)

// ListActivity returns one page of the unified activity log.
func (h *Handlers) ListActivity(c *gin.Context) {
	top, skip := pageParams(c)

	items, total, err := h.activitySvc.ListPage(c.Request.Context(), top, skip)
	if err != nil {
		if errors.Is(err, services.ErrInvalidArgument) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, NewPage(items, total, top, skip))
}
