// Live statistics HTTP handler.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LiveStats returns the in-memory resolver counters since process start.
// The snapshot is internally consistent: totals and the duration sum are
// read atomically with respect to concurrent event recording.
func (h *Handlers) LiveStats(c *gin.Context) {
	ok(c, http.StatusOK, h.stats.Snapshot())
}
