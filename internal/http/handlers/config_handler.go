// Resolver configuration HTTP handlers.
//
//   - GET /api/config  (read the settings document and its version)
//   - PUT /api/config  (replace it, guarded by a version check)
//
// The document is a single JSON blob; concurrent editors are serialized
// by optimistic concurrency. A writer that lost the race gets 409 and is
// expected to re-read, merge, and retry.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akaris/go-dns-admin-backend/internal/services"
)

// UpdateConfigRequest is the JSON payload for replacing the settings
// document. Version must equal the version the client last read.
type UpdateConfigRequest struct {
	Version int64           `json:"version" binding:"required,min=1"`
	Data    json.RawMessage `json:"data" binding:"required"`
}

// GetConfig returns the current settings document.
func (h *Handlers) GetConfig(c *gin.Context) {
	doc, err := h.configSvc.Get(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no settings document")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, doc)
}

// UpdateConfig replaces the settings document if the submitted version
// still matches the stored one. 409 version_conflict signals a lost race.
func (h *Handlers) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "version and data are required")
		return
	}

	if _, err := h.configSvc.Update(c.Request.Context(), req.Version, string(req.Data)); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidArgument):
			fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "data must be a valid JSON document")
		case errors.Is(err, services.ErrVersionConflict):
			fail(c, http.StatusConflict, ErrCodeVersionConflict, "settings changed since last read")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	noContent(c)
}
