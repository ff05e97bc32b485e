// Blocklist HTTP handlers.
//
// This file exposes the blocked-domain endpoints:
//   - GET    /api/blocklist  (list, paginated, domain ascending)
//   - POST   /api/blocklist  (add a domain)
//   - DELETE /api/blocklist  (remove a domain, idempotent)
//
// Domains are normalized (case folding, trailing-dot removal, IDNA
// ASCII form) before any lookup or mutation, so the API accepts the
// same spellings a resolver would observe on the wire.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akaris/go-dns-admin-backend/internal/services"
)

// BlocklistEntryRequest is the JSON payload for adding or removing a
// blocked domain.
type BlocklistEntryRequest struct {
	Domain string `json:"domain" binding:"required,min=1,max=253"`
}

// ListBlocklist returns one page of blocked domains.
func (h *Handlers) ListBlocklist(c *gin.Context) {
	top, skip := pageParams(c)

	items, total, err := h.blocklistSvc.ListPage(c.Request.Context(), top, skip)
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

// CreateBlocklistEntry adds a domain to the blocklist. Responds 201 with
// the stored entry, 400 invalid_argument for unparsable domains, and 409
// already_blocked for duplicates.
func (h *Handlers) CreateBlocklistEntry(c *gin.Context) {
	var req BlocklistEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "domain is required")
		return
	}

	entry, err := h.blocklistSvc.Create(c.Request.Context(), req.Domain)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidArgument):
			fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "not a valid domain name")
		case errors.Is(err, services.ErrAlreadyBlocked):
			fail(c, http.StatusConflict, ErrCodeAlreadyBlocked, "domain is already on the blocklist")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusCreated, entry)
}

// DeleteBlocklistEntry removes a domain from the blocklist. Idempotent:
// removing an absent domain still yields 204.
func (h *Handlers) DeleteBlocklistEntry(c *gin.Context) {
	var req BlocklistEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "domain is required")
		return
	}

	if err := h.blocklistSvc.Remove(c.Request.Context(), req.Domain); err != nil {
		if errors.Is(err, services.ErrInvalidArgument) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "not a valid domain name")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	noContent(c)
}
