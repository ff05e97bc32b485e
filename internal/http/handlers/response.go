// Standard response utilities shared by every endpoint: the error
// envelope, and helpers for the common success shapes. Keeping these in
// one place guarantees uniform responses across the API.
//
// Example error response:
//
//	HTTP/1.1 409 Conflict
//	{
//	  "error": "already_blocked",
//	  "message": "domain is already on the blocklist"
//	}
//
// The request id is not part of the body; clients correlate through the
// X-Request-ID response header instead.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akaris/go-dns-admin-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Error is a stable, machine-readable code (see errors.go constants).
	Error string `json:"error"`
	// Message is a human-readable description, safe to show to operators.
	Message string `json:"message"`
}

// fail aborts the request with a structured error. Server errors (>=500)
// are logged with the request-scoped logger before the response is
// written.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: msg})
}

// Fail is the exported variant of fail, used by router-level fallbacks
// (NoRoute, NoMethod) so they produce the same envelope as handlers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
