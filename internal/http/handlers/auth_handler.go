// Authentication HTTP handlers.
//
// This file exposes the session endpoints:
//   - POST /api/auth/login   (open a session, set the sealed cookie)
//   - POST /api/auth/check   (probe session validity)
//   - POST /api/auth/logout  (close the session, clear the cookie)
//
// The session id never travels in cleartext: login seals it with
// AES-GCM before setting the cookie, and the auth middleware unseals it
// on every protected request. Login failures are deliberately uniform
// so callers cannot distinguish an unknown username from a wrong
// password.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akaris/go-dns-admin-backend/internal/http/middleware"
	"github.com/akaris/go-dns-admin-backend/internal/services"
	"github.com/akaris/go-dns-admin-backend/internal/sessioncookie"
)

// LoginRequest is the JSON payload for opening a session.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=1,max=255"`
	Password string `json:"password" binding:"required,min=1,max=1024"`
}

// Login verifies credentials, creates a session and sets the sealed
// session cookie. Responds 204 on success and 401 invalid_credentials on
// any authentication failure.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username and password are required")
		return
	}

	sess, user, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeCredentials, "invalid username or password")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	sealed, err := h.sealer.Seal(sess.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not issue session cookie")
		return
	}

	middleware.LoggerFrom(c).Info().
		Str("user", user.Name).
		Msg("session opened")

	h.setSessionCookie(c, sealed, int(h.cookie.TTL.Seconds()))
	noContent(c)
}

// Check confirms the session attached by the auth middleware is still
// valid. The middleware already rejected invalid sessions, so reaching
// this handler means success.
func (h *Handlers) Check(c *gin.Context) {
	noContent(c)
}

// Logout closes the current session and clears the cookie. Idempotent:
// an already-removed session still yields 204.
func (h *Handlers) Logout(c *gin.Context) {
	if sess := middleware.SessionFrom(c); sess != nil {
		if err := h.authSvc.Logout(c.Request.Context(), sess.ID); err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
			return
		}
	}

	h.setSessionCookie(c, "", -1)
	noContent(c)
}

// setSessionCookie writes the session cookie with the hardened attribute
// set. maxAge < 0 deletes the cookie.
func (h *Handlers) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessioncookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
