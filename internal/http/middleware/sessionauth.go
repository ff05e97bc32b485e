// Package middleware – session authentication.
//
// SessionAuth gates every authenticated endpoint: it unseals the session
// cookie, validates the session against the authenticator, and stores the
// resolved principal in the Gin context. All failures (missing cookie,
// tampered value, unknown or expired session) answer 401 with the
// distinguished "authentication_required" code so the console can drop
// its session state without parsing prose.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akaris/go-dns-admin-backend/internal/domain"
	"github.com/akaris/go-dns-admin-backend/internal/services"
	"github.com/akaris/go-dns-admin-backend/internal/sessioncookie"
)

const (
	// sessionKey is the Gin context key holding the *domain.Session.
	sessionKey = "session"
	// userKey is the Gin context key holding the *domain.User.
	userKey = "user"
)

// SessionChecker validates a session id and resolves its user.
// *services.AuthService satisfies it.
type SessionChecker interface {
	Check(ctx context.Context, sessionID string) (*domain.Session, *domain.User, error)
}

// SessionAuth returns the authentication middleware. sealer opens cookie
// values into session ids; checker validates them.
func SessionAuth(sealer *sessioncookie.Sealer, checker SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(sessioncookie.Name)
		if err != nil || value == "" {
			unauthenticated(c)
			return
		}

		id, err := sealer.Open(value)
		if err != nil {
			unauthenticated(c)
			return
		}

		sess, user, err := checker.Check(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				unauthenticated(c)
				return
			}
			LoggerFrom(c).Error().Err(err).Msg("session check")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "internal server error",
			})
			return
		}

		c.Set(sessionKey, sess)
		c.Set(userKey, user)
		c.Next()
	}
}

// unauthenticated answers the distinguished 401.
func unauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "authentication_required",
		"message": "Authentication required.",
	})
}

// SessionFrom returns the authenticated session, or nil outside the
// authenticated group.
func SessionFrom(c *gin.Context) *domain.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*domain.Session); ok {
			return s
		}
	}
	return nil
}

// UserFrom returns the authenticated user, or nil outside the
// authenticated group.
func UserFrom(c *gin.Context) *domain.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// principalName returns the authenticated operator's name for logging.
func principalName(c *gin.Context) string {
	if u := UserFrom(c); u != nil {
		return u.Name
	}
	return ""
}
