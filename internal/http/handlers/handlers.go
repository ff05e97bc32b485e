// Handler wiring for the admin API.
//
// Handlers are transport-thin: they validate input, delegate to
// application services, and translate domain/service errors into HTTP
// results. They depend on abstract service interfaces to keep transport
// concerns separate from business logic.
package handlers

import (
	"context"
	"time"

	"github.com/akaris/go-dns-admin-backend/internal/domain"
	"github.com/akaris/go-dns-admin-backend/internal/sessioncookie"
)

//
// Service contracts (context-aware)
//

// AuthService defines session lifecycle operations consumed by the auth
// endpoints. Implementations must be safe for concurrent use.
type AuthService interface {
	// Login verifies credentials and opens a new session.
	Login(ctx context.Context, name, password string) (*domain.Session, *domain.User, error)
	// Logout removes a session; unknown ids are not an error.
	Logout(ctx context.Context, sessionID string) error
}

// ActivityService serves the unified query/error activity log.
type ActivityService interface {
	// ListPage returns one window of activity records plus the total count.
	ListPage(ctx context.Context, top, skip int) ([]domain.ActivityRecord, int64, error)
}

// BlocklistService manages the blocked-domain set.
type BlocklistService interface {
	Create(ctx context.Context, raw string) (*domain.BlocklistEntry, error)
	Remove(ctx context.Context, raw string) error
	ListPage(ctx context.Context, top, skip int) ([]domain.BlocklistEntry, int64, error)
}

// StatsSource exposes the live resolver counters.
type StatsSource interface {
	Snapshot() domain.LiveCounters
}

// ConfigService reads and conditionally updates the resolver settings
// document.
type ConfigService interface {
	Get(ctx context.Context) (*domain.ConfigDocument, error)
	Update(ctx context.Context, expectedVersion int64, data string) (*domain.ConfigDocument, error)
}

//
// Wiring
//

// CookieOptions controls the Set-Cookie attributes of the session cookie.
type CookieOptions struct {
	// Secure marks the cookie HTTPS-only. Disable only for local
	// plain-HTTP development.
	Secure bool
	// TTL bounds the cookie lifetime and should match the session TTL.
	TTL time.Duration
}

// Handlers groups the HTTP endpoints of the admin API.
type Handlers struct {
	authSvc      AuthService
	activitySvc  ActivityService
	blocklistSvc BlocklistService
	stats        StatsSource
	configSvc    ConfigService

	sealer *sessioncookie.Sealer
	cookie CookieOptions
}

// New constructs a Handlers instance bound to the given services.
func New(
	authSvc AuthService,
	activitySvc ActivityService,
	blocklistSvc BlocklistService,
	stats StatsSource,
	configSvc ConfigService,
	sealer *sessioncookie.Sealer,
	cookie CookieOptions,
) *Handlers {
	return &Handlers{
		authSvc:      authSvc,
		activitySvc:  activitySvc,
		blocklistSvc: blocklistSvc,
		stats:        stats,
		configSvc:    configSvc,
		sealer:       sealer,
		cookie:       cookie,
	}
}
