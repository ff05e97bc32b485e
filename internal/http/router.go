// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns
// such as tracing, correlation IDs, logging, panic recovery, metrics,
// CORS, security headers, rate limiting, and session authentication.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Every /api route except login behind session authentication
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/akaris/go-dns-admin-backend/internal/config"
	"github.com/akaris/go-dns-admin-backend/internal/http/handlers"
	"github.com/akaris/go-dns-admin-backend/internal/http/middleware"
	"github.com/akaris/go-dns-admin-backend/internal/services"
	"github.com/akaris/go-dns-admin-backend/internal/sessioncookie"
)

// Deps carries the long-lived components the router does not own: the
// blocklist service (shared with the resolver hot path), the live stats
// source (owned by the telemetry recorder), and the cookie sealer.
type Deps struct {
	Blocklist *services.BlocklistService
	Stats     handlers.StatsSource
	Sealer    *sessioncookie.Sealer
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given
// Gin engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. AccessLog: structured request logging
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per operator/IP)
//  8. CORS, gzip and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, deps Deps) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured request logging
	r.Use(middleware.AccessLog())

	// 4) Panic recovery to JSON 500
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB); config documents are small
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per operator/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByOperatorOrIP())
	r.Use(rl.Handler())

	// 8) CORS posture. The console talks to the API with credentialed
	// requests (the session cookie), so credentials are only enabled when
	// an explicit origin allowlist is configured. With no allowlist the
	// API still serves wildcard CORS for cookie-less probes.
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: true, // cookie sessions need credentials
			MaxAge:           12 * time.Hour,
		}))
	}

	// Compress list responses; activity pages compress well.
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Security headers (HSTS only when enabled and request is HTTPS).
	// no-store everywhere: every response is session-scoped or live data.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
		NoStore:    true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← db
	authSvc := services.NewAuthService(db, cfg.Session.TTL)
	activitySvc := &services.ActivityService{DB: db}
	configSvc := &services.ConfigService{DB: db}

	h := handlers.New(
		authSvc,
		activitySvc,
		deps.Blocklist,
		deps.Stats,
		configSvc,
		deps.Sealer,
		handlers.CookieOptions{
			Secure: cfg.Session.CookieSecure,
			TTL:    cfg.Session.TTL,
		},
	)

	api := r.Group("/api")

	// Login is the only unauthenticated API route.
	api.POST("/auth/login", h.Login)

	authed := api.Group("")
	authed.Use(middleware.SessionAuth(deps.Sealer, authSvc))
	{
		authed.POST("/auth/check", h.Check)
		authed.POST("/auth/logout", h.Logout)

		authed.GET("/activity", h.ListActivity)

		authed.GET("/blocklist", h.ListBlocklist)
		authed.POST("/blocklist", h.CreateBlocklistEntry)
		authed.DELETE("/blocklist", h.DeleteBlocklistEntry)

		authed.GET("/stats/live", h.LiveStats)

		authed.GET("/config", h.GetConfig)
		authed.PUT("/config", h.UpdateConfig)
	}
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader. Requests exceeding the cap cause downstream body
// reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
