// Command resolver-admin runs the administrative backend of the DNS
// resolver: the session-authenticated HTTP API, the telemetry pipeline
// that persists query and error events, and the background maintenance
// loops (expired-session sweep, event retention pruning).
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/akaris/go-dns-admin-backend/internal/config"
	httpapi "github.com/akaris/go-dns-admin-backend/internal/http"
	"github.com/akaris/go-dns-admin-backend/internal/observability"
	"github.com/akaris/go-dns-admin-backend/internal/repo"
	"github.com/akaris/go-dns-admin-backend/internal/services"
	"github.com/akaris/go-dns-admin-backend/internal/sessioncookie"
	"github.com/akaris/go-dns-admin-backend/internal/telemetry"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	setupLogging(cfg)
	gin.SetMode(cfg.GinMode)

	log.Info().Str("version", version).Msg("starting resolver-admin")

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	if err := repo.EnsureConfigRow(db); err != nil {
		log.Fatal().Err(err).Msg("seed settings document")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seedAdmin(ctx, db, cfg); err != nil {
		log.Fatal().Err(err).Msg("seed admin account")
	}

	sealer, err := sessioncookie.NewSealer(sessionSecret(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("init cookie sealer")
	}

	blocklist := services.NewBlocklistService(db)
	if err := blocklist.Reload(ctx); err != nil {
		log.Fatal().Err(err).Msg("load blocklist snapshot")
	}

	rec := telemetry.NewRecorder(db, cfg.Telemetry.Buffer, cfg.Telemetry.FlushInterval)
	go rec.Run()

	go sweepSessions(ctx, db, cfg.Session.SweepInterval)
	if cfg.Telemetry.Retention > 0 {
		go pruneEvents(ctx, db, cfg.Telemetry.Retention)
	}

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("init tracing")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg, httpapi.Deps{
		Blocklist: blocklist,
		Stats:     rec,
		Sealer:    sealer,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	rec.Close()
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info().Msg("stopped")
}

// setupLogging configures the global zerolog logger from config.
func setupLogging(cfg config.Config) {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// sessionSecret returns the configured cookie key, or a fresh random one
// when none is set. An ephemeral key works but invalidates all sessions
// on restart, so it is only appropriate for development.
func sessionSecret(cfg config.Config) []byte {
	if len(cfg.Session.Secret) > 0 {
		return cfg.Session.Secret
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatal().Err(err).Msg("generate session secret")
	}
	log.Warn().Msg("SESSION_SECRET not set; sessions will not survive a restart")
	return key
}

// seedAdmin creates the initial operator account when ADMIN_USER and
// ADMIN_PASSWORD are configured and the account does not exist yet.
func seedAdmin(ctx context.Context, db *gorm.DB, cfg config.Config) error {
	if cfg.AdminUser == "" {
		return nil
	}
	if cfg.AdminPassword == "" {
		return errors.New("ADMIN_USER set but ADMIN_PASSWORD empty")
	}

	if _, err := repo.FindUserByName(ctx, db, cfg.AdminUser); err == nil {
		return nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	hash, err := services.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	if _, err := repo.CreateUser(ctx, db, cfg.AdminUser, hash); err != nil {
		return err
	}
	log.Info().Str("user", cfg.AdminUser).Msg("seeded admin account")
	return nil
}

// sweepSessions periodically removes expired session rows. The sealed
// cookie already keeps expired sessions unusable; the sweep only bounds
// table growth.
func sweepSessions(ctx context.Context, db *gorm.DB, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := repo.DeleteExpiredSessions(ctx, db, time.Now().UnixMilli())
			if err != nil {
				log.Error().Err(err).Msg("session sweep")
			} else if n > 0 {
				log.Debug().Int64("removed", n).Msg("session sweep")
			}
		}
	}
}

// pruneEvents periodically deletes query and error events older than the
// retention window.
func pruneEvents(ctx context.Context, db *gorm.DB, retention time.Duration) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			cutoff := time.Now().Add(-retention).UnixMilli()
			if err := repo.PruneEventsBefore(ctx, db, cutoff); err != nil {
				log.Error().Err(err).Msg("event retention prune")
			}
		}
	}
}
