// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver), schema migrations, and the derived activity view.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/akaris/go-dns-admin-backend/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// activityViewSQL defines the read-time union of the two event tables.
// Ties on ts_ms are broken deterministically: errors sort before queries,
// then by descending insertion sequence, so offset pagination over a
// fixed snapshot never skips or duplicates a row.
const activityViewSQL = `
CREATE VIEW IF NOT EXISTS activity_log AS
SELECT
  ts_ms, 'query' AS kind, source_id, transport, client, dur_ms,
  qname, qtype, rcode, blocked, cache_hit,
  NULL AS error_type, NULL AS error_message
FROM dns_query_log
UNION ALL
SELECT
  ts_ms, 'error' AS kind, source_id, transport, client, dur_ms,
  qname, qtype, NULL AS rcode, NULL AS blocked, NULL AS cache_hit,
  type AS error_type, message AS error_message
FROM dns_error_log
`

// Migrate applies the schema: all model tables plus the activity_log view.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.QueryEvent{},
		&domain.ErrorEvent{},
		&domain.BlocklistEntry{},
		&domain.ConfigDocument{},
	); err != nil {
		return err
	}
	return db.Exec(activityViewSQL).Error
}

// EnsureConfigRow inserts the initial config row (id=1, version=1, empty
// JSON object) if it does not exist yet. Safe to call on every boot.
func EnsureConfigRow(db *gorm.DB) error {
	return db.Exec(
		"INSERT OR IGNORE INTO config (id, version, updated_at, data) VALUES (1, 1, ?, '{}')",
		domain.NowMS(),
	).Error
}
