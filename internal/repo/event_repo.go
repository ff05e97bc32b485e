// Package repo – repository functions for the append-only event logs and
// the derived activity view.
//
// The two event tables are written in batches by the telemetry recorder
// and never updated or deleted through the API; retention is an external
// policy applied by PruneEventsBefore. Reads go through the activity_log
// view, which unions both tables at read time with a deterministic order
// (ts_ms DESC, errors before queries on ties, then source_id DESC).
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/akaris/go-dns-admin-backend/internal/domain"
)

// InsertQueryEvents appends a batch of query events in one transaction.
// An empty batch is a no-op.
func InsertQueryEvents(ctx context.Context, db *gorm.DB, events []domain.QueryEvent) error {
	if len(events) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&events).Error
}

// InsertErrorEvents appends a batch of error events in one transaction.
// An empty batch is a no-op.
func InsertErrorEvents(ctx context.Context, db *gorm.DB, events []domain.ErrorEvent) error {
	if len(events) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&events).Error
}

// ListActivity returns a page of the unified activity view, most recent
// first. Ties on ts_ms order errors first, then higher source_id first,
// so a fixed snapshot always yields the same page for the same offset.
func ListActivity(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ActivityRow, error) {
	var out []domain.ActivityRow
	err := db.WithContext(ctx).
		Table("activity_log").
		Order("ts_ms DESC, (kind = 'error') DESC, source_id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountActivity returns the total number of rows in the activity view.
func CountActivity(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Table("activity_log").Count(&total).Error
	return total, err
}

// PruneEventsBefore deletes query and error events older than cutoffMS.
// This is the retention hook; the API itself never deletes events.
func PruneEventsBefore(ctx context.Context, db *gorm.DB, cutoffMS int64) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ts_ms < ?", cutoffMS).Delete(&domain.QueryEvent{}).Error; err != nil {
			return err
		}
		return tx.Where("ts_ms < ?", cutoffMS).Delete(&domain.ErrorEvent{}).Error
	})
}
