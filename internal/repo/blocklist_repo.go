// Package repo – repository functions for the BlocklistEntry model.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/akaris/go-dns-admin-backend/internal/domain"
)

// ErrDuplicate is returned by CreateBlocklistEntry when the domain is
// already present.
var ErrDuplicate = errors.New("duplicate key")

// CreateBlocklistEntry inserts a normalized domain with the current
// timestamp. A primary key collision is reported as ErrDuplicate.
func CreateBlocklistEntry(ctx context.Context, db *gorm.DB, dom string) (*domain.BlocklistEntry, error) {
	e := &domain.BlocklistEntry{
		Domain:    dom,
		CreatedAt: domain.NowMS(),
	}
	res := db.WithContext(ctx).
		Exec("INSERT OR IGNORE INTO blocklist (domain, created_at) VALUES (?, ?)", e.Domain, e.CreatedAt)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrDuplicate
	}
	return e, nil
}

// DeleteBlocklistEntry removes a domain from the blocklist. Absence of
// the domain is not an error (idempotent delete).
func DeleteBlocklistEntry(ctx context.Context, db *gorm.DB, dom string) error {
	return db.WithContext(ctx).Where("domain = ?", dom).Delete(&domain.BlocklistEntry{}).Error
}

// ListBlocklistPage returns a page of blocklist entries ordered by domain.
func ListBlocklistPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.BlocklistEntry, error) {
	var out []domain.BlocklistEntry
	err := db.WithContext(ctx).
		Order("domain ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountBlocklist returns the total number of blocked domains.
func CountBlocklist(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.BlocklistEntry{}).Count(&total).Error
	return total, err
}

// AllBlockedDomains returns every blocked domain, used to rebuild the
// in-memory membership snapshot.
func AllBlockedDomains(ctx context.Context, db *gorm.DB) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.BlocklistEntry{}).
		Pluck("domain", &out).Error
	return out, err
}
