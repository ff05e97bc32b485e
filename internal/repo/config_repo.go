// Package repo – repository functions for the single-row ConfigDocument.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/akaris/go-dns-admin-backend/internal/domain"
)

// ErrStaleVersion is returned by UpdateConfigCAS when the expected
// version no longer matches the stored row.
var ErrStaleVersion = errors.New("stale config version")

// GetConfig fetches the single config row (id=1), or ErrNotFound when the
// row has not been seeded yet.
func GetConfig(ctx context.Context, db *gorm.DB) (*domain.ConfigDocument, error) {
	var c domain.ConfigDocument
	if err := db.WithContext(ctx).Where("id = 1").First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateConfigCAS atomically replaces the config data if and only if the
// stored version equals expectedVersion, bumping the version by one and
// stamping updated_at. A zero-row update means the version moved under
// the caller and is reported as ErrStaleVersion with nothing mutated.
func UpdateConfigCAS(ctx context.Context, db *gorm.DB, expectedVersion int64, data string) (*domain.ConfigDocument, error) {
	now := domain.NowMS()
	res := db.WithContext(ctx).
		Model(&domain.ConfigDocument{}).
		Where("id = 1 AND version = ?", expectedVersion).
		Updates(map[string]any{
			"version":    expectedVersion + 1,
			"updated_at": now,
			"data":       data,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrStaleVersion
	}
	return &domain.ConfigDocument{
		ID:        1,
		Version:   expectedVersion + 1,
		UpdatedAt: now,
		Data:      data,
	}, nil
}
