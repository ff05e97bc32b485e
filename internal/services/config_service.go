// Package services – ConfigService
//
// This file implements the versioned configuration document: a single
// JSON blob with an optimistic-concurrency version. Updates carry the
// version the caller last saw; a mismatch fails without mutating data.
package services

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/akaris/go-dns-admin-backend/internal/domain"
	"github.com/akaris/go-dns-admin-backend/internal/repo"
)

// ConfigService owns the single config row.
type ConfigService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Get returns the current config document.
func (s *ConfigService) Get(ctx context.Context) (*domain.ConfigDocument, error) {
	c, err := repo.GetConfig(ctx, s.DB)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Update replaces the config data via compare-and-swap on the version.
// data must be valid JSON; a stale expectedVersion yields
// ErrVersionConflict and leaves the stored document untouched.
func (s *ConfigService) Update(ctx context.Context, expectedVersion int64, data string) (*domain.ConfigDocument, error) {
	if !json.Valid([]byte(data)) {
		return nil, ErrInvalidArgument
	}
	c, err := repo.UpdateConfigCAS(ctx, s.DB, expectedVersion, data)
	if err != nil {
		if errors.Is(err, repo.ErrStaleVersion) {
			return nil, ErrVersionConflict
		}
		return nil, err
	}
	return c, nil
}
