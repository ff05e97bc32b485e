// Package services – BlocklistService
//
// This file implements the domain blocklist. Mutations and listings go
// through the database; membership checks for the resolution hot path
// are served from an immutable in-memory snapshot that is atomically
// replaced after every mutation, so IsBlocked never waits on a writer.
package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"golang.org/x/net/idna"
	"gorm.io/gorm"

	"github.com/akaris/go-dns-admin-backend/internal/domain"
	"github.com/akaris/go-dns-admin-backend/internal/repo"
)

// blockSet is an immutable membership snapshot. A new set is built for
// every change; readers only ever see a complete one.
type blockSet map[string]struct{}

// BlocklistService owns the blocklist table and the hot-path snapshot.
type BlocklistService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	set atomic.Pointer[blockSet]
}

// NewBlocklistService constructs a BlocklistService with an empty
// snapshot. Call Reload before serving traffic to warm it from the
// database.
func NewBlocklistService(db *gorm.DB) *BlocklistService {
	s := &BlocklistService{DB: db}
	empty := blockSet{}
	s.set.Store(&empty)
	return s
}

// NormalizeDomain canonicalizes a domain for storage and lookup:
// trimmed, lowercased, IDNA (punycode) ASCII form, no trailing dot.
// Empty or malformed input yields ErrInvalidArgument.
func NormalizeDomain(raw string) (string, error) {
	d := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), ".")
	if d == "" {
		return "", ErrInvalidArgument
	}
	ascii, err := idna.Lookup.ToASCII(d)
	if err != nil {
		return "", ErrInvalidArgument
	}
	return ascii, nil
}

// Create normalizes and inserts a domain. A domain that is already
// blocked is an explicit conflict (ErrAlreadyBlocked), not a silent
// success, so the console can tell the operator the entry existed.
func (s *BlocklistService) Create(ctx context.Context, raw string) (*domain.BlocklistEntry, error) {
	d, err := NormalizeDomain(raw)
	if err != nil {
		return nil, err
	}
	e, err := repo.CreateBlocklistEntry(ctx, s.DB, d)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyBlocked
		}
		return nil, err
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Remove deletes a domain by its normalized form. Removing a domain that
// is not blocked succeeds (idempotent delete).
func (s *BlocklistService) Remove(ctx context.Context, raw string) error {
	d, err := NormalizeDomain(raw)
	if err != nil {
		return err
	}
	if err := repo.DeleteBlocklistEntry(ctx, s.DB, d); err != nil {
		return err
	}
	return s.Reload(ctx)
}

// ListPage returns one page of blocklist entries (ordered by domain) and
// the total count at the time of the query.
func (s *BlocklistService) ListPage(ctx context.Context, top, skip int) ([]domain.BlocklistEntry, int64, error) {
	if err := ValidatePage(top, skip); err != nil {
		return nil, 0, err
	}
	total, err := repo.CountBlocklist(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.BlocklistEntry{}, 0, nil
	}
	items, err := repo.ListBlocklistPage(ctx, s.DB, skip, top)
	return items, total, err
}

// IsBlocked reports whether the domain is on the blocklist. This is the
// resolution hot path: it normalizes cheaply, then does one lock-free
// map lookup against the current snapshot.
func (s *BlocklistService) IsBlocked(raw string) bool {
	d, err := NormalizeDomain(raw)
	if err != nil {
		return false
	}
	_, ok := (*s.set.Load())[d]
	return ok
}

// Reload rebuilds the membership snapshot from the database and swaps it
// in atomically. Called at startup and after every mutation.
func (s *BlocklistService) Reload(ctx context.Context) error {
	domains, err := repo.AllBlockedDomains(ctx, s.DB)
	if err != nil {
		return err
	}
	next := make(blockSet, len(domains))
	for _, d := range domains {
		next[d] = struct{}{}
	}
	s.set.Store(&next)
	return nil
}
