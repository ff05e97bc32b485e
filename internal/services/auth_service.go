// Package services – AuthService
//
// This file implements session authentication: credential verification,
// session issuance, session validation, and revocation. Unknown names and
// wrong passwords produce the same error after comparable work, so login
// responses do not leak which accounts exist.
package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/akaris/go-dns-admin-backend/internal/domain"
	"github.com/akaris/go-dns-admin-backend/internal/repo"
)

// dummyHash is a valid bcrypt hash of an unguessable throwaway value.
// Login attempts for unknown names are verified against it so the
// failure path costs the same as a real comparison.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMye1J9JZkW8lHjYlvF0FHUVRE4cmUW1uG2"

// AuthService verifies operator credentials and owns the session rows.
// Every other component's mutating or listing operation is gated by
// Check through the session middleware.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// TTL is the fixed session lifetime.
	TTL time.Duration
}

// NewAuthService constructs an AuthService with the given session lifetime.
func NewAuthService(db *gorm.DB, ttl time.Duration) *AuthService {
	return &AuthService{DB: db, TTL: ttl}
}

// Login verifies name/password and, on success, creates and returns a new
// session together with its user. Unknown names and wrong passwords both
// yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, name, password string) (*domain.Session, *domain.User, error) {
	u, err := repo.FindUserByName(ctx, s.DB, name)
	if err != nil {
		// Burn a comparison so unknown names take as long as mismatches.
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := repo.CreateSession(ctx, s.DB, u.ID, s.TTL.Milliseconds())
	if err != nil {
		return nil, nil, err
	}
	return sess, u, nil
}

// Check validates a session token. Missing, unknown, or expired sessions
// yield ErrUnauthenticated; expired rows are removed on the way out.
func (s *AuthService) Check(ctx context.Context, sessionID string) (*domain.Session, *domain.User, error) {
	if sessionID == "" {
		return nil, nil, ErrUnauthenticated
	}

	sess, err := repo.FindSession(ctx, s.DB, sessionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, err
	}

	if sess.Expired(domain.NowMS()) {
		_ = repo.DeleteSession(ctx, s.DB, sess.ID)
		return nil, nil, ErrUnauthenticated
	}

	u, err := repo.FindUserByID(ctx, s.DB, sess.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Orphaned session; treat as revoked.
			_ = repo.DeleteSession(ctx, s.DB, sess.ID)
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, err
	}
	return sess, u, nil
}

// Logout revokes a session. Revoking an absent session succeeds.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return repo.DeleteSession(ctx, s.DB, sessionID)
}

// HashPassword produces a bcrypt hash for storage, used by bootstrap
// seeding and provisioning tools.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
