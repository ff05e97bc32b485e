// Package repo – repository functions for the Session model.
package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/akaris/go-dns-admin-backend/internal/domain"
)

// CreateSession inserts a new session for userID expiring after ttlMS
// milliseconds. The session ID is a randomly generated UUID.
func CreateSession(ctx context.Context, db *gorm.DB, userID string, ttlMS int64) (*domain.Session, error) {
	now := domain.NowMS()
	s := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now + ttlMS,
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// FindSession fetches a session by ID, or ErrNotFound.
func FindSession(ctx context.Context, db *gorm.DB, id string) (*domain.Session, error) {
	var s domain.Session
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession removes a session by ID. Deleting an absent session is
// not an error (idempotent).
func DeleteSession(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Session{}).Error
}

// DeleteSessionsByUser removes every session belonging to userID.
func DeleteSessionsByUser(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Session{}).Error
}

// DeleteExpiredSessions removes all sessions with expires_at <= nowMS and
// returns the number of rows removed.
func DeleteExpiredSessions(ctx context.Context, db *gorm.DB, nowMS int64) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", nowMS).Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}
