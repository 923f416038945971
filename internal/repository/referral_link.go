package repository

import (
	"context"
	"time"

	"github.com/carton-caps/referrals/internal/domain"
)

// Usecases depend on interfaces, not concrete implementations.
// This way we get: 1) can swap DB later without touching usecases 2) We can pass a fake implementation of the interface in tests
type ReferralLinkRepository interface {
	// GetByUserID returns (nil, nil) when the user has no link.
	GetByUserID(ctx context.Context, userID string) (*domain.ReferralLink, error)

	Create(ctx context.Context, link *domain.ReferralLink) (*domain.ReferralLink, error)

	// UpdateExpirationDate applies newExpiration only when it is strictly
	// later than the stored one; otherwise the row is returned unchanged.
	// Returns (nil, nil) when the user has no link.
	UpdateExpirationDate(ctx context.Context, userID string, newExpiration time.Time) (*domain.ReferralLink, error)

	// DeleteByUserID returns the deleted row, or (nil, nil) when there was
	// nothing to delete. Only the account-closure path and the sweeper use it.
	DeleteByUserID(ctx context.Context, userID string) (*domain.ReferralLink, error)

	// ListExpired returns links whose expiration date is at or before asOf,
	// oldest first, for the sweeper.
	ListExpired(ctx context.Context, asOf time.Time, limit int) ([]*domain.ReferralLink, error)
}
