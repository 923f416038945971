package repository

import (
	"context"

	"github.com/carton-caps/referrals/internal/domain"
)

type ReferralRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Referral, error)

	// GetByReferrerID returns an empty slice, not an error, when the user
	// has referred nobody.
	GetByReferrerID(ctx context.Context, referrerID string) ([]*domain.Referral, error)

	Create(ctx context.Context, referral *domain.Referral) (*domain.Referral, error)

	// Delete is an administrative operation out of the primary flow.
	Delete(ctx context.Context, id string) error
}
