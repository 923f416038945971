package repository

import (
	"context"

	"github.com/carton-caps/referrals/internal/domain"
)

// UserDirectory resolves users by id or referral code. Users are owned by a
// different part of the product; this service never writes them.
type UserDirectory interface {
	// GetByID returns (nil, nil) when no user exists with the id.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByIDs returns the users that match; ids with no match are simply
	// absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error)

	// GetByReferralCode returns (nil, nil) when no user owns the code.
	GetByReferralCode(ctx context.Context, code string) (*domain.User, error)
}
