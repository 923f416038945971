package cache

import (
	"context"
	"time"

	"github.com/carton-caps/referrals/internal/domain"
)

// LinkCache is a best-effort read cache for referral links. Misses and
// failures are both reported as (nil, err/nil); callers must fall back to
// the store and must never fail a request on a cache error.
type LinkCache interface {
	Get(ctx context.Context, userID string) (*domain.ReferralLink, error)
	Set(ctx context.Context, link *domain.ReferralLink, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}

// Noop is used when no redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (*domain.ReferralLink, error) { return nil, nil }

func (Noop) Set(context.Context, *domain.ReferralLink, time.Duration) error { return nil }

func (Noop) Invalidate(context.Context, string) error { return nil }
