package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carton-caps/referrals/internal/cache"
	"github.com/carton-caps/referrals/internal/deeplink"
	"github.com/carton-caps/referrals/internal/domain"
	"github.com/carton-caps/referrals/internal/metrics"
	"github.com/carton-caps/referrals/internal/repository"
)

// cacheTTL bounds staleness of cached links; the row stays authoritative.
const cacheTTL = 15 * time.Minute

// ReferralLink is the public shape of a link. Store and provider types never
// cross this boundary.
type ReferralLink struct {
	Link           string
	ExpirationDate time.Time
}

type ReferralLinkUsecase struct {
	users    repository.UserDirectory
	links    repository.ReferralLinkRepository
	provider deeplink.Service
	cache    cache.LinkCache
	logger   *slog.Logger
}

func NewReferralLinkUsecase(
	users repository.UserDirectory,
	links repository.ReferralLinkRepository,
	provider deeplink.Service,
	linkCache cache.LinkCache,
	logger *slog.Logger,
) *ReferralLinkUsecase {
	return &ReferralLinkUsecase{
		users:    users,
		links:    links,
		provider: provider,
		cache:    linkCache,
		logger:   logger.With("component", "referral_link_usecase"),
	}
}

// CreateOrGetReferralLink returns the user's referral link, generating one
// via the provider on first call. Idempotent: an existing link short-circuits
// before any provider call.
//
// The check-then-create sequence is deliberately not locked. Two concurrent
// first calls may both reach the provider; the unique index on user_id lets
// exactly one INSERT win, and the loser re-fetches the winner's row. The
// loser's provider-side link is orphaned — same gap exists for any store
// failure after a successful provider call, since no transaction can span
// both systems.
func (u *ReferralLinkUsecase) CreateOrGetReferralLink(ctx context.Context, userID string) (*ReferralLink, error) {
	user, err := u.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := u.getCachedOrStored(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return toReferralLinkDTO(existing)
	}

	generated, err := u.provider.GenerateLink(ctx, user.ReferralCode)
	if err != nil {
		return nil, err
	}
	if generated == nil {
		// Providers have returned 200 with an empty payload before; treat it
		// as an upstream failure, not a success.
		u.logger.WarnContext(ctx, "provider returned no deep link", "user_id", user.ID)
		return nil, &domain.ExternalServiceError{Op: "generate", Err: errors.New("provider returned no deep link")}
	}

	newLink := &domain.ReferralLink{
		UserID:         user.ID,
		ThirdPartyID:   generated.ID,
		BaseDeepLink:   generated.Link,
		DateCreated:    generated.DateCreated,
		ExpirationDate: generated.ExpirationDate,
	}

	created, err := u.links.Create(ctx, newLink)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateReferralLink) {
			// Lost the race to a concurrent call; the winner's link is the
			// user's link.
			u.logger.InfoContext(ctx, "link create conflict, re-fetching", "user_id", user.ID)
			winner, fetchErr := u.links.GetByUserID(ctx, user.ID)
			if fetchErr != nil {
				return nil, fetchErr
			}
			if winner == nil {
				return nil, fmt.Errorf("link vanished after create conflict: %w", domain.ErrPersistence)
			}
			u.cacheSet(ctx, winner)
			return toReferralLinkDTO(winner)
		}
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("failed to persist referral link: %w", domain.ErrPersistence)
	}

	metrics.LinksCreatedTotal.Inc()
	u.cacheSet(ctx, created)
	u.logger.InfoContext(ctx, "referral link created", "user_id", user.ID, "third_party_id", created.ThirdPartyID)
	return toReferralLinkDTO(created)
}

// GetReferralLink returns the user's existing link without touching the
// provider.
func (u *ReferralLinkUsecase) GetReferralLink(ctx context.Context, userID string) (*ReferralLink, error) {
	user, err := u.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	link, err := u.getCachedOrStored(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrReferralLinkNotFound)
	}
	return toReferralLinkDTO(link)
}

// ExtendReferralLinkTimeToLive asks the provider for a later expiration and
// records it. The store applies the new date only when it is strictly later
// than the current one, so an out-of-order provider response can never
// shorten the link's life.
func (u *ReferralLinkUsecase) ExtendReferralLinkTimeToLive(ctx context.Context, userID string) (*ReferralLink, error) {
	user, err := u.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	link, err := u.links.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrReferralLinkNotFound)
	}

	extended, err := u.provider.ExtendLinkLifetime(ctx, &deeplink.DeepLink{
		ID:             link.ThirdPartyID,
		Link:           link.BaseDeepLink,
		DateCreated:    link.DateCreated,
		ExpirationDate: link.ExpirationDate,
	})
	if err != nil {
		return nil, err
	}
	if extended == nil {
		u.logger.WarnContext(ctx, "provider returned no deep link on extension", "user_id", user.ID)
		return nil, &domain.ExternalServiceError{Op: "extend", Err: errors.New("provider returned no deep link")}
	}

	updated, err := u.links.UpdateExpirationDate(ctx, user.ID, extended.ExpirationDate)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("failed to update referral link expiration: %w", domain.ErrPersistence)
	}

	metrics.LinksExtendedTotal.Inc()
	u.cacheSet(ctx, updated)
	u.logger.InfoContext(ctx, "referral link extended",
		"user_id", user.ID, "expiration_date", updated.ExpirationDate)
	return toReferralLinkDTO(updated)
}

func (u *ReferralLinkUsecase) resolveUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is empty: %w", domain.ErrInvalidArgument)
	}

	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrUserNotFound)
	}
	return user, nil
}

// getCachedOrStored consults the cache first and falls back to the store.
// Cache failures are logged and otherwise invisible to the caller.
func (u *ReferralLinkUsecase) getCachedOrStored(ctx context.Context, userID string) (*domain.ReferralLink, error) {
	cached, err := u.cache.Get(ctx, userID)
	if err != nil {
		u.logger.WarnContext(ctx, "link cache read failed", "user_id", userID, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	link, err := u.links.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if link != nil {
		u.cacheSet(ctx, link)
	}
	return link, nil
}

func (u *ReferralLinkUsecase) cacheSet(ctx context.Context, link *domain.ReferralLink) {
	if err := u.cache.Set(ctx, link, cacheTTL); err != nil {
		u.logger.WarnContext(ctx, "link cache write failed", "user_id", link.UserID, "error", err)
	}
}

func toReferralLinkDTO(link *domain.ReferralLink) (*ReferralLink, error) {
	if link.BaseDeepLink == "" {
		return nil, fmt.Errorf("referral link has no deep link: %w", domain.ErrInvalidArgument)
	}
	if link.ExpirationDate.IsZero() {
		return nil, fmt.Errorf("referral link has no expiration date: %w", domain.ErrInvalidArgument)
	}
	return &ReferralLink{
		Link:           link.BaseDeepLink,
		ExpirationDate: link.ExpirationDate,
	}, nil
}
