package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/carton-caps/referrals/internal/cache"
	"github.com/carton-caps/referrals/internal/deeplink"
	"github.com/carton-caps/referrals/internal/metrics"
	"github.com/carton-caps/referrals/internal/repository"
)

const defaultBatchSize = 100

// Sweeper removes referral links that have expired: first at the provider,
// then locally. A fresh link is generated lazily the next time the user asks
// for one.
type Sweeper struct {
	links     repository.ReferralLinkRepository
	provider  deeplink.Service
	linkCache cache.LinkCache
	logger    *slog.Logger
	batchSize int
}

func New(links repository.ReferralLinkRepository, provider deeplink.Service, linkCache cache.LinkCache, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		links:     links,
		provider:  provider,
		linkCache: linkCache,
		logger:    logger.With("component", "sweeper"),
		batchSize: defaultBatchSize,
	}
}

// Sweep runs one cycle and returns how many links it deleted. A provider
// failure skips the link and keeps the local row, so the next cycle retries;
// the local delete only happens once the provider side is gone.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() {
		metrics.SweeperCycleDuration.Observe(time.Since(start).Seconds())
	}()

	expired, err := s.links.ListExpired(ctx, time.Now().UTC(), s.batchSize)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		s.logger.InfoContext(ctx, "no expired links")
		return 0, nil
	}

	deleted := 0
	for _, link := range expired {
		if ctx.Err() != nil {
			return deleted, ctx.Err()
		}

		_, err := s.provider.DeleteLink(ctx, &deeplink.DeepLink{
			ID:             link.ThirdPartyID,
			Link:           link.BaseDeepLink,
			DateCreated:    link.DateCreated,
			ExpirationDate: link.ExpirationDate,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "provider delete failed, keeping local row",
				"user_id", link.UserID, "third_party_id", link.ThirdPartyID, "error", err)
			continue
		}

		if _, err := s.links.DeleteByUserID(ctx, link.UserID); err != nil {
			s.logger.ErrorContext(ctx, "local delete failed", "user_id", link.UserID, "error", err)
			continue
		}
		if err := s.linkCache.Invalidate(ctx, link.UserID); err != nil {
			s.logger.WarnContext(ctx, "cache invalidate failed", "user_id", link.UserID, "error", err)
		}

		metrics.SweeperDeletedTotal.Inc()
		deleted++
	}

	s.logger.InfoContext(ctx, "sweep finished", "expired", len(expired), "deleted", deleted)
	return deleted, nil
}
