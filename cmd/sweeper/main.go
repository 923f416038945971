// sweeper deletes expired referral links, provider side first. Runs as its
// own process so a slow provider can never affect API latency.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carton-caps/referrals/config"
	"github.com/carton-caps/referrals/internal/cache"
	"github.com/carton-caps/referrals/internal/deeplink"
	"github.com/carton-caps/referrals/internal/infrastructure/postgres"
	ctxlog "github.com/carton-caps/referrals/internal/log"
	"github.com/carton-caps/referrals/internal/metrics"
	"github.com/carton-caps/referrals/internal/sweeper"
	"github.com/lmittmann/tint"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	var linkCache cache.LinkCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisLinkCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = redisCache.Close() }()
		linkCache = redisCache
	}

	metrics.Register()

	provider := deeplink.NewService(cfg.Env, cfg.DeeplinkBaseURL, cfg.DeeplinkAPIKey, logger)
	sw := sweeper.New(postgres.NewReferralLinkRepository(pool), provider, linkCache, logger)

	c := cron.New()
	_, err = c.AddFunc(cfg.SweepSchedule, func() {
		if _, err := sw.Sweep(ctx); err != nil {
			logger.Error("sweep failed", "error", err)
		}
	})
	if err != nil {
		log.Fatalf("invalid sweep schedule %q: %v", cfg.SweepSchedule, err)
	}

	logger.Info("sweeper started", "schedule", cfg.SweepSchedule)
	c.Start()

	<-ctx.Done()
	logger.Info("shutting down...")
	<-c.Stop().Done()
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
