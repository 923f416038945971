package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carton-caps/referrals/config"
	"github.com/carton-caps/referrals/internal/cache"
	"github.com/carton-caps/referrals/internal/deeplink"
	"github.com/carton-caps/referrals/internal/email"
	"github.com/carton-caps/referrals/internal/health"
	"github.com/carton-caps/referrals/internal/infrastructure/postgres"
	ctxlog "github.com/carton-caps/referrals/internal/log"
	"github.com/carton-caps/referrals/internal/metrics"
	httptransport "github.com/carton-caps/referrals/internal/transport/http"
	"github.com/carton-caps/referrals/internal/transport/http/handler"
	"github.com/carton-caps/referrals/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, logger); err != nil {
		stop()
		log.Fatalf("migrations: %v", err)
	}

	// Optional redis link cache
	var linkCache cache.LinkCache = cache.Noop{}
	var cachePinger health.Pinger
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisLinkCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = redisCache.Close() }()
		linkCache = redisCache
		cachePinger = redisCache
	}

	// External collaborators
	users := postgres.NewUserDirectory(pool)
	provider := deeplink.NewService(cfg.Env, cfg.DeeplinkBaseURL, cfg.DeeplinkAPIKey, logger)
	notifier := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	// Referral links
	linkRepo := postgres.NewReferralLinkRepository(pool)
	linkUsecase := usecase.NewReferralLinkUsecase(users, linkRepo, provider, linkCache, logger)
	linkHandler := handler.NewReferralLinkHandler(linkUsecase, logger)

	// Referrals
	referralRepo := postgres.NewReferralRepository(pool)
	referralUsecase := usecase.NewReferralUsecase(users, referralRepo, notifier, logger)
	referralHandler := handler.NewReferralHandler(referralUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, cachePinger, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, linkHandler, referralHandler, []byte(cfg.JWTSecret)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
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
