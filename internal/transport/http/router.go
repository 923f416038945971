package httptransport

import (
	"log/slog"

	"github.com/carton-caps/referrals/internal/transport/http/handler"
	"github.com/carton-caps/referrals/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, linkHandler *handler.ReferralLinkHandler, referralHandler *handler.ReferralHandler, hmacKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(hmacKey)

	links := r.Group("/referral-link", authMW)
	links.POST("", linkHandler.Create)
	links.GET("", linkHandler.Get)
	links.PUT("/ttl", linkHandler.ExtendTTL)

	referrals := r.Group("/referrals", authMW)
	referrals.POST("", referralHandler.Complete)
	referrals.GET("", referralHandler.List)

	return r
}
