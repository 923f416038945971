package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/carton-caps/referrals/internal/usecase"
	"github.com/gin-gonic/gin"
)

// referralLinkUsecase lets tests substitute a fake for the real usecase.
type referralLinkUsecase interface {
	CreateOrGetReferralLink(ctx context.Context, userID string) (*usecase.ReferralLink, error)
	GetReferralLink(ctx context.Context, userID string) (*usecase.ReferralLink, error)
	ExtendReferralLinkTimeToLive(ctx context.Context, userID string) (*usecase.ReferralLink, error)
}

type ReferralLinkHandler struct {
	links  referralLinkUsecase
	logger *slog.Logger
}

func NewReferralLinkHandler(links referralLinkUsecase, logger *slog.Logger) *ReferralLinkHandler {
	return &ReferralLinkHandler{links: links, logger: logger.With("component", "referral_link_handler")}
}

type referralLinkResponse struct {
	ReferralLink   string    `json:"referral_link"`
	ExpirationDate time.Time `json:"expiration_date"`
}

func toReferralLinkResponse(link *usecase.ReferralLink) referralLinkResponse {
	return referralLinkResponse{
		ReferralLink:   link.Link,
		ExpirationDate: link.ExpirationDate,
	}
}

// Create returns the caller's referral link, generating it on first call.
func (h *ReferralLinkHandler) Create(c *gin.Context) {
	link, err := h.links.CreateOrGetReferralLink(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toReferralLinkResponse(link))
}

// Get returns the caller's existing referral link.
func (h *ReferralLinkHandler) Get(c *gin.Context) {
	link, err := h.links.GetReferralLink(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toReferralLinkResponse(link))
}

// ExtendTTL pushes the caller's link expiration further out.
func (h *ReferralLinkHandler) ExtendTTL(c *gin.Context) {
	link, err := h.links.ExtendReferralLinkTimeToLive(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toReferralLinkResponse(link))
}
