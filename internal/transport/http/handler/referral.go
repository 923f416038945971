package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/carton-caps/referrals/internal/domain"
	"github.com/carton-caps/referrals/internal/usecase"
	"github.com/gin-gonic/gin"
)

type referralUsecase interface {
	CompleteReferral(ctx context.Context, refereeUserID, referralCode string) (*usecase.Referral, error)
	GetReferralsByReferrerUserID(ctx context.Context, userID string) ([]*usecase.Referral, error)
}

type ReferralHandler struct {
	referrals referralUsecase
	logger    *slog.Logger
}

func NewReferralHandler(referrals referralUsecase, logger *slog.Logger) *ReferralHandler {
	return &ReferralHandler{referrals: referrals, logger: logger.With("component", "referral_handler")}
}

type completeReferralRequest struct {
	ReferralCode string `json:"referral_code" binding:"required"`
}

type referralResponse struct {
	ReferralID string                `json:"referral_id"`
	UserID     string                `json:"user_id"`
	FirstName  string                `json:"first_name"`
	LastName   string                `json:"last_name"`
	Status     domain.ReferralStatus `json:"status"`
}

func toReferralResponse(r *usecase.Referral) referralResponse {
	return referralResponse{
		ReferralID: r.ID,
		UserID:     r.UserID,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Status:     r.Status,
	}
}

// Complete records that the authenticated user signed up with someone's
// referral code.
func (h *ReferralHandler) Complete(c *gin.Context) {
	var req completeReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	referral, err := h.referrals.CompleteReferral(c.Request.Context(), c.GetString("userID"), req.ReferralCode)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toReferralResponse(referral))
}

// List returns the referrals the authenticated user has earned.
func (h *ReferralHandler) List(c *gin.Context) {
	referrals, err := h.referrals.GetReferralsByReferrerUserID(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]referralResponse, 0, len(referrals))
	for _, r := range referrals {
		out = append(out, toReferralResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"referrals": out})
}
