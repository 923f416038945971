package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/carton-caps/referrals/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	errInternalServer = "Internal server error"
	errUpstream       = "Deep link service unavailable"
)

// respondError maps domain errors onto HTTP statuses at the boundary:
// invalid argument → 400, not found → 404, uniqueness conflict → 409,
// provider failure → 502, anything else → 500.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrReferralLinkNotFound),
		errors.Is(err, domain.ErrReferralNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicateReferral),
		errors.Is(err, domain.ErrDuplicateReferralLink):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		var extErr *domain.ExternalServiceError
		if errors.As(err, &extErr) {
			logger.ErrorContext(c.Request.Context(), "provider failure",
				"status", extErr.StatusCode, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": errUpstream})
			return
		}
		logger.ErrorContext(c.Request.Context(), "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
