package deeplink

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Endpoints of the third-party deferred deep link API, relative to its base URL.
const (
	generateEndpoint = "generateDeeplink"
	updateEndpoint   = "updateDeeplinkTimeToLive"
	deleteEndpoint   = "deleteDeeplink"
)

// DeepLink is the provider's view of a link: the id it assigned, the URL it
// issued, and the validity window it controls.
type DeepLink struct {
	ID             int       `json:"id"`
	Link           string    `json:"link"`
	DateCreated    time.Time `json:"date_created"`
	ExpirationDate time.Time `json:"expiration_date"`
}

type generateRequest struct {
	ReferralCode string `json:"referral_code"`
}

type updateRequest struct {
	ID int `json:"id"`
}

// Service issues, renews and deletes deferred deep links.
type Service interface {
	GenerateLink(ctx context.Context, referralCode string) (*DeepLink, error)
	ExtendLinkLifetime(ctx context.Context, link *DeepLink) (*DeepLink, error)
	DeleteLink(ctx context.Context, link *DeepLink) (*DeepLink, error)
}

// NewService returns the fake provider for ENV=local, the HTTP client otherwise.
func NewService(env, baseURL, apiKey string, logger *slog.Logger) Service {
	if env == "local" {
		return NewFakeService()
	}
	return NewClient(baseURL, apiKey, &http.Client{Timeout: 10 * time.Second}, logger)
}
