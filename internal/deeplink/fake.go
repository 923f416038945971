package deeplink

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/carton-caps/referrals/internal/domain"
)

const linkTTL = 30 * 24 * time.Hour

// FakeService stands in for the real provider in local dev so the service
// runs without provider credentials. Same validation as the real client.
type FakeService struct{}

func NewFakeService() *FakeService {
	return &FakeService{}
}

func (s *FakeService) GenerateLink(_ context.Context, referralCode string) (*DeepLink, error) {
	if strings.TrimSpace(referralCode) == "" {
		return nil, fmt.Errorf("referral code is empty: %w", domain.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	return &DeepLink{
		ID:             rand.Intn(1_000_000) + 1,
		Link:           fmt.Sprintf("https://carton-caps.com/%s?referral_code=%s", randomSlug(5), referralCode),
		DateCreated:    now,
		ExpirationDate: now.Add(linkTTL),
	}, nil
}

func (s *FakeService) ExtendLinkLifetime(_ context.Context, link *DeepLink) (*DeepLink, error) {
	if err := validateLink(link); err != nil {
		return nil, err
	}

	extended := *link
	extended.ExpirationDate = link.ExpirationDate.Add(linkTTL)
	return &extended, nil
}

func (s *FakeService) DeleteLink(_ context.Context, link *DeepLink) (*DeepLink, error) {
	if err := validateLink(link); err != nil {
		return nil, err
	}
	return link, nil
}

func randomSlug(n int) string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))]
	}
	return string(b)
}
