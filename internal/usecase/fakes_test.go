package usecase_test

import (
	"context"
	"time"

	"github.com/carton-caps/referrals/internal/deeplink"
	"github.com/carton-caps/referrals/internal/domain"
)

// ---- fakes ----

type fakeUserDirectory struct {
	getByID           func(ctx context.Context, id string) (*domain.User, error)
	getByIDs          func(ctx context.Context, ids []string) ([]*domain.User, error)
	getByReferralCode func(ctx context.Context, code string) (*domain.User, error)
}

func (d *fakeUserDirectory) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return d.getByID(ctx, id)
}

func (d *fakeUserDirectory) GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	return d.getByIDs(ctx, ids)
}

func (d *fakeUserDirectory) GetByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	return d.getByReferralCode(ctx, code)
}

type fakeLinkRepo struct {
	getByUserID          func(ctx context.Context, userID string) (*domain.ReferralLink, error)
	create               func(ctx context.Context, link *domain.ReferralLink) (*domain.ReferralLink, error)
	updateExpirationDate func(ctx context.Context, userID string, newExpiration time.Time) (*domain.ReferralLink, error)
	deleteByUserID       func(ctx context.Context, userID string) (*domain.ReferralLink, error)
	listExpired          func(ctx context.Context, asOf time.Time, limit int) ([]*domain.ReferralLink, error)
}

func (r *fakeLinkRepo) GetByUserID(ctx context.Context, userID string) (*domain.ReferralLink, error) {
	return r.getByUserID(ctx, userID)
}

func (r *fakeLinkRepo) Create(ctx context.Context, link *domain.ReferralLink) (*domain.ReferralLink, error) {
	return r.create(ctx, link)
}

func (r *fakeLinkRepo) UpdateExpirationDate(ctx context.Context, userID string, newExpiration time.Time) (*domain.ReferralLink, error) {
	return r.updateExpirationDate(ctx, userID, newExpiration)
}

func (r *fakeLinkRepo) DeleteByUserID(ctx context.Context, userID string) (*domain.ReferralLink, error) {
	return r.deleteByUserID(ctx, userID)
}

func (r *fakeLinkRepo) ListExpired(ctx context.Context, asOf time.Time, limit int) ([]*domain.ReferralLink, error) {
	return r.listExpired(ctx, asOf, limit)
}

type fakeReferralRepo struct {
	getByID         func(ctx context.Context, id string) (*domain.Referral, error)
	getByReferrerID func(ctx context.Context, referrerID string) ([]*domain.Referral, error)
	create          func(ctx context.Context, referral *domain.Referral) (*domain.Referral, error)
}

func (r *fakeReferralRepo) GetByID(ctx context.Context, id string) (*domain.Referral, error) {
	return r.getByID(ctx, id)
}

func (r *fakeReferralRepo) GetByReferrerID(ctx context.Context, referrerID string) ([]*domain.Referral, error) {
	return r.getByReferrerID(ctx, referrerID)
}

func (r *fakeReferralRepo) Create(ctx context.Context, referral *domain.Referral) (*domain.Referral, error) {
	return r.create(ctx, referral)
}

func (r *fakeReferralRepo) Delete(ctx context.Context, id string) error {
	return domain.ErrNotImplemented
}

// fakeProvider counts calls so tests can assert the provider was hit
// exactly the expected number of times.
type fakeProvider struct {
	generateCalls int
	extendCalls   int
	deleteCalls   int

	generate func(ctx context.Context, referralCode string) (*deeplink.DeepLink, error)
	extend   func(ctx context.Context, link *deeplink.DeepLink) (*deeplink.DeepLink, error)
	del      func(ctx context.Context, link *deeplink.DeepLink) (*deeplink.DeepLink, error)
}

func (p *fakeProvider) GenerateLink(ctx context.Context, referralCode string) (*deeplink.DeepLink, error) {
	p.generateCalls++
	return p.generate(ctx, referralCode)
}

func (p *fakeProvider) ExtendLinkLifetime(ctx context.Context, link *deeplink.DeepLink) (*deeplink.DeepLink, error) {
	p.extendCalls++
	return p.extend(ctx, link)
}

func (p *fakeProvider) DeleteLink(ctx context.Context, link *deeplink.DeepLink) (*deeplink.DeepLink, error) {
	p.deleteCalls++
	return p.del(ctx, link)
}

type fakeEmailSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeEmailSender) Send(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, body)
}

type fakeLinkCache struct {
	get        func(ctx context.Context, userID string) (*domain.ReferralLink, error)
	set        func(ctx context.Context, link *domain.ReferralLink, ttl time.Duration) error
	invalidate func(ctx context.Context, userID string) error
}

func (c *fakeLinkCache) Get(ctx context.Context, userID string) (*domain.ReferralLink, error) {
	if c.get == nil {
		return nil, nil
	}
	return c.get(ctx, userID)
}

func (c *fakeLinkCache) Set(ctx context.Context, link *domain.ReferralLink, ttl time.Duration) error {
	if c.set == nil {
		return nil
	}
	return c.set(ctx, link, ttl)
}

func (c *fakeLinkCache) Invalidate(ctx context.Context, userID string) error {
	if c.invalidate == nil {
		return nil
	}
	return c.invalidate(ctx, userID)
}
