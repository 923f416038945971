package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrReferralLinkNotFound  = errors.New("referral link not found")
	ErrDuplicateReferralLink = errors.New("referral link already exists for user")
	ErrPersistence           = errors.New("persistence failure")
)

// ReferralLink pairs a user with their currently active deferred deep link.
// At most one row exists per user; the unique index on user_id is what makes
// concurrent create-or-get calls safe.
type ReferralLink struct {
	ID             string
	UserID         string
	ThirdPartyID   int
	BaseDeepLink   string
	DateCreated    time.Time
	ExpirationDate time.Time
}

// Validate checks the fields required before the link can be persisted.
func (l *ReferralLink) Validate() error {
	if l == nil {
		return fmt.Errorf("referral link is nil: %w", ErrInvalidArgument)
	}
	if l.UserID == "" {
		return fmt.Errorf("referral link user id is empty: %w", ErrInvalidArgument)
	}
	if l.BaseDeepLink == "" {
		return fmt.Errorf("referral link base deep link is empty: %w", ErrInvalidArgument)
	}
	if l.DateCreated.IsZero() {
		return fmt.Errorf("referral link date created is zero: %w", ErrInvalidArgument)
	}
	if l.ExpirationDate.IsZero() {
		return fmt.Errorf("referral link expiration date is zero: %w", ErrInvalidArgument)
	}
	if l.DateCreated.After(l.ExpirationDate) {
		return fmt.Errorf("referral link date created is after expiration date: %w", ErrInvalidArgument)
	}
	return nil
}

// ExternalServiceError reports a deep link provider failure, carrying the
// upstream status and body when a response was received at all.
type ExternalServiceError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("deeplink %s: upstream returned %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("deeplink %s: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
