package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrDuplicateReferral = errors.New("referral already exists for this referrer and referee")
	ErrReferralNotFound  = errors.New("referral not found")
	ErrNotImplemented    = errors.New("not implemented")
)

type ReferralStatus string

const (
	// StatusComplete is the only status the service writes today. The type
	// exists so future states (pending, expired) don't change the schema.
	StatusComplete ReferralStatus = "complete"
)

// Referral records that the referee signed up using the referrer's code.
// The (referrer_id, referee_id) pair is unique: a referrer can refer a given
// referee at most once.
type Referral struct {
	ID           string
	ReferrerID   string
	RefereeID    string
	ReferralCode string
	Status       ReferralStatus
	DateCreated  time.Time
}

// Validate checks the fields required before the referral can be persisted.
func (r *Referral) Validate() error {
	if r == nil {
		return fmt.Errorf("referral is nil: %w", ErrInvalidArgument)
	}
	if r.ReferrerID == "" {
		return fmt.Errorf("referral referrer id is empty: %w", ErrInvalidArgument)
	}
	if r.RefereeID == "" {
		return fmt.Errorf("referral referee id is empty: %w", ErrInvalidArgument)
	}
	if r.ReferralCode == "" {
		return fmt.Errorf("referral code is empty: %w", ErrInvalidArgument)
	}
	if r.DateCreated.IsZero() {
		return fmt.Errorf("referral date created is zero: %w", ErrInvalidArgument)
	}
	return nil
}
