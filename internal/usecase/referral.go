package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carton-caps/referrals/internal/domain"
	"github.com/carton-caps/referrals/internal/email"
	"github.com/carton-caps/referrals/internal/metrics"
	"github.com/carton-caps/referrals/internal/repository"
)

// Referral is the public shape of a completed referral. Name fields are the
// referee's, so a referrer's list reads "who signed up with my code".
type Referral struct {
	ID        string
	UserID    string
	FirstName string
	LastName  string
	Status    domain.ReferralStatus
}

type ReferralUsecase struct {
	users     repository.UserDirectory
	referrals repository.ReferralRepository
	notifier  email.Sender
	logger    *slog.Logger
}

func NewReferralUsecase(
	users repository.UserDirectory,
	referrals repository.ReferralRepository,
	notifier email.Sender,
	logger *slog.Logger,
) *ReferralUsecase {
	return &ReferralUsecase{
		users:     users,
		referrals: referrals,
		notifier:  notifier,
		logger:    logger.With("component", "referral_usecase"),
	}
}

// CompleteReferral records that refereeUserID signed up using referralCode.
// Self-referrals are rejected here regardless of store state; a repeat
// referral for the same pair surfaces the store's duplicate error unchanged.
func (u *ReferralUsecase) CompleteReferral(ctx context.Context, refereeUserID, referralCode string) (*Referral, error) {
	if refereeUserID == "" {
		return nil, fmt.Errorf("referee user id is empty: %w", domain.ErrInvalidArgument)
	}
	if isBlank(referralCode) {
		return nil, fmt.Errorf("referral code is empty: %w", domain.ErrInvalidArgument)
	}

	referrer, err := u.users.GetByReferralCode(ctx, referralCode)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return nil, fmt.Errorf("referral code %s: %w", referralCode, domain.ErrUserNotFound)
	}

	referee, err := u.users.GetByID(ctx, refereeUserID)
	if err != nil {
		return nil, err
	}
	if referee == nil {
		return nil, fmt.Errorf("user %s: %w", refereeUserID, domain.ErrUserNotFound)
	}

	if referrer.ID == referee.ID {
		return nil, fmt.Errorf("referrer and referee cannot be the same user: %w", domain.ErrInvalidArgument)
	}

	created, err := u.referrals.Create(ctx, &domain.Referral{
		ReferrerID:   referrer.ID,
		RefereeID:    referee.ID,
		ReferralCode: referralCode,
		Status:       domain.StatusComplete,
		DateCreated:  time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateReferral) {
			metrics.ReferralsCompletedTotal.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("failed to create referral: %w", domain.ErrPersistence)
	}

	metrics.ReferralsCompletedTotal.WithLabelValues("success").Inc()
	u.logger.InfoContext(ctx, "referral completed",
		"referral_id", created.ID, "referrer_id", referrer.ID, "referee_id", referee.ID)

	u.notifyReferrer(ctx, referrer, referee)

	return toReferralDTO(created, referee)
}

// GetReferralsByReferrerUserID lists the referrer's completed referrals.
// Referrals whose referee no longer resolves are dropped from the result; a
// referral record may legitimately outlive its referee.
func (u *ReferralUsecase) GetReferralsByReferrerUserID(ctx context.Context, userID string) ([]*Referral, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is empty: %w", domain.ErrInvalidArgument)
	}

	referrer, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrUserNotFound)
	}

	referrals, err := u.referrals.GetByReferrerID(ctx, referrer.ID)
	if err != nil {
		return nil, err
	}
	if len(referrals) == 0 {
		return []*Referral{}, nil
	}

	seen := make(map[string]bool, len(referrals))
	refereeIDs := make([]string, 0, len(referrals))
	for _, ref := range referrals {
		if !seen[ref.RefereeID] {
			seen[ref.RefereeID] = true
			refereeIDs = append(refereeIDs, ref.RefereeID)
		}
	}

	referees, err := u.users.GetByIDs(ctx, refereeIDs)
	if err != nil {
		return nil, err
	}
	if len(referees) == 0 {
		u.logger.WarnContext(ctx, "no referees resolved for referrals", "referrer_id", referrer.ID)
		return []*Referral{}, nil
	}

	refereeByID := make(map[string]*domain.User, len(referees))
	for _, referee := range referees {
		refereeByID[referee.ID] = referee
	}

	result := make([]*Referral, 0, len(referrals))
	for _, ref := range referrals {
		referee, ok := refereeByID[ref.RefereeID]
		if !ok {
			continue
		}
		dto, err := toReferralDTO(ref, referee)
		if err != nil {
			return nil, err
		}
		result = append(result, dto)
	}
	return result, nil
}

// notifyReferrer is best-effort; a notification failure never fails the
// referral itself.
func (u *ReferralUsecase) notifyReferrer(ctx context.Context, referrer, referee *domain.User) {
	subject := "Your referral just signed up!"
	body := fmt.Sprintf("<p>%s %s signed up with your referral code. Thanks for spreading the word!</p>",
		referee.FirstName, referee.LastName)
	if err := u.notifier.Send(ctx, referrer.Email, subject, body); err != nil {
		u.logger.WarnContext(ctx, "referral notification failed",
			"referrer_id", referrer.ID, "error", err)
	}
}

func toReferralDTO(referral *domain.Referral, referee *domain.User) (*Referral, error) {
	if isBlank(referee.FirstName) {
		return nil, fmt.Errorf("referee first name is empty: %w", domain.ErrInvalidArgument)
	}
	if isBlank(referee.LastName) {
		return nil, fmt.Errorf("referee last name is empty: %w", domain.ErrInvalidArgument)
	}
	return &Referral{
		ID:        referral.ID,
		UserID:    referee.ID,
		FirstName: referee.FirstName,
		LastName:  referee.LastName,
		Status:    referral.Status,
	}, nil
}
