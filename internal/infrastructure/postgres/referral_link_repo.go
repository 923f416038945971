package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carton-caps/referrals/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

const referralLinkColumns = `id, user_id, third_party_id, base_deep_link, date_created, expiration_date`

type ReferralLinkRepository struct {
	pool *pgxpool.Pool
}

func NewReferralLinkRepository(pool *pgxpool.Pool) *ReferralLinkRepository {
	return &ReferralLinkRepository{pool: pool}
}

func (r *ReferralLinkRepository) GetByUserID(ctx context.Context, userID string) (*domain.ReferralLink, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is empty: %w", domain.ErrInvalidArgument)
	}

	query := `SELECT ` + referralLinkColumns + ` FROM referral_links WHERE user_id = $1`

	link, err := scanReferralLink(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get referral link by user id: %w: %w", domain.ErrPersistence, err)
	}
	return link, nil
}

func (r *ReferralLinkRepository) Create(ctx context.Context, link *domain.ReferralLink) (*domain.ReferralLink, error) {
	// Validated here as well as in the usecase; the store is the last line
	// of defense before a bad row hits the table.
	if err := link.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO referral_links (user_id, third_party_id, base_deep_link, date_created, expiration_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + referralLinkColumns

	created, err := scanReferralLink(r.pool.QueryRow(ctx, query,
		link.UserID,
		link.ThirdPartyID,
		link.BaseDeepLink,
		link.DateCreated,
		link.ExpirationDate,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("user %s: %w", link.UserID, domain.ErrDuplicateReferralLink)
		}
		return nil, fmt.Errorf("create referral link: %w: %w", domain.ErrPersistence, err)
	}
	return created, nil
}

// UpdateExpirationDate extends the link only when newExpiration is later than
// the stored value. The comparison happens inside the UPDATE so a slow or
// out-of-order provider response can never shorten a link's life.
func (r *ReferralLinkRepository) UpdateExpirationDate(ctx context.Context, userID string, newExpiration time.Time) (*domain.ReferralLink, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is empty: %w", domain.ErrInvalidArgument)
	}
	if newExpiration.IsZero() {
		return nil, fmt.Errorf("new expiration date is zero: %w", domain.ErrInvalidArgument)
	}

	query := `
		UPDATE referral_links
		SET    expiration_date = GREATEST(expiration_date, $2)
		WHERE  user_id = $1
		RETURNING ` + referralLinkColumns

	link, err := scanReferralLink(r.pool.QueryRow(ctx, query, userID, newExpiration))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update referral link expiration: %w: %w", domain.ErrPersistence, err)
	}
	return link, nil
}

func (r *ReferralLinkRepository) DeleteByUserID(ctx context.Context, userID string) (*domain.ReferralLink, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is empty: %w", domain.ErrInvalidArgument)
	}

	query := `DELETE FROM referral_links WHERE user_id = $1 RETURNING ` + referralLinkColumns

	link, err := scanReferralLink(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("delete referral link: %w: %w", domain.ErrPersistence, err)
	}
	return link, nil
}

func (r *ReferralLinkRepository) ListExpired(ctx context.Context, asOf time.Time, limit int) ([]*domain.ReferralLink, error) {
	query := `
		SELECT ` + referralLinkColumns + `
		FROM   referral_links
		WHERE  expiration_date <= $1
		ORDER BY expiration_date ASC
		LIMIT  $2`

	rows, err := r.pool.Query(ctx, query, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired referral links: %w: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var links []*domain.ReferralLink
	for rows.Next() {
		link, err := scanReferralLink(rows)
		if err != nil {
			return nil, fmt.Errorf("list expired referral links: %w: %w", domain.ErrPersistence, err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expired referral links: %w: %w", domain.ErrPersistence, err)
	}
	return links, nil
}

func scanReferralLink(row pgx.Row) (*domain.ReferralLink, error) {
	var l domain.ReferralLink
	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.ThirdPartyID,
		&l.BaseDeepLink,
		&l.DateCreated,
		&l.ExpirationDate,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
