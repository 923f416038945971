package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/carton-caps/referrals/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const referralColumns = `id, referrer_id, referee_id, referral_code, status, date_created`

type ReferralRepository struct {
	pool *pgxpool.Pool
}

func NewReferralRepository(pool *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{pool: pool}
}

func (r *ReferralRepository) GetByID(ctx context.Context, id string) (*domain.Referral, error) {
	if id == "" {
		return nil, fmt.Errorf("referral id is empty: %w", domain.ErrInvalidArgument)
	}

	query := `SELECT ` + referralColumns + ` FROM referrals WHERE id = $1`

	referral, err := scanReferral(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("referral %s: %w", id, domain.ErrReferralNotFound)
		}
		return nil, fmt.Errorf("get referral by id: %w: %w", domain.ErrPersistence, err)
	}
	return referral, nil
}

func (r *ReferralRepository) GetByReferrerID(ctx context.Context, referrerID string) ([]*domain.Referral, error) {
	if referrerID == "" {
		return nil, fmt.Errorf("referrer id is empty: %w", domain.ErrInvalidArgument)
	}

	query := `
		SELECT ` + referralColumns + `
		FROM   referrals
		WHERE  referrer_id = $1
		ORDER BY date_created DESC`

	rows, err := r.pool.Query(ctx, query, referrerID)
	if err != nil {
		return nil, fmt.Errorf("get referrals by referrer id: %w: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	referrals := []*domain.Referral{}
	for rows.Next() {
		referral, err := scanReferral(rows)
		if err != nil {
			return nil, fmt.Errorf("get referrals by referrer id: %w: %w", domain.ErrPersistence, err)
		}
		referrals = append(referrals, referral)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get referrals by referrer id: %w: %w", domain.ErrPersistence, err)
	}
	return referrals, nil
}

func (r *ReferralRepository) Create(ctx context.Context, referral *domain.Referral) (*domain.Referral, error) {
	if err := referral.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO referrals (referrer_id, referee_id, referral_code, status, date_created)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + referralColumns

	created, err := scanReferral(r.pool.QueryRow(ctx, query,
		referral.ReferrerID,
		referral.RefereeID,
		referral.ReferralCode,
		referral.Status,
		referral.DateCreated,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("referrer %s referee %s: %w",
				referral.ReferrerID, referral.RefereeID, domain.ErrDuplicateReferral)
		}
		return nil, fmt.Errorf("create referral: %w: %w", domain.ErrPersistence, err)
	}
	return created, nil
}

// Delete is an administrative operation; nothing in the service calls it yet.
func (r *ReferralRepository) Delete(ctx context.Context, id string) error {
	return domain.ErrNotImplemented
}

func scanReferral(row pgx.Row) (*domain.Referral, error) {
	var ref domain.Referral
	err := row.Scan(
		&ref.ID,
		&ref.ReferrerID,
		&ref.RefereeID,
		&ref.ReferralCode,
		&ref.Status,
		&ref.DateCreated,
	)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}
