package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rentease/rent-ledger/internal/domain"
)

type landlordRepository struct {
	db *sqlx.DB
}

func NewLandlordRepository(db *sqlx.DB) LandlordRepository {
	return &landlordRepository{db: db}
}

func (r *landlordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Landlord, error) {
	query := `
		SELECT id, email, full_name, stripe_account_id, stripe_onboarding_complete
		FROM landlords
		WHERE id = $1
	`

	var landlord domain.Landlord
	if err := r.db.GetContext(ctx, &landlord, query, id); err != nil {
		return nil, err
	}

	return &landlord, nil
}

func (r *landlordRepository) GetByStripeAccount(ctx context.Context, accountID string) (*domain.Landlord, error) {
	query := `
		SELECT id, email, full_name, stripe_account_id, stripe_onboarding_complete
		FROM landlords
		WHERE stripe_account_id = $1
	`

	var landlord domain.Landlord
	if err := r.db.GetContext(ctx, &landlord, query, accountID); err != nil {
		return nil, err
	}

	return &landlord, nil
}

func (r *landlordRepository) SetOnboardingComplete(ctx context.Context, accountID string, complete bool) error {
	query := `
		UPDATE landlords
		SET stripe_onboarding_complete = $2, updated_at = $3
		WHERE stripe_account_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, accountID, complete, time.Now())
	return err
}
