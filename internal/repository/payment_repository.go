package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rentease/rent-ledger/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, lease_id, tenant_id, ledger_entry_id, amount, type, method, status, external_ref, for_month, notes, paid_at, created_at`

func (r *paymentRepository) Create(ctx context.Context, payment *domain.PaymentRecord) error {
	query := `
		INSERT INTO payments (id, lease_id, tenant_id, ledger_entry_id, amount, type, method,
			status, external_ref, for_month, notes, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.LeaseID,
		payment.TenantID,
		payment.LedgerEntryID,
		payment.Amount,
		payment.Type,
		payment.Method,
		payment.Status,
		payment.ExternalRef,
		payment.ForMonth,
		payment.Notes,
		payment.PaidAt,
		payment.CreatedAt,
	)

	return err
}

func (r *paymentRepository) GetByExternalRef(ctx context.Context, externalRef string) (*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE external_ref = $1`

	var payment domain.PaymentRecord
	err := r.db.GetContext(ctx, &payment, query, externalRef)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) ListUnmatched(ctx context.Context) ([]*domain.PaymentRecord, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE ledger_entry_id IS NULL AND status = 'completed'
		ORDER BY created_at DESC
	`

	var payments []*domain.PaymentRecord
	if err := r.db.SelectContext(ctx, &payments, query); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*domain.PaymentRecord, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE lease_id = $1
		ORDER BY paid_at DESC
	`

	var payments []*domain.PaymentRecord
	if err := r.db.SelectContext(ctx, &payments, query, leaseID); err != nil {
		return nil, err
	}

	return payments, nil
}
