package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rentease/rent-ledger/internal/domain"
)

type leaseRepository struct {
	db *sqlx.DB
}

func NewLeaseRepository(db *sqlx.DB) LeaseRepository {
	return &leaseRepository{db: db}
}

func (r *leaseRepository) Create(ctx context.Context, lease *domain.Lease) error {
	query := `
		INSERT INTO leases (id, landlord_id, unit_label, status, start_date, end_date,
			monthly_rent, security_deposit, late_fee_amount, grace_period_days, rent_due_day,
			notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		lease.ID,
		lease.LandlordID,
		lease.UnitLabel,
		lease.Status,
		lease.StartDate,
		lease.EndDate,
		lease.MonthlyRent,
		lease.SecurityDeposit,
		lease.LateFeeAmount,
		lease.GracePeriodDays,
		lease.RentDueDay,
		lease.Notes,
		lease.CreatedAt,
		lease.UpdatedAt,
	)

	return err
}

func (r *leaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	query := `
		SELECT id, landlord_id, unit_label, status, start_date, end_date,
			monthly_rent, security_deposit, late_fee_amount, grace_period_days, rent_due_day,
			notes, created_at, updated_at
		FROM leases
		WHERE id = $1
	`

	var lease domain.Lease
	if err := r.db.GetContext(ctx, &lease, query, id); err != nil {
		return nil, err
	}

	return &lease, nil
}

func (r *leaseRepository) Update(ctx context.Context, lease *domain.Lease) error {
	query := `
		UPDATE leases
		SET end_date = $2, monthly_rent = $3, late_fee_amount = $4,
			grace_period_days = $5, status = $6, notes = $7, updated_at = $8
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		lease.ID,
		lease.EndDate,
		lease.MonthlyRent,
		lease.LateFeeAmount,
		lease.GracePeriodDays,
		lease.Status,
		lease.Notes,
		time.Now(),
	)

	return err
}

func (r *leaseRepository) LinkTenant(ctx context.Context, leaseID, tenantID uuid.UUID, isPrimary bool) error {
	query := `
		INSERT INTO lease_tenants (lease_id, tenant_id, is_primary)
		VALUES ($1, $2, $3)
		ON CONFLICT (lease_id, tenant_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, leaseID, tenantID, isPrimary)
	return err
}

func (r *leaseRepository) TenantsByLease(ctx context.Context, leaseID uuid.UUID) ([]*domain.Tenant, error) {
	query := `
		SELECT t.id, t.first_name, t.last_name, t.email, t.phone
		FROM tenants t
		JOIN lease_tenants lt ON lt.tenant_id = t.id
		WHERE lt.lease_id = $1
		ORDER BY lt.is_primary DESC, t.last_name
	`

	var tenants []*domain.Tenant
	if err := r.db.SelectContext(ctx, &tenants, query, leaseID); err != nil {
		return nil, err
	}

	return tenants, nil
}

func (r *leaseRepository) ListExpiring(ctx context.Context, endDate time.Time) ([]*domain.ExpiringLease, error) {
	query := `
		SELECT id AS lease_id, landlord_id, unit_label, end_date
		FROM leases
		WHERE end_date = $1 AND status = 'active'
		ORDER BY id
	`

	var leases []*domain.ExpiringLease
	if err := r.db.SelectContext(ctx, &leases, query, endDate); err != nil {
		return nil, err
	}

	return leases, nil
}
