package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/rentease/rent-ledger/internal/domain"
)

type ledgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) InsertEntries(ctx context.Context, entries []*domain.LedgerEntry) (int, error) {
	// The unique (lease_id, due_date) constraint makes re-runs of the
	// generator a no-op for dates that already exist.
	query := `
		INSERT INTO ledger_entries (id, lease_id, due_date, amount_due, amount_paid,
			late_fee_applied, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (lease_id, due_date) DO NOTHING
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for _, entry := range entries {
		res, err := tx.ExecContext(ctx, query,
			entry.ID,
			entry.LeaseID,
			entry.DueDate,
			entry.AmountDue,
			entry.AmountPaid,
			entry.LateFeeApplied,
			entry.Status,
			entry.Version,
			entry.CreatedAt,
			entry.UpdatedAt,
		)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

const entryColumns = `id, lease_id, due_date, amount_due, amount_paid, late_fee_applied, status, version, created_at, updated_at`

func (r *ledgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1`

	var entry domain.LedgerEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *ledgerRepository) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE lease_id = $1 ORDER BY due_date`

	var entries []*domain.LedgerEntry
	if err := r.db.SelectContext(ctx, &entries, query, leaseID); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *ledgerRepository) OldestOutstanding(ctx context.Context, leaseID uuid.UUID) (*domain.LedgerEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE lease_id = $1 AND status IN ('due', 'overdue', 'partial')
		ORDER BY due_date
		LIMIT 1
	`

	var entry domain.LedgerEntry
	err := r.db.GetContext(ctx, &entry, query, leaseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *ledgerRepository) FindByLeaseMonth(ctx context.Context, leaseID uuid.UUID, monthStart, nextMonth time.Time) (*domain.LedgerEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE lease_id = $1 AND due_date >= $2 AND due_date < $3
		LIMIT 1
	`

	var entry domain.LedgerEntry
	err := r.db.GetContext(ctx, &entry, query, leaseID, monthStart, nextMonth)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *ledgerRepository) CreditEntry(ctx context.Context, entryID uuid.UUID, payment *domain.PaymentRecord, gracePeriodDays int, today time.Time) (*domain.LedgerEntry, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	// Row lock serializes concurrent applications to the same entry across
	// processes; no in-process lock would survive multiple replicas.
	var entry domain.LedgerEntry
	lockQuery := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &entry, lockQuery, entryID); err != nil {
		return nil, false, err
	}

	// The partial unique index on external_ref is the hard replay guard:
	// a redelivered processor event conflicts here and changes nothing.
	insertQuery := `
		INSERT INTO payments (id, lease_id, tenant_id, ledger_entry_id, amount, type, method,
			status, external_ref, for_month, notes, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (external_ref) WHERE external_ref IS NOT NULL DO NOTHING
	`

	res, err := tx.ExecContext(ctx, insertQuery,
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
	if err != nil {
		return nil, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if n == 0 {
		// Replayed external reference: abandon without crediting.
		return &entry, true, nil
	}

	entry.AmountPaid = entry.AmountPaid.Add(payment.Amount)
	entry.Status = entry.ComputeStatus(gracePeriodDays, today)
	entry.Version++

	updateQuery := `
		UPDATE ledger_entries
		SET amount_paid = $2, status = $3, version = $4, updated_at = $5
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, updateQuery, entry.ID, entry.AmountPaid, entry.Status, entry.Version, time.Now()); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return &entry, false, nil
}

func (r *ledgerRepository) AssessLateFee(ctx context.Context, entryID uuid.UUID, fee decimal.Decimal, gracePeriodDays int, today time.Time) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var entry domain.LedgerEntry
	lockQuery := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &entry, lockQuery, entryID); err != nil {
		return false, err
	}

	// A fee is charged exactly once per entry, no matter how many sweeps run.
	if entry.LateFeeApplied.GreaterThan(decimal.Zero) {
		return false, nil
	}

	entry.LateFeeApplied = fee
	entry.Status = entry.ComputeStatus(gracePeriodDays, today)
	entry.Version++

	updateQuery := `
		UPDATE ledger_entries
		SET late_fee_applied = $2, status = $3, version = $4, updated_at = $5
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, updateQuery, entry.ID, entry.LateFeeApplied, entry.Status, entry.Version, time.Now()); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *ledgerRepository) RefreshStatuses(ctx context.Context, today time.Time) (int64, error) {
	var total int64

	// upcoming -> due once the entry's calendar month arrives
	dueQuery := `
		UPDATE ledger_entries
		SET status = 'due', updated_at = NOW()
		WHERE status = 'upcoming'
		  AND date_trunc('month', due_date) <= date_trunc('month', $1::date)
	`
	res, err := r.db.ExecContext(ctx, dueQuery, today)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	total += n

	// due -> overdue once past the lease's grace period with nothing paid
	overdueQuery := `
		UPDATE ledger_entries e
		SET status = 'overdue', updated_at = NOW()
		FROM leases l
		WHERE e.lease_id = l.id
		  AND e.status = 'due'
		  AND e.amount_paid = 0
		  AND $1::date > e.due_date + make_interval(days => l.grace_period_days)
	`
	res, err = r.db.ExecContext(ctx, overdueQuery, today)
	if err != nil {
		return 0, err
	}
	n, err = res.RowsAffected()
	if err != nil {
		return 0, err
	}
	total += n

	return total, nil
}

func (r *ledgerRepository) ListFeeCandidates(ctx context.Context, today time.Time) ([]*domain.FeeCandidate, error) {
	query := `
		SELECT e.id AS entry_id, e.lease_id, e.due_date, e.amount_due, e.amount_paid,
			l.grace_period_days, l.late_fee_amount
		FROM ledger_entries e
		JOIN leases l ON l.id = e.lease_id
		WHERE e.status IN ('due', 'overdue', 'partial')
		  AND e.late_fee_applied = 0
		  AND l.late_fee_amount > 0
		  AND e.due_date < $1
		ORDER BY e.due_date
	`

	var candidates []*domain.FeeCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, today); err != nil {
		return nil, err
	}

	return candidates, nil
}

func (r *ledgerRepository) ListReminderCandidates(ctx context.Context, dueDate time.Time) ([]*domain.NotificationCandidate, error) {
	query := `
		SELECT e.id AS entry_id, e.lease_id, l.landlord_id, l.unit_label,
			e.due_date, e.amount_due, l.grace_period_days
		FROM ledger_entries e
		JOIN leases l ON l.id = e.lease_id
		WHERE e.due_date = $1 AND e.status IN ('upcoming', 'due')
		ORDER BY e.id
	`

	var candidates []*domain.NotificationCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, dueDate); err != nil {
		return nil, err
	}

	return candidates, nil
}

func (r *ledgerRepository) ListOverdueCandidates(ctx context.Context) ([]*domain.NotificationCandidate, error) {
	query := `
		SELECT e.id AS entry_id, e.lease_id, l.landlord_id, l.unit_label,
			e.due_date, e.amount_due, l.grace_period_days
		FROM ledger_entries e
		JOIN leases l ON l.id = e.lease_id
		WHERE e.status = 'overdue'
		ORDER BY e.due_date
	`

	var candidates []*domain.NotificationCandidate
	if err := r.db.SelectContext(ctx, &candidates, query); err != nil {
		return nil, err
	}

	return candidates, nil
}
