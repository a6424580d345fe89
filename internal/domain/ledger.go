package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EntryStatusUpcoming = "upcoming"
	EntryStatusDue      = "due"
	EntryStatusPartial  = "partial"
	EntryStatusPaid     = "paid"
	EntryStatusOverdue  = "overdue"
)

// LedgerEntry is one billing period's rent obligation for a lease. amount_paid
// is mutated only by payment application, late_fee_applied only by the fee
// sweep; status is always derivable via ComputeStatus.
type LedgerEntry struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	LeaseID        uuid.UUID       `json:"lease_id" db:"lease_id"`
	DueDate        time.Time       `json:"due_date" db:"due_date"`
	AmountDue      decimal.Decimal `json:"amount_due" db:"amount_due"`
	AmountPaid     decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	LateFeeApplied decimal.Decimal `json:"late_fee_applied" db:"late_fee_applied"`
	Status         string          `json:"status" db:"status"`
	Version        int             `json:"version" db:"version"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// TotalDue is the fee-inclusive amount owed for the period.
func (e *LedgerEntry) TotalDue() decimal.Decimal {
	return e.AmountDue.Add(e.LateFeeApplied)
}

// Balance is what remains outstanding. Overpaid entries report zero.
func (e *LedgerEntry) Balance() decimal.Decimal {
	b := e.TotalDue().Sub(e.AmountPaid)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

// Outstanding reports whether the entry can still absorb a payment.
func (e *LedgerEntry) Outstanding() bool {
	switch e.Status {
	case EntryStatusDue, EntryStatusOverdue, EntryStatusPartial:
		return true
	}
	return false
}

// ComputeStatus derives the entry status from its amounts and dates. It is the
// single source of truth: paid beats everything, any payment short of the
// fee-inclusive total is partial, an unpaid entry past its grace period is
// overdue, and otherwise the due date's proximity decides due vs upcoming
// (due once the entry's calendar month arrives).
func (e *LedgerEntry) ComputeStatus(gracePeriodDays int, today time.Time) string {
	if e.AmountPaid.GreaterThanOrEqual(e.TotalDue()) && e.TotalDue().GreaterThan(decimal.Zero) {
		return EntryStatusPaid
	}
	if e.AmountPaid.GreaterThan(decimal.Zero) {
		return EntryStatusPartial
	}
	graceEnd := e.DueDate.AddDate(0, 0, gracePeriodDays)
	if today.After(graceEnd) {
		return EntryStatusOverdue
	}
	if !e.DueDate.After(today) {
		return EntryStatusDue
	}
	if e.DueDate.Year() == today.Year() && e.DueDate.Month() == today.Month() {
		return EntryStatusDue
	}
	return EntryStatusUpcoming
}

type LedgerResponse struct {
	LeaseID uuid.UUID      `json:"lease_id"`
	Ledger  []*LedgerEntry `json:"ledger"`
}
