package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeCandidate is a ledger entry joined with the lease terms the fee sweep
// needs. Candidates are pre-filtered to unpaid entries with no fee applied on
// leases that charge one; the grace-period cutoff is checked in the sweep.
type FeeCandidate struct {
	EntryID         uuid.UUID       `db:"entry_id"`
	LeaseID         uuid.UUID       `db:"lease_id"`
	DueDate         time.Time       `db:"due_date"`
	AmountDue       decimal.Decimal `db:"amount_due"`
	AmountPaid      decimal.Decimal `db:"amount_paid"`
	GracePeriodDays int             `db:"grace_period_days"`
	LateFeeAmount   decimal.Decimal `db:"late_fee_amount"`
}

// NotificationCandidate is a ledger entry joined with the lease context the
// dispatcher needs to compose a message. Tenants are resolved separately.
type NotificationCandidate struct {
	EntryID         uuid.UUID       `db:"entry_id"`
	LeaseID         uuid.UUID       `db:"lease_id"`
	LandlordID      uuid.UUID       `db:"landlord_id"`
	UnitLabel       string          `db:"unit_label"`
	DueDate         time.Time       `db:"due_date"`
	AmountDue       decimal.Decimal `db:"amount_due"`
	GracePeriodDays int             `db:"grace_period_days"`
}

// ExpiringLease backs the lease-expiry notice pass.
type ExpiringLease struct {
	LeaseID    uuid.UUID `db:"lease_id"`
	LandlordID uuid.UUID `db:"landlord_id"`
	UnitLabel  string    `db:"unit_label"`
	EndDate    time.Time `db:"end_date"`
}

// SweepStats is returned by the cron endpoints for observability.
type SweepStats struct {
	RentReminders int `json:"rentReminders"`
	OverdueAlerts int `json:"overdueAlerts"`
	LeaseExpiry   int `json:"leaseExpiry"`
	SMS           int `json:"sms"`
}

func (s SweepStats) Total() int {
	return s.RentReminders + s.OverdueAlerts + s.LeaseExpiry + s.SMS
}
