package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentStatusCompleted = "completed"
	PaymentStatusPending   = "pending"
	PaymentStatusFailed    = "failed"
)

const (
	PaymentTypeRent            = "rent"
	PaymentTypeLateFee         = "late_fee"
	PaymentTypeSecurityDeposit = "security_deposit"
	PaymentTypeOther           = "other"
)

const (
	PaymentMethodCash  = "cash"
	PaymentMethodCheck = "check"
	PaymentMethodACH   = "ach"
	PaymentMethodCard  = "card"
	PaymentMethodZelle = "zelle"
	PaymentMethodVenmo = "venmo"
	PaymentMethodOther = "other"
)

// PaymentRecord is the append-only audit trail of money movements. A record
// with a nil LedgerEntryID is an unmatched payment held for manual landlord
// reconciliation. ExternalRef carries the processor's payment-intent id and is
// the idempotency key for processor-sourced records.
type PaymentRecord struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	LeaseID       *uuid.UUID      `json:"lease_id,omitempty" db:"lease_id"`
	TenantID      *uuid.UUID      `json:"tenant_id,omitempty" db:"tenant_id"`
	LedgerEntryID *uuid.UUID      `json:"ledger_entry_id,omitempty" db:"ledger_entry_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Type          string          `json:"type" db:"type"`
	Method        string          `json:"method" db:"method"`
	Status        string          `json:"status" db:"status"`
	ExternalRef   *string         `json:"external_ref,omitempty" db:"external_ref"`
	ForMonth      *string         `json:"for_month,omitempty" db:"for_month"`
	Notes         *string         `json:"notes,omitempty" db:"notes"`
	PaidAt        time.Time       `json:"paid_at" db:"paid_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// Matched reports whether the payment was applied to a ledger entry.
func (p *PaymentRecord) Matched() bool {
	return p.LedgerEntryID != nil
}

// ApplyPaymentRequest is the single input to payment application, fed by both
// the manual recording endpoint and the gateway bridge.
type ApplyPaymentRequest struct {
	LeaseID       uuid.UUID
	LedgerEntryID *uuid.UUID
	TenantID      *uuid.UUID
	Amount        decimal.Decimal
	Type          string
	Method        string
	ExternalRef   *string
	ForMonth      *string
	Notes         *string
}

// ApplyPaymentResult reports what the applier did. Replayed is true when an
// already-processed external reference was redelivered and nothing changed.
type ApplyPaymentResult struct {
	Payment  *PaymentRecord `json:"payment"`
	Entry    *LedgerEntry   `json:"entry,omitempty"`
	Replayed bool           `json:"replayed"`
	Matched  bool           `json:"matched"`
}

type RecordPaymentRequest struct {
	LeaseID  uuid.UUID       `json:"lease_id" validate:"required"`
	TenantID *uuid.UUID      `json:"tenant_id,omitempty"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Type     string          `json:"type" validate:"omitempty,oneof=rent late_fee security_deposit other"`
	Method   string          `json:"method" validate:"omitempty,oneof=cash check ach card zelle venmo other"`
	ForMonth string          `json:"for_month" validate:"omitempty,datetime=2006-01"`
	Notes    string          `json:"notes"`
}
