package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LeaseStatusActive     = "active"
	LeaseStatusEnded      = "ended"
	LeaseStatusTerminated = "terminated"
)

// Lease holds the billing terms a ledger is generated from. The engine reads
// leases but never rewrites already-generated ledger entries when terms change.
type Lease struct {
	ID              uuid.UUID           `json:"id" db:"id"`
	LandlordID      uuid.UUID           `json:"landlord_id" db:"landlord_id"`
	UnitLabel       string              `json:"unit_label" db:"unit_label"`
	Status          string              `json:"status" db:"status"`
	StartDate       time.Time           `json:"start_date" db:"start_date"`
	EndDate         time.Time           `json:"end_date" db:"end_date"`
	MonthlyRent     decimal.Decimal     `json:"monthly_rent" db:"monthly_rent"`
	SecurityDeposit decimal.NullDecimal `json:"security_deposit" db:"security_deposit"`
	LateFeeAmount   decimal.Decimal     `json:"late_fee_amount" db:"late_fee_amount"`
	GracePeriodDays int                 `json:"grace_period_days" db:"grace_period_days"`
	RentDueDay      int                 `json:"rent_due_day" db:"rent_due_day"`
	Notes           *string             `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" db:"updated_at"`
}

// Landlord is a read-mostly collaborator; only the payment-readiness flags are
// mutated here, by the gateway bridge when Stripe onboarding completes.
type Landlord struct {
	ID                       uuid.UUID `json:"id" db:"id"`
	Email                    string    `json:"email" db:"email"`
	FullName                 string    `json:"full_name" db:"full_name"`
	StripeAccountID          *string   `json:"stripe_account_id,omitempty" db:"stripe_account_id"`
	StripeOnboardingComplete bool      `json:"stripe_onboarding_complete" db:"stripe_onboarding_complete"`
}

// PaymentReady reports whether tenants may be offered online payment.
func (l *Landlord) PaymentReady() bool {
	return l.StripeAccountID != nil && *l.StripeAccountID != "" && l.StripeOnboardingComplete
}

type Tenant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
}

func (t *Tenant) FullName() string {
	return t.FirstName + " " + t.LastName
}

// DTOs for requests and responses

type CreateLeaseRequest struct {
	LandlordID      uuid.UUID       `json:"landlord_id" validate:"required"`
	TenantID        uuid.UUID       `json:"tenant_id" validate:"required"`
	UnitLabel       string          `json:"unit_label"`
	StartDate       string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string          `json:"end_date" validate:"required,datetime=2006-01-02"`
	MonthlyRent     decimal.Decimal `json:"monthly_rent" validate:"required"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
	LateFeeAmount   decimal.Decimal `json:"late_fee_amount"`
	GracePeriodDays int             `json:"grace_period_days" validate:"gte=0"`
	RentDueDay      int             `json:"rent_due_day" validate:"gte=0,lte=31"`
	Notes           string          `json:"notes"`
}

type UpdateLeaseRequest struct {
	EndDate         *string          `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	MonthlyRent     *decimal.Decimal `json:"monthly_rent,omitempty"`
	LateFeeAmount   *decimal.Decimal `json:"late_fee_amount,omitempty"`
	GracePeriodDays *int             `json:"grace_period_days,omitempty" validate:"omitempty,gte=0"`
	Status          *string          `json:"status,omitempty" validate:"omitempty,oneof=active ended terminated"`
}

type CreateLeaseResponse struct {
	Lease  *Lease         `json:"lease"`
	Ledger []*LedgerEntry `json:"ledger"`
}
