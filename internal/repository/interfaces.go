package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentease/rent-ledger/internal/domain"
)

// LeaseRepository defines the interface for lease data operations. Lease CRUD
// forms live elsewhere; the engine reads terms and links tenants.
type LeaseRepository interface {
	// Create creates a new lease
	Create(ctx context.Context, lease *domain.Lease) error

	// GetByID retrieves a lease by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lease, error)

	// Update persists edited lease terms
	Update(ctx context.Context, lease *domain.Lease) error

	// LinkTenant attaches a tenant to a lease
	LinkTenant(ctx context.Context, leaseID, tenantID uuid.UUID, isPrimary bool) error

	// TenantsByLease returns every tenant linked to the lease
	TenantsByLease(ctx context.Context, leaseID uuid.UUID) ([]*domain.Tenant, error)

	// ListExpiring returns active leases ending exactly on endDate
	ListExpiring(ctx context.Context, endDate time.Time) ([]*domain.ExpiringLease, error)
}

// LandlordRepository exposes the payment-readiness state the gateway mutates.
type LandlordRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Landlord, error)

	GetByStripeAccount(ctx context.Context, accountID string) (*domain.Landlord, error)

	// SetOnboardingComplete flips the payment-readiness flag for the landlord
	// owning the given Stripe account
	SetOnboardingComplete(ctx context.Context, accountID string, complete bool) error
}

// LedgerRepository defines the interface for ledger entry operations. All
// mutations to a single entry run under a row lock so manual payments,
// processor payments and the fee sweep cannot interleave.
type LedgerRepository interface {
	// InsertEntries inserts schedule entries, skipping due dates that already
	// exist for the lease. Returns the number of rows actually inserted.
	InsertEntries(ctx context.Context, entries []*domain.LedgerEntry) (int, error)

	// GetByID retrieves a ledger entry by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error)

	// ListByLease returns all entries for a lease ordered by due date
	ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*domain.LedgerEntry, error)

	// OldestOutstanding returns the earliest due/overdue/partial entry for the
	// lease, or nil when nothing is outstanding.
	OldestOutstanding(ctx context.Context, leaseID uuid.UUID) (*domain.LedgerEntry, error)

	// FindByLeaseMonth resolves the entry whose due date falls inside the
	// given billing month.
	FindByLeaseMonth(ctx context.Context, leaseID uuid.UUID, monthStart, nextMonth time.Time) (*domain.LedgerEntry, error)

	// CreditEntry applies a payment to an entry inside one transaction: row
	// lock, replay check on the payment's external reference, amount_paid
	// increment, status recompute, payment insert. Returns replayed=true and
	// no mutation when the external reference was already processed.
	CreditEntry(ctx context.Context, entryID uuid.UUID, payment *domain.PaymentRecord, gracePeriodDays int, today time.Time) (*domain.LedgerEntry, bool, error)

	// AssessLateFee stamps the fee onto the entry under a row lock. Returns
	// false without mutating when a fee was already applied.
	AssessLateFee(ctx context.Context, entryID uuid.UUID, fee decimal.Decimal, gracePeriodDays int, today time.Time) (bool, error)

	// RefreshStatuses rolls stored statuses forward in bulk: upcoming entries
	// whose month has arrived become due, unpaid entries past grace become
	// overdue. Idempotent.
	RefreshStatuses(ctx context.Context, today time.Time) (int64, error)

	// ListFeeCandidates returns unpaid, fee-free entries on fee-charging
	// leases with due dates before today.
	ListFeeCandidates(ctx context.Context, today time.Time) ([]*domain.FeeCandidate, error)

	// ListReminderCandidates returns upcoming/due entries due exactly on dueDate
	ListReminderCandidates(ctx context.Context, dueDate time.Time) ([]*domain.NotificationCandidate, error)

	// ListOverdueCandidates returns entries currently marked overdue
	ListOverdueCandidates(ctx context.Context) ([]*domain.NotificationCandidate, error)
}

// PaymentRepository defines the interface for the payment audit trail.
type PaymentRepository interface {
	// Create inserts a payment record. Used for unmatched and failed payments;
	// matched payments are inserted by LedgerRepository.CreditEntry.
	Create(ctx context.Context, payment *domain.PaymentRecord) error

	// GetByExternalRef looks up a processor-sourced record by its idempotency key
	GetByExternalRef(ctx context.Context, externalRef string) (*domain.PaymentRecord, error)

	// ListUnmatched returns payments awaiting manual landlord reconciliation
	ListUnmatched(ctx context.Context) ([]*domain.PaymentRecord, error)

	// ListByLease returns all payments recorded against a lease
	ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*domain.PaymentRecord, error)
}

// NotificationRepository persists the dedup log.
type NotificationRepository interface {
	// Insert writes the log entry unless its dedup key already exists.
	// Returns true only when this call inserted the row.
	Insert(ctx context.Context, entry *domain.NotificationLogEntry) (bool, error)
}
