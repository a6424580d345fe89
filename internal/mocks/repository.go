package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/rentease/rent-ledger/internal/domain"
)

type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) Create(ctx context.Context, lease *domain.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockLeaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lease), args.Error(1)
}

func (m *MockLeaseRepository) Update(ctx context.Context, lease *domain.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockLeaseRepository) LinkTenant(ctx context.Context, leaseID, tenantID uuid.UUID, isPrimary bool) error {
	args := m.Called(ctx, leaseID, tenantID, isPrimary)
	return args.Error(0)
}

func (m *MockLeaseRepository) TenantsByLease(ctx context.Context, leaseID uuid.UUID) ([]*domain.Tenant, error) {
	args := m.Called(ctx, leaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Tenant), args.Error(1)
}

func (m *MockLeaseRepository) ListExpiring(ctx context.Context, endDate time.Time) ([]*domain.ExpiringLease, error) {
	args := m.Called(ctx, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ExpiringLease), args.Error(1)
}

type MockLandlordRepository struct {
	mock.Mock
}

func (m *MockLandlordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Landlord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Landlord), args.Error(1)
}

func (m *MockLandlordRepository) GetByStripeAccount(ctx context.Context, accountID string) (*domain.Landlord, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Landlord), args.Error(1)
}

func (m *MockLandlordRepository) SetOnboardingComplete(ctx context.Context, accountID string, complete bool) error {
	args := m.Called(ctx, accountID, complete)
	return args.Error(0)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) InsertEntries(ctx context.Context, entries []*domain.LedgerEntry) (int, error) {
	args := m.Called(ctx, entries)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*domain.LedgerEntry, error) {
	args := m.Called(ctx, leaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) OldestOutstanding(ctx context.Context, leaseID uuid.UUID) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, leaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindByLeaseMonth(ctx context.Context, leaseID uuid.UUID, monthStart, nextMonth time.Time) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, leaseID, monthStart, nextMonth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) CreditEntry(ctx context.Context, entryID uuid.UUID, payment *domain.PaymentRecord, gracePeriodDays int, today time.Time) (*domain.LedgerEntry, bool, error) {
	args := m.Called(ctx, entryID, payment, gracePeriodDays, today)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Bool(1), args.Error(2)
}

func (m *MockLedgerRepository) AssessLateFee(ctx context.Context, entryID uuid.UUID, fee decimal.Decimal, gracePeriodDays int, today time.Time) (bool, error) {
	args := m.Called(ctx, entryID, fee, gracePeriodDays, today)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) RefreshStatuses(ctx context.Context, today time.Time) (int64, error) {
	args := m.Called(ctx, today)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) ListFeeCandidates(ctx context.Context, today time.Time) ([]*domain.FeeCandidate, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FeeCandidate), args.Error(1)
}

func (m *MockLedgerRepository) ListReminderCandidates(ctx context.Context, dueDate time.Time) ([]*domain.NotificationCandidate, error) {
	args := m.Called(ctx, dueDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.NotificationCandidate), args.Error(1)
}

func (m *MockLedgerRepository) ListOverdueCandidates(ctx context.Context) ([]*domain.NotificationCandidate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.NotificationCandidate), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.PaymentRecord) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByExternalRef(ctx context.Context, externalRef string) (*domain.PaymentRecord, error) {
	args := m.Called(ctx, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRepository) ListUnmatched(ctx context.Context) ([]*domain.PaymentRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRepository) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*domain.PaymentRecord, error) {
	args := m.Called(ctx, leaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentRecord), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Insert(ctx context.Context, entry *domain.NotificationLogEntry) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}
