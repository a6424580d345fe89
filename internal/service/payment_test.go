package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/rentease/rent-ledger/internal/domain"
	"github.com/rentease/rent-ledger/internal/mocks"
	"github.com/rentease/rent-ledger/internal/service"
	"github.com/rentease/rent-ledger/pkg/clock"
)

func strPtr(s string) *string { return &s }

func newApplier(ledger *mocks.MockLedgerRepository, payments *mocks.MockPaymentRepository, leases *mocks.MockLeaseRepository, today time.Time) *service.PaymentApplier {
	return service.NewPaymentApplier(ledger, payments, leases, clock.Fixed(today), zap.NewNop())
}

func TestApplyPayment(t *testing.T) {
	today := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	leaseID := uuid.New()
	lease := &domain.Lease{ID: leaseID, GracePeriodDays: 5, Status: domain.LeaseStatusActive}

	t.Run("rejects non-positive amount", func(t *testing.T) {
		applier := newApplier(new(mocks.MockLedgerRepository), new(mocks.MockPaymentRepository), new(mocks.MockLeaseRepository), today)

		_, err := applier.Apply(context.Background(), &domain.ApplyPaymentRequest{
			LeaseID: leaseID,
			Amount:  decimal.Zero,
		})
		assert.Error(t, err)

		_, err = applier.Apply(context.Background(), &domain.ApplyPaymentRequest{
			LeaseID: leaseID,
			Amount:  decimal.NewFromInt(-100),
		})
		assert.Error(t, err)
	})

	t.Run("applies to oldest outstanding entry", func(t *testing.T) {
		ledger := new(mocks.MockLedgerRepository)
		payments := new(mocks.MockPaymentRepository)
		leases := new(mocks.MockLeaseRepository)

		oldest := &domain.LedgerEntry{
			ID:        uuid.New(),
			LeaseID:   leaseID,
			DueDate:   time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
			AmountDue: decimal.NewFromInt(2000),
			Status:    domain.EntryStatusOverdue,
		}
		credited := &domain.LedgerEntry{
			ID:         oldest.ID,
			LeaseID:    leaseID,
			AmountDue:  decimal.NewFromInt(2000),
			AmountPaid: decimal.NewFromInt(2000),
			Status:     domain.EntryStatusPaid,
		}

		leases.On("GetByID", mock.Anything, leaseID).Return(lease, nil)
		ledger.On("OldestOutstanding", mock.Anything, leaseID).Return(oldest, nil)
		ledger.On("CreditEntry", mock.Anything, oldest.ID, mock.MatchedBy(func(p *domain.PaymentRecord) bool {
			return p.LedgerEntryID != nil && *p.LedgerEntryID == oldest.ID &&
				p.Amount.Equal(decimal.NewFromInt(2000)) &&
				p.Status == domain.PaymentStatusCompleted
		}), 5, today).Return(credited, false, nil)

		applier := newApplier(ledger, payments, leases, today)
		result, err := applier.Apply(context.Background(), &domain.ApplyPaymentRequest{
			LeaseID: leaseID,
			Amount:  decimal.NewFromInt(2000),
			Method:  domain.PaymentMethodCheck,
		})

		assert.NoError(t, err)
		assert.True(t, result.Matched)
		assert.False(t, result.Replayed)
		assert.Equal(t, domain.EntryStatusPaid, result.Entry.Status)
		ledger.AssertExpectations(t)
	})

	t.Run("explicit entry id wins over oldest outstanding", func(t *testing.T) {
		ledger := new(mocks.MockLedgerRepository)
		payments := new(mocks.MockPaymentRepository)
		leases := new(mocks.MockLeaseRepository)

		entryID := uuid.New()
		entry := &domain.LedgerEntry{ID: entryID, LeaseID: leaseID, AmountDue: decimal.NewFromInt(2000), Status: domain.EntryStatusDue}

		leases.On("GetByID", mock.Anything, leaseID).Return(lease, nil)
		ledger.On("GetByID", mock.Anything, entryID).Return(entry, nil)
		ledger.On("CreditEntry", mock.Anything, entryID, mock.Anything, 5, today).Return(entry, false, nil)

		applier := newApplier(ledger, payments, leases, today)
		result, err := applier.Apply(context.Background(), &domain.ApplyPaymentRequest{
			LeaseID:       leaseID,
			LedgerEntryID: &entryID,
			Amount:        decimal.NewFromInt(500),
		})

		assert.NoError(t, err)
		assert.True(t, result.Matched)
		ledger.AssertNotCalled(t, "OldestOutstanding")
	})

	t.Run("replayed external reference short-circuits", func(t *testing.T) {
		ledger := new(mocks.MockLedgerRepository)
		payments := new(mocks.MockPaymentRepository)
		leases := new(mocks.MockLeaseRepository)

		ref := "pi_abc123"
		entryID := uuid.New()
		prior := &domain.PaymentRecord{
			ID:            uuid.New(),
			LedgerEntryID: &entryID,
			Status:        domain.PaymentStatusCompleted,
			ExternalRef:   &ref,
		}
		payments.On("GetByExternalRef", mock.Anything, ref).Return(prior, nil)

		applier := newApplier(ledger, payments, leases, today)
		result, err := applier.Apply(context.Background(), &domain.ApplyPaymentRequest{
			LeaseID:     leaseID,
			Amount:      decimal.NewFromInt(2000),
			ExternalRef: &ref,
		})

		assert.NoError(t, err)
		assert.True(t, result.Replayed)
		assert.True(t, result.Matched)
		leases.AssertNotCalled(t, "GetByID")
		ledger.AssertNotCalled(t, "CreditEntry")
	})

	t.Run("prior failed record does not block a retried intent", func(t *testing.T) {
		ledger := new(mocks.MockLedgerRepository)
		payments := new(mocks.MockPaymentRepository)
		leases := new(mocks.MockLeaseRepository)

		ref := "pi_retry"
		failed := &domain.PaymentRecord{ID: uuid.New(), Status: domain.PaymentStatusFailed, ExternalRef: &ref}
		entry := &domain.LedgerEntry{ID: uuid.New(), LeaseID: leaseID, AmountDue: decimal.NewFromInt(2000), Status: domain.EntryStatusDue}

		payments.On("GetByExternalRef", mock.Anything, ref).Return(failed, nil)
		leases.On("GetByID", mock.Anything, leaseID).Return(lease, nil)
		ledger.On("OldestOutstanding", mock.Anything, leaseID).Return(entry, nil)
		ledger.On("CreditEntry", mock.Anything, entry.ID, mock.Anything, 5, today).Return(entry, false, nil)

		applier := newApplier(ledger, payments, leases, today)
		result, err := applier.Apply(context.Background(), &domain.ApplyPaymentRequest{
			LeaseID:     leaseID,
			Amount:      decimal.NewFromInt(2000),
			ExternalRef: &ref,
		})

		assert.NoError(t, err)
		assert.False(t, result.Replayed)
		assert.True(t, result.Matched)
	})

	t.Run("no outstanding entry records unmatched payment", func(t *testing.T) {
		ledger := new(mocks.MockLedgerRepository)
		payments := new(mocks.MockPaymentRepository)
		leases := new(mocks.MockLeaseRepository)

		leases.On("GetByID", mock.Anything, leaseID).Return(lease, nil)
		ledger.On("OldestOutstanding", mock.Anything, leaseID).Return(nil, nil)
		payments.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.PaymentRecord) bool {
			return p.LedgerEntryID == nil && p.Amount.Equal(decimal.NewFromInt(2000))
		})).Return(nil)

		applier := newApplier(ledger, payments, leases, today)
		result, err := applier.Apply(context.Background(), &domain.ApplyPaymentRequest{
			LeaseID: leaseID,
			Amount:  decimal.NewFromInt(2000),
		})

		assert.NoError(t, err)
		assert.False(t, result.Matched)
		assert.False(t, result.Replayed)
		payments.AssertExpectations(t)
		ledger.AssertNotCalled(t, "CreditEntry")
	})

	t.Run("settled named month falls through to oldest outstanding", func(t *testing.T) {
		ledger := new(mocks.MockLedgerRepository)
		payments := new(mocks.MockPaymentRepository)
		leases := new(mocks.MockLeaseRepository)

		monthStart := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
		settled := &domain.LedgerEntry{ID: uuid.New(), Status: domain.EntryStatusPaid}
		oldest := &domain.LedgerEntry{ID: uuid.New(), LeaseID: leaseID, AmountDue: decimal.NewFromInt(2000), Status: domain.EntryStatusDue}

		leases.On("GetByID", mock.Anything, leaseID).Return(lease, nil)
		ledger.On("FindByLeaseMonth", mock.Anything, leaseID, monthStart, monthStart.AddDate(0, 1, 0)).Return(settled, nil)
		ledger.On("OldestOutstanding", mock.Anything, leaseID).Return(oldest, nil)
		ledger.On("CreditEntry", mock.Anything, oldest.ID, mock.Anything, 5, today).Return(oldest, false, nil)

		applier := newApplier(ledger, payments, leases, today)
		result, err := applier.Apply(context.Background(), &domain.ApplyPaymentRequest{
			LeaseID:  leaseID,
			Amount:   decimal.NewFromInt(2000),
			ForMonth: strPtr("2025-12"),
		})

		assert.NoError(t, err)
		assert.True(t, result.Matched)
		ledger.AssertExpectations(t)
	})

	t.Run("unknown lease", func(t *testing.T) {
		ledger := new(mocks.MockLedgerRepository)
		payments := new(mocks.MockPaymentRepository)
		leases := new(mocks.MockLeaseRepository)

		leases.On("GetByID", mock.Anything, leaseID).Return(nil, errors.New("sql: no rows in result set"))

		applier := newApplier(ledger, payments, leases, today)
		_, err := applier.Apply(context.Background(), &domain.ApplyPaymentRequest{
			LeaseID: leaseID,
			Amount:  decimal.NewFromInt(2000),
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "LEASE_NOT_FOUND")
	})
}
