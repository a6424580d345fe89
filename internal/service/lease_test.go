package service_test

import (
	"context"
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

func newLeaseService(leases *mocks.MockLeaseRepository, ledger *mocks.MockLedgerRepository, today time.Time) *service.LeaseService {
	gen := service.NewScheduleGenerator(ledger, clock.Fixed(today), zap.NewNop())
	return service.NewLeaseService(leases, ledger, gen, service.LeaseDefaults{
		GracePeriodDays: 5,
		RentDueDay:      1,
	}, clock.Fixed(today), zap.NewNop())
}

func TestLeaseCreate(t *testing.T) {
	today := time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC)
	landlordID := uuid.New()
	tenantID := uuid.New()

	t.Run("creates lease, links tenant and generates the ledger", func(t *testing.T) {
		leases := new(mocks.MockLeaseRepository)
		ledger := new(mocks.MockLedgerRepository)

		leases.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.Lease) bool {
			// omitted grace and due day fall back to defaults
			return l.Status == domain.LeaseStatusActive && l.GracePeriodDays == 5 && l.RentDueDay == 1
		})).Return(nil)
		leases.On("LinkTenant", mock.Anything, mock.Anything, tenantID, true).Return(nil)
		ledger.On("InsertEntries", mock.Anything, mock.MatchedBy(func(entries []*domain.LedgerEntry) bool {
			return len(entries) == 12
		})).Return(12, nil)

		svc := newLeaseService(leases, ledger, today)
		lease, entries, err := svc.Create(context.Background(), &domain.CreateLeaseRequest{
			LandlordID:  landlordID,
			TenantID:    tenantID,
			UnitLabel:   "Unit 4B",
			StartDate:   "2026-01-01",
			EndDate:     "2026-12-31",
			MonthlyRent: decimal.NewFromInt(2000),
		})

		assert.NoError(t, err)
		assert.Len(t, entries, 12)
		assert.Equal(t, 5, lease.GracePeriodDays)
		leases.AssertExpectations(t)
		ledger.AssertExpectations(t)
	})

	t.Run("rejects malformed dates before touching the database", func(t *testing.T) {
		leases := new(mocks.MockLeaseRepository)
		ledger := new(mocks.MockLedgerRepository)

		svc := newLeaseService(leases, ledger, today)
		_, _, err := svc.Create(context.Background(), &domain.CreateLeaseRequest{
			LandlordID:  landlordID,
			TenantID:    tenantID,
			StartDate:   "01/01/2026",
			EndDate:     "2026-12-31",
			MonthlyRent: decimal.NewFromInt(2000),
		})

		assert.Error(t, err)
		leases.AssertNotCalled(t, "Create")
	})

	t.Run("rejects end date before start date", func(t *testing.T) {
		leases := new(mocks.MockLeaseRepository)
		ledger := new(mocks.MockLedgerRepository)

		svc := newLeaseService(leases, ledger, today)
		_, _, err := svc.Create(context.Background(), &domain.CreateLeaseRequest{
			LandlordID:  landlordID,
			TenantID:    tenantID,
			StartDate:   "2026-12-01",
			EndDate:     "2026-01-31",
			MonthlyRent: decimal.NewFromInt(2000),
		})

		assert.Error(t, err)
		leases.AssertNotCalled(t, "Create")
	})
}

func TestLeaseUpdate(t *testing.T) {
	today := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	leaseID := uuid.New()

	existing := func() *domain.Lease {
		return &domain.Lease{
			ID:              leaseID,
			Status:          domain.LeaseStatusActive,
			StartDate:       time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			EndDate:         time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
			MonthlyRent:     decimal.NewFromInt(2000),
			LateFeeAmount:   decimal.NewFromInt(50),
			GracePeriodDays: 5,
			RentDueDay:      1,
		}
	}

	t.Run("extension appends only the new months", func(t *testing.T) {
		leases := new(mocks.MockLeaseRepository)
		ledger := new(mocks.MockLedgerRepository)

		leases.On("GetByID", mock.Anything, leaseID).Return(existing(), nil)
		leases.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Lease) bool {
			return l.EndDate.Equal(time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC))
		})).Return(nil)
		// 18 periods regenerated, 6 new ones inserted
		ledger.On("InsertEntries", mock.Anything, mock.MatchedBy(func(entries []*domain.LedgerEntry) bool {
			return len(entries) == 18
		})).Return(6, nil)

		svc := newLeaseService(leases, ledger, today)
		end := "2027-06-30"
		lease, inserted, err := svc.Update(context.Background(), leaseID, &domain.UpdateLeaseRequest{EndDate: &end})

		assert.NoError(t, err)
		assert.Equal(t, 6, inserted)
		assert.Equal(t, time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC), lease.EndDate)
		ledger.AssertExpectations(t)
	})

	t.Run("rent change alone does not regenerate", func(t *testing.T) {
		leases := new(mocks.MockLeaseRepository)
		ledger := new(mocks.MockLedgerRepository)

		leases.On("GetByID", mock.Anything, leaseID).Return(existing(), nil)
		leases.On("Update", mock.Anything, mock.Anything).Return(nil)

		svc := newLeaseService(leases, ledger, today)
		rent := decimal.NewFromInt(2200)
		_, inserted, err := svc.Update(context.Background(), leaseID, &domain.UpdateLeaseRequest{MonthlyRent: &rent})

		assert.NoError(t, err)
		assert.Equal(t, 0, inserted)
		ledger.AssertNotCalled(t, "InsertEntries")
	})

	t.Run("extension on a terminated lease does not regenerate", func(t *testing.T) {
		leases := new(mocks.MockLeaseRepository)
		ledger := new(mocks.MockLedgerRepository)

		leases.On("GetByID", mock.Anything, leaseID).Return(existing(), nil)
		leases.On("Update", mock.Anything, mock.Anything).Return(nil)

		svc := newLeaseService(leases, ledger, today)
		end := "2027-06-30"
		status := domain.LeaseStatusTerminated
		_, inserted, err := svc.Update(context.Background(), leaseID, &domain.UpdateLeaseRequest{
			EndDate: &end,
			Status:  &status,
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, inserted)
		ledger.AssertNotCalled(t, "InsertEntries")
	})
}
