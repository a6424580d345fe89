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

func testLease(start, end time.Time) *domain.Lease {
	return &domain.Lease{
		ID:              uuid.New(),
		LandlordID:      uuid.New(),
		Status:          domain.LeaseStatusActive,
		StartDate:       start,
		EndDate:         end,
		MonthlyRent:     decimal.NewFromInt(2000),
		LateFeeAmount:   decimal.NewFromInt(50),
		GracePeriodDays: 5,
		RentDueDay:      1,
	}
}

func TestScheduleGenerate(t *testing.T) {
	today := time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		lease         *domain.Lease
		expectedCount int
		validate      func(*testing.T, []*domain.LedgerEntry)
	}{
		{
			name: "one entry per month inclusive of end month",
			lease: testLease(
				time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
			),
			expectedCount: 12,
			validate: func(t *testing.T, entries []*domain.LedgerEntry) {
				assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), entries[0].DueDate)
				assert.Equal(t, time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC), entries[11].DueDate)
				for _, e := range entries {
					assert.True(t, e.AmountDue.Equal(decimal.NewFromInt(2000)))
					assert.True(t, e.AmountPaid.IsZero())
				}
			},
		},
		{
			name: "due day 31 clamps to short months",
			lease: func() *domain.Lease {
				l := testLease(
					time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
					time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC),
				)
				l.RentDueDay = 31
				return l
			}(),
			expectedCount: 4,
			validate: func(t *testing.T, entries []*domain.LedgerEntry) {
				assert.Equal(t, 31, entries[0].DueDate.Day()) // January
				assert.Equal(t, 28, entries[1].DueDate.Day()) // February
				assert.Equal(t, 31, entries[2].DueDate.Day()) // March
				assert.Equal(t, 30, entries[3].DueDate.Day()) // April
			},
		},
		{
			name: "past and current-month entries start due, later ones upcoming",
			lease: testLease(
				time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
			),
			expectedCount: 4,
			validate: func(t *testing.T, entries []*domain.LedgerEntry) {
				assert.Equal(t, domain.EntryStatusDue, entries[0].Status)      // Dec 2025, past
				assert.Equal(t, domain.EntryStatusDue, entries[1].Status)      // Jan 2026, current month
				assert.Equal(t, domain.EntryStatusUpcoming, entries[2].Status) // Feb
				assert.Equal(t, domain.EntryStatusUpcoming, entries[3].Status) // Mar
			},
		},
		{
			name: "single month lease",
			lease: testLease(
				time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC),
				time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
			),
			expectedCount: 1,
			validate: func(t *testing.T, entries []*domain.LedgerEntry) {
				assert.Equal(t, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), entries[0].DueDate)
			},
		},
		{
			name: "year boundary rollover",
			lease: testLease(
				time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2027, time.February, 28, 0, 0, 0, 0, time.UTC),
			),
			expectedCount: 4,
			validate: func(t *testing.T, entries []*domain.LedgerEntry) {
				assert.Equal(t, 2027, entries[2].DueDate.Year())
				assert.Equal(t, time.January, entries[2].DueDate.Month())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledgerRepo := new(mocks.MockLedgerRepository)
			ledgerRepo.On("InsertEntries", mock.Anything, mock.MatchedBy(func(entries []*domain.LedgerEntry) bool {
				return len(entries) == tt.expectedCount
			})).Return(tt.expectedCount, nil)

			gen := service.NewScheduleGenerator(ledgerRepo, clock.Fixed(today), zap.NewNop())
			entries, inserted, err := gen.Generate(context.Background(), tt.lease)

			assert.NoError(t, err)
			assert.Len(t, entries, tt.expectedCount)
			assert.Equal(t, tt.expectedCount, inserted)
			tt.validate(t, entries)
			ledgerRepo.AssertExpectations(t)
		})
	}
}

func TestScheduleGenerateInvalidTerms(t *testing.T) {
	today := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(*domain.Lease)
	}{
		{"zero rent", func(l *domain.Lease) { l.MonthlyRent = decimal.Zero }},
		{"negative rent", func(l *domain.Lease) { l.MonthlyRent = decimal.NewFromInt(-100) }},
		{"due day zero", func(l *domain.Lease) { l.RentDueDay = 0 }},
		{"due day 32", func(l *domain.Lease) { l.RentDueDay = 32 }},
		{"end before start", func(l *domain.Lease) { l.EndDate = l.StartDate.AddDate(0, 0, -1) }},
		{"negative late fee", func(l *domain.Lease) { l.LateFeeAmount = decimal.NewFromInt(-50) }},
		{"negative grace period", func(l *domain.Lease) { l.GracePeriodDays = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lease := testLease(
				time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
			)
			tt.mutate(lease)

			ledgerRepo := new(mocks.MockLedgerRepository)
			gen := service.NewScheduleGenerator(ledgerRepo, clock.Fixed(today), zap.NewNop())

			_, _, err := gen.Generate(context.Background(), lease)
			assert.Error(t, err)
			ledgerRepo.AssertNotCalled(t, "InsertEntries")
		})
	}
}

// Re-running generation after a lease extension only inserts the new months;
// the repository skips due dates that already exist.
func TestScheduleGenerateIdempotentRerun(t *testing.T) {
	today := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	lease := testLease(
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC),
	)

	ledgerRepo := new(mocks.MockLedgerRepository)
	// 18 periods generated, 6 new ones actually land
	ledgerRepo.On("InsertEntries", mock.Anything, mock.Anything).Return(6, nil)

	gen := service.NewScheduleGenerator(ledgerRepo, clock.Fixed(today), zap.NewNop())
	entries, inserted, err := gen.Generate(context.Background(), lease)

	assert.NoError(t, err)
	assert.Len(t, entries, 18)
	assert.Equal(t, 6, inserted)
}
