package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rentease/rent-ledger/internal/domain"
	"github.com/rentease/rent-ledger/internal/repository"
	"github.com/rentease/rent-ledger/pkg/clock"
	customError "github.com/rentease/rent-ledger/pkg/errors"
	"github.com/rentease/rent-ledger/pkg/utils"
)

// ScheduleGenerator turns lease terms into the ordered sequence of monthly
// rent obligations. Re-running it for a lease is safe: existing due dates are
// skipped, so a lease extension only appends the new months.
type ScheduleGenerator struct {
	ledgerRepo repository.LedgerRepository
	clock      clock.Clock
	logger     *zap.Logger
}

func NewScheduleGenerator(ledgerRepo repository.LedgerRepository, clk clock.Clock, logger *zap.Logger) *ScheduleGenerator {
	return &ScheduleGenerator{
		ledgerRepo: ledgerRepo,
		clock:      clk,
		logger:     logger,
	}
}

// Generate builds and persists one ledger entry per calendar month from the
// month containing the lease start through the month containing the lease end,
// the due day clamped to each month's length. Returns the full generated
// sequence and the number of rows actually inserted.
func (g *ScheduleGenerator) Generate(ctx context.Context, lease *domain.Lease) ([]*domain.LedgerEntry, int, error) {
	if err := validateLeaseTerms(lease); err != nil {
		return nil, 0, err
	}

	today := utils.DateOnly(g.clock.Now())
	entries := g.buildEntries(lease, today)

	inserted, err := g.ledgerRepo.InsertEntries(ctx, entries)
	if err != nil {
		return nil, 0, customError.WrapDatabaseError(err)
	}

	g.logger.Info("generated rent schedule",
		zap.String("lease_id", lease.ID.String()),
		zap.Int("periods", len(entries)),
		zap.Int("inserted", inserted),
	)

	return entries, inserted, nil
}

func (g *ScheduleGenerator) buildEntries(lease *domain.Lease, today time.Time) []*domain.LedgerEntry {
	var entries []*domain.LedgerEntry

	year, month := lease.StartDate.Year(), lease.StartDate.Month()
	endYear, endMonth := lease.EndDate.Year(), lease.EndDate.Month()

	for {
		dueDate := utils.DueDateInMonth(year, month, lease.RentDueDay)

		status := domain.EntryStatusUpcoming
		if !dueDate.After(today) || utils.SameMonth(dueDate, today) {
			status = domain.EntryStatusDue
		}

		now := g.clock.Now()
		entries = append(entries, &domain.LedgerEntry{
			ID:             uuid.New(),
			LeaseID:        lease.ID,
			DueDate:        dueDate,
			AmountDue:      lease.MonthlyRent,
			AmountPaid:     decimal.Zero,
			LateFeeApplied: decimal.Zero,
			Status:         status,
			CreatedAt:      now,
			UpdatedAt:      now,
		})

		if year == endYear && month == endMonth {
			break
		}
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}

	return entries
}

func validateLeaseTerms(lease *domain.Lease) error {
	if !lease.MonthlyRent.GreaterThan(decimal.Zero) {
		return customError.WrapInvalidLeaseTerms("monthly rent must be greater than zero")
	}
	if lease.RentDueDay < 1 || lease.RentDueDay > 31 {
		return customError.WrapInvalidLeaseTerms("rent due day must be between 1 and 31")
	}
	if lease.EndDate.Before(lease.StartDate) {
		return customError.WrapInvalidLeaseTerms("lease end date precedes start date")
	}
	if lease.LateFeeAmount.IsNegative() {
		return customError.WrapInvalidLeaseTerms("late fee amount must not be negative")
	}
	if lease.GracePeriodDays < 0 {
		return customError.WrapInvalidLeaseTerms("grace period days must not be negative")
	}
	return nil
}
