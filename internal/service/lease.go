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
)

// LeaseService owns lease activation and edits as far as the ledger is
// concerned: creating a lease populates its ledger, extending its end date
// appends the new months. Edits never rewrite already-generated entries.
type LeaseService struct {
	leaseRepo  repository.LeaseRepository
	ledgerRepo repository.LedgerRepository
	generator  *ScheduleGenerator
	defaults   LeaseDefaults
	clock      clock.Clock
	logger     *zap.Logger
}

// LeaseDefaults fills terms the caller omitted.
type LeaseDefaults struct {
	GracePeriodDays int
	RentDueDay      int
}

func NewLeaseService(
	leaseRepo repository.LeaseRepository,
	ledgerRepo repository.LedgerRepository,
	generator *ScheduleGenerator,
	defaults LeaseDefaults,
	clk clock.Clock,
	logger *zap.Logger,
) *LeaseService {
	return &LeaseService{
		leaseRepo:  leaseRepo,
		ledgerRepo: ledgerRepo,
		generator:  generator,
		defaults:   defaults,
		clock:      clk,
		logger:     logger,
	}
}

const dateLayout = "2006-01-02"

// Create validates terms, persists the lease, links its tenant and generates
// the full rent schedule.
func (s *LeaseService) Create(ctx context.Context, req *domain.CreateLeaseRequest) (*domain.Lease, []*domain.LedgerEntry, error) {
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, nil, customError.WrapInvalidLeaseTerms("start date must be YYYY-MM-DD")
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, nil, customError.WrapInvalidLeaseTerms("end date must be YYYY-MM-DD")
	}

	now := s.clock.Now()
	lease := &domain.Lease{
		ID:              uuid.New(),
		LandlordID:      req.LandlordID,
		UnitLabel:       req.UnitLabel,
		Status:          domain.LeaseStatusActive,
		StartDate:       startDate,
		EndDate:         endDate,
		MonthlyRent:     req.MonthlyRent,
		LateFeeAmount:   req.LateFeeAmount,
		GracePeriodDays: req.GracePeriodDays,
		RentDueDay:      req.RentDueDay,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.SecurityDeposit.GreaterThan(decimal.Zero) {
		lease.SecurityDeposit = decimal.NewNullDecimal(req.SecurityDeposit)
	}
	if req.Notes != "" {
		notes := req.Notes
		lease.Notes = &notes
	}
	if lease.GracePeriodDays == 0 {
		lease.GracePeriodDays = s.defaults.GracePeriodDays
	}
	if lease.RentDueDay == 0 {
		lease.RentDueDay = s.defaults.RentDueDay
	}

	if err := validateLeaseTerms(lease); err != nil {
		return nil, nil, err
	}

	if err := s.leaseRepo.Create(ctx, lease); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	if err := s.leaseRepo.LinkTenant(ctx, lease.ID, req.TenantID, true); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	entries, _, err := s.generator.Generate(ctx, lease)
	if err != nil {
		return nil, nil, err
	}

	return lease, entries, nil
}

// Update applies edited terms. Changed rent or fees affect only entries
// generated after the edit; an extended end date appends the missing months
// through the idempotent generator.
func (s *LeaseService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateLeaseRequest) (*domain.Lease, int, error) {
	lease, err := s.leaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, 0, customError.WrapLeaseNotFound(id.String())
	}

	extended := false
	if req.EndDate != nil {
		endDate, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			return nil, 0, customError.WrapInvalidLeaseTerms("end date must be YYYY-MM-DD")
		}
		extended = endDate.After(lease.EndDate)
		lease.EndDate = endDate
	}
	if req.MonthlyRent != nil {
		lease.MonthlyRent = *req.MonthlyRent
	}
	if req.LateFeeAmount != nil {
		lease.LateFeeAmount = *req.LateFeeAmount
	}
	if req.GracePeriodDays != nil {
		lease.GracePeriodDays = *req.GracePeriodDays
	}
	if req.Status != nil {
		lease.Status = *req.Status
	}

	if err := validateLeaseTerms(lease); err != nil {
		return nil, 0, err
	}

	if err := s.leaseRepo.Update(ctx, lease); err != nil {
		return nil, 0, customError.WrapDatabaseError(err)
	}

	inserted := 0
	if extended && lease.Status == domain.LeaseStatusActive {
		_, inserted, err = s.generator.Generate(ctx, lease)
		if err != nil {
			return nil, 0, err
		}
		s.logger.Info("lease extension appended ledger entries",
			zap.String("lease_id", lease.ID.String()),
			zap.Int("inserted", inserted),
		)
	}

	return lease, inserted, nil
}

// Ledger returns the lease's entries ordered by due date.
func (s *LeaseService) Ledger(ctx context.Context, leaseID uuid.UUID) ([]*domain.LedgerEntry, error) {
	if _, err := s.leaseRepo.GetByID(ctx, leaseID); err != nil {
		return nil, customError.WrapLeaseNotFound(leaseID.String())
	}

	entries, err := s.ledgerRepo.ListByLease(ctx, leaseID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return entries, nil
}
