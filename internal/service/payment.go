package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rentease/rent-ledger/internal/domain"
	"github.com/rentease/rent-ledger/internal/metrics"
	"github.com/rentease/rent-ledger/internal/repository"
	"github.com/rentease/rent-ledger/pkg/clock"
	customError "github.com/rentease/rent-ledger/pkg/errors"
	"github.com/rentease/rent-ledger/pkg/utils"
)

// PaymentApplier applies a payment to the correct ledger entry. Both the
// manual recording endpoint and the gateway bridge funnel through Apply, so
// replay guarding and oldest-first allocation live in exactly one place.
type PaymentApplier struct {
	ledgerRepo  repository.LedgerRepository
	paymentRepo repository.PaymentRepository
	leaseRepo   repository.LeaseRepository
	clock       clock.Clock
	logger      *zap.Logger
}

func NewPaymentApplier(
	ledgerRepo repository.LedgerRepository,
	paymentRepo repository.PaymentRepository,
	leaseRepo repository.LeaseRepository,
	clk clock.Clock,
	logger *zap.Logger,
) *PaymentApplier {
	return &PaymentApplier{
		ledgerRepo:  ledgerRepo,
		paymentRepo: paymentRepo,
		leaseRepo:   leaseRepo,
		clock:       clk,
		logger:      logger,
	}
}

// Apply resolves the target entry, guards against processor replays, credits
// the entry under a row lock and records the payment. A payment that matches
// no outstanding entry is recorded unmatched for manual reconciliation rather
// than dropped.
func (a *PaymentApplier) Apply(ctx context.Context, req *domain.ApplyPaymentRequest) (*domain.ApplyPaymentResult, error) {
	if !req.Amount.GreaterThan(decimal.Zero) {
		return nil, customError.WrapInvalidAmount(req.Amount.String())
	}

	// Replay guard: the processor may redeliver the same event. A completed
	// record with this external reference means the money already landed.
	if req.ExternalRef != nil && *req.ExternalRef != "" {
		prior, err := a.paymentRepo.GetByExternalRef(ctx, *req.ExternalRef)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		if prior != nil && prior.Status == domain.PaymentStatusCompleted {
			a.logger.Info("replayed payment event ignored",
				zap.String("external_ref", *req.ExternalRef))
			metrics.PaymentsApplied.WithLabelValues(source(req), "replayed").Inc()
			return &domain.ApplyPaymentResult{
				Payment:  prior,
				Replayed: true,
				Matched:  prior.Matched(),
			}, nil
		}
	}

	lease, err := a.leaseRepo.GetByID(ctx, req.LeaseID)
	if err != nil {
		return nil, customError.WrapLeaseNotFound(req.LeaseID.String())
	}

	entry, err := a.resolveEntry(ctx, req)
	if err != nil {
		return nil, err
	}

	payment := a.newRecord(req)

	if entry == nil {
		// Nothing outstanding (or nothing resolvable): record the money for
		// manual landlord reconciliation instead of losing it.
		if err := a.paymentRepo.Create(ctx, payment); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		a.logger.Warn("payment recorded without a matching ledger entry",
			zap.String("lease_id", req.LeaseID.String()),
			zap.String("amount", req.Amount.String()),
		)
		metrics.PaymentsApplied.WithLabelValues(source(req), "unmatched").Inc()
		return &domain.ApplyPaymentResult{Payment: payment, Matched: false}, nil
	}

	payment.LedgerEntryID = &entry.ID
	today := utils.DateOnly(a.clock.Now())

	updated, replayed, err := a.ledgerRepo.CreditEntry(ctx, entry.ID, payment, lease.GracePeriodDays, today)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if replayed {
		// Lost the race against a concurrent delivery of the same event.
		metrics.PaymentsApplied.WithLabelValues(source(req), "replayed").Inc()
		return &domain.ApplyPaymentResult{Payment: payment, Entry: updated, Replayed: true, Matched: true}, nil
	}

	a.logger.Info("payment applied",
		zap.String("lease_id", req.LeaseID.String()),
		zap.String("entry_id", entry.ID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("entry_status", updated.Status),
	)
	metrics.PaymentsApplied.WithLabelValues(source(req), "applied").Inc()

	return &domain.ApplyPaymentResult{Payment: payment, Entry: updated, Matched: true}, nil
}

// resolveEntry picks the ledger entry a payment should land on: an explicit
// entry id wins, then the entry for an explicit billing month if it can still
// absorb a payment, then the oldest outstanding entry for the lease.
func (a *PaymentApplier) resolveEntry(ctx context.Context, req *domain.ApplyPaymentRequest) (*domain.LedgerEntry, error) {
	if req.LedgerEntryID != nil {
		entry, err := a.ledgerRepo.GetByID(ctx, *req.LedgerEntryID)
		if err != nil {
			return nil, customError.WrapEntryNotFound(req.LedgerEntryID.String())
		}
		return entry, nil
	}

	if req.ForMonth != nil && *req.ForMonth != "" {
		monthStart, err := time.Parse("2006-01", *req.ForMonth)
		if err == nil {
			entry, err := a.ledgerRepo.FindByLeaseMonth(ctx, req.LeaseID, monthStart, monthStart.AddDate(0, 1, 0))
			if err != nil {
				return nil, customError.WrapDatabaseError(err)
			}
			if entry != nil && entry.Outstanding() {
				return entry, nil
			}
			// Named month already settled: fall through to the oldest
			// outstanding entry so the money is never silently absorbed.
		}
	}

	entry, err := a.ledgerRepo.OldestOutstanding(ctx, req.LeaseID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return entry, nil
}

func (a *PaymentApplier) newRecord(req *domain.ApplyPaymentRequest) *domain.PaymentRecord {
	now := a.clock.Now()
	leaseID := req.LeaseID

	paymentType := req.Type
	if paymentType == "" {
		paymentType = domain.PaymentTypeRent
	}
	method := req.Method
	if method == "" {
		method = domain.PaymentMethodOther
	}

	return &domain.PaymentRecord{
		ID:          uuid.New(),
		LeaseID:     &leaseID,
		TenantID:    req.TenantID,
		Amount:      req.Amount,
		Type:        paymentType,
		Method:      method,
		Status:      domain.PaymentStatusCompleted,
		ExternalRef: req.ExternalRef,
		ForMonth:    req.ForMonth,
		Notes:       req.Notes,
		PaidAt:      now,
		CreatedAt:   now,
	}
}

// Unmatched lists payments awaiting manual landlord reconciliation.
func (a *PaymentApplier) Unmatched(ctx context.Context) ([]*domain.PaymentRecord, error) {
	payments, err := a.paymentRepo.ListUnmatched(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

func source(req *domain.ApplyPaymentRequest) string {
	if req.ExternalRef != nil && *req.ExternalRef != "" {
		return "processor"
	}
	return "manual"
}
