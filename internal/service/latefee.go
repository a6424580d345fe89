package service

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rentease/rent-ledger/internal/metrics"
	"github.com/rentease/rent-ledger/internal/repository"
	"github.com/rentease/rent-ledger/pkg/clock"
	customError "github.com/rentease/rent-ledger/pkg/errors"
	"github.com/rentease/rent-ledger/pkg/utils"
)

// LateFeeAssessor is the daily fee sweep. It is idempotent: a fee lands on an
// entry exactly once, so same-day reruns and overlapping invocations are safe.
type LateFeeAssessor struct {
	ledgerRepo repository.LedgerRepository
	locker     *SweepLocker
	clock      clock.Clock
	logger     *zap.Logger
}

func NewLateFeeAssessor(ledgerRepo repository.LedgerRepository, locker *SweepLocker, clk clock.Clock, logger *zap.Logger) *LateFeeAssessor {
	return &LateFeeAssessor{
		ledgerRepo: ledgerRepo,
		locker:     locker,
		clock:      clk,
		logger:     logger,
	}
}

// Run rolls entry statuses forward, then stamps the lease's flat late fee onto
// every unpaid entry past its grace period that has no fee yet. Entries are
// processed independently: a failure on one is logged and the sweep moves on,
// returning the count of fees actually applied.
func (a *LateFeeAssessor) Run(ctx context.Context) (int, error) {
	release, acquired, err := a.locker.TryLock(ctx, "late-fees")
	if err != nil {
		return 0, customError.WrapCacheError(err)
	}
	if !acquired {
		a.logger.Info("late fee sweep already running, skipping")
		return 0, nil
	}
	defer release()

	timer := prometheus.NewTimer(metrics.SweepDuration.WithLabelValues("late_fees"))
	defer timer.ObserveDuration()

	today := utils.DateOnly(a.clock.Now())

	refreshed, err := a.ledgerRepo.RefreshStatuses(ctx, today)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}
	if refreshed > 0 {
		a.logger.Info("ledger statuses rolled forward", zap.Int64("entries", refreshed))
	}

	candidates, err := a.ledgerRepo.ListFeeCandidates(ctx, today)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	applied := 0
	for _, c := range candidates {
		if !today.After(utils.GraceEnd(c.DueDate, c.GracePeriodDays)) {
			continue
		}

		ok, err := a.ledgerRepo.AssessLateFee(ctx, c.EntryID, c.LateFeeAmount, c.GracePeriodDays, today)
		if err != nil {
			// Partial progress is fine; the next run picks this entry up again.
			a.logger.Error("late fee assessment failed",
				zap.String("entry_id", c.EntryID.String()),
				zap.Error(err),
			)
			continue
		}
		if ok {
			applied++
			metrics.LateFeesApplied.Inc()
		}
	}

	a.logger.Info("late fee sweep complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("applied", applied),
	)

	return applied, nil
}
