package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rentease/rent-ledger/internal/domain"
	"github.com/rentease/rent-ledger/internal/metrics"
	"github.com/rentease/rent-ledger/internal/notifier"
	"github.com/rentease/rent-ledger/internal/repository"
	"github.com/rentease/rent-ledger/pkg/clock"
	customError "github.com/rentease/rent-ledger/pkg/errors"
	"github.com/rentease/rent-ledger/pkg/utils"
)

// DispatcherConfig carries the business knobs for the notification sweep.
type DispatcherConfig struct {
	ReminderLeadDays int
	ExpiryLeadDays   int
	AppBaseURL       string
}

// NotificationDispatcher is the daily notification sweep: rent reminders ahead
// of the due date, overdue alerts, and lease expiry notices. Every candidate
// is guarded by a dedup-key insert before the provider call, so repeated runs
// never double-send and a crash mid-sweep under-sends at worst.
type NotificationDispatcher struct {
	ledgerRepo repository.LedgerRepository
	leaseRepo  repository.LeaseRepository
	notifRepo  repository.NotificationRepository
	email      notifier.EmailSender
	sms        notifier.SMSSender
	locker     *SweepLocker
	clock      clock.Clock
	cfg        DispatcherConfig
	logger     *zap.Logger
}

func NewNotificationDispatcher(
	ledgerRepo repository.LedgerRepository,
	leaseRepo repository.LeaseRepository,
	notifRepo repository.NotificationRepository,
	email notifier.EmailSender,
	sms notifier.SMSSender,
	locker *SweepLocker,
	clk clock.Clock,
	cfg DispatcherConfig,
	logger *zap.Logger,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		ledgerRepo: ledgerRepo,
		leaseRepo:  leaseRepo,
		notifRepo:  notifRepo,
		email:      email,
		sms:        sms,
		locker:     locker,
		clock:      clk,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes the three passes and reports how many notices actually went
// out. Failures on individual candidates are logged and skipped; the sweep
// always runs to the end of its candidate list.
func (d *NotificationDispatcher) Run(ctx context.Context) (domain.SweepStats, error) {
	var stats domain.SweepStats

	release, acquired, err := d.locker.TryLock(ctx, "notifications")
	if err != nil {
		return stats, customError.WrapCacheError(err)
	}
	if !acquired {
		d.logger.Info("notification sweep already running, skipping")
		return stats, nil
	}
	defer release()

	timer := prometheus.NewTimer(metrics.SweepDuration.WithLabelValues("notifications"))
	defer timer.ObserveDuration()

	today := utils.DateOnly(d.clock.Now())

	d.runReminders(ctx, today, &stats)
	d.runOverdueAlerts(ctx, today, &stats)
	d.runExpiryNotices(ctx, today, &stats)

	d.logger.Info("notification sweep complete",
		zap.Int("rent_reminders", stats.RentReminders),
		zap.Int("overdue_alerts", stats.OverdueAlerts),
		zap.Int("lease_expiry", stats.LeaseExpiry),
		zap.Int("sms", stats.SMS),
	)

	return stats, nil
}

func (d *NotificationDispatcher) runReminders(ctx context.Context, today time.Time, stats *domain.SweepStats) {
	reminderDate := today.AddDate(0, 0, d.cfg.ReminderLeadDays)
	candidates, err := d.ledgerRepo.ListReminderCandidates(ctx, reminderDate)
	if err != nil {
		d.logger.Error("listing reminder candidates failed", zap.Error(err))
		return
	}

	for _, c := range candidates {
		tenants, err := d.leaseRepo.TenantsByLease(ctx, c.LeaseID)
		if err != nil {
			d.logger.Error("resolving tenants failed",
				zap.String("lease_id", c.LeaseID.String()), zap.Error(err))
			continue
		}

		for _, tenant := range tenants {
			if tenant.Email != nil {
				email := notifier.RentReminderEmail(tenant.FullName(), c.AmountDue, c.DueDate, d.paymentLink(c.EntryID))
				if d.deliverEmail(ctx, logEntry(c.LandlordID, tenant.ID, *tenant.Email, domain.NotificationRentReminder,
					domain.ReminderDedupKey(c.EntryID, tenant.ID), email.Subject, email.HTML)) {
					stats.RentReminders++
				}
			}

			if tenant.Phone != nil {
				body := notifier.RentReminderSMS(tenant.FullName(), c.AmountDue, c.DueDate)
				if d.deliverSMS(ctx, smsLogEntry(c.LandlordID, tenant.ID, *tenant.Phone, domain.NotificationRentReminder,
					domain.ReminderSMSDedupKey(c.EntryID, tenant.ID), "Rent Reminder", body)) {
					stats.SMS++
				}
			}
		}
	}
}

func (d *NotificationDispatcher) runOverdueAlerts(ctx context.Context, today time.Time, stats *domain.SweepStats) {
	candidates, err := d.ledgerRepo.ListOverdueCandidates(ctx)
	if err != nil {
		d.logger.Error("listing overdue candidates failed", zap.Error(err))
		return
	}

	for _, c := range candidates {
		// Entries flagged overdue before their grace period elapsed (edge of
		// a status refresh) are left for a later run.
		if !today.After(utils.GraceEnd(c.DueDate, c.GracePeriodDays)) {
			continue
		}

		tenants, err := d.leaseRepo.TenantsByLease(ctx, c.LeaseID)
		if err != nil {
			d.logger.Error("resolving tenants failed",
				zap.String("lease_id", c.LeaseID.String()), zap.Error(err))
			continue
		}

		for _, tenant := range tenants {
			if tenant.Email != nil {
				email := notifier.OverdueRentEmail(tenant.FullName(), c.AmountDue, c.DueDate, d.paymentLink(c.EntryID))
				if d.deliverEmail(ctx, logEntry(c.LandlordID, tenant.ID, *tenant.Email, domain.NotificationOverdueAlert,
					domain.OverdueDedupKey(c.EntryID, tenant.ID), email.Subject, email.HTML)) {
					stats.OverdueAlerts++
				}
			}

			if tenant.Phone != nil {
				body := notifier.OverdueAlertSMS(tenant.FullName(), c.AmountDue, c.DueDate)
				if d.deliverSMS(ctx, smsLogEntry(c.LandlordID, tenant.ID, *tenant.Phone, domain.NotificationOverdueAlert,
					domain.OverdueSMSDedupKey(c.EntryID, tenant.ID), "Overdue Rent", body)) {
					stats.SMS++
				}
			}
		}
	}
}

func (d *NotificationDispatcher) runExpiryNotices(ctx context.Context, today time.Time, stats *domain.SweepStats) {
	expiryDate := today.AddDate(0, 0, d.cfg.ExpiryLeadDays)
	leases, err := d.leaseRepo.ListExpiring(ctx, expiryDate)
	if err != nil {
		d.logger.Error("listing expiring leases failed", zap.Error(err))
		return
	}

	for _, lease := range leases {
		tenants, err := d.leaseRepo.TenantsByLease(ctx, lease.LeaseID)
		if err != nil {
			d.logger.Error("resolving tenants failed",
				zap.String("lease_id", lease.LeaseID.String()), zap.Error(err))
			continue
		}

		for _, tenant := range tenants {
			if tenant.Email == nil {
				continue
			}
			email := notifier.LeaseExpiryEmail(tenant.FullName(), lease.UnitLabel, lease.EndDate)
			if d.deliverEmail(ctx, logEntry(lease.LandlordID, tenant.ID, *tenant.Email, domain.NotificationLeaseExpiry,
				domain.LeaseExpiryDedupKey(lease.LeaseID, tenant.ID), email.Subject, email.HTML)) {
				stats.LeaseExpiry++
			}
		}
	}
}

// deliverEmail inserts the dedup-keyed log row and sends only on first
// insert. The log row is not rolled back on a provider failure: under-sending
// is the accepted failure mode for billing-adjacent notices.
func (d *NotificationDispatcher) deliverEmail(ctx context.Context, entry *domain.NotificationLogEntry) bool {
	entry.SentAt = d.clock.Now()

	inserted, err := d.notifRepo.Insert(ctx, entry)
	if err != nil {
		d.logger.Error("notification log insert failed",
			zap.String("dedup_key", entry.DedupKey), zap.Error(err))
		return false
	}
	if !inserted {
		return false
	}

	if err := d.email.SendEmail(ctx, entry.RecipientContact, entry.Subject, entry.Body); err != nil {
		d.logger.Error("email send failed",
			zap.String("dedup_key", entry.DedupKey), zap.Error(err))
		metrics.NotificationSendFailures.WithLabelValues(domain.ChannelEmail).Inc()
		return false
	}

	metrics.NotificationsSent.WithLabelValues(entry.Type, domain.ChannelEmail).Inc()
	return true
}

func (d *NotificationDispatcher) deliverSMS(ctx context.Context, entry *domain.NotificationLogEntry) bool {
	entry.SentAt = d.clock.Now()

	inserted, err := d.notifRepo.Insert(ctx, entry)
	if err != nil {
		d.logger.Error("notification log insert failed",
			zap.String("dedup_key", entry.DedupKey), zap.Error(err))
		return false
	}
	if !inserted {
		return false
	}

	if err := d.sms.SendSMS(ctx, entry.RecipientContact, entry.Body); err != nil {
		d.logger.Error("sms send failed",
			zap.String("dedup_key", entry.DedupKey), zap.Error(err))
		metrics.NotificationSendFailures.WithLabelValues(domain.ChannelSMS).Inc()
		return false
	}

	metrics.NotificationsSent.WithLabelValues(entry.Type, domain.ChannelSMS).Inc()
	return true
}

func (d *NotificationDispatcher) paymentLink(entryID uuid.UUID) string {
	return fmt.Sprintf("%s/portal/pay?schedule=%s", d.cfg.AppBaseURL, entryID)
}

func logEntry(landlordID, tenantID uuid.UUID, contact, notifType, dedupKey, subject, body string) *domain.NotificationLogEntry {
	return &domain.NotificationLogEntry{
		ID:               uuid.New(),
		DedupKey:         dedupKey,
		LandlordID:       landlordID,
		RecipientType:    "tenant",
		RecipientID:      tenantID,
		RecipientContact: contact,
		Channel:          domain.ChannelEmail,
		Type:             notifType,
		Subject:          subject,
		Body:             body,
		Status:           "sent",
	}
}

func smsLogEntry(landlordID, tenantID uuid.UUID, contact, notifType, dedupKey, subject, body string) *domain.NotificationLogEntry {
	entry := logEntry(landlordID, tenantID, contact, notifType, dedupKey, subject, body)
	entry.Channel = domain.ChannelSMS
	return entry
}
