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

type dispatchFixture struct {
	ledger *mocks.MockLedgerRepository
	leases *mocks.MockLeaseRepository
	notifs *mocks.MockNotificationRepository
	email  *mocks.MockEmailSender
	sms    *mocks.MockSMSSender
}

func newDispatchFixture() *dispatchFixture {
	return &dispatchFixture{
		ledger: new(mocks.MockLedgerRepository),
		leases: new(mocks.MockLeaseRepository),
		notifs: new(mocks.MockNotificationRepository),
		email:  new(mocks.MockEmailSender),
		sms:    new(mocks.MockSMSSender),
	}
}

func (f *dispatchFixture) dispatcher(today time.Time) *service.NotificationDispatcher {
	return service.NewNotificationDispatcher(
		f.ledger, f.leases, f.notifs,
		f.email, f.sms,
		nil, clock.Fixed(today),
		service.DispatcherConfig{
			ReminderLeadDays: 3,
			ExpiryLeadDays:   30,
			AppBaseURL:       "https://app.rentease.test",
		},
		zap.NewNop(),
	)
}

func (f *dispatchFixture) noRemindersDue(reminderDate time.Time) {
	f.ledger.On("ListReminderCandidates", mock.Anything, reminderDate).
		Return([]*domain.NotificationCandidate{}, nil)
}

func (f *dispatchFixture) noOverdue() {
	f.ledger.On("ListOverdueCandidates", mock.Anything).
		Return([]*domain.NotificationCandidate{}, nil)
}

func (f *dispatchFixture) noExpiring(expiryDate time.Time) {
	f.leases.On("ListExpiring", mock.Anything, expiryDate).
		Return([]*domain.ExpiringLease{}, nil)
}

func tenantWith(email, phone string) *domain.Tenant {
	t := &domain.Tenant{ID: uuid.New(), FirstName: "Ada", LastName: "Lin"}
	if email != "" {
		t.Email = &email
	}
	if phone != "" {
		t.Phone = &phone
	}
	return t
}

func TestDispatcherRentReminders(t *testing.T) {
	today := time.Date(2026, time.January, 29, 0, 0, 0, 0, time.UTC)
	reminderDate := today.AddDate(0, 0, 3) // Feb 1
	expiryDate := today.AddDate(0, 0, 30)

	candidate := &domain.NotificationCandidate{
		EntryID:    uuid.New(),
		LeaseID:    uuid.New(),
		LandlordID: uuid.New(),
		UnitLabel:  "Unit 4B",
		DueDate:    reminderDate,
		AmountDue:  decimal.NewFromInt(2000),
	}

	t.Run("email and sms for a fully reachable tenant", func(t *testing.T) {
		f := newDispatchFixture()
		tenant := tenantWith("ada@example.com", "+15550100")

		f.ledger.On("ListReminderCandidates", mock.Anything, reminderDate).
			Return([]*domain.NotificationCandidate{candidate}, nil)
		f.leases.On("TenantsByLease", mock.Anything, candidate.LeaseID).
			Return([]*domain.Tenant{tenant}, nil)
		f.notifs.On("Insert", mock.Anything, mock.MatchedBy(func(e *domain.NotificationLogEntry) bool {
			return e.DedupKey == domain.ReminderDedupKey(candidate.EntryID, tenant.ID)
		})).Return(true, nil)
		f.notifs.On("Insert", mock.Anything, mock.MatchedBy(func(e *domain.NotificationLogEntry) bool {
			return e.DedupKey == domain.ReminderSMSDedupKey(candidate.EntryID, tenant.ID)
		})).Return(true, nil)
		f.email.On("SendEmail", mock.Anything, "ada@example.com", mock.Anything, mock.Anything).Return(nil)
		f.sms.On("SendSMS", mock.Anything, "+15550100", mock.Anything).Return(nil)
		f.noOverdue()
		f.noExpiring(expiryDate)

		stats, err := f.dispatcher(today).Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 1, stats.RentReminders)
		assert.Equal(t, 1, stats.SMS)
		assert.Equal(t, 0, stats.OverdueAlerts)
		f.email.AssertExpectations(t)
		f.sms.AssertExpectations(t)
	})

	t.Run("dedup hit suppresses the provider call", func(t *testing.T) {
		f := newDispatchFixture()
		tenant := tenantWith("ada@example.com", "")

		f.ledger.On("ListReminderCandidates", mock.Anything, reminderDate).
			Return([]*domain.NotificationCandidate{candidate}, nil)
		f.leases.On("TenantsByLease", mock.Anything, candidate.LeaseID).
			Return([]*domain.Tenant{tenant}, nil)
		f.notifs.On("Insert", mock.Anything, mock.Anything).Return(false, nil)
		f.noOverdue()
		f.noExpiring(expiryDate)

		stats, err := f.dispatcher(today).Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 0, stats.Total())
		f.email.AssertNotCalled(t, "SendEmail")
	})

	t.Run("send failure does not count and does not abort the sweep", func(t *testing.T) {
		f := newDispatchFixture()
		first := tenantWith("down@example.com", "")
		second := tenantWith("up@example.com", "")

		f.ledger.On("ListReminderCandidates", mock.Anything, reminderDate).
			Return([]*domain.NotificationCandidate{candidate}, nil)
		f.leases.On("TenantsByLease", mock.Anything, candidate.LeaseID).
			Return([]*domain.Tenant{first, second}, nil)
		f.notifs.On("Insert", mock.Anything, mock.Anything).Return(true, nil)
		f.email.On("SendEmail", mock.Anything, "down@example.com", mock.Anything, mock.Anything).
			Return(errors.New("ses throttled"))
		f.email.On("SendEmail", mock.Anything, "up@example.com", mock.Anything, mock.Anything).
			Return(nil)
		f.noOverdue()
		f.noExpiring(expiryDate)

		stats, err := f.dispatcher(today).Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 1, stats.RentReminders)
		f.email.AssertExpectations(t)
	})
}

func TestDispatcherOverdueAlerts(t *testing.T) {
	today := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	reminderDate := today.AddDate(0, 0, 3)
	expiryDate := today.AddDate(0, 0, 30)

	t.Run("alert goes out past grace", func(t *testing.T) {
		f := newDispatchFixture()
		tenant := tenantWith("ada@example.com", "")
		candidate := &domain.NotificationCandidate{
			EntryID:         uuid.New(),
			LeaseID:         uuid.New(),
			LandlordID:      uuid.New(),
			DueDate:         time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			AmountDue:       decimal.NewFromInt(2000),
			GracePeriodDays: 5,
		}

		f.noRemindersDue(reminderDate)
		f.ledger.On("ListOverdueCandidates", mock.Anything).
			Return([]*domain.NotificationCandidate{candidate}, nil)
		f.leases.On("TenantsByLease", mock.Anything, candidate.LeaseID).
			Return([]*domain.Tenant{tenant}, nil)
		f.notifs.On("Insert", mock.Anything, mock.MatchedBy(func(e *domain.NotificationLogEntry) bool {
			return e.DedupKey == domain.OverdueDedupKey(candidate.EntryID, tenant.ID)
		})).Return(true, nil)
		f.email.On("SendEmail", mock.Anything, "ada@example.com", mock.Anything, mock.Anything).Return(nil)
		f.noExpiring(expiryDate)

		stats, err := f.dispatcher(today).Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 1, stats.OverdueAlerts)
	})

	t.Run("entry still inside grace is skipped", func(t *testing.T) {
		f := newDispatchFixture()
		candidate := &domain.NotificationCandidate{
			EntryID:         uuid.New(),
			LeaseID:         uuid.New(),
			DueDate:         time.Date(2026, time.January, 8, 0, 0, 0, 0, time.UTC),
			GracePeriodDays: 5,
		}

		f.noRemindersDue(reminderDate)
		f.ledger.On("ListOverdueCandidates", mock.Anything).
			Return([]*domain.NotificationCandidate{candidate}, nil)
		f.noExpiring(expiryDate)

		stats, err := f.dispatcher(today).Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 0, stats.OverdueAlerts)
		f.leases.AssertNotCalled(t, "TenantsByLease")
	})
}

func TestDispatcherLeaseExpiry(t *testing.T) {
	today := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	reminderDate := today.AddDate(0, 0, 3)
	expiryDate := today.AddDate(0, 0, 30) // Feb 9

	f := newDispatchFixture()
	withEmail := tenantWith("ada@example.com", "+15550100")
	phoneOnly := tenantWith("", "+15550101")

	expiring := &domain.ExpiringLease{
		LeaseID:    uuid.New(),
		LandlordID: uuid.New(),
		UnitLabel:  "Unit 4B",
		EndDate:    expiryDate,
	}

	f.noRemindersDue(reminderDate)
	f.noOverdue()
	f.leases.On("ListExpiring", mock.Anything, expiryDate).
		Return([]*domain.ExpiringLease{expiring}, nil)
	f.leases.On("TenantsByLease", mock.Anything, expiring.LeaseID).
		Return([]*domain.Tenant{withEmail, phoneOnly}, nil)
	f.notifs.On("Insert", mock.Anything, mock.MatchedBy(func(e *domain.NotificationLogEntry) bool {
		return e.DedupKey == domain.LeaseExpiryDedupKey(expiring.LeaseID, withEmail.ID)
	})).Return(true, nil)
	f.email.On("SendEmail", mock.Anything, "ada@example.com", mock.Anything, mock.Anything).Return(nil)

	stats, err := f.dispatcher(today).Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.LeaseExpiry)
	// expiry notices are email-only
	f.sms.AssertNotCalled(t, "SendSMS")
}
