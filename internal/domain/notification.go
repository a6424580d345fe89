package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

const (
	NotificationRentReminder = "rent_reminder"
	NotificationOverdueAlert = "overdue_alert"
	NotificationLeaseExpiry  = "lease_expiry"
)

// NotificationLogEntry records a notification that was (or was about to be)
// sent. The unique dedup_key is the sole mechanism preventing duplicate sends
// across repeated sweep runs: the row is inserted before the provider call, so
// a crash between log and send under-delivers rather than double-delivers.
type NotificationLogEntry struct {
	ID               uuid.UUID `json:"id" db:"id"`
	DedupKey         string    `json:"dedup_key" db:"dedup_key"`
	LandlordID       uuid.UUID `json:"landlord_id" db:"landlord_id"`
	RecipientType    string    `json:"recipient_type" db:"recipient_type"`
	RecipientID      uuid.UUID `json:"recipient_id" db:"recipient_id"`
	RecipientContact string    `json:"recipient_contact" db:"recipient_contact"`
	Channel          string    `json:"channel" db:"channel"`
	Type             string    `json:"type" db:"type"`
	Subject          string    `json:"subject" db:"subject"`
	Body             string    `json:"body" db:"body"`
	Status           string    `json:"status" db:"status"`
	SentAt           time.Time `json:"sent_at" db:"sent_at"`
}

// Dedup keys carry no date component: a given entry and tenant pair is
// notified once per type, not once per day. SMS gets its own key so the two
// channels dedup independently.

func ReminderDedupKey(entryID, tenantID uuid.UUID) string {
	return fmt.Sprintf("rent_reminder:%s:%s", entryID, tenantID)
}

func ReminderSMSDedupKey(entryID, tenantID uuid.UUID) string {
	return fmt.Sprintf("rent_reminder_sms:%s:%s", entryID, tenantID)
}

func OverdueDedupKey(entryID, tenantID uuid.UUID) string {
	return fmt.Sprintf("overdue_alert:%s:%s", entryID, tenantID)
}

func OverdueSMSDedupKey(entryID, tenantID uuid.UUID) string {
	return fmt.Sprintf("overdue_sms:%s:%s", entryID, tenantID)
}

func LeaseExpiryDedupKey(leaseID, tenantID uuid.UUID) string {
	return fmt.Sprintf("lease_expiry:%s:%s", leaseID, tenantID)
}
