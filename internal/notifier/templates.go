package notifier

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Message templates for tenant-facing notices. Email bodies are small inline
// HTML fragments; SMS bodies are plain text kept under one segment where
// possible.

type Email struct {
	Subject string
	HTML    string
}

const dateLayout = "2006-01-02"

func RentReminderEmail(tenantName string, amount decimal.Decimal, dueDate time.Time, paymentLink string) Email {
	due := dueDate.Format(dateLayout)
	return Email{
		Subject: fmt.Sprintf("Rent Reminder - $%s due on %s", amount.StringFixed(2), due),
		HTML: fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1e40af;">Rent Reminder</h2>
  <p>Hi %s,</p>
  <p>This is a reminder that your rent payment of <strong>$%s</strong> is due on <strong>%s</strong>.</p>
  <a href="%s" style="display: inline-block; padding: 12px 24px; background-color: #2563eb; color: white; text-decoration: none; border-radius: 8px; margin: 16px 0;">Pay Now</a>
  <p style="color: #6b7280; font-size: 14px;">Thank you for being a great tenant!</p>
</div>`, tenantName, amount.StringFixed(2), due, paymentLink),
	}
}

func OverdueRentEmail(tenantName string, amount decimal.Decimal, dueDate time.Time, paymentLink string) Email {
	due := dueDate.Format(dateLayout)
	return Email{
		Subject: fmt.Sprintf("Overdue Rent - $%s was due on %s", amount.StringFixed(2), due),
		HTML: fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #dc2626;">Overdue Rent Notice</h2>
  <p>Hi %s,</p>
  <p>Your rent payment of <strong>$%s</strong> was due on <strong>%s</strong> and has not been received.</p>
  <p>Please make your payment as soon as possible to avoid late fees.</p>
  <a href="%s" style="display: inline-block; padding: 12px 24px; background-color: #dc2626; color: white; text-decoration: none; border-radius: 8px; margin: 16px 0;">Pay Now</a>
  <p style="color: #6b7280; font-size: 14px;">If you've already made this payment, please disregard this notice.</p>
</div>`, tenantName, amount.StringFixed(2), due, paymentLink),
	}
}

func LeaseExpiryEmail(tenantName, propertyName string, endDate time.Time) Email {
	return Email{
		Subject: fmt.Sprintf("Lease Expiry Reminder - %s", propertyName),
		HTML: fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #d97706;">Lease Expiry Notice</h2>
  <p>Hi %s,</p>
  <p>Your lease for <strong>%s</strong> is set to expire on <strong>%s</strong>.</p>
  <p>Please contact your landlord to discuss renewal options.</p>
  <p style="color: #6b7280; font-size: 14px;">&mdash; RentEase</p>
</div>`, tenantName, propertyName, endDate.Format(dateLayout)),
	}
}

func RentReminderSMS(tenantName string, amount decimal.Decimal, dueDate time.Time) string {
	return fmt.Sprintf("Hi %s, your rent of $%s is due on %s. Pay online at your tenant portal. - RentEase",
		tenantName, amount.StringFixed(2), dueDate.Format(dateLayout))
}

func OverdueAlertSMS(tenantName string, amount decimal.Decimal, dueDate time.Time) string {
	return fmt.Sprintf("Hi %s, your rent of $%s was due on %s and is now overdue. Please pay ASAP to avoid late fees. - RentEase",
		tenantName, amount.StringFixed(2), dueDate.Format(dateLayout))
}
