package notifier

import "context"

// EmailSender delivers a composed email. Implementations either succeed or
// return an error; the dispatcher treats sends as fire-and-forget with
// logging on failure.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// SMSSender delivers a short text message to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) error
}
