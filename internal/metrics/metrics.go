package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentledger_payments_applied_total",
		Help: "Payments applied to ledger entries, by source and outcome.",
	}, []string{"source", "outcome"})

	LateFeesApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentledger_late_fees_applied_total",
		Help: "Late fees stamped onto ledger entries.",
	})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentledger_notifications_sent_total",
		Help: "Notifications delivered, by type and channel.",
	}, []string{"type", "channel"})

	NotificationSendFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentledger_notification_send_failures_total",
		Help: "Provider failures while delivering notifications.",
	}, []string{"channel"})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentledger_webhook_events_total",
		Help: "Processor webhook events received, by type and outcome.",
	}, []string{"type", "outcome"})

	SweepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rentledger_sweep_duration_seconds",
		Help:    "Duration of ledger sweep runs.",
		Buckets: prometheus.DefBuckets,
	}, []string{"sweep"})
)
