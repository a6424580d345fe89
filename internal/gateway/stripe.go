package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"github.com/rentease/rent-ledger/internal/domain"
	"github.com/rentease/rent-ledger/internal/metrics"
	"github.com/rentease/rent-ledger/internal/repository"
	"github.com/rentease/rent-ledger/pkg/clock"
	customError "github.com/rentease/rent-ledger/pkg/errors"
	"github.com/rentease/rent-ledger/pkg/utils"
)

// PaymentApplier is the slice of the payment service the bridge needs.
type PaymentApplier interface {
	Apply(ctx context.Context, req *domain.ApplyPaymentRequest) (*domain.ApplyPaymentResult, error)
}

// Bridge translates verified processor webhook events into ledger operations.
// Events move received -> verified -> applied; unverified events are rejected
// with zero side effects, and unrecognized types are acknowledged so the
// sender never retries them.
type Bridge struct {
	applier       PaymentApplier
	paymentRepo   repository.PaymentRepository
	landlordRepo  repository.LandlordRepository
	redis         *redis.Client
	webhookSecret string
	clock         clock.Clock
	logger        *zap.Logger
}

func NewBridge(
	applier PaymentApplier,
	paymentRepo repository.PaymentRepository,
	landlordRepo repository.LandlordRepository,
	redisClient *redis.Client,
	webhookSecret string,
	clk clock.Clock,
	logger *zap.Logger,
) *Bridge {
	return &Bridge{
		applier:       applier,
		paymentRepo:   paymentRepo,
		landlordRepo:  landlordRepo,
		redis:         redisClient,
		webhookSecret: webhookSecret,
		clock:         clk,
		logger:        logger,
	}
}

// EventOutcome summarizes what the bridge did with an event.
type EventOutcome struct {
	EventType string `json:"event_type"`
	Handled   bool   `json:"handled"`
	Replayed  bool   `json:"replayed"`
}

// HandleEvent verifies the payload signature and dispatches by event type.
// A signature failure returns an error and must surface as a 4xx; everything
// past verification is acknowledged to the sender even when ignored.
func (b *Bridge) HandleEvent(ctx context.Context, payload []byte, sigHeader string) (*EventOutcome, error) {
	// The endpoint stays pinned independently of the SDK; signature
	// verification alone decides authenticity.
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, b.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "signature_failed").Inc()
		return nil, customError.WrapSignatureInvalid(err)
	}

	outcome := &EventOutcome{EventType: string(event.Type)}

	// Fast-path replay drop. The ledger-side idempotency key remains the
	// hard guarantee; this only spares redelivered events a database trip.
	replayKey := "stripe:event:" + event.ID
	claimed := false
	if b.redis != nil {
		fresh, err := b.redis.SetNX(ctx, replayKey, 1, 24*time.Hour).Result()
		if err != nil {
			b.logger.Warn("webhook replay cache unavailable", zap.Error(err))
		} else if !fresh {
			b.logger.Info("replayed webhook event dropped", zap.String("event_id", event.ID))
			metrics.WebhookEvents.WithLabelValues(string(event.Type), "replayed").Inc()
			outcome.Replayed = true
			return outcome, nil
		} else {
			claimed = true
		}
	}

	switch event.Type {
	case "payment_intent.succeeded":
		err = b.handlePaymentSucceeded(ctx, &event)
	case "payment_intent.payment_failed":
		err = b.handlePaymentFailed(ctx, &event)
	case "account.updated":
		err = b.handleAccountUpdated(ctx, &event)
	default:
		// Forward compatibility: never reject an event type we do not know.
		b.logger.Info("unhandled webhook event type", zap.String("type", string(event.Type)))
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "ignored").Inc()
		return outcome, nil
	}

	if err != nil {
		// Release the claim so the sender's redelivery is processed rather
		// than dropped as a replay. The ledger constraints keep a concurrent
		// duplicate harmless.
		if claimed {
			if delErr := b.redis.Del(ctx, replayKey).Err(); delErr != nil {
				b.logger.Warn("webhook replay claim not released",
					zap.String("event_id", event.ID), zap.Error(delErr))
			}
		}
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "failed").Inc()
		return nil, err
	}

	metrics.WebhookEvents.WithLabelValues(string(event.Type), "applied").Inc()
	outcome.Handled = true
	return outcome, nil
}

func (b *Bridge) handlePaymentSucceeded(ctx context.Context, event *stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return customError.NewBusinessError("EVENT_MALFORMED", "cannot parse payment intent", err)
	}

	leaseID, err := uuid.Parse(intent.Metadata["lease_id"])
	if err != nil {
		return customError.NewBusinessError("EVENT_MALFORMED", "payment intent metadata missing lease_id", err)
	}

	req := &domain.ApplyPaymentRequest{
		LeaseID:     leaseID,
		Amount:      utils.FromCents(receivedAmount(&intent)),
		Type:        domain.PaymentTypeRent,
		Method:      intentMethod(&intent),
		ExternalRef: &intent.ID,
	}
	if entryID, err := uuid.Parse(intent.Metadata["ledger_entry_id"]); err == nil {
		req.LedgerEntryID = &entryID
	}
	if tenantID, err := uuid.Parse(intent.Metadata["tenant_id"]); err == nil {
		req.TenantID = &tenantID
	}

	result, err := b.applier.Apply(ctx, req)
	if err != nil {
		return err
	}

	b.logger.Info("processor payment applied",
		zap.String("payment_intent", intent.ID),
		zap.Bool("replayed", result.Replayed),
		zap.Bool("matched", result.Matched),
	)
	return nil
}

func (b *Bridge) handlePaymentFailed(ctx context.Context, event *stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return customError.NewBusinessError("EVENT_MALFORMED", "cannot parse payment intent", err)
	}

	// Keyed by event id, not intent id: the same intent may later succeed and
	// must still be creditable under its own reference.
	eventRef := event.ID
	now := b.clock.Now()
	record := &domain.PaymentRecord{
		ID:          uuid.New(),
		Amount:      utils.FromCents(intent.Amount),
		Type:        domain.PaymentTypeRent,
		Method:      intentMethod(&intent),
		Status:      domain.PaymentStatusFailed,
		ExternalRef: &eventRef,
		PaidAt:      now,
		CreatedAt:   now,
	}
	if leaseID, err := uuid.Parse(intent.Metadata["lease_id"]); err == nil {
		record.LeaseID = &leaseID
	}
	if tenantID, err := uuid.Parse(intent.Metadata["tenant_id"]); err == nil {
		record.TenantID = &tenantID
	}

	if err := b.paymentRepo.Create(ctx, record); err != nil {
		return customError.WrapDatabaseError(err)
	}

	declineReason := ""
	if intent.LastPaymentError != nil {
		declineReason = intent.LastPaymentError.Msg
	}
	b.logger.Warn("processor payment failed",
		zap.String("payment_intent", intent.ID),
		zap.String("decline_reason", declineReason),
	)
	return nil
}

func (b *Bridge) handleAccountUpdated(ctx context.Context, event *stripe.Event) error {
	var account stripe.Account
	if err := json.Unmarshal(event.Data.Raw, &account); err != nil {
		return customError.NewBusinessError("EVENT_MALFORMED", "cannot parse account", err)
	}

	landlord, err := b.landlordRepo.GetByStripeAccount(ctx, account.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Connected account we never issued; acknowledge and move on.
			b.logger.Info("account event for unknown landlord", zap.String("stripe_account", account.ID))
			return nil
		}
		return customError.WrapDatabaseError(err)
	}

	complete := account.ChargesEnabled && account.DetailsSubmitted
	if err := b.landlordRepo.SetOnboardingComplete(ctx, account.ID, complete); err != nil {
		return customError.WrapDatabaseError(err)
	}

	b.logger.Info("landlord payment readiness updated",
		zap.String("landlord_id", landlord.ID.String()),
		zap.String("stripe_account", account.ID),
		zap.Bool("onboarding_complete", complete),
	)
	return nil
}

func receivedAmount(intent *stripe.PaymentIntent) int64 {
	if intent.AmountReceived > 0 {
		return intent.AmountReceived
	}
	return intent.Amount
}

func intentMethod(intent *stripe.PaymentIntent) string {
	for _, t := range intent.PaymentMethodTypes {
		if t == "us_bank_account" {
			return domain.PaymentMethodACH
		}
	}
	return domain.PaymentMethodCard
}
