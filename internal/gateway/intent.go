package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"go.uber.org/zap"

	"github.com/rentease/rent-ledger/internal/domain"
	"github.com/rentease/rent-ledger/internal/repository"
	customError "github.com/rentease/rent-ledger/pkg/errors"
	"github.com/rentease/rent-ledger/pkg/utils"
)

// intentAPI abstracts the processor call so the service is testable without
// network access.
type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeIntentAPI struct{}

func (stripeIntentAPI) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.New(params)
}

// IntentService backs the tenant-facing pay flow: it prices the outstanding
// balance of a ledger entry and opens a processor payment intent routed to
// the landlord's connected account.
type IntentService struct {
	ledgerRepo   repository.LedgerRepository
	leaseRepo    repository.LeaseRepository
	landlordRepo repository.LandlordRepository
	api          intentAPI
	logger       *zap.Logger
}

func NewIntentService(
	secretKey string,
	ledgerRepo repository.LedgerRepository,
	leaseRepo repository.LeaseRepository,
	landlordRepo repository.LandlordRepository,
	logger *zap.Logger,
) *IntentService {
	// stripe-go uses a package-level key, as the processor SDK intends.
	stripe.Key = secretKey

	return &IntentService{
		ledgerRepo:   ledgerRepo,
		leaseRepo:    leaseRepo,
		landlordRepo: landlordRepo,
		api:          stripeIntentAPI{},
		logger:       logger,
	}
}

type CreateIntentRequest struct {
	LedgerEntryID uuid.UUID `json:"ledger_entry_id" validate:"required"`
	Method        string    `json:"method" validate:"omitempty,oneof=card ach"`
}

type CreateIntentResponse struct {
	ClientSecret    string          `json:"clientSecret"`
	PaymentIntentID string          `json:"paymentIntentId"`
	Amount          decimal.Decimal `json:"amount"`
}

// CreateIntent rejects fully-paid entries, terminated leases and landlords who
// have not finished processor onboarding; otherwise it opens an intent for the fee-inclusive
// outstanding balance, with the ledger identifiers in metadata so the webhook
// bridge can route the eventual payment event.
func (s *IntentService) CreateIntent(ctx context.Context, req *CreateIntentRequest) (*CreateIntentResponse, error) {
	entry, err := s.ledgerRepo.GetByID(ctx, req.LedgerEntryID)
	if err != nil {
		return nil, customError.WrapEntryNotFound(req.LedgerEntryID.String())
	}

	if entry.Status == domain.EntryStatusPaid {
		return nil, customError.WrapEntryAlreadyPaid(entry.ID.String())
	}
	balance := entry.Balance()
	if !balance.GreaterThan(decimal.Zero) {
		return nil, customError.WrapEntryAlreadyPaid(entry.ID.String())
	}

	lease, err := s.leaseRepo.GetByID(ctx, entry.LeaseID)
	if err != nil {
		return nil, customError.WrapLeaseNotFound(entry.LeaseID.String())
	}
	if lease.Status == domain.LeaseStatusTerminated {
		return nil, customError.WrapLeaseNotActive(lease.ID.String())
	}

	landlord, err := s.landlordRepo.GetByID(ctx, lease.LandlordID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !landlord.PaymentReady() {
		return nil, customError.WrapNotOnboarded(landlord.ID.String())
	}

	methodTypes := []string{"card"}
	if req.Method == domain.PaymentMethodACH {
		methodTypes = []string{"us_bank_account"}
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(utils.ToCents(balance)),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice(methodTypes),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(*landlord.StripeAccountID),
		},
	}
	params.AddMetadata("ledger_entry_id", entry.ID.String())
	params.AddMetadata("lease_id", lease.ID.String())
	params.AddMetadata("landlord_id", landlord.ID.String())
	if tenants, err := s.leaseRepo.TenantsByLease(ctx, lease.ID); err == nil && len(tenants) > 0 {
		params.AddMetadata("tenant_id", tenants[0].ID.String())
	}

	intent, err := s.api.New(params)
	if err != nil {
		return nil, customError.NewBusinessError("PROCESSOR_ERROR", "creating payment intent failed", err)
	}

	s.logger.Info("payment intent created",
		zap.String("payment_intent", intent.ID),
		zap.String("entry_id", entry.ID.String()),
		zap.String("amount", balance.String()),
	)

	return &CreateIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          balance,
	}, nil
}
