package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/rentease/rent-ledger/internal/domain"
	"github.com/rentease/rent-ledger/internal/gateway"
	"github.com/rentease/rent-ledger/internal/service"
	"github.com/rentease/rent-ledger/pkg/response"
)

type PaymentHandler struct {
	applier   *service.PaymentApplier
	intents   *gateway.IntentService
	validator *validator.Validate
}

func NewPaymentHandler(applier *service.PaymentApplier, intents *gateway.IntentService) *PaymentHandler {
	return &PaymentHandler{
		applier:   applier,
		intents:   intents,
		validator: validator.New(),
	}
}

// RecordPayment is the landlord-facing manual entry: cash, check, Zelle and
// the like. Always completed immediately; no async confirmation exists for
// non-electronic methods.
func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	applyReq := &domain.ApplyPaymentRequest{
		LeaseID:  req.LeaseID,
		TenantID: req.TenantID,
		Amount:   req.Amount,
		Type:     req.Type,
		Method:   req.Method,
	}
	if req.ForMonth != "" {
		forMonth := req.ForMonth
		applyReq.ForMonth = &forMonth
	}
	if req.Notes != "" {
		notes := req.Notes
		applyReq.Notes = &notes
	}

	result, err := h.applier.Apply(r.Context(), applyReq)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, result)
}

// ListUnmatched surfaces payments that could not be tied to a ledger entry,
// for manual landlord reconciliation.
func (h *PaymentHandler) ListUnmatched(w http.ResponseWriter, r *http.Request) {
	payments, err := h.applier.Unmatched(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, payments)
}

// CreateIntent opens a processor payment intent for an outstanding entry.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req gateway.CreateIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	result, err := h.intents.CreateIntent(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, result)
}
