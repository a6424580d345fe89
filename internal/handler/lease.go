package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/rentease/rent-ledger/internal/domain"
	"github.com/rentease/rent-ledger/internal/service"
	"github.com/rentease/rent-ledger/pkg/response"
)

type LeaseHandler struct {
	leases    *service.LeaseService
	validator *validator.Validate
}

func NewLeaseHandler(leases *service.LeaseService) *LeaseHandler {
	return &LeaseHandler{
		leases:    leases,
		validator: validator.New(),
	}
}

// CreateLease activates a lease and generates its rent schedule.
func (h *LeaseHandler) CreateLease(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	lease, entries, err := h.leases.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, &domain.CreateLeaseResponse{Lease: lease, Ledger: entries})
}

// UpdateLease edits lease terms; extending the end date appends ledger months.
func (h *LeaseHandler) UpdateLease(w http.ResponseWriter, r *http.Request) {
	leaseID, err := uuid.Parse(mux.Vars(r)["leaseId"])
	if err != nil {
		response.BadRequest(w, "invalid lease id", err)
		return
	}

	var req domain.UpdateLeaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	lease, appended, err := h.leases.Update(r.Context(), leaseID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"lease":           lease,
		"entriesAppended": appended,
	})
}

// GetLedger returns every ledger entry for the lease, oldest first.
func (h *LeaseHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	leaseID, err := uuid.Parse(mux.Vars(r)["leaseId"])
	if err != nil {
		response.BadRequest(w, "invalid lease id", err)
		return
	}

	entries, err := h.leases.Ledger(r.Context(), leaseID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, &domain.LedgerResponse{LeaseID: leaseID, Ledger: entries})
}
