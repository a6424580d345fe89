package handler

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/rentease/rent-ledger/internal/gateway"
	customError "github.com/rentease/rent-ledger/pkg/errors"
	"github.com/rentease/rent-ledger/pkg/response"
)

// Processors cap webhook payloads well below this; anything larger is abuse.
const maxWebhookBody = 1 << 16

type WebhookHandler struct {
	bridge *gateway.Bridge
	logger *zap.Logger
}

func NewWebhookHandler(bridge *gateway.Bridge, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{bridge: bridge, logger: logger}
}

// Stripe receives processor events. The response contract matches the
// sender's expectations: 400 on signature failure so a legitimate event is
// retried, 200 {received:true} for everything verified, including event
// types this service ignores.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(w, "cannot read payload", err)
		return
	}

	outcome, err := h.bridge.HandleEvent(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		var bizErr *customError.BusinessError
		if errors.As(err, &bizErr) && bizErr.Code == customError.ErrCodeSignatureInvalid {
			response.Raw(w, http.StatusBadRequest, map[string]string{"error": "signature verification failed"})
			return
		}
		// Processing failed after verification: let the sender's retry
		// policy redeliver, the replay guards make that safe.
		h.logger.Error("webhook processing failed", zap.Error(err))
		response.Raw(w, http.StatusInternalServerError, map[string]string{"error": "event processing failed"})
		return
	}

	h.logger.Debug("webhook acknowledged",
		zap.String("type", outcome.EventType),
		zap.Bool("handled", outcome.Handled),
	)
	response.Raw(w, http.StatusOK, map[string]bool{"received": true})
}
