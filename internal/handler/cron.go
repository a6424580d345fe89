package handler

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/rentease/rent-ledger/internal/service"
	"github.com/rentease/rent-ledger/pkg/response"
)

// CronHandler exposes the sweep jobs to an external scheduler. Both
// endpoints are GET and authenticate with a shared bearer secret, so a
// plain hosted cron service can hit them without custom tooling.
type CronHandler struct {
	assessor   *service.LateFeeAssessor
	dispatcher *service.NotificationDispatcher
	secret     string
	logger     *zap.Logger
}

func NewCronHandler(assessor *service.LateFeeAssessor, dispatcher *service.NotificationDispatcher, secret string, logger *zap.Logger) *CronHandler {
	return &CronHandler{
		assessor:   assessor,
		dispatcher: dispatcher,
		secret:     secret,
		logger:     logger,
	}
}

func (h *CronHandler) authorized(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return false
	}
	return strings.TrimPrefix(auth, "Bearer ") == h.secret
}

func (h *CronHandler) LateFees(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		response.Unauthorized(w, "unauthorized")
		return
	}

	applied, err := h.assessor.Run(r.Context())
	if err != nil {
		h.logger.Error("late fee sweep failed", zap.Error(err))
		response.Raw(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "late fee sweep failed",
		})
		return
	}

	response.Raw(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"lateFeesApplied": applied,
	})
}

func (h *CronHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		response.Unauthorized(w, "unauthorized")
		return
	}

	stats, err := h.dispatcher.Run(r.Context())
	if err != nil {
		h.logger.Error("notification sweep failed", zap.Error(err))
		response.Raw(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "notification sweep failed",
		})
		return
	}

	response.Raw(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats": map[string]interface{}{
			"rentReminders": stats.RentReminders,
			"overdueAlerts": stats.OverdueAlerts,
			"leaseExpiry":   stats.LeaseExpiry,
			"sms":           stats.SMS,
			"total":         stats.Total(),
		},
	})
}
