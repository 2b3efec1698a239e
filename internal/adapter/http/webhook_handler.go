package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/YelzhanWeb/qrdine/internal/adapter/logger"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

// WebhookHandler receives callbacks from the external payment
// processor. Card processing itself is a black box; a successful
// charge just flips the order's paid flag.
type WebhookHandler struct {
	status interfaces.StatusService
	logger logger.Logger
}

func NewWebhookHandler(status interfaces.StatusService, lgr logger.Logger) *WebhookHandler {
	return &WebhookHandler{status: status, logger: lgr}
}

type PaymentWebhookRequest struct {
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
}

// PaymentWebhook handles POST /webhooks/payment.
func (h *WebhookHandler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	var req PaymentWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.OrderNumber) == "" {
		writeValidationErrors(w, []ValidationError{{Field: "order_number", Message: "order number is required"}})
		return
	}

	if req.Status != "succeeded" {
		// Failed or pending charges are acknowledged and ignored; the
		// processor retries on its own schedule.
		h.logger.Debug("payment_webhook_ignored", "Non-success payment status", req.OrderNumber, map[string]interface{}{
			"status": req.Status,
		})
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	if err := h.status.ConfirmPayment(r.Context(), req.OrderNumber); err != nil {
		h.logger.Error("payment_confirm_failed", "Failed to confirm payment", req.OrderNumber, nil, err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
