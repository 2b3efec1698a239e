package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/YelzhanWeb/qrdine/internal/domain"
)

func TestPaymentWebhookSucceeded(t *testing.T) {
	status := &fakeStatusService{}
	h := NewWebhookHandler(status, nopLogger{})

	rec := httptest.NewRecorder()
	h.PaymentWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhooks/payment",
		strings.NewReader(`{"order_number":"QRD-ABC234","status":"succeeded"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(status.confirmed) != 1 || status.confirmed[0] != "QRD-ABC234" {
		t.Errorf("confirmed = %v, want [QRD-ABC234]", status.confirmed)
	}
}

func TestPaymentWebhookIgnoresNonSuccess(t *testing.T) {
	for _, paymentStatus := range []string{"failed", "pending", "refunded"} {
		t.Run(paymentStatus, func(t *testing.T) {
			status := &fakeStatusService{}
			h := NewWebhookHandler(status, nopLogger{})

			rec := httptest.NewRecorder()
			h.PaymentWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhooks/payment",
				strings.NewReader(`{"order_number":"QRD-ABC234","status":"`+paymentStatus+`"}`)))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if len(status.confirmed) != 0 {
				t.Errorf("non-success status confirmed payment: %v", status.confirmed)
			}
		})
	}
}

func TestPaymentWebhookValidation(t *testing.T) {
	h := NewWebhookHandler(&fakeStatusService{}, nopLogger{})

	rec := httptest.NewRecorder()
	h.PaymentWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhooks/payment",
		strings.NewReader(`{"status":"succeeded"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPaymentWebhookUnknownOrder(t *testing.T) {
	status := &fakeStatusService{err: domain.E(domain.KindNotFound, "order not found")}
	h := NewWebhookHandler(status, nopLogger{})

	rec := httptest.NewRecorder()
	h.PaymentWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhooks/payment",
		strings.NewReader(`{"order_number":"QRD-NOPE","status":"succeeded"}`)))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
