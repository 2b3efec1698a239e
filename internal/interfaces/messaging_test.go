package interfaces

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/YelzhanWeb/qrdine/internal/domain"
)

func TestNewOrderEvent(t *testing.T) {
	reason := "kitchen closed"
	order := &domain.Order{
		ID:                 "o1",
		Number:             "QRD-ABC234",
		VenueID:            "v1",
		TableName:          "Table 7",
		Status:             domain.StatusCancelled,
		TotalAmount:        2000,
		CancellationReason: &reason,
		Customer:           &domain.CustomerContact{Name: "Dana", Phone: "+100"},
		CreatedAt:          time.Now().UTC(),
	}

	outboxEvent, err := NewOrderEvent(EventOrderStatusChanged, order, domain.StatusPreparing)
	if err != nil {
		t.Fatalf("NewOrderEvent returned error: %v", err)
	}

	if outboxEvent.Topic != EventOrderStatusChanged {
		t.Errorf("Topic = %q, want %q", outboxEvent.Topic, EventOrderStatusChanged)
	}
	if outboxEvent.EventID == "" {
		t.Error("EventID must be set")
	}

	var payload OrderEvent
	if err := json.Unmarshal(outboxEvent.Payload, &payload); err != nil {
		t.Fatalf("payload does not decode: %v", err)
	}
	if payload.EventID != outboxEvent.EventID {
		t.Errorf("payload EventID = %q, want %q", payload.EventID, outboxEvent.EventID)
	}
	if payload.OrderNumber != "QRD-ABC234" || payload.VenueID != "v1" {
		t.Errorf("payload header = %+v", payload)
	}
	if payload.OldStatus != domain.StatusPreparing || payload.NewStatus != domain.StatusCancelled {
		t.Errorf("payload statuses = (%q, %q)", payload.OldStatus, payload.NewStatus)
	}
	if payload.CancellationReason == nil || *payload.CancellationReason != reason {
		t.Errorf("payload CancellationReason = %v", payload.CancellationReason)
	}
	if payload.Customer == nil || payload.Customer.Phone != "+100" {
		t.Errorf("payload Customer = %+v", payload.Customer)
	}
	if payload.OccurredAt.IsZero() {
		t.Error("OccurredAt must be set")
	}
}

func TestNewOrderEventCreationOmitsOldStatus(t *testing.T) {
	order := &domain.Order{ID: "o1", Number: "QRD-ABC234", Status: domain.StatusNew}

	outboxEvent, err := NewOrderEvent(EventOrderCreated, order, "")
	if err != nil {
		t.Fatalf("NewOrderEvent returned error: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(outboxEvent.Payload, &raw); err != nil {
		t.Fatalf("payload does not decode: %v", err)
	}
	if _, present := raw["old_status"]; present {
		t.Error("old_status must be omitted for creation events")
	}
}
