package lookup

import (
	"context"
	"testing"
	"time"

	"github.com/YelzhanWeb/qrdine/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(action, message, requestID string, details map[string]interface{})  {}
func (nopLogger) Debug(action, message, requestID string, details map[string]interface{}) {}
func (nopLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
}

type fakeOrderRepo struct {
	orders map[string]*domain.Order
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *domain.Order, event *domain.OutboxEvent) error {
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, domain.E(domain.KindNotFound, "order not found")
}

func (f *fakeOrderRepo) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	if o, ok := f.orders[number]; ok {
		return o, nil
	}
	return nil, domain.E(domain.KindNotFound, "order not found")
}

func (f *fakeOrderRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	_, ok := f.orders[number]
	return ok, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, order *domain.Order, expectedVersion int, event *domain.OutboxEvent) error {
	return nil
}

func (f *fakeOrderRepo) MarkPaid(ctx context.Context, orderID string) error { return nil }

type fakeVenueRepo struct {
	venues map[string]*domain.Venue
}

func (f *fakeVenueRepo) FindByID(ctx context.Context, id string) (*domain.Venue, error) {
	if v, ok := f.venues[id]; ok {
		return v, nil
	}
	return nil, domain.E(domain.KindNotFound, "venue not found")
}

func (f *fakeVenueRepo) FindBySlug(ctx context.Context, slug string) (*domain.Venue, error) {
	for _, v := range f.venues {
		if v.Slug == slug {
			return v, nil
		}
	}
	return nil, domain.E(domain.KindNotFound, "venue not found")
}

type fakeTableRepo struct {
	tables map[string]*domain.Table
}

func (f *fakeTableRepo) FindByID(ctx context.Context, id string) (*domain.Table, error) {
	if t, ok := f.tables[id]; ok {
		return t, nil
	}
	return nil, domain.E(domain.KindNotFound, "table not found")
}

func (f *fakeTableRepo) FindByCode(ctx context.Context, venueID, code string) (*domain.Table, error) {
	return nil, domain.E(domain.KindNotFound, "table not found")
}

func (f *fakeTableRepo) Create(ctx context.Context, table *domain.Table) error { return nil }

func sampleOrder() *domain.Order {
	accepted := time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC)
	instructions := "extra hot"
	return &domain.Order{
		ID:            "o1",
		Number:        "QRD-ABC234",
		VenueID:       "v1",
		TableID:       "t1",
		TableName:     "Table 7",
		Status:        domain.StatusAccepted,
		PaymentMethod: domain.PaymentCard,
		TotalAmount:   2000,
		Version:       2,
		Items: []domain.OrderItem{
			{Name: "Margherita", UnitPrice: 850, Quantity: 2, LineTotal: 1700},
			{Name: "Espresso", UnitPrice: 300, Quantity: 1, LineTotal: 300, Instructions: &instructions},
		},
		Customer:   &domain.CustomerContact{Name: "Dana", Phone: "+100"},
		CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		AcceptedAt: &accepted,
	}
}

func TestGetOrderByNumber(t *testing.T) {
	orders := &fakeOrderRepo{orders: map[string]*domain.Order{"QRD-ABC234": sampleOrder()}}
	venues := &fakeVenueRepo{venues: map[string]*domain.Venue{
		"v1": {ID: "v1", Name: "La Piazza", Slug: "la-piazza", Active: true},
	}}
	tables := &fakeTableRepo{tables: map[string]*domain.Table{
		"t1": {ID: "t1", VenueID: "v1", Code: "T7", Name: "Window 7"},
	}}
	svc := NewService(orders, venues, tables, nopLogger{})

	view, err := svc.GetOrderByNumber(context.Background(), "QRD-ABC234")
	if err != nil {
		t.Fatalf("GetOrderByNumber returned error: %v", err)
	}

	if view.OrderNumber != "QRD-ABC234" || view.Status != domain.StatusAccepted {
		t.Errorf("view header = (%q, %q)", view.OrderNumber, view.Status)
	}
	if view.VenueName != "La Piazza" || view.VenueSlug != "la-piazza" {
		t.Errorf("venue fields = (%q, %q), want catalog values", view.VenueName, view.VenueSlug)
	}
	// The live table record wins over the denormalized name.
	if view.TableName != "Window 7" {
		t.Errorf("TableName = %q, want %q", view.TableName, "Window 7")
	}
	if len(view.Items) != 2 {
		t.Fatalf("view has %d items, want 2", len(view.Items))
	}
	if view.Items[1].Instructions == nil || *view.Items[1].Instructions != "extra hot" {
		t.Errorf("Instructions = %v, want extra hot", view.Items[1].Instructions)
	}
	if view.Timestamps.AcceptedAt == nil || view.Timestamps.ReadyAt != nil {
		t.Error("timestamps not mapped from order")
	}
}

func TestGetOrderByNumberFallsBackToDenormalizedFields(t *testing.T) {
	orders := &fakeOrderRepo{orders: map[string]*domain.Order{"QRD-ABC234": sampleOrder()}}
	venues := &fakeVenueRepo{venues: map[string]*domain.Venue{}}
	tables := &fakeTableRepo{tables: map[string]*domain.Table{}}
	svc := NewService(orders, venues, tables, nopLogger{})

	view, err := svc.GetOrderByNumber(context.Background(), "QRD-ABC234")
	if err != nil {
		t.Fatalf("GetOrderByNumber returned error: %v", err)
	}
	if view.TableName != "Table 7" {
		t.Errorf("TableName = %q, want denormalized %q", view.TableName, "Table 7")
	}
	if view.VenueName != "" || view.VenueSlug != "" {
		t.Errorf("venue fields = (%q, %q), want empty on missing venue", view.VenueName, view.VenueSlug)
	}
}

func TestGetOrderByNumberNotFound(t *testing.T) {
	svc := NewService(
		&fakeOrderRepo{orders: map[string]*domain.Order{}},
		&fakeVenueRepo{venues: map[string]*domain.Venue{}},
		&fakeTableRepo{tables: map[string]*domain.Table{}},
		nopLogger{},
	)

	_, err := svc.GetOrderByNumber(context.Background(), "QRD-NOPE")
	if domain.KindOf(err) != domain.KindNotFound {
		t.Errorf("error = %v, want not-found", err)
	}
}
