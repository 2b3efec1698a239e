package order

import (
	"context"
	"strings"
	"testing"

	"github.com/YelzhanWeb/qrdine/internal/adapter/metrics"
	"github.com/YelzhanWeb/qrdine/internal/domain"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

// One registry per test binary; prometheus rejects duplicate metric names.
var testMetrics = metrics.New("order_service_test")

type nopLogger struct{}

func (nopLogger) Info(action, message, requestID string, details map[string]interface{})  {}
func (nopLogger) Debug(action, message, requestID string, details map[string]interface{}) {}
func (nopLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
}

// fakeTxRunner mimics the transactional store: repositories are only
// valid while fn runs. Repository calls outside that window are
// counted as violations.
type fakeTxRunner struct {
	repos      interfaces.TxRepos
	calls      int
	open       bool
	violations int
}

func (f *fakeTxRunner) InTx(ctx context.Context, fn func(repos interfaces.TxRepos) error) error {
	f.calls++
	f.open = true
	defer func() { f.open = false }()
	return fn(f.repos)
}

func (f *fakeTxRunner) enter() {
	if !f.open {
		f.violations++
	}
}

type fakeVenueRepo struct {
	runner *fakeTxRunner
	venues map[string]*domain.Venue
}

func (f *fakeVenueRepo) FindByID(ctx context.Context, id string) (*domain.Venue, error) {
	f.runner.enter()
	if v, ok := f.venues[id]; ok {
		return v, nil
	}
	return nil, domain.E(domain.KindNotFound, "venue not found")
}

func (f *fakeVenueRepo) FindBySlug(ctx context.Context, slug string) (*domain.Venue, error) {
	f.runner.enter()
	for _, v := range f.venues {
		if v.Slug == slug {
			return v, nil
		}
	}
	return nil, domain.E(domain.KindNotFound, "venue not found")
}

type fakeTableRepo struct {
	runner *fakeTxRunner
	tables map[string]*domain.Table
}

func (f *fakeTableRepo) FindByID(ctx context.Context, id string) (*domain.Table, error) {
	f.runner.enter()
	if t, ok := f.tables[id]; ok {
		return t, nil
	}
	return nil, domain.E(domain.KindNotFound, "table not found")
}

func (f *fakeTableRepo) FindByCode(ctx context.Context, venueID, code string) (*domain.Table, error) {
	f.runner.enter()
	for _, t := range f.tables {
		if t.VenueID == venueID && t.Code == code {
			return t, nil
		}
	}
	return nil, domain.E(domain.KindNotFound, "table not found")
}

func (f *fakeTableRepo) Create(ctx context.Context, table *domain.Table) error {
	f.runner.enter()
	f.tables[table.ID] = table
	return nil
}

type fakeMenuRepo struct {
	runner *fakeTxRunner
	items  map[string]*domain.MenuItem
}

func (f *fakeMenuRepo) FindByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	f.runner.enter()
	if m, ok := f.items[id]; ok {
		return m, nil
	}
	return nil, domain.E(domain.KindNotFound, "menu item not found")
}

func (f *fakeMenuRepo) ListByVenue(ctx context.Context, venueID string) ([]*domain.MenuItem, error) {
	f.runner.enter()
	var out []*domain.MenuItem
	for _, m := range f.items {
		if m.VenueID == venueID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeOrderRepo struct {
	runner  *fakeTxRunner
	created []*domain.Order
	events  []*domain.OutboxEvent
	// collisions makes the first N NumberExists calls report a taken
	// number.
	collisions   int
	numberChecks int
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *domain.Order, event *domain.OutboxEvent) error {
	f.runner.enter()
	f.created = append(f.created, order)
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	f.runner.enter()
	return nil, domain.E(domain.KindNotFound, "order not found")
}

func (f *fakeOrderRepo) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	f.runner.enter()
	return nil, domain.E(domain.KindNotFound, "order not found")
}

func (f *fakeOrderRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	f.runner.enter()
	f.numberChecks++
	return f.numberChecks <= f.collisions, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, order *domain.Order, expectedVersion int, event *domain.OutboxEvent) error {
	f.runner.enter()
	return nil
}

func (f *fakeOrderRepo) MarkPaid(ctx context.Context, orderID string) error {
	f.runner.enter()
	return nil
}

func newTestService(orders *fakeOrderRepo) (*Service, *fakeTxRunner) {
	runner := &fakeTxRunner{}
	orders.runner = runner
	runner.repos = interfaces.TxRepos{
		Venues: &fakeVenueRepo{runner: runner, venues: map[string]*domain.Venue{
			"v1": {ID: "v1", Name: "La Piazza", Slug: "la-piazza", Active: true, AcceptsCash: true, AcceptsCard: true},
			"v2": {ID: "v2", Name: "Closed Bar", Slug: "closed-bar", Active: false, AcceptsCash: true},
		}},
		Tables: &fakeTableRepo{runner: runner, tables: map[string]*domain.Table{
			"t1": {ID: "t1", VenueID: "v1", Code: "T7", Name: "Table 7", Active: true},
			"t2": {ID: "t2", VenueID: "v1", Code: "T8", Name: "Table 8", Active: false},
			"t3": {ID: "t3", VenueID: "v2", Code: "B1", Name: "Bar 1", Active: true},
		}},
		Menu: &fakeMenuRepo{runner: runner, items: map[string]*domain.MenuItem{
			"m1": {ID: "m1", VenueID: "v1", Name: "Margherita", Price: 850, Available: true, PrepMinutes: 15},
			"m2": {ID: "m2", VenueID: "v1", Name: "Lemonade", Price: 300, Available: true, PrepMinutes: 2},
			"m3": {ID: "m3", VenueID: "v1", Name: "Tiramisu", Price: 500, Available: false, PrepMinutes: 5},
			"m4": {ID: "m4", VenueID: "v2", Name: "Stout", Price: 700, Available: true, PrepMinutes: 1},
		}},
		Orders: orders,
	}
	return NewService(runner, nopLogger{}, testMetrics, "https://qrdine.example.com/"), runner
}

func validCommand() interfaces.CreateOrderCommand {
	return interfaces.CreateOrderCommand{
		VenueID:       "v1",
		TableID:       "t1",
		PaymentMethod: "cash",
		Items: []interfaces.OrderLineCommand{
			{MenuItemID: "m1", Quantity: 2},
			{MenuItemID: "m2", Quantity: 1, Instructions: "  no ice "},
		},
	}
}

func TestCreateOrderPricesFromCatalog(t *testing.T) {
	orders := &fakeOrderRepo{}
	svc, _ := newTestService(orders)

	result, err := svc.CreateOrder(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	if want := int64(850*2 + 300); result.TotalAmount != want {
		t.Errorf("TotalAmount = %d, want %d", result.TotalAmount, want)
	}
	if len(orders.created) != 1 {
		t.Fatalf("persisted %d orders, want 1", len(orders.created))
	}

	order := orders.created[0]
	if order.Items[0].UnitPrice != 850 || order.Items[0].LineTotal != 1700 {
		t.Errorf("first line priced %d/%d, want 850/1700", order.Items[0].UnitPrice, order.Items[0].LineTotal)
	}
	if order.Items[1].Instructions == nil || *order.Items[1].Instructions != "no ice" {
		t.Errorf("Instructions = %v, want trimmed %q", order.Items[1].Instructions, "no ice")
	}
	if order.TableName != "Table 7" {
		t.Errorf("TableName = %q, want %q", order.TableName, "Table 7")
	}

	// Slowest line is 15 minutes plus 2 for the extra line.
	if result.EstimatedMinutes != 17 {
		t.Errorf("EstimatedMinutes = %d, want 17", result.EstimatedMinutes)
	}
	if want := "https://qrdine.example.com/orders/" + result.OrderNumber; result.TrackingURL != want {
		t.Errorf("TrackingURL = %q, want %q", result.TrackingURL, want)
	}
}

func TestCreateOrderRunsInOneTransaction(t *testing.T) {
	orders := &fakeOrderRepo{}
	svc, runner := newTestService(orders)

	if _, err := svc.CreateOrder(context.Background(), validCommand()); err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	if runner.calls != 1 {
		t.Errorf("opened %d transactions, want 1", runner.calls)
	}
	if runner.violations != 0 {
		t.Errorf("%d repository calls outside the transaction, want 0", runner.violations)
	}
}

func TestCreateOrderPreservesLineOrder(t *testing.T) {
	orders := &fakeOrderRepo{}
	svc, _ := newTestService(orders)

	// Lemonade first; alphabetical order would put Margherita first.
	cmd := validCommand()
	cmd.Items = []interfaces.OrderLineCommand{
		{MenuItemID: "m2", Quantity: 1},
		{MenuItemID: "m1", Quantity: 1},
	}

	if _, err := svc.CreateOrder(context.Background(), cmd); err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	order := orders.created[0]
	if order.Items[0].MenuItemID != "m2" || order.Items[1].MenuItemID != "m1" {
		t.Errorf("lines stored as [%s, %s], want submitted order [m2, m1]",
			order.Items[0].MenuItemID, order.Items[1].MenuItemID)
	}
	for i, item := range order.Items {
		if item.Position != i {
			t.Errorf("Items[%d].Position = %d, want %d", i, item.Position, i)
		}
	}
}

func TestCreateOrderNumberFormat(t *testing.T) {
	orders := &fakeOrderRepo{}
	svc, _ := newTestService(orders)

	result, err := svc.CreateOrder(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	number := result.OrderNumber
	if !strings.HasPrefix(number, orderNumberPrefix) {
		t.Fatalf("number %q missing prefix %q", number, orderNumberPrefix)
	}
	suffix := strings.TrimPrefix(number, orderNumberPrefix)
	if len(suffix) != 6 {
		t.Fatalf("suffix %q has length %d, want 6", suffix, len(suffix))
	}
	for _, c := range suffix {
		if !strings.ContainsRune(numberAlphabet, c) {
			t.Errorf("suffix character %q outside alphabet", c)
		}
	}
}

func TestCreateOrderEmitsCreationEvent(t *testing.T) {
	orders := &fakeOrderRepo{}
	svc, _ := newTestService(orders)

	if _, err := svc.CreateOrder(context.Background(), validCommand()); err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if len(orders.events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(orders.events))
	}
	if orders.events[0].Topic != interfaces.EventOrderCreated {
		t.Errorf("event topic = %q, want %q", orders.events[0].Topic, interfaces.EventOrderCreated)
	}
	if orders.events[0].EventID == "" {
		t.Error("event id must be set")
	}
}

func TestCreateOrderPreconditions(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(cmd *interfaces.CreateOrderCommand)
		wantKind domain.Kind
	}{
		{
			name:     "unknown venue",
			mutate:   func(cmd *interfaces.CreateOrderCommand) { cmd.VenueID = "nope" },
			wantKind: domain.KindNotFound,
		},
		{
			name:     "inactive venue",
			mutate:   func(cmd *interfaces.CreateOrderCommand) { cmd.VenueID = "v2"; cmd.TableID = "t3" },
			wantKind: domain.KindFailedPrecondition,
		},
		{
			name:     "table of another venue",
			mutate:   func(cmd *interfaces.CreateOrderCommand) { cmd.TableID = "t3" },
			wantKind: domain.KindNotFound,
		},
		{
			name:     "inactive table",
			mutate:   func(cmd *interfaces.CreateOrderCommand) { cmd.TableID = "t2" },
			wantKind: domain.KindFailedPrecondition,
		},
		{
			name:     "payment method not accepted",
			mutate:   func(cmd *interfaces.CreateOrderCommand) { cmd.PaymentMethod = "online" },
			wantKind: domain.KindFailedPrecondition,
		},
		{
			name:     "invalid payment method",
			mutate:   func(cmd *interfaces.CreateOrderCommand) { cmd.PaymentMethod = "barter" },
			wantKind: domain.KindInvalidArgument,
		},
		{
			name:     "no items",
			mutate:   func(cmd *interfaces.CreateOrderCommand) { cmd.Items = nil },
			wantKind: domain.KindInvalidArgument,
		},
		{
			name: "zero quantity",
			mutate: func(cmd *interfaces.CreateOrderCommand) {
				cmd.Items = []interfaces.OrderLineCommand{{MenuItemID: "m1", Quantity: 0}}
			},
			wantKind: domain.KindInvalidArgument,
		},
		{
			name: "unknown menu item",
			mutate: func(cmd *interfaces.CreateOrderCommand) {
				cmd.Items = []interfaces.OrderLineCommand{{MenuItemID: "missing", Quantity: 1}}
			},
			wantKind: domain.KindNotFound,
		},
		{
			name: "menu item of another venue",
			mutate: func(cmd *interfaces.CreateOrderCommand) {
				cmd.Items = []interfaces.OrderLineCommand{{MenuItemID: "m4", Quantity: 1}}
			},
			wantKind: domain.KindNotFound,
		},
		{
			name: "unavailable menu item",
			mutate: func(cmd *interfaces.CreateOrderCommand) {
				cmd.Items = append(cmd.Items, interfaces.OrderLineCommand{MenuItemID: "m3", Quantity: 1})
			},
			wantKind: domain.KindFailedPrecondition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &fakeOrderRepo{}
			svc, _ := newTestService(orders)

			cmd := validCommand()
			tt.mutate(&cmd)

			_, err := svc.CreateOrder(context.Background(), cmd)
			if err == nil {
				t.Fatal("CreateOrder succeeded, want error")
			}
			if got := domain.KindOf(err); got != tt.wantKind {
				t.Errorf("error kind = %q, want %q", got, tt.wantKind)
			}
			if len(orders.created) != 0 {
				t.Errorf("failed request persisted %d orders, want 0", len(orders.created))
			}
		})
	}
}

func TestCreateOrderRetriesNumberCollision(t *testing.T) {
	orders := &fakeOrderRepo{collisions: 2}
	svc, _ := newTestService(orders)

	result, err := svc.CreateOrder(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if orders.numberChecks != 3 {
		t.Errorf("NumberExists called %d times, want 3", orders.numberChecks)
	}
	if result.OrderNumber == "" {
		t.Error("order number must be set after retry")
	}
}

func TestCreateOrderGivesUpAfterCollisions(t *testing.T) {
	orders := &fakeOrderRepo{collisions: numberAttempts}
	svc, _ := newTestService(orders)

	_, err := svc.CreateOrder(context.Background(), validCommand())
	if err == nil {
		t.Fatal("CreateOrder succeeded, want error")
	}
	if got := domain.KindOf(err); got != domain.KindInternal {
		t.Errorf("error kind = %q, want %q", got, domain.KindInternal)
	}
	if len(orders.created) != 0 {
		t.Error("exhausted generation must not persist an order")
	}
}

func TestEstimateMinutes(t *testing.T) {
	tests := []struct {
		maxPrep   int
		lineCount int
		want      int
	}{
		{15, 2, 17},
		{2, 1, 10},
		{30, 5, 38},
		{0, 1, 10},
	}
	for _, tt := range tests {
		if got := estimateMinutes(tt.maxPrep, tt.lineCount); got != tt.want {
			t.Errorf("estimateMinutes(%d, %d) = %d, want %d", tt.maxPrep, tt.lineCount, got, tt.want)
		}
	}
}
