package table

import (
	"context"
	"testing"

	"github.com/YelzhanWeb/qrdine/internal/domain"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

type nopLogger struct{}

func (nopLogger) Info(action, message, requestID string, details map[string]interface{})  {}
func (nopLogger) Debug(action, message, requestID string, details map[string]interface{}) {}
func (nopLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
}

type fakeTableRepo struct {
	created []*domain.Table
}

func (f *fakeTableRepo) FindByID(ctx context.Context, id string) (*domain.Table, error) {
	return nil, domain.E(domain.KindNotFound, "table not found")
}

func (f *fakeTableRepo) FindByCode(ctx context.Context, venueID, code string) (*domain.Table, error) {
	return nil, domain.E(domain.KindNotFound, "table not found")
}

func (f *fakeTableRepo) Create(ctx context.Context, table *domain.Table) error {
	for _, existing := range f.created {
		if existing.VenueID == table.VenueID && existing.Code == table.Code {
			return domain.Ef(domain.KindAlreadyExists, "table code %q already exists in venue", table.Code)
		}
	}
	f.created = append(f.created, table)
	return nil
}

func TestCreateTable(t *testing.T) {
	repo := &fakeTableRepo{}
	svc := NewService(repo, nopLogger{})
	principal := domain.StaffPrincipal{ID: "s1", VenueID: "v1", Role: "manager"}

	tbl, err := svc.CreateTable(context.Background(), interfaces.CreateTableCommand{
		Code:      "  T7 ",
		Principal: principal,
	})
	if err != nil {
		t.Fatalf("CreateTable returned error: %v", err)
	}

	if tbl.Code != "T7" {
		t.Errorf("Code = %q, want trimmed T7", tbl.Code)
	}
	if tbl.Name != "Table T7" {
		t.Errorf("Name = %q, want default %q", tbl.Name, "Table T7")
	}
	if tbl.VenueID != "v1" {
		t.Errorf("VenueID = %q, want caller's venue", tbl.VenueID)
	}
	if !tbl.Active {
		t.Error("new table must be active")
	}
	if len(repo.created) != 1 {
		t.Errorf("persisted %d tables, want 1", len(repo.created))
	}
}

func TestCreateTableRequiresCode(t *testing.T) {
	svc := NewService(&fakeTableRepo{}, nopLogger{})

	_, err := svc.CreateTable(context.Background(), interfaces.CreateTableCommand{
		Code:      "   ",
		Principal: domain.StaffPrincipal{VenueID: "v1"},
	})
	if domain.KindOf(err) != domain.KindInvalidArgument {
		t.Errorf("error = %v, want invalid-argument", err)
	}
}

func TestCreateTableDuplicateCode(t *testing.T) {
	repo := &fakeTableRepo{}
	svc := NewService(repo, nopLogger{})
	principal := domain.StaffPrincipal{VenueID: "v1"}

	if _, err := svc.CreateTable(context.Background(), interfaces.CreateTableCommand{Code: "T7", Principal: principal}); err != nil {
		t.Fatalf("first CreateTable returned error: %v", err)
	}
	_, err := svc.CreateTable(context.Background(), interfaces.CreateTableCommand{Code: "T7", Principal: principal})
	if domain.KindOf(err) != domain.KindAlreadyExists {
		t.Errorf("error = %v, want already-exists", err)
	}

	// Same code under another venue is fine.
	if _, err := svc.CreateTable(context.Background(), interfaces.CreateTableCommand{
		Code:      "T7",
		Principal: domain.StaffPrincipal{VenueID: "v2"},
	}); err != nil {
		t.Errorf("cross-venue CreateTable returned error: %v", err)
	}
}
