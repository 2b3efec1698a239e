package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/YelzhanWeb/qrdine/internal/domain"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

// Read-only accessors over the catalog entities, plus the single
// catalog write this service owns: table creation.

type venueRepository struct {
	db DB
}

func NewVenueRepository(db DB) interfaces.VenueRepository {
	return &venueRepository{db: db}
}

const venueColumns = `id, name, slug, active, accepts_cash, accepts_card, accepts_online, created_at`

func (r *venueRepository) FindByID(ctx context.Context, id string) (*domain.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE id = $1`
	return r.scanVenue(r.db.QueryRow(ctx, query, id))
}

func (r *venueRepository) FindBySlug(ctx context.Context, slug string) (*domain.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE slug = $1`
	return r.scanVenue(r.db.QueryRow(ctx, query, slug))
}

func (r *venueRepository) scanVenue(row Row) (*domain.Venue, error) {
	var v domain.Venue
	err := row.Scan(&v.ID, &v.Name, &v.Slug, &v.Active,
		&v.AcceptsCash, &v.AcceptsCard, &v.AcceptsOnline, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.E(domain.KindNotFound, "venue not found")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to load venue", err)
	}
	return &v, nil
}

type tableRepository struct {
	db DB
}

func NewTableRepository(db DB) interfaces.TableRepository {
	return &tableRepository{db: db}
}

const tableColumns = `id, venue_id, code, name, zone, active, qr_image_ref, created_at`

func (r *tableRepository) FindByID(ctx context.Context, id string) (*domain.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM tables WHERE id = $1`
	return r.scanTable(r.db.QueryRow(ctx, query, id))
}

func (r *tableRepository) FindByCode(ctx context.Context, venueID, code string) (*domain.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM tables WHERE venue_id = $1 AND code = $2`
	return r.scanTable(r.db.QueryRow(ctx, query, venueID, code))
}

func (r *tableRepository) Create(ctx context.Context, table *domain.Table) error {
	if table.ID == "" {
		table.ID = uuid.NewString()
	}
	query := `
		INSERT INTO tables (id, venue_id, code, name, zone, active, qr_image_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		table.ID, table.VenueID, table.Code, table.Name,
		table.Zone, table.Active, table.QRImageRef, table.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Ef(domain.KindAlreadyExists, "table code %q already exists in venue", table.Code)
		}
		return domain.Wrap(domain.KindInternal, "failed to create table", err)
	}
	return nil
}

func (r *tableRepository) scanTable(row Row) (*domain.Table, error) {
	var t domain.Table
	err := row.Scan(&t.ID, &t.VenueID, &t.Code, &t.Name,
		&t.Zone, &t.Active, &t.QRImageRef, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.E(domain.KindNotFound, "table not found")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to load table", err)
	}
	return &t, nil
}

type menuItemRepository struct {
	db DB
}

func NewMenuItemRepository(db DB) interfaces.MenuItemRepository {
	return &menuItemRepository{db: db}
}

const menuItemColumns = `id, venue_id, name, description, price, category, available, prep_minutes, sort_order`

func (r *menuItemRepository) FindByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1`

	var m domain.MenuItem
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.VenueID, &m.Name, &m.Description, &m.Price,
		&m.Category, &m.Available, &m.PrepMinutes, &m.SortOrder,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.E(domain.KindNotFound, "menu item not found")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to load menu item", err)
	}
	return &m, nil
}

func (r *menuItemRepository) ListByVenue(ctx context.Context, venueID string) ([]*domain.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE venue_id = $1 ORDER BY sort_order, name`

	rows, err := r.db.Query(ctx, query, venueID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to list menu items", err)
	}
	defer rows.Close()

	var items []*domain.MenuItem
	for rows.Next() {
		var m domain.MenuItem
		if err := rows.Scan(&m.ID, &m.VenueID, &m.Name, &m.Description, &m.Price,
			&m.Category, &m.Available, &m.PrepMinutes, &m.SortOrder); err != nil {
			return nil, domain.Wrap(domain.KindInternal, "failed to scan menu item", err)
		}
		items = append(items, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to read menu items", err)
	}
	return items, nil
}

type staffRepository struct {
	db DB
}

func NewStaffRepository(db DB) interfaces.StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) FindByToken(ctx context.Context, token string) (*domain.StaffPrincipal, error) {
	query := `SELECT staff_id, venue_id, role, name FROM staff_tokens WHERE token = $1`

	var p domain.StaffPrincipal
	err := r.db.QueryRow(ctx, query, token).Scan(&p.ID, &p.VenueID, &p.Role, &p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.E(domain.KindUnauthenticated, "unknown staff token")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to resolve staff token", err)
	}
	return &p, nil
}
