package postgres

import (
	"context"

	"github.com/YelzhanWeb/qrdine/internal/domain"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

// Store hands out transaction-scoped repositories, so a service can
// run catalog reads and the writes they justify as one unit: either
// everything commits or nothing does.
type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(repos interfaces.TxRepos) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	bound := txDB{tx: tx}
	err = fn(interfaces.TxRepos{
		Venues: NewVenueRepository(bound),
		Tables: NewTableRepository(bound),
		Menu:   NewMenuItemRepository(bound),
		Orders: NewOrderRepository(bound),
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Wrap(domain.KindInternal, "failed to commit transaction", err)
	}
	return nil
}

// txDB adapts an open transaction to the DB surface the repositories
// take. Begin nests through a savepoint; Close is a no-op because the
// pool outlives the transaction.
type txDB struct {
	tx Tx
}

func (d txDB) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return d.tx.Query(ctx, sql, args...)
}

func (d txDB) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return d.tx.QueryRow(ctx, sql, args...)
}

func (d txDB) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return d.tx.Exec(ctx, sql, args...)
}

func (d txDB) Begin(ctx context.Context) (Tx, error) {
	return d.tx.Begin(ctx)
}

func (d txDB) Close() {}
