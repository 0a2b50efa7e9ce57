package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// TxManager runs callbacks inside a Read Committed transaction carried by the
// context. Repositories pick it up through querierFromCtx. Nested RunInTx
// calls reuse the outer transaction.
type TxManager struct {
	db DB
}

func NewTxManager(db DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	if m == nil || m.db == nil {
		return errors.New("postgres pool is nil")
	}
	if _, ok := txFromCtx(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return mapError(err, "begin tx")
	}

	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError(err, "commit tx")
	}

	return nil
}
