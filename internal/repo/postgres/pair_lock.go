package postgres

import (
	"context"
	"errors"

	"github.com/ivankudzin/pawmatch/internal/domain/model"
)

// PairLocker serializes writers of one canonical pair with a transaction
// scoped advisory lock. Both halves of a pair hash to the same key, so A->B
// and B->A swipes queue behind each other while unrelated pairs proceed.
type PairLocker struct{}

func NewPairLocker() *PairLocker {
	return &PairLocker{}
}

func (l *PairLocker) LockPair(ctx context.Context, pair model.Pair) error {
	tx, ok := txFromCtx(ctx)
	if !ok {
		return errors.New("pair lock requires a transaction")
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, pair.Key()); err != nil {
		return mapError(err, "lock pair "+pair.Key())
	}
	return nil
}
