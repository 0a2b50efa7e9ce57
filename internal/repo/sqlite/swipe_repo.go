package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ivankudzin/pawmatch/internal/domain"
	"github.com/ivankudzin/pawmatch/internal/domain/enums"
	"github.com/ivankudzin/pawmatch/internal/domain/model"
)

type SwipeRepo struct {
	db *sql.DB
	tx *TxManager
}

func NewSwipeRepo(db *sql.DB) *SwipeRepo {
	return &SwipeRepo{db: db, tx: NewTxManager(db)}
}

// Upsert records the live decision for (actorID, subjectID). The existence
// probe and the write share one transaction, so the created flag is exact.
func (r *SwipeRepo) Upsert(ctx context.Context, actorID, subjectID uuid.UUID, decision enums.Decision, now time.Time) (model.Swipe, bool, error) {
	if err := validateSwipeKey(actorID, subjectID); err != nil {
		return model.Swipe{}, false, err
	}
	if !decision.Valid() {
		return model.Swipe{}, false, fmt.Errorf("unknown decision %q: %w", decision, domain.ErrInvalidInput)
	}

	var (
		swipe   model.Swipe
		created bool
	)
	err := r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		q := querierFromCtx(txCtx, r.db)
		at := now.UTC().UnixMicro()

		var createdAt int64
		err := q.QueryRowContext(txCtx, `
			SELECT created_at FROM swipes WHERE actor_id = ? AND subject_id = ?
		`, actorID, subjectID).Scan(&createdAt)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := q.ExecContext(txCtx, `
				INSERT INTO swipes (actor_id, subject_id, decision, created_at, swiped_at)
				VALUES (?, ?, ?, ?, ?)
			`, actorID, subjectID, string(decision), at, at); err != nil {
				return mapError(err, "insert swipe")
			}
			created = true
			createdAt = at
		case err != nil:
			return mapError(err, "probe swipe")
		default:
			if _, err := q.ExecContext(txCtx, `
				UPDATE swipes SET decision = ?, swiped_at = ?
				WHERE actor_id = ? AND subject_id = ?
			`, string(decision), at, actorID, subjectID); err != nil {
				return mapError(err, "update swipe")
			}
		}

		swipe = model.Swipe{
			ActorID:   actorID,
			SubjectID: subjectID,
			Decision:  decision,
			CreatedAt: time.UnixMicro(createdAt).UTC(),
			SwipedAt:  time.UnixMicro(at).UTC(),
		}
		return nil
	})
	if err != nil {
		return model.Swipe{}, false, err
	}
	return swipe, created, nil
}

func (r *SwipeRepo) Get(ctx context.Context, actorID, subjectID uuid.UUID) (model.Swipe, bool, error) {
	if err := validateSwipeKey(actorID, subjectID); err != nil {
		return model.Swipe{}, false, err
	}

	var (
		decision             string
		createdAt, swipedAt int64
	)
	err := querierFromCtx(ctx, r.db).QueryRowContext(ctx, `
		SELECT decision, created_at, swiped_at
		FROM swipes
		WHERE actor_id = ? AND subject_id = ?
	`, actorID, subjectID).Scan(&decision, &createdAt, &swipedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Swipe{}, false, nil
	}
	if err != nil {
		return model.Swipe{}, false, mapError(err, "get swipe")
	}

	return model.Swipe{
		ActorID:   actorID,
		SubjectID: subjectID,
		Decision:  enums.Decision(decision),
		CreatedAt: time.UnixMicro(createdAt).UTC(),
		SwipedAt:  time.UnixMicro(swipedAt).UTC(),
	}, true, nil
}

func (r *SwipeRepo) Count(ctx context.Context, actorID, subjectID uuid.UUID) (int, error) {
	var n int
	if err := querierFromCtx(ctx, r.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM swipes WHERE actor_id = ? AND subject_id = ?
	`, actorID, subjectID).Scan(&n); err != nil {
		return 0, mapError(err, "count swipes")
	}
	return n, nil
}

func validateSwipeKey(actorID, subjectID uuid.UUID) error {
	if actorID == uuid.Nil || subjectID == uuid.Nil {
		return fmt.Errorf("swipe ids must be set: %w", domain.ErrInvalidInput)
	}
	if actorID == subjectID {
		return fmt.Errorf("actor cannot swipe on itself: %w", domain.ErrInvalidInput)
	}
	return nil
}
