package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ivankudzin/pawmatch/internal/domain"
	"github.com/ivankudzin/pawmatch/internal/domain/enums"
	"github.com/ivankudzin/pawmatch/internal/domain/model"
)

type SwipeRepo struct {
	db Querier
}

func NewSwipeRepo(db Querier) *SwipeRepo {
	return &SwipeRepo{db: db}
}

// Upsert records the actor's decision on subject. A repeat swipe overwrites
// decision and swiped_at in place; created reports whether the row is new.
func (r *SwipeRepo) Upsert(ctx context.Context, actorID, subjectID uuid.UUID, decision enums.Decision, now time.Time) (model.Swipe, bool, error) {
	if err := validateSwipeKey(actorID, subjectID); err != nil {
		return model.Swipe{}, false, err
	}
	if !decision.Valid() {
		return model.Swipe{}, false, fmt.Errorf("%w: unsupported decision %q", domain.ErrInvalidInput, decision)
	}
	if now.IsZero() {
		now = time.Now()
	}

	var (
		rec      model.Swipe
		raw      string
		inserted bool
	)
	err := querierFromCtx(ctx, r.db).QueryRow(ctx, `
INSERT INTO swipes (
	actor_id,
	subject_id,
	decision,
	created_at,
	swiped_at
) VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (actor_id, subject_id) DO UPDATE SET
	decision = EXCLUDED.decision,
	swiped_at = EXCLUDED.swiped_at
RETURNING actor_id, subject_id, decision, created_at, swiped_at, (xmax = 0) AS inserted
`, actorID, subjectID, string(decision), now.UTC()).Scan(
		&rec.ActorID,
		&rec.SubjectID,
		&raw,
		&rec.CreatedAt,
		&rec.SwipedAt,
		&inserted,
	)
	if err != nil {
		return model.Swipe{}, false, mapError(err, "upsert swipe")
	}
	rec.Decision = enums.Decision(raw)

	return rec, inserted, nil
}

func (r *SwipeRepo) Get(ctx context.Context, actorID, subjectID uuid.UUID) (model.Swipe, bool, error) {
	if err := validateSwipeKey(actorID, subjectID); err != nil {
		return model.Swipe{}, false, err
	}

	var (
		rec model.Swipe
		raw string
	)
	err := querierFromCtx(ctx, r.db).QueryRow(ctx, `
SELECT actor_id, subject_id, decision, created_at, swiped_at
FROM swipes
WHERE actor_id = $1 AND subject_id = $2
`, actorID, subjectID).Scan(
		&rec.ActorID,
		&rec.SubjectID,
		&raw,
		&rec.CreatedAt,
		&rec.SwipedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Swipe{}, false, nil
		}
		return model.Swipe{}, false, mapError(err, "get swipe")
	}
	rec.Decision = enums.Decision(raw)

	return rec, true, nil
}

// Count is used by operators and tests to inspect the ledger directly.
func (r *SwipeRepo) Count(ctx context.Context, actorID, subjectID uuid.UUID) (int, error) {
	var n int
	if err := querierFromCtx(ctx, r.db).QueryRow(ctx, `
SELECT COUNT(*)
FROM swipes
WHERE actor_id = $1 AND subject_id = $2
`, actorID, subjectID).Scan(&n); err != nil {
		return 0, mapError(err, "count swipes")
	}
	return n, nil
}

func validateSwipeKey(actorID, subjectID uuid.UUID) error {
	if actorID == uuid.Nil || subjectID == uuid.Nil {
		return fmt.Errorf("%w: actor and subject ids are required", domain.ErrInvalidInput)
	}
	if actorID == subjectID {
		return fmt.Errorf("%w: actor cannot swipe on itself", domain.ErrInvalidInput)
	}
	return nil
}
