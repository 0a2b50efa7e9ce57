package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ivankudzin/pawmatch/internal/domain"
	"github.com/ivankudzin/pawmatch/internal/domain/model"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type MatchRepo struct {
	db Querier
}

func NewMatchRepo(db Querier) *MatchRepo {
	return &MatchRepo{db: db}
}

// CreateIfAbsent inserts the match for pair unless one already exists. The
// primary key on (participant_low, participant_high) is what guarantees a
// single row; losing the insert race falls back to reading the winner.
func (r *MatchRepo) CreateIfAbsent(ctx context.Context, pair model.Pair, now time.Time) (model.Match, bool, error) {
	if !pair.Valid() {
		return model.Match{}, false, fmt.Errorf("%w: invalid match pair", domain.ErrInvalidInput)
	}
	if now.IsZero() {
		now = time.Now()
	}

	var m model.Match
	err := querierFromCtx(ctx, r.db).QueryRow(ctx, `
INSERT INTO matches (
	participant_low,
	participant_high,
	created_at
) VALUES ($1, $2, $3)
ON CONFLICT (participant_low, participant_high) DO NOTHING
RETURNING participant_low, participant_high, created_at
`, pair.Low, pair.High, now.UTC()).Scan(
		&m.ParticipantLow,
		&m.ParticipantHigh,
		&m.CreatedAt,
	)
	if err == nil {
		return m, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Match{}, false, mapError(err, "create match")
	}

	existing, found, err := r.Get(ctx, pair)
	if err != nil {
		return model.Match{}, false, err
	}
	if !found {
		// Conflicting row is not visible yet; let the caller replay.
		return model.Match{}, false, fmt.Errorf("create match %s: %w", pair.Key(), domain.ErrConflict)
	}
	return existing, false, nil
}

func (r *MatchRepo) Get(ctx context.Context, pair model.Pair) (model.Match, bool, error) {
	if !pair.Valid() {
		return model.Match{}, false, fmt.Errorf("%w: invalid match pair", domain.ErrInvalidInput)
	}

	var m model.Match
	err := querierFromCtx(ctx, r.db).QueryRow(ctx, `
SELECT participant_low, participant_high, created_at
FROM matches
WHERE participant_low = $1 AND participant_high = $2
`, pair.Low, pair.High).Scan(
		&m.ParticipantLow,
		&m.ParticipantHigh,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, false, nil
		}
		return model.Match{}, false, mapError(err, "get match")
	}
	return m, true, nil
}

// FindByParticipant streams every match involving id, oldest first. Rows are
// read lazily and released when the consumer stops iterating.
func (r *MatchRepo) FindByParticipant(ctx context.Context, id uuid.UUID) iter.Seq2[model.Match, error] {
	return func(yield func(model.Match, error) bool) {
		if id == uuid.Nil {
			yield(model.Match{}, fmt.Errorf("%w: participant id is required", domain.ErrInvalidInput))
			return
		}

		query, args, err := psql.
			Select("participant_low", "participant_high", "created_at").
			From("matches").
			Where(sq.Or{
				sq.Eq{"participant_low": id},
				sq.Eq{"participant_high": id},
			}).
			OrderBy("created_at ASC", "participant_low ASC", "participant_high ASC").
			ToSql()
		if err != nil {
			yield(model.Match{}, fmt.Errorf("build match listing query: %w", err))
			return
		}

		rows, err := querierFromCtx(ctx, r.db).Query(ctx, query, args...)
		if err != nil {
			yield(model.Match{}, mapError(err, "list matches"))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var m model.Match
			if err := rows.Scan(&m.ParticipantLow, &m.ParticipantHigh, &m.CreatedAt); err != nil {
				yield(model.Match{}, mapError(err, "scan match"))
				return
			}
			if !yield(m, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(model.Match{}, mapError(err, "iterate matches"))
		}
	}
}

// CountByPair inspects storage directly; it bypasses the primary key so tests
// can assert the single-row invariant.
func (r *MatchRepo) CountByPair(ctx context.Context, pair model.Pair) (int, error) {
	var n int
	if err := querierFromCtx(ctx, r.db).QueryRow(ctx, `
SELECT COUNT(*)
FROM matches
WHERE participant_low = $1 AND participant_high = $2
`, pair.Low, pair.High).Scan(&n); err != nil {
		return 0, mapError(err, "count matches")
	}
	return n, nil
}
