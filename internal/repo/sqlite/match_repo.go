package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/ivankudzin/pawmatch/internal/domain"
	"github.com/ivankudzin/pawmatch/internal/domain/model"
)

var matchColumns = []string{"participant_low", "participant_high", "created_at"}

type MatchRepo struct {
	db *sql.DB
}

func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

func (r *MatchRepo) CreateIfAbsent(ctx context.Context, pair model.Pair, now time.Time) (model.Match, bool, error) {
	if !pair.Valid() {
		return model.Match{}, false, fmt.Errorf("invalid match pair: %w", domain.ErrInvalidInput)
	}

	res, err := querierFromCtx(ctx, r.db).ExecContext(ctx, `
		INSERT INTO matches (participant_low, participant_high, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (participant_low, participant_high) DO NOTHING
	`, pair.Low, pair.High, now.UTC().UnixMicro())
	if err != nil {
		return model.Match{}, false, mapError(err, "insert match")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return model.Match{}, false, mapError(err, "insert match rows affected")
	}

	match, found, err := r.Get(ctx, pair)
	if err != nil {
		return model.Match{}, false, err
	}
	if !found {
		return model.Match{}, false, fmt.Errorf("match vanished after insert: %w", domain.ErrConflict)
	}
	return match, affected == 1, nil
}

func (r *MatchRepo) Get(ctx context.Context, pair model.Pair) (model.Match, bool, error) {
	if !pair.Valid() {
		return model.Match{}, false, fmt.Errorf("invalid match pair: %w", domain.ErrInvalidInput)
	}

	query, args, err := sq.Select(matchColumns...).
		From("matches").
		Where(sq.Eq{"participant_low": pair.Low, "participant_high": pair.High}).
		ToSql()
	if err != nil {
		return model.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	match, err := scanMatch(querierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Match{}, false, nil
	}
	if err != nil {
		return model.Match{}, false, mapError(err, "get match")
	}
	return match, true, nil
}

// FindByParticipant streams every match the participant belongs to, oldest
// first. The rows stay open until the consumer stops iterating.
func (r *MatchRepo) FindByParticipant(ctx context.Context, participantID uuid.UUID) iter.Seq2[model.Match, error] {
	return func(yield func(model.Match, error) bool) {
		query, args, err := sq.Select(matchColumns...).
			From("matches").
			Where(sq.Or{
				sq.Eq{"participant_low": participantID},
				sq.Eq{"participant_high": participantID},
			}).
			OrderBy("created_at ASC", "participant_low ASC", "participant_high ASC").
			ToSql()
		if err != nil {
			yield(model.Match{}, fmt.Errorf("build list matches query: %w", err))
			return
		}

		rows, err := querierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
		if err != nil {
			yield(model.Match{}, mapError(err, "list matches"))
			return
		}
		defer rows.Close()

		for rows.Next() {
			match, err := scanMatch(rows)
			if err != nil {
				yield(model.Match{}, mapError(err, "scan match"))
				return
			}
			if !yield(match, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(model.Match{}, mapError(err, "iterate matches"))
		}
	}
}

func (r *MatchRepo) CountByPair(ctx context.Context, pair model.Pair) (int, error) {
	var n int
	if err := querierFromCtx(ctx, r.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM matches WHERE participant_low = ? AND participant_high = ?
	`, pair.Low, pair.High).Scan(&n); err != nil {
		return 0, mapError(err, "count matches")
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (model.Match, error) {
	var (
		match     model.Match
		createdAt int64
	)
	if err := row.Scan(&match.ParticipantLow, &match.ParticipantHigh, &createdAt); err != nil {
		return model.Match{}, err
	}
	match.CreatedAt = time.UnixMicro(createdAt).UTC()
	return match, nil
}
