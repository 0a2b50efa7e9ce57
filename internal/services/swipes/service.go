// Package swipes is the single write path for swipes and matches.
package swipes

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/ivankudzin/pawmatch/internal/domain"
	"github.com/ivankudzin/pawmatch/internal/domain/enums"
	"github.com/ivankudzin/pawmatch/internal/domain/model"
)

const (
	defaultConflictRetries = 3
	defaultRetryBase       = 10 * time.Millisecond
)

type Ledger interface {
	Upsert(ctx context.Context, actorID, subjectID uuid.UUID, decision enums.Decision, now time.Time) (model.Swipe, bool, error)
	Get(ctx context.Context, actorID, subjectID uuid.UUID) (model.Swipe, bool, error)
}

type MatchStore interface {
	CreateIfAbsent(ctx context.Context, pair model.Pair, now time.Time) (model.Match, bool, error)
	Get(ctx context.Context, pair model.Pair) (model.Match, bool, error)
	FindByParticipant(ctx context.Context, participantID uuid.UUID) iter.Seq2[model.Match, error]
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(context.Context) error) error
}

// PairLocker serializes transactions touching the same unordered pair.
// Backends that already serialize all writers leave it nil.
type PairLocker interface {
	LockPair(ctx context.Context, pair model.Pair) error
}

type RateLimiter interface {
	AllowSwipe(ctx context.Context, actor uuid.UUID) (int64, bool, error)
	RetryAfter(ctx context.Context, actor uuid.UUID) (int64, error)
}

type Dependencies struct {
	Tx          TxRunner
	Ledger      Ledger
	Matches     MatchStore
	Locker      PairLocker
	RateLimiter RateLimiter
	Logger      *zap.Logger
}

// Config zero values fall back to 3 conflict retries and a 10ms backoff base.
type Config struct {
	ConflictRetries int
	RetryBase       time.Duration
}

type Service struct {
	tx          TxRunner
	ledger      Ledger
	matches     MatchStore
	locker      PairLocker
	rateLimiter RateLimiter
	resolver    *Resolver
	log         *zap.Logger
	cfg         Config
	now         func() time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.ConflictRetries <= 0 {
		cfg.ConflictRetries = defaultConflictRetries
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = defaultRetryBase
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{
		tx:          deps.Tx,
		ledger:      deps.Ledger,
		matches:     deps.Matches,
		locker:      deps.Locker,
		rateLimiter: deps.RateLimiter,
		log:         log,
		cfg:         cfg,
		now:         time.Now,
	}
	s.resolver = NewResolver(deps.Ledger, deps.Matches, func() time.Time { return s.now() })
	return s
}

// RecordSwipe stores actor's decision on subject and creates the match when
// the decision completes a mutual like. The swipe and the match check commit
// together or not at all, so replaying a failed call is safe.
func (s *Service) RecordSwipe(ctx context.Context, actor, subject uuid.UUID, rawDecision string) (SwipeResult, error) {
	decision, ok := enums.ParseDecision(rawDecision)
	if !ok {
		return SwipeResult{}, fmt.Errorf("%w: unsupported decision %q", domain.ErrInvalidInput, rawDecision)
	}
	if actor == uuid.Nil || subject == uuid.Nil {
		return SwipeResult{}, fmt.Errorf("%w: actor and subject ids are required", domain.ErrInvalidInput)
	}
	if actor == subject {
		return SwipeResult{}, fmt.Errorf("%w: actor cannot swipe on itself", domain.ErrInvalidInput)
	}
	if s.tx == nil || s.ledger == nil || s.matches == nil {
		return SwipeResult{}, fmt.Errorf("swipe dependencies are not configured")
	}

	if err := s.checkRate(ctx, actor); err != nil {
		return SwipeResult{}, err
	}

	var (
		result   SwipeResult
		attempts int
	)
	backoff := retry.WithMaxRetries(uint64(s.cfg.ConflictRetries), retry.NewExponential(s.cfg.RetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		res, err := s.recordOnce(ctx, actor, subject, decision)
		if errors.Is(err, domain.ErrConflict) {
			s.log.Warn("swipe conflict, retrying",
				zap.String("actor_id", actor.String()),
				zap.String("subject_id", subject.String()),
				zap.Int("attempt", attempts),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return SwipeResult{}, fmt.Errorf("%w: swipe still conflicting after %d attempts: %v", domain.ErrStorageUnavailable, attempts, err)
		}
		return SwipeResult{}, err
	}

	if result.Outcome.Matched() {
		s.log.Info("match_created",
			zap.String("participant_low", result.Outcome.Match.ParticipantLow.String()),
			zap.String("participant_high", result.Outcome.Match.ParticipantHigh.String()),
		)
	}

	return result, nil
}

func (s *Service) recordOnce(ctx context.Context, actor, subject uuid.UUID, decision enums.Decision) (SwipeResult, error) {
	var result SwipeResult

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if s.locker != nil {
			if err := s.locker.LockPair(txCtx, model.NewPair(actor, subject)); err != nil {
				return err
			}
		}

		swipe, created, err := s.ledger.Upsert(txCtx, actor, subject, decision, s.now().UTC())
		if err != nil {
			return err
		}

		outcome, err := s.resolver.TryResolve(txCtx, actor, subject, decision)
		if err != nil {
			return err
		}

		result = SwipeResult{Swipe: swipe, Created: created, Outcome: outcome}
		return nil
	})
	if err != nil {
		return SwipeResult{}, err
	}
	return result, nil
}

// checkRate fails open: a throttling outage must not block swipes.
func (s *Service) checkRate(ctx context.Context, actor uuid.UUID) error {
	if s.rateLimiter == nil {
		return nil
	}

	retryAfter, allowed, err := s.rateLimiter.AllowSwipe(ctx, actor)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.log.Warn("swipe rate limiter unavailable", zap.String("actor_id", actor.String()), zap.Error(err))
		return nil
	}
	if !allowed {
		return TooFastError{RetryAfterSec: retryAfter}
	}
	return nil
}

// ListMatches returns every match of participant, oldest first.
func (s *Service) ListMatches(ctx context.Context, participant uuid.UUID) ([]model.Match, error) {
	if participant == uuid.Nil {
		return nil, fmt.Errorf("%w: participant id is required", domain.ErrInvalidInput)
	}
	if s.matches == nil {
		return nil, fmt.Errorf("match store is nil")
	}

	out := make([]model.Match, 0)
	for match, err := range s.matches.FindByParticipant(ctx, participant) {
		if err != nil {
			return nil, err
		}
		out = append(out, match)
	}
	return out, nil
}

// GetMatch returns the match between a and b, or domain.ErrNotFound.
func (s *Service) GetMatch(ctx context.Context, a, b uuid.UUID) (model.Match, error) {
	pair := model.NewPair(a, b)
	if !pair.Valid() {
		return model.Match{}, fmt.Errorf("%w: invalid match pair", domain.ErrInvalidInput)
	}
	if s.matches == nil {
		return model.Match{}, fmt.Errorf("match store is nil")
	}

	match, found, err := s.matches.Get(ctx, pair)
	if err != nil {
		return model.Match{}, err
	}
	if !found {
		return model.Match{}, fmt.Errorf("match %s: %w", pair.Key(), domain.ErrNotFound)
	}
	return match, nil
}

// Throttle reports whether actor is currently rate limited, without
// consuming a swipe slot. Like checkRate it fails open.
func (s *Service) Throttle(ctx context.Context, actor uuid.UUID) (ThrottleState, error) {
	if actor == uuid.Nil {
		return ThrottleState{}, fmt.Errorf("%w: actor id is required", domain.ErrInvalidInput)
	}
	if s.rateLimiter == nil {
		return ThrottleState{}, nil
	}

	retryAfter, err := s.rateLimiter.RetryAfter(ctx, actor)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ThrottleState{}, ctxErr
		}
		s.log.Warn("swipe rate limiter unavailable", zap.String("actor_id", actor.String()), zap.Error(err))
		return ThrottleState{}, nil
	}
	return ThrottleState{Limited: retryAfter > 0, RetryAfterSec: retryAfter}, nil
}
