package swipes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ivankudzin/pawmatch/internal/domain/enums"
	"github.com/ivankudzin/pawmatch/internal/domain/model"
)

// Resolver turns a freshly recorded like into a match when the complementary
// swipe is also a like. It must run inside the transaction that recorded the
// swipe.
type Resolver struct {
	ledger  Ledger
	matches MatchStore
	now     func() time.Time
}

func NewResolver(ledger Ledger, matches MatchStore, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{ledger: ledger, matches: matches, now: now}
}

func (r *Resolver) TryResolve(ctx context.Context, actor, subject uuid.UUID, decision enums.Decision) (Outcome, error) {
	if !decision.IsPositive() {
		return noMatch(), nil
	}

	complement, found, err := r.ledger.Get(ctx, subject, actor)
	if err != nil {
		return Outcome{}, fmt.Errorf("read complementary swipe: %w", err)
	}
	if !found || !complement.IsLike() {
		return noMatch(), nil
	}

	match, created, err := r.matches.CreateIfAbsent(ctx, model.NewPair(actor, subject), r.now().UTC())
	if err != nil {
		return Outcome{}, fmt.Errorf("create match: %w", err)
	}

	kind := enums.OutcomeAlreadyMatched
	if created {
		kind = enums.OutcomeMatchCreated
	}
	return Outcome{Kind: kind, Match: &match}, nil
}
