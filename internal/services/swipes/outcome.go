package swipes

import (
	"github.com/ivankudzin/pawmatch/internal/domain/enums"
	"github.com/ivankudzin/pawmatch/internal/domain/model"
)

// Outcome is the match side effect of one swipe. Match is set for
// MatchCreated and AlreadyMatched.
type Outcome struct {
	Kind  enums.MatchOutcome
	Match *model.Match
}

func noMatch() Outcome {
	return Outcome{Kind: enums.OutcomeNoMatch}
}

func (o Outcome) Matched() bool {
	return o.Kind == enums.OutcomeMatchCreated
}

type SwipeResult struct {
	Swipe   model.Swipe
	Created bool
	Outcome Outcome
}

// ThrottleState is the actor's current swipe rate limit status.
type ThrottleState struct {
	Limited       bool
	RetryAfterSec int64
}
