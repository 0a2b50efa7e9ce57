package enums

type MatchOutcome string

const (
	OutcomeNoMatch        MatchOutcome = "no_match"
	OutcomeMatchCreated   MatchOutcome = "match_created"
	OutcomeAlreadyMatched MatchOutcome = "already_matched"
)
