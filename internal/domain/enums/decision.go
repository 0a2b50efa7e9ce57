package enums

import "strings"

type Decision string

const (
	DecisionLike Decision = "like"
	DecisionPass Decision = "pass"
)

// ParseDecision accepts inbound decision values case-insensitively.
func ParseDecision(raw string) (Decision, bool) {
	switch Decision(strings.ToLower(strings.TrimSpace(raw))) {
	case DecisionLike:
		return DecisionLike, true
	case DecisionPass:
		return DecisionPass, true
	default:
		return "", false
	}
}

func (d Decision) Valid() bool {
	return d == DecisionLike || d == DecisionPass
}

func (d Decision) IsPositive() bool {
	return d == DecisionLike
}
