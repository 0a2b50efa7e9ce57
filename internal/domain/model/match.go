package model

import (
	"time"

	"github.com/google/uuid"
)

type Match struct {
	ParticipantLow  uuid.UUID `json:"participant_low"`
	ParticipantHigh uuid.UUID `json:"participant_high"`
	CreatedAt       time.Time `json:"created_at"`
}

func (m Match) Pair() Pair {
	return Pair{Low: m.ParticipantLow, High: m.ParticipantHigh}
}

// Counterpart returns the other participant of the match, or uuid.Nil when id
// is not part of it.
func (m Match) Counterpart(id uuid.UUID) uuid.UUID {
	switch id {
	case m.ParticipantLow:
		return m.ParticipantHigh
	case m.ParticipantHigh:
		return m.ParticipantLow
	default:
		return uuid.Nil
	}
}
