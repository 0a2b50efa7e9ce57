package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ivankudzin/pawmatch/internal/domain/model"
)

type MatchItemResponse struct {
	ParticipantLow  string    `json:"participant_low"`
	ParticipantHigh string    `json:"participant_high"`
	CounterpartID   string    `json:"counterpart_id"`
	CreatedAt       time.Time `json:"created_at"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}

// NewMatchItem renders m from viewer's side.
func NewMatchItem(m model.Match, viewer uuid.UUID) MatchItemResponse {
	return MatchItemResponse{
		ParticipantLow:  m.ParticipantLow.String(),
		ParticipantHigh: m.ParticipantHigh.String(),
		CounterpartID:   m.Counterpart(viewer).String(),
		CreatedAt:       m.CreatedAt,
	}
}
