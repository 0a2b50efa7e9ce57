package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ivankudzin/pawmatch/internal/domain/model"
	swipesvc "github.com/ivankudzin/pawmatch/internal/services/swipes"
)

// SwipeRequest is validated structurally here; decision spelling is
// normalized by the swipe service.
type SwipeRequest struct {
	SubjectID string `json:"subject_id" validate:"required,uuid"`
	Decision  string `json:"decision" validate:"required,max=16"`
}

type SwipeItemResponse struct {
	ActorID   string    `json:"actor_id"`
	SubjectID string    `json:"subject_id"`
	Decision  string    `json:"decision"`
	CreatedAt time.Time `json:"created_at"`
	SwipedAt  time.Time `json:"swiped_at"`
}

type SwipeResponse struct {
	Swipe   SwipeItemResponse  `json:"swipe"`
	Created bool               `json:"created"`
	Outcome string             `json:"outcome"`
	Matched bool               `json:"matched"`
	Match   *MatchItemResponse `json:"match"`
}

func NewSwipeItem(s model.Swipe) SwipeItemResponse {
	return SwipeItemResponse{
		ActorID:   s.ActorID.String(),
		SubjectID: s.SubjectID.String(),
		Decision:  string(s.Decision),
		CreatedAt: s.CreatedAt,
		SwipedAt:  s.SwipedAt,
	}
}

type ThrottleResponse struct {
	Limited       bool  `json:"limited"`
	RetryAfterSec int64 `json:"retry_after_sec"`
}

// NewSwipeResponse renders a swipe result as seen by viewer, normally the actor.
func NewSwipeResponse(result swipesvc.SwipeResult, viewer uuid.UUID) SwipeResponse {
	resp := SwipeResponse{
		Swipe:   NewSwipeItem(result.Swipe),
		Created: result.Created,
		Outcome: string(result.Outcome.Kind),
		Matched: result.Outcome.Matched(),
	}
	if result.Outcome.Match != nil {
		item := NewMatchItem(*result.Outcome.Match, viewer)
		resp.Match = &item
	}
	return resp
}
