package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/ivankudzin/pawmatch/internal/domain/enums"
)

type Swipe struct {
	ActorID   uuid.UUID      `json:"actor_id"`
	SubjectID uuid.UUID      `json:"subject_id"`
	Decision  enums.Decision `json:"decision"`
	CreatedAt time.Time      `json:"created_at"`
	SwipedAt  time.Time      `json:"swiped_at"`
}

func (s Swipe) IsLike() bool {
	return s.Decision.IsPositive()
}
