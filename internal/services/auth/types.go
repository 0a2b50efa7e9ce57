package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrUnauthorized = errors.New("unauthorized")

type AccessClaims struct {
	Subject   uuid.UUID
	TokenID   string
	ExpiresAt time.Time
}
