package models

import (
	"time"

	"github.com/google/uuid"
)

// Refresh token as it kept in the owner's token set
type RefreshToken struct {
	Token     string
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by TokenManager and returned by AuthService
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
