package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Email          string
	HashedPassword string
	Name           string
	Role           string
	Avatar         *string
	EmailVerified  bool
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
