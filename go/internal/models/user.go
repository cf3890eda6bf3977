package models

import (
	"time"

	"github.com/google/uuid"
)

// Role determines how a user's taps are scored and what they may administer.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleSpecial  Role = "SPECIAL"
	RoleStandard Role = "STANDARD"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSpecial, RoleStandard:
		return true
	}
	return false
}

// User represents a player. Role is fixed the first time the username is seen.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
