package model

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the level of access an acting user has.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is the minimal identity projection needed for ownership checks
// and review rendering. Token issuance and credentials live upstream.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
