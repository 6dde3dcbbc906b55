package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the application-level user record, joined 1:1 to the auth
// provider's identity record by sharing its user id as primary key.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
