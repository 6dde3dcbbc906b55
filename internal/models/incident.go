package models

import (
	"time"

	"github.com/google/uuid"
)

// ProvisioningIncident records an identity record that was created at the
// auth provider but whose profile row could not be written, leaving the pair
// inconsistent. Incidents are retried by a background job and kept for
// operator review.
type ProvisioningIncident struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Email      string     `json:"email" db:"email"`
	IdentityID uuid.UUID  `json:"identity_id" db:"identity_id"`
	Role       Role       `json:"role" db:"role"`
	Detail     string     `json:"detail" db:"detail"`
	Resolved   bool       `json:"resolved" db:"resolved"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
}
