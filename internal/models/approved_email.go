package models

import "time"

// ApprovedEmail is an allow-list entry: permission for an email address to
// self-provision an account. Entries are created out-of-band by an
// administrator and are read-only to this service.
type ApprovedEmail struct {
	Email     string    `json:"email" db:"email"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
