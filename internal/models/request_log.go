package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestLog is the append-only audit trail of a maintenance request.
// Exactly one entry is written per admin status-update action that changes
// the status or attaches a note.
type RequestLog struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	RequestID uuid.UUID     `json:"request_id" db:"request_id"`
	OldStatus RequestStatus `json:"old_status" db:"old_status"`
	NewStatus RequestStatus `json:"new_status" db:"new_status"`
	Notes     *string       `json:"notes,omitempty" db:"notes"`
	UpdatedBy uuid.UUID     `json:"updated_by" db:"updated_by"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}
