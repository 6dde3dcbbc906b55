package models

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusCancelled  RequestStatus = "cancelled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type RequestPriority string

const (
	PriorityLow    RequestPriority = "low"
	PriorityMedium RequestPriority = "medium"
	PriorityHigh   RequestPriority = "high"
	PriorityUrgent RequestPriority = "urgent"
)

func (p RequestPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type RequestType string

const (
	TypeTrashRemoval   RequestType = "trash_removal"
	TypeElevator       RequestType = "elevator"
	TypeMaintenance    RequestType = "maintenance"
	TypePlumbing       RequestType = "plumbing"
	TypeElectrical     RequestType = "electrical"
	TypeHVAC           RequestType = "hvac"
	TypePestControl    RequestType = "pest_control"
	TypeNoiseComplaint RequestType = "noise_complaint"
	TypeOther          RequestType = "other"
)

func (t RequestType) Valid() bool {
	switch t {
	case TypeTrashRemoval, TypeElevator, TypeMaintenance, TypePlumbing,
		TypeElectrical, TypeHVAC, TypePestControl, TypeNoiseComplaint, TypeOther:
		return true
	}
	return false
}

// Request is a tenant-filed maintenance issue. tenant_id and type are
// immutable after creation; status is mutated only by admins.
type Request struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	TenantID    uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Type        RequestType     `json:"type" db:"type"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Status      RequestStatus   `json:"status" db:"status"`
	Priority    RequestPriority `json:"priority" db:"priority"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}
