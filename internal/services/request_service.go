package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taldaor/internal/models"
	"taldaor/internal/repositories"
)

// CreateRequestInput is the validated payload for filing a maintenance
// request.
type CreateRequestInput struct {
	Type        models.RequestType
	Title       string
	Description string
	Priority    models.RequestPriority
}

// UpdateStatusInput is the validated payload for an admin status update.
type UpdateStatusInput struct {
	Status models.RequestStatus
	Notes  string
}

// RequestService manages tenant maintenance requests and their audit trail.
type RequestService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input *CreateRequestInput) (*models.Request, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Request, error)
	List(ctx context.Context, status *models.RequestStatus, limit, offset int) ([]*models.Request, error)

	// UpdateStatus mutates the request status (admin only; tenant_id and
	// type are immutable) and appends exactly one log entry when the
	// status changed or a note was attached.
	UpdateStatus(ctx context.Context, id, adminID uuid.UUID, input *UpdateStatusInput) (*models.Request, error)

	ListLogs(ctx context.Context, requestID uuid.UUID, limit, offset int) ([]*models.RequestLog, error)
}

type requestService struct {
	requests repositories.RequestRepository
	logs     repositories.RequestLogRepository
}

func NewRequestService(requests repositories.RequestRepository, logs repositories.RequestLogRepository) RequestService {
	return &requestService{requests: requests, logs: logs}
}

func (s *requestService) Create(ctx context.Context, tenantID uuid.UUID, input *CreateRequestInput) (*models.Request, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrValidation)
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown request type %q", ErrValidation, input.Type)
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, priority)
	}

	request := &models.Request{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Type:        input.Type,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      models.StatusPending,
		Priority:    priority,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return request, nil
}

func (s *requestService) GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if request == nil {
		return nil, ErrNotFound
	}
	return request, nil
}

func (s *requestService) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Request, error) {
	limit, offset = clampPaging(limit, offset)
	requests, err := s.requests.ListByTenant(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	return requests, nil
}

func (s *requestService) List(ctx context.Context, status *models.RequestStatus, limit, offset int) ([]*models.Request, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *status)
	}
	limit, offset = clampPaging(limit, offset)
	requests, err := s.requests.List(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	return requests, nil
}

func (s *requestService) UpdateStatus(ctx context.Context, id, adminID uuid.UUID, input *UpdateStatusInput) (*models.Request, error) {
	if !input.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, input.Status)
	}

	request, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := request.Status
	note := strings.TrimSpace(input.Notes)
	statusChanged := oldStatus != input.Status

	if statusChanged {
		if err := s.requests.UpdateStatus(ctx, id, input.Status); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
		}
		request.Status = input.Status
		request.UpdatedAt = time.Now()
	}

	// One log entry per action that changes status or carries a note;
	// a no-op update writes nothing.
	if statusChanged || note != "" {
		entry := &models.RequestLog{
			ID:        uuid.New(),
			RequestID: id,
			OldStatus: oldStatus,
			NewStatus: input.Status,
			UpdatedBy: adminID,
			UpdatedAt: request.UpdatedAt,
		}
		if note != "" {
			entry.Notes = &note
		}
		if err := s.logs.Create(ctx, entry); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
		}
	}

	return request, nil
}

func (s *requestService) ListLogs(ctx context.Context, requestID uuid.UUID, limit, offset int) ([]*models.RequestLog, error) {
	limit, offset = clampPaging(limit, offset)
	entries, err := s.logs.ListByRequest(ctx, requestID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	return entries, nil
}

func clampPaging(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
