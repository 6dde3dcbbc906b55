package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taldaor/internal/models"
)

// RequestRepository manages the requests table. tenant_id and type are never
// updated after insert.
type RequestRepository interface {
	Create(ctx context.Context, request *models.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Request, error)
	List(ctx context.Context, status *models.RequestStatus, limit, offset int) ([]*models.Request, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error
}

type requestRepo struct {
	db DB
}

func NewRequestRepo(db DB) RequestRepository {
	return &requestRepo{db: db}
}

func (r *requestRepo) Create(ctx context.Context, request *models.Request) error {
	query := `
		INSERT INTO requests (id, tenant_id, type, title, description, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, request.ID, request.TenantID, request.Type, request.Title, request.Description, request.Status, request.Priority)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

func (r *requestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	request := &models.Request{}
	query := `
		SELECT id, tenant_id, type, title, description, status, priority, created_at, updated_at
		FROM requests
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&request.ID, &request.TenantID, &request.Type, &request.Title,
		&request.Description, &request.Status, &request.Priority,
		&request.CreatedAt, &request.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query request: %w", err)
	}
	return request, nil
}

func (r *requestRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Request, error) {
	query := `
		SELECT id, tenant_id, type, title, description, status, priority, created_at, updated_at
		FROM requests
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

func (r *requestRepo) List(ctx context.Context, status *models.RequestStatus, limit, offset int) ([]*models.Request, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status != nil {
		query := `
			SELECT id, tenant_id, type, title, description, status, priority, created_at, updated_at
			FROM requests
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`
		rows, err = r.db.Query(ctx, query, *status, limit, offset)
	} else {
		query := `
			SELECT id, tenant_id, type, title, description, status, priority, created_at, updated_at
			FROM requests
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`
		rows, err = r.db.Query(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

func (r *requestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error {
	query := `
		UPDATE requests
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	return nil
}

func scanRequests(rows pgx.Rows) ([]*models.Request, error) {
	var requests []*models.Request
	for rows.Next() {
		request := &models.Request{}
		if err := rows.Scan(
			&request.ID, &request.TenantID, &request.Type, &request.Title,
			&request.Description, &request.Status, &request.Priority,
			&request.CreatedAt, &request.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}
