package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"taldaor/internal/models"
)

// RequestLogRepository manages the append-only request_logs audit trail.
type RequestLogRepository interface {
	Create(ctx context.Context, entry *models.RequestLog) error
	ListByRequest(ctx context.Context, requestID uuid.UUID, limit, offset int) ([]*models.RequestLog, error)
}

type requestLogRepo struct {
	db DB
}

func NewRequestLogRepo(db DB) RequestLogRepository {
	return &requestLogRepo{db: db}
}

func (r *requestLogRepo) Create(ctx context.Context, entry *models.RequestLog) error {
	query := `
		INSERT INTO request_logs (id, request_id, old_status, new_status, notes, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.RequestID, entry.OldStatus, entry.NewStatus, entry.Notes, entry.UpdatedBy, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create request log: %w", err)
	}
	return nil
}

func (r *requestLogRepo) ListByRequest(ctx context.Context, requestID uuid.UUID, limit, offset int) ([]*models.RequestLog, error) {
	query := `
		SELECT id, request_id, old_status, new_status, notes, updated_by, updated_at
		FROM request_logs
		WHERE request_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, requestID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list request logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.RequestLog
	for rows.Next() {
		entry := &models.RequestLog{}
		if err := rows.Scan(&entry.ID, &entry.RequestID, &entry.OldStatus, &entry.NewStatus, &entry.Notes, &entry.UpdatedBy, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan request log: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
