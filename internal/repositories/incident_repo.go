package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taldaor/internal/models"
)

// IncidentRepository manages provisioning_incidents: identity records that
// were created at the provider but whose profile write failed. The rows give
// an operator enough detail (email, identity id) for manual repair and feed
// the background reconciliation job.
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.ProvisioningIncident) error
	ListUnresolved(ctx context.Context, limit int) ([]*models.ProvisioningIncident, error)
	MarkResolved(ctx context.Context, id uuid.UUID) error
}

type incidentRepo struct {
	db DB
}

func NewIncidentRepo(db DB) IncidentRepository {
	return &incidentRepo{db: db}
}

func (r *incidentRepo) Create(ctx context.Context, incident *models.ProvisioningIncident) error {
	if incident.ID == uuid.Nil {
		incident.ID = uuid.New()
	}
	incident.CreatedAt = time.Now()

	query := `
		INSERT INTO provisioning_incidents (id, email, identity_id, role, detail, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)
	`
	_, err := r.db.Exec(ctx, query, incident.ID, incident.Email, incident.IdentityID, incident.Role, incident.Detail, incident.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create provisioning incident: %w", err)
	}
	return nil
}

func (r *incidentRepo) ListUnresolved(ctx context.Context, limit int) ([]*models.ProvisioningIncident, error) {
	query := `
		SELECT id, email, identity_id, role, detail, resolved, created_at, resolved_at
		FROM provisioning_incidents
		WHERE resolved = false
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list provisioning incidents: %w", err)
	}
	defer rows.Close()

	var incidents []*models.ProvisioningIncident
	for rows.Next() {
		incident := &models.ProvisioningIncident{}
		if err := rows.Scan(
			&incident.ID, &incident.Email, &incident.IdentityID, &incident.Role,
			&incident.Detail, &incident.Resolved, &incident.CreatedAt, &incident.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan provisioning incident: %w", err)
		}
		incidents = append(incidents, incident)
	}
	return incidents, rows.Err()
}

func (r *incidentRepo) MarkResolved(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE provisioning_incidents
		SET resolved = true, resolved_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to resolve provisioning incident: %w", err)
	}
	return nil
}
