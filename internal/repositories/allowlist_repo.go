package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"taldaor/internal/models"
)

// AllowlistRepository reads the approved_emails table. The table is
// maintained out-of-band by an administrator; this service never writes it.
type AllowlistRepository interface {
	// GetByEmail looks up an allow-list entry by normalized email,
	// case-insensitively. Returns (nil, nil) when no entry exists.
	GetByEmail(ctx context.Context, email string) (*models.ApprovedEmail, error)
}

type allowlistRepo struct {
	db DB
}

func NewAllowlistRepo(db DB) AllowlistRepository {
	return &allowlistRepo{db: db}
}

func (r *allowlistRepo) GetByEmail(ctx context.Context, email string) (*models.ApprovedEmail, error) {
	entry := &models.ApprovedEmail{}
	query := `
		SELECT email, is_admin, is_active, created_at
		FROM approved_emails
		WHERE lower(email) = $1
	`
	err := r.db.QueryRow(ctx, query, email).Scan(&entry.Email, &entry.IsAdmin, &entry.IsActive, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query allow-list: %w", err)
	}
	return entry, nil
}
