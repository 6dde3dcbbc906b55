package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taldaor/internal/models"
)

// ProfileRepository manages the profiles table, the application-level user
// record joined 1:1 to a provider identity by id.
type ProfileRepository interface {
	// Upsert inserts a profile or replaces email/role on id conflict, so
	// retries and races never produce duplicate or broken rows.
	Upsert(ctx context.Context, profile *models.Profile) error

	// GetByID fetches a profile by identity id. Returns (nil, nil) when
	// the profile does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)

	// GetByEmail fetches a profile by normalized email, case-insensitively.
	// Returns (nil, nil) when no profile exists.
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
}

type profileRepo struct {
	db DB
}

func NewProfileRepo(db DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Upsert(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, email, role, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, role = EXCLUDED.role
	`
	_, err := r.db.Exec(ctx, query, profile.ID, profile.Email, profile.Role)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, email, role, created_at
		FROM profiles
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&profile.ID, &profile.Email, &profile.Role, &profile.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query profile by id: %w", err)
	}
	return profile, nil
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, email, role, created_at
		FROM profiles
		WHERE lower(email) = $1
	`
	err := r.db.QueryRow(ctx, query, email).Scan(&profile.ID, &profile.Email, &profile.Role, &profile.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query profile by email: %w", err)
	}
	return profile, nil
}
