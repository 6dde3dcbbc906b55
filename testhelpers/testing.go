package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"taldaor/internal/models"
)

// TestDB holds the database connection for integration tests.
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB creates a pooled connection for testing. Tests using it should
// skip when TEST_DATABASE_URL is unset.
func SetupTestDB(t *testing.T, connString string) *TestDB {
	t.Helper()

	if connString == "" {
		connString = os.Getenv("TEST_DATABASE_URL")
		if connString == "" {
			connString = "host=localhost port=5432 user=postgres password=postgres dbname=taldaor_test sslmode=disable"
		}
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SeedApprovedEmail inserts an allow-list entry.
func SeedApprovedEmail(t *testing.T, db *TestDB, email string, isAdmin, isActive bool) {
	t.Helper()

	query := `
		INSERT INTO approved_emails (email, is_admin, is_active, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET is_admin = $2, is_active = $3
	`
	_, err := db.Pool.Exec(context.Background(), query, email, isAdmin, isActive, time.Now())
	if err != nil {
		t.Fatalf("Failed to seed approved email: %v", err)
	}
}

// SeedProfile inserts a profile row and returns its id.
func SeedProfile(t *testing.T, db *TestDB, email string, role models.Role) uuid.UUID {
	t.Helper()

	profileID := uuid.New()
	query := `
		INSERT INTO profiles (id, email, role, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := db.Pool.Exec(context.Background(), query, profileID, email, role, time.Now())
	if err != nil {
		t.Fatalf("Failed to seed profile: %v", err)
	}

	return profileID
}

// SeedRequest inserts a maintenance request owned by the given tenant.
func SeedRequest(t *testing.T, db *TestDB, tenantID uuid.UUID) *models.Request {
	t.Helper()

	request := &models.Request{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Type:        models.TypePlumbing,
		Title:       "Test request",
		Description: "Seeded by test helper",
		Status:      models.StatusPending,
		Priority:    models.PriorityMedium,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	query := `
		INSERT INTO requests (id, tenant_id, type, title, description, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		request.ID, request.TenantID, request.Type, request.Title, request.Description,
		request.Status, request.Priority, request.CreatedAt, request.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to seed request: %v", err)
	}

	return request
}
