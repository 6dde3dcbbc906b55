package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"taldaor/internal/authprovider"
	"taldaor/internal/common"
	"taldaor/internal/models"
	"taldaor/internal/repositories"
)

// SignupOutcome is the result of a request-signup attempt. Exactly one of
// the branch flags is set; all branches are reported to the caller as 200s
// so the response shape never reveals allow-list membership beyond the
// documented reason enum.
type SignupOutcome struct {
	ProfileExists bool
	NotApproved   bool
	AlreadyAuth   bool
	Sent          bool
	UserID        uuid.UUID
}

// ProvisioningService orchestrates creation of a provider identity and its
// paired profile row. The two must share the identity's user id.
type ProvisioningService interface {
	// RequestSignup runs the invite flow for a bare email: profile check,
	// allow-list gate, provider invite, profile upsert.
	RequestSignup(ctx context.Context, email string) (*SignupOutcome, error)

	// ProvisionApproved is the direct-create variant: the caller supplies
	// a password and the identity is created immediately (unconfirmed).
	// Returns the new identity id.
	ProvisionApproved(ctx context.Context, email, password string) (uuid.UUID, error)
}

type provisioningService struct {
	allowlist AllowlistService
	profiles  repositories.ProfileRepository
	incidents repositories.IncidentRepository
	provider  authprovider.AdminClient
	redirects Redirects
}

func NewProvisioningService(
	allowlist AllowlistService,
	profiles repositories.ProfileRepository,
	incidents repositories.IncidentRepository,
	provider authprovider.AdminClient,
	redirects Redirects,
) ProvisioningService {
	return &provisioningService{
		allowlist: allowlist,
		profiles:  profiles,
		incidents: incidents,
		provider:  provider,
		redirects: redirects,
	}
}

func (s *provisioningService) RequestSignup(ctx context.Context, email string) (*SignupOutcome, error) {
	normalized := common.NormalizeEmail(email)
	if normalized == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	// A profile means provisioning already completed; tell the client to
	// flip to sign-in / reset.
	existing, err := s.profiles.GetByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: profile lookup for %s: %v", ErrLookupFailed, normalized, err)
	}
	if existing != nil {
		return &SignupOutcome{ProfileExists: true}, nil
	}

	decision, err := s.allowlist.CheckAllowed(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &SignupOutcome{NotApproved: true}, nil
	}

	identity, err := s.provider.InviteByEmail(ctx, normalized, decision.Role, s.redirects.Confirmed())
	if err != nil {
		if errors.Is(err, authprovider.ErrAlreadyRegistered) {
			// An identity exists but no profile does; the client should
			// steer the user toward confirmation resend or reset.
			return &SignupOutcome{AlreadyAuth: true}, nil
		}
		return nil, fmt.Errorf("%w: invite for %s: %v", ErrWriteFailed, normalized, err)
	}

	if err := s.upsertProfile(ctx, identity.ID, normalized, decision.Role); err != nil {
		return nil, err
	}

	return &SignupOutcome{Sent: true, UserID: identity.ID}, nil
}

func (s *provisioningService) ProvisionApproved(ctx context.Context, email, password string) (uuid.UUID, error) {
	normalized := common.NormalizeEmail(email)
	if normalized == "" || password == "" {
		return uuid.Nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	decision, err := s.allowlist.CheckAllowed(ctx, normalized)
	if err != nil {
		return uuid.Nil, err
	}
	if !decision.Allowed {
		return uuid.Nil, ErrNotApproved
	}

	identity, err := s.provider.CreateUser(ctx, normalized, password, decision.Role)
	if err != nil {
		if errors.Is(err, authprovider.ErrAlreadyRegistered) {
			return uuid.Nil, err
		}
		return uuid.Nil, fmt.Errorf("%w: identity creation for %s: %v", ErrWriteFailed, normalized, err)
	}

	if err := s.upsertProfile(ctx, identity.ID, normalized, decision.Role); err != nil {
		return uuid.Nil, err
	}

	return identity.ID, nil
}

// upsertProfile writes the profile row paired to a freshly created identity.
// If the write fails the identity is orphaned; the inconsistency is logged
// with enough detail for manual repair and recorded as an incident for the
// background reconciliation job.
func (s *provisioningService) upsertProfile(ctx context.Context, identityID uuid.UUID, email string, role models.Role) error {
	profile := &models.Profile{
		ID:    identityID,
		Email: email,
		Role:  role,
	}
	err := s.profiles.Upsert(ctx, profile)
	if err == nil {
		return nil
	}

	log.Printf("ERROR: orphaned identity: profile upsert failed for email=%s identity=%s: %v", email, identityID, err)

	incident := &models.ProvisioningIncident{
		Email:      email,
		IdentityID: identityID,
		Role:       role,
		Detail:     err.Error(),
	}
	if incErr := s.incidents.Create(ctx, incident); incErr != nil {
		log.Printf("ERROR: failed to record provisioning incident for email=%s identity=%s: %v", email, identityID, incErr)
	}

	return fmt.Errorf("%w: email=%s identity=%s: %v", ErrProfileWrite, email, identityID, err)
}
