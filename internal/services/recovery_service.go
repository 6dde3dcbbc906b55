package services

import (
	"context"
	"errors"
	"fmt"

	"taldaor/internal/authprovider"
	"taldaor/internal/common"
	"taldaor/internal/repositories"
)

// Neutral reason codes. These are the only distinctions an unauthenticated
// caller ever sees; none of them confirms allow-list membership beyond what
// the documented enum already exposes.
const (
	ReasonNotOnAllowlist   = "not_on_allowlist"
	ReasonNoAuthUser       = "no_auth_user"
	ReasonNoProfile        = "no_profile"
	ReasonAlreadyConfirmed = "already_confirmed"
)

// ResendOutcome is the result of a confirmation-resend attempt.
type ResendOutcome struct {
	Resent    bool
	ResetSent bool
	Reason    string
}

// ResetOutcome is the result of a password-reset request.
type ResetOutcome struct {
	ResetSent bool
	Reason    string
}

// RecoveryService decides, for a bare email, whether to resend a
// confirmation email, send a password-reset email, or silently no-op.
type RecoveryService interface {
	ResendConfirmation(ctx context.Context, email string) (*ResendOutcome, error)
	RequestPasswordReset(ctx context.Context, email string) (*ResetOutcome, error)
}

type recoveryService struct {
	allowlist AllowlistService
	profiles  repositories.ProfileRepository
	provider  authprovider.AdminClient
	redirects Redirects
}

func NewRecoveryService(
	allowlist AllowlistService,
	profiles repositories.ProfileRepository,
	provider authprovider.AdminClient,
	redirects Redirects,
) RecoveryService {
	return &recoveryService{
		allowlist: allowlist,
		profiles:  profiles,
		provider:  provider,
		redirects: redirects,
	}
}

func (s *recoveryService) ResendConfirmation(ctx context.Context, email string) (*ResendOutcome, error) {
	normalized := common.NormalizeEmail(email)
	if normalized == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	decision, err := s.allowlist.CheckAllowed(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &ResendOutcome{Reason: ReasonNotOnAllowlist}, nil
	}

	identity, err := s.provider.GetUserByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: identity lookup for %s: %v", ErrLookupFailed, normalized, err)
	}
	if identity == nil {
		return &ResendOutcome{Reason: ReasonNoAuthUser}, nil
	}

	// Already confirmed: a resend would error or be meaningless, so degrade
	// to the password-reset flow. The same degradation handles the
	// unconfirmed-to-confirmed race below (user clicks the link while this
	// request is in flight).
	if identity.Confirmed() {
		return s.resetFallback(ctx, normalized)
	}

	if err := s.provider.ResendConfirmation(ctx, normalized, s.redirects.Confirmed()); err != nil {
		if errors.Is(err, authprovider.ErrAlreadyConfirmed) {
			return s.resetFallback(ctx, normalized)
		}
		return nil, fmt.Errorf("%w: confirmation resend for %s: %v", ErrWriteFailed, normalized, err)
	}

	return &ResendOutcome{Resent: true}, nil
}

func (s *recoveryService) resetFallback(ctx context.Context, email string) (*ResendOutcome, error) {
	if err := s.provider.SendPasswordRecovery(ctx, email, s.redirects.ResetComplete()); err != nil {
		return nil, fmt.Errorf("%w: reset fallback for %s: %v", ErrWriteFailed, email, err)
	}
	return &ResendOutcome{ResetSent: true, Reason: ReasonAlreadyConfirmed}, nil
}

func (s *recoveryService) RequestPasswordReset(ctx context.Context, email string) (*ResetOutcome, error) {
	normalized := common.NormalizeEmail(email)
	if normalized == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	// Password reset is only meaningful for users who completed
	// provisioning, so require the profile row, not just an allow-list
	// entry.
	profile, err := s.profiles.GetByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: profile lookup for %s: %v", ErrLookupFailed, normalized, err)
	}
	if profile == nil {
		return &ResetOutcome{Reason: ReasonNoProfile}, nil
	}

	identity, err := s.provider.GetUserByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: identity lookup for %s: %v", ErrLookupFailed, normalized, err)
	}
	if identity == nil {
		return &ResetOutcome{Reason: ReasonNoAuthUser}, nil
	}

	if err := s.provider.SendPasswordRecovery(ctx, normalized, s.redirects.ResetComplete()); err != nil {
		// Only reachable for a real account (checks above passed), so the
		// provider message is not an enumeration risk.
		return nil, fmt.Errorf("%w: password recovery for %s: %v", ErrWriteFailed, normalized, err)
	}

	return &ResetOutcome{ResetSent: true}, nil
}
