package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"taldaor/internal/caching"
	"taldaor/internal/common"
	"taldaor/internal/models"
	"taldaor/internal/repositories"
)

const allowlistCacheTTL = 1 * time.Minute

// Decision is the allow-list gate's verdict for an email. Role is derived
// here, once, from the entry's admin flag and passed downstream unchanged.
type Decision struct {
	Allowed bool
	Role    models.Role
}

// AllowlistService decides whether an email may self-provision an account
// and which role it gets. Read-only; callers must keep rejections neutral.
type AllowlistService interface {
	CheckAllowed(ctx context.Context, email string) (*Decision, error)
}

type allowlistService struct {
	repo  repositories.AllowlistRepository
	cache caching.CacheService
}

func NewAllowlistService(repo repositories.AllowlistRepository, cache caching.CacheService) AllowlistService {
	return &allowlistService{repo: repo, cache: cache}
}

func (s *allowlistService) CheckAllowed(ctx context.Context, email string) (*Decision, error) {
	normalized := common.NormalizeEmail(email)
	if normalized == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	entry, err := s.lookup(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: allow-list check for %s: %v", ErrLookupFailed, normalized, err)
	}

	if entry == nil || !entry.IsActive {
		return &Decision{Allowed: false}, nil
	}

	return &Decision{
		Allowed: true,
		Role:    models.RoleFromAdminFlag(entry.IsAdmin),
	}, nil
}

func (s *allowlistService) lookup(ctx context.Context, email string) (*models.ApprovedEmail, error) {
	if cached, err := s.cache.GetAllowlistEntry(ctx, email); err != nil {
		// Cache trouble must not take the gate down; fall through to the
		// table.
		log.Printf("WARN: allow-list cache read failed for %s: %v", email, err)
	} else if cached != nil {
		return cached, nil
	}

	entry, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if entry != nil {
		if err := s.cache.SetAllowlistEntry(ctx, email, entry, allowlistCacheTTL); err != nil {
			log.Printf("WARN: allow-list cache write failed for %s: %v", email, err)
		}
	}
	return entry, nil
}
