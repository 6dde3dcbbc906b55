package services

import "errors"

// Error taxonomy for the account flows. Expected, neutral outcomes (not on
// allow-list, no profile, no identity) are NOT errors; they are carried in
// the outcome structs so handlers can shape non-enumerating 200 responses.
var (
	// ErrValidation marks missing or empty caller input (400).
	ErrValidation = errors.New("validation failed")

	// ErrLookupFailed marks an allow-list/profile/identity read failure
	// (500, surfaced generically, logged with detail). Distinct from
	// not-found: silence is a privacy feature only for legitimate
	// not-approved outcomes, not for infrastructure failures.
	ErrLookupFailed = errors.New("dependency lookup failed")

	// ErrWriteFailed marks an identity or email dispatch failure at the
	// provider.
	ErrWriteFailed = errors.New("dependency write failed")

	// ErrProfileWrite marks the one inconsistency-producing case: the
	// identity record was created but the profile upsert failed, leaving
	// an orphaned identity that needs operator reconciliation.
	ErrProfileWrite = errors.New("profile write failed after identity creation")

	// ErrNotApproved rejects the direct-create signup variant (403).
	ErrNotApproved = errors.New("email not approved for signup")

	// ErrNotFound marks a missing resource on authenticated routes (404).
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an authorization failure on authenticated routes.
	ErrForbidden = errors.New("forbidden")
)
