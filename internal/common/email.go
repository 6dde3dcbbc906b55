package common

import "strings"

// NormalizeEmail trims whitespace and lowercases an email address. Email is
// the case-insensitive natural key joining allow-list entries, identities
// and profiles, so every lookup and write must go through this first.
// Normalization is idempotent.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
