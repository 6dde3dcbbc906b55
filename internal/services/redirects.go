package services

// Redirects builds the redirect targets embedded in provider emails. An
// empty base URL disables redirects; the provider then falls back to its own
// configured site URL.
type Redirects struct {
	BaseURL string
}

// Confirmed is the post-confirmation landing route.
func (r Redirects) Confirmed() string {
	if r.BaseURL == "" {
		return ""
	}
	return r.BaseURL + "/?confirmed=1"
}

// ResetComplete is the password-reset completion route.
func (r Redirects) ResetComplete() string {
	if r.BaseURL == "" {
		return ""
	}
	return r.BaseURL + "/auth/reset-complete"
}
