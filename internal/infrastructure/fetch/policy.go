// Package fetch implements the Fetch Core: allowlist-guarded, rate-limited,
// cached, retried retrieval of external web content.
package fetch

import (
	"net/url"
	"strings"

	"shopmate/internal/domain"
)

// Allowlist matches request hostnames against the static domain policy.
type Allowlist struct {
	entries []domain.AllowedDomain
}

// NewAllowlist builds the policy from config entries.
func NewAllowlist(entries []domain.AllowedDomain) *Allowlist {
	return &Allowlist{entries: entries}
}

// Match returns the policy entry covering host: an exact match, or a
// suffix match when the entry permits subdomains.
func (a *Allowlist) Match(host string) (domain.AllowedDomain, bool) {
	host = strings.ToLower(host)
	for _, entry := range a.entries {
		name := strings.ToLower(entry.Domain)
		if host == name {
			return entry, true
		}
		if entry.AllowSubdomains && strings.HasSuffix(host, "."+name) {
			return entry, true
		}
	}
	return domain.AllowedDomain{}, false
}

// validateURL parses raw and rejects anything that is not absolute
// HTTP(S).
func validateURL(raw string) (*url.URL, *domain.Failure) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, domain.WrapFailure(domain.FailValidation, "fetch", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, domain.NewFailure(domain.FailValidation, "fetch", "unsupported scheme: "+u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, domain.NewFailure(domain.FailValidation, "fetch", "missing host")
	}
	return u, nil
}

// resolveProfile returns the caller's profile when the policy permits it,
// else the generic fallback.
func resolveProfile(entry domain.AllowedDomain, requested domain.ExtractionProfile) domain.ExtractionProfile {
	if requested == "" {
		return domain.ProfileGeneric
	}
	if entry.PermitsProfile(requested) {
		return requested
	}
	return domain.ProfileGeneric
}
