// Package suggest finds the closest well-known mail provider domain for
// a possibly mistyped domain.
package suggest

import (
	"strings"

	"github.com/optimode/emailaddr/internal/levenshtein"
)

// DefaultProviders is the list of known major email providers.
var DefaultProviders = []string{
	"gmail.com", "googlemail.com",
	"yahoo.com", "yahoo.co.uk", "yahoo.fr", "yahoo.de",
	"outlook.com", "hotmail.com", "hotmail.co.uk", "live.com",
	"icloud.com", "me.com", "mac.com",
	"protonmail.com", "proton.me",
	"aol.com",
	"zoho.com",
	"yandex.com", "yandex.ru",
	"mail.com",
	"gmx.com", "gmx.net", "gmx.de",
	"fastmail.com",
	"tutanota.com",
}

// Suggester matches domains against a provider list.
type Suggester struct {
	threshold int
	providers []string
	known     map[string]struct{}
}

// New creates a Suggester. A nil providers slice uses DefaultProviders.
func New(threshold int, providers []string) *Suggester {
	if providers == nil {
		providers = DefaultProviders
	}
	known := make(map[string]struct{}, len(providers))
	for _, p := range providers {
		known[strings.ToLower(p)] = struct{}{}
	}
	return &Suggester{
		threshold: threshold,
		providers: providers,
		known:     known,
	}
}

// Closest returns the provider within the threshold that is nearest to
// domain, or "" when domain is itself a provider or nothing is close enough.
// Ties go to the provider listed first.
func (s *Suggester) Closest(domain string) string {
	domain = strings.ToLower(domain)
	if domain == "" {
		return ""
	}
	if _, ok := s.known[domain]; ok {
		return ""
	}

	best, bestDist := "", s.threshold+1
	for _, p := range s.providers {
		if d := levenshtein.Distance(domain, p); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}
