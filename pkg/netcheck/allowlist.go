// Package netcheck checks the network traffic observed during a test window
// against the distribution's fixed domain allowlist. Licensed installs must
// only reach the private proxy registry and the platform's own endpoints;
// any other egress is a packaging regression.
package netcheck

import (
	"sort"
	"strings"
)

// Result is the outcome of an allowlist check.
type Result struct {
	// Observed is the number of domains seen during the window.
	Observed int
	// Disallowed are observed domains absent from the allowlist, sorted
	// and de-duplicated.
	Disallowed []string
}

// OK reports whether the check passed. A window with zero observed domains
// passes; callers should surface a warning since it usually means the
// report window missed the install.
func (r Result) OK() bool {
	return len(r.Disallowed) == 0
}

// Check compares observed domains against the allowlist. An allowlist entry
// matches exactly, or with a leading "*." matches any subdomain of its
// suffix (but not the bare suffix itself). Matching is case-insensitive and
// ignores trailing dots.
func Check(observed, allowlist []string) Result {
	result := Result{Observed: len(observed)}

	seen := make(map[string]struct{})

	for _, domain := range observed {
		normalized := normalizeDomain(domain)
		if normalized == "" || allowed(normalized, allowlist) {
			continue
		}

		if _, dup := seen[normalized]; dup {
			continue
		}

		seen[normalized] = struct{}{}
		result.Disallowed = append(result.Disallowed, normalized)
	}

	sort.Strings(result.Disallowed)

	return result
}

func allowed(domain string, allowlist []string) bool {
	for _, entry := range allowlist {
		normalized := normalizeDomain(entry)
		if normalized == "" {
			continue
		}

		if suffix, wildcard := strings.CutPrefix(normalized, "*."); wildcard {
			if strings.HasSuffix(domain, "."+suffix) {
				return true
			}

			continue
		}

		if domain == normalized {
			return true
		}
	}

	return false
}

func normalizeDomain(domain string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
}
