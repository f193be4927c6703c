package shortener

import (
	"net/url"
	"regexp"
	"strings"
)

// MaxURLLength bounds a normalized long URL.
const MaxURLLength = 2048

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,32}$`)

// An explicit scheme only counts at the start; "://" inside a query does not.
var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// Aliases that would shadow the service's own routes.
var reservedAliases = map[string]struct{}{
	"api":     {},
	"docs":    {},
	"health":  {},
	"metrics": {},
	"openapi": {},
	"schemas": {},
}

// NormalizeURL prepares a caller supplied URL for storage and dedup.
// - Trims surrounding whitespace
// - Prepends https:// when no http or https scheme is present
// - Requires a host and an http or https scheme
//
// The returned string is the trimmed input plus the prefix, nothing else is
// rewritten.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", newError(KindInvalidURL, "url cannot be empty", nil)
	}

	candidate := trimmed

	if !hasHTTPPrefix(candidate) {
		if schemePattern.MatchString(candidate) {
			return "", newError(KindInvalidURL, "only http and https urls are allowed", nil)
		}

		candidate = "https://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", newError(KindInvalidURL, "invalid url format", err)
	}

	if u.Scheme == "" || u.Hostname() == "" {
		return "", newError(KindInvalidURL, "invalid url format", nil)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", newError(KindInvalidURL, "only http and https urls are allowed", nil)
	}

	if len(candidate) > MaxURLLength {
		return "", newError(KindInvalidURL, "url is longer than 2048 characters", nil)
	}

	return candidate, nil
}

// IsSelfReference reports whether longURL points at the service itself or at
// one of its subdomains. A leading "www." label is ignored on both sides.
func IsSelfReference(longURL, serviceBaseURL string) bool {
	host := canonicalHost(longURL)
	base := canonicalHost(serviceBaseURL)

	if host == "" || base == "" {
		return false
	}

	return host == base || strings.HasSuffix(host, "."+base)
}

// ValidateAlias checks a trimmed custom alias.
func ValidateAlias(alias string) error {
	if !aliasPattern.MatchString(alias) {
		return newError(KindInvalidURL, "alias must be 1-32 characters of letters, digits, '_' or '-'", nil)
	}

	if _, ok := reservedAliases[strings.ToLower(alias)]; ok {
		return newError(KindInvalidURL, "alias "+alias+" is reserved", nil)
	}

	return nil
}

func hasHTTPPrefix(s string) bool {
	lower := strings.ToLower(s)

	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func canonicalHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if !schemePattern.MatchString(raw) {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	host := strings.ToLower(u.Hostname())

	return strings.TrimPrefix(host, "www.")
}
