package intel

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// RegistrableDomain reduces a host or URL to its eTLD+1 ("docs.acme.co.uk"
// becomes "acme.co.uk"). Hosts the public suffix list cannot reduce are
// returned lowercased without "www.".
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimPrefix(strings.TrimSuffix(host, "."), "www.")
	if host == "" {
		return ""
	}
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld1
	}
	return host
}

// SameDomain reports whether a and b share a registrable domain.
func SameDomain(a, b string) bool {
	ra := RegistrableDomain(a)
	return ra != "" && ra == RegistrableDomain(b)
}
