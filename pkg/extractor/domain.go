package extractor

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// DomainFilter decides which links belong to the crawl's target domain
type DomainFilter struct {
	host string
	// site is the registrable domain (eTLD+1) when subdomains are included
	site string
}

// NewDomainFilter matches links on host. With includeSubdomains every host
// sharing host's registrable domain matches too; hosts without one (IPs,
// localhost) fall back to an exact match.
func NewDomainFilter(host string, includeSubdomains bool) DomainFilter {
	f := DomainFilter{host: normalizeHost(host)}
	if includeSubdomains && net.ParseIP(f.host) == nil {
		if site, err := publicsuffix.EffectiveTLDPlusOne(f.host); err == nil {
			f.site = site
		}
	}
	return f
}

// Allows reports whether u is on the target domain
func (f DomainFilter) Allows(u *url.URL) bool {
	host := normalizeHost(u.Hostname())
	if host == "" {
		return false
	}
	if host == f.host {
		return true
	}
	if f.site == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return false
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	return err == nil && site == f.site
}

func (f DomainFilter) String() string {
	if f.site != "" {
		return f.site
	}
	return f.host
}

func normalizeHost(host string) string {
	return strings.TrimSuffix(strings.ToLower(host), ".")
}
