package resolver

import (
	"net"
	"net/netip"
	"net/url"
)

// isBlockedHost reports whether host resolves to a loopback, private,
// link-local or unspecified address, guarding the registry-probe step (§4.2 step 2) against being
// redirected at a package name containing or resolving to an internal
// address. Grounded in the pack's internal/policy.isBlockedHost pattern.
func isBlockedHost(host string) bool {
	if addr, err := netip.ParseAddr(host); err == nil {
		return addrIsBlocked(addr)
	}
	ips, err := net.LookupHost(host)
	if err != nil {
		return false
	}
	for _, ip := range ips {
		if addr, err := netip.ParseAddr(ip); err == nil && addrIsBlocked(addr) {
			return true
		}
	}
	return false
}

func addrIsBlocked(addr netip.Addr) bool {
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsUnspecified()
}

// registryURLIsSafe parses rawURL and rejects it if its host is blocked,
// before any HTTP request is issued.
func registryURLIsSafe(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return !isBlockedHost(u.Hostname())
}
