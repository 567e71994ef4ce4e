package crawl

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Validation errors for crawl targets.
var (
	// ErrUnsafeScheme means the URL scheme is not http or https.
	ErrUnsafeScheme = errors.New("unsafe url scheme")
	// ErrPrivateAddress means the URL points at a loopback, link-local,
	// or private-range address.
	ErrPrivateAddress = errors.New("private or local address")
)

// ValidateURL rejects URLs that would make the fetcher reach loopback,
// link-local, or private-range addresses (SSRF). It is the default
// FetcherConfig.URLValidator and runs again on every redirect hop.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q", ErrUnsafeScheme, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("url %q has no host", rawURL)
	}

	if ip := net.ParseIP(host); ip != nil {
		if isPrivateIP(ip) {
			return fmt.Errorf("%w: %s", ErrPrivateAddress, host)
		}
		return nil
	}

	addrs, err := net.LookupHost(host)
	if err != nil {
		// Unresolvable hosts are not blocked here; the connection itself
		// will fail with a clearer error.
		return nil
	}
	for _, addr := range addrs {
		if ip := net.ParseIP(addr); ip != nil && isPrivateIP(ip) {
			return fmt.Errorf("%w: %s resolves to %s", ErrPrivateAddress, host, addr)
		}
	}
	return nil
}

// isPrivateIP reports whether ip lives in a range a public crawler must
// never reach: loopback, RFC 1918 and ULA private space, link-local, or
// the unspecified address.
func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
