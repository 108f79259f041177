package config

import (
	"fmt"
	"net/netip"
	"strings"
)

// NormalizeAuthorizedIP turns a caller-supplied address into the CIDR used
// for the API server allow-list. A bare IPv4 address becomes a /32, an IPv4
// CIDR is kept as given (after masking host bits), and anything else is
// rejected. Normalizing an already normalized value returns it unchanged.
func NormalizeAuthorizedIP(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("authorized IP is required")
	}

	if strings.Contains(s, "/") {
		prefix, err := netip.ParsePrefix(s)
		if err != nil {
			return "", fmt.Errorf("invalid CIDR %q: %w", s, err)
		}
		if !prefix.Addr().Is4() {
			return "", fmt.Errorf("invalid CIDR %q: only IPv4 ranges are supported", s)
		}
		return prefix.Masked().String(), nil
	}

	addr, err := netip.ParseAddr(s)
	if err != nil {
		return "", fmt.Errorf("invalid IPv4 address %q: %w", s, err)
	}
	if !addr.Is4() {
		return "", fmt.Errorf("invalid IPv4 address %q: only IPv4 is supported", s)
	}
	return netip.PrefixFrom(addr, 32).String(), nil
}
