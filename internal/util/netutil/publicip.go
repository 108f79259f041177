package netutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"time"
)

const (
	// DefaultIPEchoURL returns the caller's public IPv4 address as plain text.
	DefaultIPEchoURL = "https://ipv4.icanhazip.com"

	// DefaultIPLookupTimeout bounds the public IP lookup.
	DefaultIPLookupTimeout = 10 * time.Second

	maxEchoBody = 64
)

// IPDetector looks up the caller's public IPv4 address.
type IPDetector struct {
	URL        string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewIPDetector returns a detector for the default echo endpoint.
func NewIPDetector(timeout time.Duration) *IPDetector {
	if timeout <= 0 {
		timeout = DefaultIPLookupTimeout
	}
	return &IPDetector{
		URL:        DefaultIPEchoURL,
		Timeout:    timeout,
		HTTPClient: http.DefaultClient,
	}
}

// PublicIPv4 queries the echo endpoint and returns the address it reports.
// A response that is not a dotted-quad IPv4 address is an error.
func (d *IPDetector) PublicIPv4(ctx context.Context) (netip.Addr, error) {
	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return netip.Addr{}, err
	}
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("public IP lookup: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return netip.Addr{}, fmt.Errorf("public IP lookup: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEchoBody))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("public IP lookup: %w", err)
	}

	addr, err := netip.ParseAddr(strings.TrimSpace(string(body)))
	if err != nil || !addr.Is4() {
		return netip.Addr{}, fmt.Errorf("public IP lookup: malformed response %q", strings.TrimSpace(string(body)))
	}
	return addr, nil
}
