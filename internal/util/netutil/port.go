// Package netutil provides the network probes used around a lab deployment:
// public IP detection for the API server allow-list and reachability checks
// for the cluster endpoint.
package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// APIServerWaitTimeout is the default time to wait for a freshly created
// cluster API server to accept connections.
const APIServerWaitTimeout = 5 * time.Minute

// dialTimeout bounds a single connection attempt.
const dialTimeout = 2 * time.Second

// WaitForPort waits until a TCP connection to host:port succeeds, probing
// once immediately and then at every interval.
func WaitForPort(ctx context.Context, host string, port int, timeout, interval time.Duration) error {
	address := net.JoinHostPort(host, strconv.Itoa(port))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if dial(ctx, address) {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("timeout waiting for %s", address)
			}
			return ctx.Err()
		case <-ticker.C:
			if dial(ctx, address) {
				return nil
			}
		}
	}
}

func dial(ctx context.Context, address string) bool {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
