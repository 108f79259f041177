package k8s

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// WaitForAPIServer polls until the API server answers a version request.
func WaitForAPIServer(ctx context.Context, c Client, interval, timeout time.Duration) (string, error) {
	var version string
	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true, func(ctx context.Context) (bool, error) {
		v, err := c.ServerVersion(ctx)
		if err != nil {
			return false, nil
		}
		version = v
		return true, nil
	})
	if err != nil {
		return "", fmt.Errorf("API server did not respond within %s: %w", timeout, err)
	}
	return version, nil
}
