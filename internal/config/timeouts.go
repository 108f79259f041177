package config

import (
	"os"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	Deployment             time.Duration // Resource-group deployment, including polling
	SubscriptionDeployment time.Duration // Subscription-scope deployment
	IPLookup               time.Duration // Public IP detection
	Credentials            time.Duration // az aks get-credentials and kubelogin
	APIServerWait          time.Duration // Waiting for the cluster API server to accept connections
	ManifestApply          time.Duration // Applying one manifest file
	Delete                 time.Duration // Resource group deletion on destroy
	PollFrequency          time.Duration // Long-running operation poll interval
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - AKSLAB_TIMEOUT_DEPLOYMENT (default: 60m)
//   - AKSLAB_TIMEOUT_SUBSCRIPTION_DEPLOYMENT (default: 20m)
//   - AKSLAB_TIMEOUT_IP_LOOKUP (default: 10s)
//   - AKSLAB_TIMEOUT_CREDENTIALS (default: 2m)
//   - AKSLAB_TIMEOUT_API_SERVER (default: 5m)
//   - AKSLAB_TIMEOUT_MANIFEST_APPLY (default: 2m)
//   - AKSLAB_TIMEOUT_DELETE (default: 45m)
//   - AKSLAB_POLL_FREQUENCY (default: 15s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Deployment:             parseDuration("AKSLAB_TIMEOUT_DEPLOYMENT", 60*time.Minute),
		SubscriptionDeployment: parseDuration("AKSLAB_TIMEOUT_SUBSCRIPTION_DEPLOYMENT", 20*time.Minute),
		IPLookup:               parseDuration("AKSLAB_TIMEOUT_IP_LOOKUP", 10*time.Second),
		Credentials:            parseDuration("AKSLAB_TIMEOUT_CREDENTIALS", 2*time.Minute),
		APIServerWait:          parseDuration("AKSLAB_TIMEOUT_API_SERVER", 5*time.Minute),
		ManifestApply:          parseDuration("AKSLAB_TIMEOUT_MANIFEST_APPLY", 2*time.Minute),
		Delete:                 parseDuration("AKSLAB_TIMEOUT_DELETE", 45*time.Minute),
		PollFrequency:          parseDuration("AKSLAB_POLL_FREQUENCY", 15*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set, not positive, or parsing fails, the default
// value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}
