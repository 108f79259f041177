// Package retry retries transient failures with exponential backoff.
//
// It is used for the cluster-side steps that race the freshly created API
// server: credential retrieval and manifest apply. Deployments are never
// retried client-side.
package retry
