// Package k8s applies manifests to the lab cluster with server-side apply
// and answers the small set of readiness questions the pipeline asks.
package k8s
