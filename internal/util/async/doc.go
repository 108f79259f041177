// Package async runs independent checks concurrently.
package async
