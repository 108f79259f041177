// Package report prints the lab summary: every resolved resource value,
// per-manifest results and the next-step commands.
package report
