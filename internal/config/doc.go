// Package config resolves the parameters of one lab deployment.
//
// Values come from command-line flags, the environment and an optional
// akslab.yaml file (see [LoadSettings]), detection against Azure or the
// network, interactive prompts, and computed defaults. [Collector] walks
// that chain for every field through the shared [Resolve] helper and
// produces an immutable [Params] value that is passed unchanged through
// every deployment stage.
package config
