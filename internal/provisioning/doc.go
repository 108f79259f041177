// Package provisioning provides the shared types and orchestration for a lab
// deployment.
//
// # Subpackages
//
//   - deploy/ — resource-group and subscription-scope template deployments
//   - configure/ — cluster credentials and manifest apply
//   - report/ — the final summary
//   - destroy/ — lab teardown
//
// # Core Types
//
// Context carries the immutable parameter set, the Azure client, the
// observer and the accumulated State. Phase is one pipeline stage with
// Name() and Provision() methods. RunPhases runs stages in order, aborting
// on fatal errors and recording everything else as a warning.
package provisioning
