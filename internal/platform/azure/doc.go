// Package azure wraps the Azure Resource Manager SDK calls a lab needs:
// subscription listing, resource group lifecycle, template deployments at
// resource group and subscription scope, and the explicit cleanup of
// subscription-scoped objects that outlive their resource group.
package azure
