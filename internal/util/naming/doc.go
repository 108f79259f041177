// Package naming generates lab identifiers and derives Azure resource names.
//
// A lab instance is identified by a random 6-character suffix. The resource
// group is rg-akslab-{suffix} and every child resource is named
// {prefix}-{type}, where prefix is akslab{suffix}. The container registry is
// the exception: registry names must be alphanumeric, so it is {prefix}acr.
package naming
