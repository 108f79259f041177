// Package labels builds the Azure tag set stamped on every lab resource.
//
// Tags identify which lab a resource belongs to and who manages it, so a lab
// can be found in the portal or queried by tag after the fact.
package labels
