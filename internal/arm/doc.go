// Package arm models Azure Resource Manager deployment templates.
//
// Templates are built in Go and serialized to the JSON that Resource Manager
// accepts. A [Resource] can carry a typed Azure SDK model, whose JSON is
// merged with the template-only fields (apiVersion, dependsOn, condition).
// Expression helpers build the bracketed template language strings.
package arm
