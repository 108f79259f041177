package arm

import (
	"fmt"
	"strings"
)

// Expr wraps a template language expression in brackets.
func Expr(format string, args ...any) string {
	return "[" + fmt.Sprintf(format, args...) + "]"
}

// Unwrap strips the brackets of an expression so it can be nested.
// Literal strings are returned quoted.
func Unwrap(s string) string {
	if IsExpr(s) {
		return s[1 : len(s)-1]
	}
	return Quote(s)
}

// IsExpr reports whether s is a template expression.
func IsExpr(s string) bool {
	return len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' && !strings.HasPrefix(s, "[[")
}

// Quote returns s as a template language string literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Param references a template parameter.
func Param(name string) string {
	return Expr("parameters(%s)", Quote(name))
}

// Concat joins literals and expressions into one expression.
func Concat(parts ...string) string {
	args := make([]string, len(parts))
	for i, p := range parts {
		args[i] = Unwrap(p)
	}
	return Expr("concat(%s)", strings.Join(args, ", "))
}

// ResourceID builds resourceId(type, names...).
func ResourceID(typ string, names ...string) string {
	args := []string{Quote(typ)}
	for _, n := range names {
		args = append(args, Unwrap(n))
	}
	return Expr("resourceId(%s)", strings.Join(args, ", "))
}

// SubscriptionResourceID builds subscriptionResourceId(type, names...).
func SubscriptionResourceID(typ string, names ...string) string {
	args := []string{Quote(typ)}
	for _, n := range names {
		args = append(args, Unwrap(n))
	}
	return Expr("subscriptionResourceId(%s)", strings.Join(args, ", "))
}

// Reference reads a runtime property of a deployed resource.
func Reference(id, apiVersion, path string) string {
	expr := fmt.Sprintf("reference(%s, %s)", Unwrap(id), Quote(apiVersion))
	if path != "" {
		expr += "." + path
	}
	return "[" + expr + "]"
}

// Guid builds a deterministic guid() from the given seeds.
func Guid(seeds ...string) string {
	args := make([]string, len(seeds))
	for i, s := range seeds {
		args[i] = Unwrap(s)
	}
	return Expr("guid(%s)", strings.Join(args, ", "))
}
