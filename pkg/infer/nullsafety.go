// SPDX-License-Identifier: Apache-2.0

package infer

import "strings"

// NullSafety classifies how an operator or function propagates NULL
// (spec.md §4.4/§4.5): Safe means the result is NULL exactly when some
// operand is NULL, Unsafe means it may return NULL even with all-non-NULL
// operands (or NULL with none), and NeverNull means it never returns NULL.
type NullSafety int

const (
	Safe NullSafety = iota
	Unsafe
	NeverNull
)

var neverNullUnaryOps = map[string]bool{
	"ISNULL":        true,
	"NOTNULL":       true,
	"IS TRUE":       true,
	"IS NOT TRUE":   true,
	"IS FALSE":      true,
	"IS NOT FALSE":  true,
	"IS UNKNOWN":    true,
	"IS NOT UNKNOWN": true,
}

// UnaryOpSafety classifies a unary operator. NOTNULL is listed here for
// completeness but the facts walker (deriveInto in nonnullfacts.go) special-cases
// it and NOT separately rather than consulting this table, since both
// recurse into their operand instead of stopping at NeverNull/Safe.
func UnaryOpSafety(op string) NullSafety {
	if neverNullUnaryOps[op] {
		return NeverNull
	}
	return Safe
}

var neverNullBinaryOps = map[string]bool{
	"IS DISTINCT FROM":     true,
	"IS NOT DISTINCT FROM": true,
}

// unsafeForFacts holds operators that are Unsafe only when deriving
// non-null facts from an assumed-true condition (spec.md §4.4); AND/OR
// compose safely for ordinary expression-nullability inference (§4.5) but
// not for fact extraction, since e.g. `a AND b` being false proves nothing
// about either operand's nullness.
var unsafeForFacts = map[string]bool{
	"AND": true,
	"OR":  true,
}

// BinaryOpSafety classifies a binary operator. forFacts selects the
// fact-derivation table (§4.4) instead of the expression-nullability table
// (§4.5) for AND/OR, which differ only in this one respect.
func BinaryOpSafety(op string, forFacts bool) NullSafety {
	if neverNullBinaryOps[op] {
		return NeverNull
	}
	if forFacts && unsafeForFacts[op] {
		return Unsafe
	}
	return Safe
}

// TernaryOpSafety classifies a ternary operator. BETWEEN is the only one
// the parser ever produces, and it is null-safe.
func TernaryOpSafety(op string) NullSafety {
	return Safe
}

var neverNullBuiltins = map[string]bool{
	"num_nonnulls":       true,
	"num_nulls":          true,
	"pi":                 true,
	"setseed":            true,
	"concat":             true,
	"concat_ws":          true,
	"pg_client_encoding": true,
	"quote_nullable":     true,
	"count":              true,
	"now":                true,
	"daterange":          true,
	// COALESCE/GREATEST/LEAST are non-null as soon as one argument is
	// non-null; the generic Safe classification's OR-of-arguments fold
	// can't express that AND-like "any one suffices" rule, so they're
	// classified NeverNull here rather than Safe (spec.md's scenario 6).
	"coalesce": true,
	"greatest": true,
	"least":    true,
}

var unsafeBuiltins = map[string]bool{
	"format": true,
}

// FunctionSafety classifies a builtin by name (case-insensitive); any
// function not named here defaults to Safe (spec.md §4.4).
func FunctionSafety(name string) NullSafety {
	name = strings.ToLower(name)
	if neverNullBuiltins[name] {
		return NeverNull
	}
	if unsafeBuiltins[name] {
		return Unsafe
	}
	return Safe
}
