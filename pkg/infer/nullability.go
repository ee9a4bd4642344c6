// SPDX-License-Identifier: Apache-2.0

// Package infer implements the nullability-inference engine (spec.md §4):
// context/CTE resolution, FROM-tree source-column resolution, the
// non-null-facts tracker, expression nullability, top-level per-statement
// column nullability, select-list evaluation, parameter nullability and
// row-count inference, tied together by Analyze.
package infer

// ValueNullability is a value's nullability shape (spec.md §3): either a
// plain scalar, or an array whose elements carry their own nullability
// independent of the array value itself. ElemNullable is meaningful only
// when Array is true.
type ValueNullability struct {
	Array        bool
	Nullable     bool
	ElemNullable bool
}

// Scalar builds a non-array ValueNullability.
func Scalar(nullable bool) ValueNullability {
	return ValueNullability{Nullable: nullable}
}

// Arr builds an array ValueNullability.
func Arr(nullable, elemNullable bool) ValueNullability {
	return ValueNullability{Array: true, Nullable: nullable, ElemNullable: elemNullable}
}

// Disjunction combines two ValueNullability per spec.md §4.5: when both
// operands are arrays the result stays an array, OR-ing both the outer and
// element nullability; otherwise any array operand collapses to scalar and
// only outer nullability is OR-ed.
func Disjunction(a, b ValueNullability) ValueNullability {
	if a.Array && b.Array {
		return Arr(a.Nullable || b.Nullable, a.ElemNullable || b.ElemNullable)
	}
	return Scalar(a.Nullable || b.Nullable)
}

// Disjunction3 is Disjunction(Disjunction(a, b), c).
func Disjunction3(a, b, c ValueNullability) ValueNullability {
	return Disjunction(Disjunction(a, b), c)
}

// NullableParams is the set of 1-based parameter indices known to be
// nullable, built once per statement by InferNullableParams (spec.md §4.8).
type NullableParams map[int]bool

// IsNullable reports whether parameter i is known to be nullable. An
// unknown or absent index defaults to non-nullable, matching describe's
// default (spec.md §2 step 3).
func (p NullableParams) IsNullable(i int) bool {
	return p != nil && p[i]
}
