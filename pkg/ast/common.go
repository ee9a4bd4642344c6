// SPDX-License-Identifier: Apache-2.0

package ast

// TableRef names a base table or CTE, with an optional schema qualifier and
// an optional alias. A schema-qualified reference never matches a CTE name,
// even one that shadows a base table of the same name (spec.md §3).
type TableRef struct {
	Schema string // empty when unqualified
	Name   string
	Alias  string // empty when the table is referred to by its own name
}

// EffectiveName is the name a column resolver should use to address this
// table: its alias if it has one, otherwise its own name.
func (t TableRef) EffectiveName() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// ExpressionAs is a single `expr [AS alias]` projection item, used in
// SELECT lists and RETURNING clauses.
type ExpressionAs struct {
	Expr  Expression
	Alias string // empty when no AS was given
}

// SelectListItem is either a star-expansion (`*` or `tbl.*`) or a single
// expression projection.
type SelectListItem struct {
	// Star is true for `*` / `tbl.*` items. StarTable holds the table alias
	// for `tbl.*`, and is empty for a bare `*`.
	Star      bool
	StarTable string

	Item ExpressionAs // only meaningful when Star is false
}

// Order is an ORDER BY direction.
type Order int

const (
	OrderDefault Order = iota
	OrderAsc
	OrderDesc
)

// Nulls is an explicit NULLS FIRST/LAST modifier.
type Nulls int

const (
	NullsDefault Nulls = iota
	NullsFirst
	NullsLast
)

// OrderByItem is a single ORDER BY term.
type OrderByItem struct {
	Expr  Expression
	Order Order
	Nulls Nulls
}

// Limit holds an optional LIMIT and/or OFFSET count. Neither affects
// nullability or row-count inference beyond LIMIT capping Many to
// ZeroOrOne when it is exactly 1 (see infer/rowcount.go); the parsed
// expressions are kept for completeness even though the core algorithms
// only check whether Count is the literal 1.
type Limit struct {
	Count  Expression // nil when absent
	Offset Expression // nil when absent
}

// Distinct describes a SELECT's DISTINCT clause. A non-nil *Distinct with
// an empty On means plain `DISTINCT` (whole-row); a non-empty On means
// `DISTINCT ON (exprs)`.
type Distinct struct {
	On []Expression
}
