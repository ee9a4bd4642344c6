// SPDX-License-Identifier: Apache-2.0

package infer

import "github.com/nullaware/pgtyper/pkg/ast"

// Facts is a stack of expressions proven non-null by an enclosing WHERE or
// HAVING condition (spec.md §4.4). Child scopes (e.g. a CASE branch) chain
// to a parent so Has walks all the way to the root.
type Facts struct {
	parent *Facts
	exprs  []ast.Expression
}

// NewFacts starts an empty scope chained to parent (which may be nil).
func NewFacts(parent *Facts) *Facts {
	return &Facts{parent: parent}
}

// Has reports whether expr is proven non-null in this scope or any parent,
// using the same column/table.column and commutative-operator equality
// relation the parser's AST defines (spec.md §3).
func (f *Facts) Has(expr ast.Expression) bool {
	for n := f; n != nil; n = n.parent {
		for _, e := range n.exprs {
			if ast.Equal(e, expr) {
				return true
			}
		}
	}
	return false
}

func (f *Facts) add(expr ast.Expression) {
	f.exprs = append(f.exprs, expr)
}

// DeriveFacts builds a child scope of parent containing every fact implied
// by cond being true (spec.md §4.4's derivation table). cond may be nil
// (no WHERE/HAVING), in which case the returned scope adds nothing new.
func DeriveFacts(parent *Facts, cond ast.Expression) *Facts {
	f := NewFacts(parent)
	if cond != nil {
		deriveInto(f, cond, false)
	}
	return f
}

// deriveInto walks an expression assumed to evaluate truthily (or, when
// negated, an expression whose logical negation evaluates truthily) and
// records every non-null fact it implies. negated only changes behavior for
// AND, which may only keep its left operand's facts when negated (since
// `NOT (a AND b)` proves nothing about b once a is false). Every other case
// ignores negated: concluding a subexpression must be non-null holds
// regardless of which boolean value the enclosing condition takes.
func deriveInto(f *Facts, e ast.Expression, negated bool) {
	switch v := e.(type) {
	case *ast.ColumnRef, *ast.TableColumnRef:
		f.add(e)

	case *ast.UnaryOp:
		switch v.Op {
		case "NOTNULL":
			deriveInto(f, v.Expr, negated)
		case "NOT":
			deriveInto(f, v.Expr, !negated)
		case "-", "+":
			deriveInto(f, v.Expr, negated)
		default:
			// ISNULL and the IS TRUE/FALSE/UNKNOWN family are not sound to
			// recurse into here: e.g. `x IS UNKNOWN` being true means x IS
			// NULL, the opposite of what recursing would conclude. Fall
			// back to recording the whole expression as its own fact.
			f.add(e)
		}

	case *ast.BinaryOp:
		if v.Op == "AND" {
			if !negated {
				deriveInto(f, v.Left, negated)
				deriveInto(f, v.Right, negated)
			} else {
				deriveInto(f, v.Left, negated)
			}
			return
		}
		if BinaryOpSafety(v.Op, true) == Safe {
			deriveInto(f, v.Left, negated)
			deriveInto(f, v.Right, negated)
			return
		}
		f.add(e)

	case *ast.TernaryOp:
		deriveInto(f, v.First, negated)
		deriveInto(f, v.Second, negated)
		deriveInto(f, v.Third, negated)

	case *ast.FunctionCall:
		if FunctionSafety(v.Name) == Safe {
			for _, a := range v.Args {
				deriveInto(f, a, negated)
			}
			return
		}
		f.add(e)

	case *ast.InSubquery:
		deriveInto(f, v.Expr, negated)
	case *ast.InExprList:
		deriveInto(f, v.Expr, negated)
	case *ast.AnySomeAllSubquery:
		deriveInto(f, v.Expr, negated)
	case *ast.AnySomeAllArray:
		deriveInto(f, v.Expr, negated)

	case *ast.Param, *ast.Constant, *ast.Case, *ast.Exists,
		*ast.ArraySubquery, *ast.ScalarSubquery, *ast.TypeCast:
		// No facts: constants/params carry no column identity, and CASE,
		// EXISTS, ARRAY()/scalar subqueries and casts are conservatively
		// left alone (spec.md §4.4).

	default:
		f.add(e)
	}
}
