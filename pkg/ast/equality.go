// SPDX-License-Identifier: Apache-2.0

package ast

// commutativeOps are the binary operators whose operand order does not
// matter for fact-tracking purposes (spec.md §3).
var commutativeOps = map[string]bool{
	"=":   true,
	"<>":  true,
	"!=":  true,
	"+":   true,
	"*":   true,
	"AND": true,
	"OR":  true,
}

// Equal reports whether two expressions are the same fact for the purposes
// of the non-null-facts tracker (infer package). It is intentionally
// narrower than full structural equality: an unqualified column reference
// is equal to a qualified reference to the same column name (the table
// qualifier is resolved by context, not by this comparison), commutative
// binary operators ignore operand order, and the forms without a case
// below (subqueries, EXISTS, IN, ANY/SOME/ALL comparisons, CASE) are
// always considered unequal, even to themselves, conservatively, since
// tracking facts through those forms is not sound without re-running
// inference on the subquery.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if aCol, aIsCol := asColumnRef(a); aIsCol {
		if bCol, bIsCol := asColumnRef(b); bIsCol {
			return columnRefsEqual(aCol, bCol)
		}
	}

	switch av := a.(type) {
	case *Param:
		bv, ok := b.(*Param)
		return ok && av.Index == bv.Index
	case *Constant:
		bv, ok := b.(*Constant)
		return ok && av.Kind == bv.Kind && av.Text == bv.Text
	case *UnaryOp:
		bv, ok := b.(*UnaryOp)
		return ok && av.Op == bv.Op && Equal(av.Expr, bv.Expr)
	case *BinaryOp:
		bv, ok := b.(*BinaryOp)
		if !ok || av.Op != bv.Op {
			return false
		}
		if Equal(av.Left, bv.Left) && Equal(av.Right, bv.Right) {
			return true
		}
		return commutativeOps[av.Op] && Equal(av.Left, bv.Right) && Equal(av.Right, bv.Left)
	case *TernaryOp:
		bv, ok := b.(*TernaryOp)
		return ok && av.Op == bv.Op &&
			Equal(av.First, bv.First) && Equal(av.Second, bv.Second) && Equal(av.Third, bv.Third)
	case *FunctionCall:
		bv, ok := b.(*FunctionCall)
		if !ok || av.Name != bv.Name || av.Distinct != bv.Distinct || av.Star != bv.Star {
			return false
		}
		if av.Window != nil || bv.Window != nil {
			return false
		}
		if !Equal(av.Filter, bv.Filter) {
			return false
		}
		if len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Equal(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case *TypeCast:
		bv, ok := b.(*TypeCast)
		return ok && av.Type == bv.Type && Equal(av.Expr, bv.Expr)
	default:
		// Case, Exists, InSubquery, InExprList, AnySomeAllSubquery,
		// AnySomeAllArray, ArraySubquery, ScalarSubquery: conservatively
		// never equal, even to themselves structurally, per spec.md's
		// open-question decision (see DESIGN.md).
		return false
	}
}

// columnRef is a column-like expression reduced to its name and, if
// qualified, its table alias.
type columnRef struct {
	table     string
	name      string
	qualified bool
}

// asColumnRef extracts a columnRef from a ColumnRef or TableColumnRef,
// reporting whether e was one of those two forms.
func asColumnRef(e Expression) (columnRef, bool) {
	switch v := e.(type) {
	case *ColumnRef:
		return columnRef{name: v.Name}, true
	case *TableColumnRef:
		return columnRef{table: v.Table, name: v.Name, qualified: true}, true
	default:
		return columnRef{}, false
	}
}

// columnRefsEqual reports whether two column references denote the same
// source column: a bare reference matches any qualified reference to the
// same name (the table is resolved by context, not by this comparison),
// but two qualified references must also agree on their table — a.x and
// b.x are different facts even though they share a column name.
func columnRefsEqual(a, b columnRef) bool {
	if a.name != b.name {
		return false
	}
	if a.qualified && b.qualified {
		return a.table == b.table
	}
	return true
}
