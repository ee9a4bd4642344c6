// SPDX-License-Identifier: Apache-2.0

package infer

import (
	"context"
	"fmt"

	"github.com/nullaware/pgtyper/pkg/ast"
)

// ExprNullability infers the nullability of an expression evaluated with
// source columns cols visible and facts already proven (spec.md §4.5).
func ExprNullability(ctx context.Context, ictx *Context, cols SourceColumns, facts *Facts, e ast.Expression) (ValueNullability, error) {
	if facts.Has(e) {
		return Scalar(false), nil
	}

	recurse := func(x ast.Expression) (ValueNullability, error) {
		return ExprNullability(ctx, ictx, cols, facts, x)
	}

	switch v := e.(type) {
	case *ast.ColumnRef:
		sc, ok := cols.Find(v.Name)
		if !ok {
			return ValueNullability{}, &ColumnNotFoundError{Name: v.Name}
		}
		return sc.Nullability, nil

	case *ast.TableColumnRef:
		sc, ok := cols.FindQualified(v.Table, v.Name)
		if !ok {
			return ValueNullability{}, &TableColumnNotFoundError{Table: v.Table, Column: v.Name}
		}
		return sc.Nullability, nil

	case *ast.Constant:
		return Scalar(v.Kind == ast.ConstantNull), nil

	case *ast.Param:
		return Scalar(ictx.Params().IsNullable(v.Index)), nil

	case *ast.UnaryOp:
		inner, err := recurse(v.Expr)
		if err != nil {
			return ValueNullability{}, err
		}
		switch UnaryOpSafety(v.Op) {
		case NeverNull:
			return Scalar(false), nil
		case Unsafe:
			return Scalar(true), nil
		default:
			return inner, nil
		}

	case *ast.BinaryOp:
		left, err := recurse(v.Left)
		if err != nil {
			return ValueNullability{}, err
		}
		right, err := recurse(v.Right)
		if err != nil {
			return ValueNullability{}, err
		}
		if v.Op == "[]" {
			nullable := left.Nullable || right.Nullable || (left.Array && left.ElemNullable)
			return Scalar(nullable), nil
		}
		if v.Op == "AND" || v.Op == "OR" {
			return Scalar(left.Nullable || right.Nullable), nil
		}
		switch BinaryOpSafety(v.Op, false) {
		case NeverNull:
			return Scalar(false), nil
		case Unsafe:
			return Scalar(true), nil
		default:
			return Disjunction(left, right), nil
		}

	case *ast.TernaryOp:
		first, err := recurse(v.First)
		if err != nil {
			return ValueNullability{}, err
		}
		second, err := recurse(v.Second)
		if err != nil {
			return ValueNullability{}, err
		}
		third, err := recurse(v.Third)
		if err != nil {
			return ValueNullability{}, err
		}
		switch TernaryOpSafety(v.Op) {
		case NeverNull:
			return Scalar(false), nil
		case Unsafe:
			return Scalar(true), nil
		default:
			return Disjunction3(first, second, third), nil
		}

	case *ast.FunctionCall:
		return inferFunctionCall(ctx, ictx, cols, facts, v)

	case *ast.Case:
		return inferCase(ctx, ictx, cols, facts, v)

	case *ast.TypeCast:
		return recurse(v.Expr)

	case *ast.Exists:
		if _, err := AnalyzeSelect(ctx, ictx, v.Subquery); err != nil {
			return ValueNullability{}, err
		}
		return Scalar(false), nil

	case *ast.ScalarSubquery:
		subCols, err := subqueryColumn(ctx, ictx, v.Subquery, "scalar subquery")
		if err != nil {
			return ValueNullability{}, err
		}
		return subCols.Nullability, nil

	case *ast.ArraySubquery:
		subCols, err := subqueryColumn(ctx, ictx, v.Subquery, "ARRAY() subquery")
		if err != nil {
			return ValueNullability{}, err
		}
		return Arr(false, subCols.Nullability.Nullable), nil

	case *ast.InSubquery:
		exprN, err := recurse(v.Expr)
		if err != nil {
			return ValueNullability{}, err
		}
		subCol, err := subqueryColumn(ctx, ictx, v.Subquery, "IN subquery")
		if err != nil {
			return ValueNullability{}, err
		}
		return Scalar(exprN.Nullable || subCol.Nullability.Nullable), nil

	case *ast.InExprList:
		exprN, err := recurse(v.Expr)
		if err != nil {
			return ValueNullability{}, err
		}
		nullable := exprN.Nullable
		for _, item := range v.List {
			n, err := recurse(item)
			if err != nil {
				return ValueNullability{}, err
			}
			nullable = nullable || n.Nullable
		}
		return Scalar(nullable), nil

	case *ast.AnySomeAllSubquery:
		exprN, err := recurse(v.Expr)
		if err != nil {
			return ValueNullability{}, err
		}
		subCol, err := subqueryColumn(ctx, ictx, v.Subquery, "ANY/SOME/ALL subquery")
		if err != nil {
			return ValueNullability{}, err
		}
		return Scalar(exprN.Nullable || subCol.Nullability.Nullable), nil

	case *ast.AnySomeAllArray:
		exprN, err := recurse(v.Expr)
		if err != nil {
			return ValueNullability{}, err
		}
		arrN, err := recurse(v.Array)
		if err != nil {
			return ValueNullability{}, err
		}
		if exprN.Nullable || arrN.Nullable {
			return Scalar(true), nil
		}
		if arrN.Array {
			return Scalar(arrN.ElemNullable), nil
		}
		return Scalar(false), nil

	default:
		return ValueNullability{}, fmt.Errorf("infer: unhandled expression type %T", e)
	}
}

func inferFunctionCall(ctx context.Context, ictx *Context, cols SourceColumns, facts *Facts, fn *ast.FunctionCall) (ValueNullability, error) {
	args := make([]ValueNullability, len(fn.Args))
	for i, a := range fn.Args {
		n, err := ExprNullability(ctx, ictx, cols, facts, a)
		if err != nil {
			return ValueNullability{}, err
		}
		args[i] = n
	}
	if fn.Filter != nil {
		if _, err := ExprNullability(ctx, ictx, cols, facts, fn.Filter); err != nil {
			return ValueNullability{}, err
		}
	}

	switch FunctionSafety(fn.Name) {
	case NeverNull:
		return Scalar(false), nil
	case Unsafe:
		return Scalar(true), nil
	default:
		if len(args) == 0 {
			return Scalar(false), nil
		}
		result := args[0]
		for _, n := range args[1:] {
			result = Disjunction(result, n)
		}
		return result, nil
	}
}

// inferCase implements spec.md §4.5's CASE rule: no ELSE always yields
// Scalar{true}; with an ELSE, each WHEN branch's result is inferred in a
// child fact scope seeded with that branch's own condition (so e.g.
// `CASE WHEN x IS NOT NULL THEN x END` can prove its THEN arm non-null),
// and the whole expression's nullability is the disjunction of the ELSE
// and every branch result.
func inferCase(ctx context.Context, ictx *Context, cols SourceColumns, facts *Facts, c *ast.Case) (ValueNullability, error) {
	hasElse := c.Else != nil
	var result ValueNullability
	if hasElse {
		n, err := ExprNullability(ctx, ictx, cols, facts, c.Else)
		if err != nil {
			return ValueNullability{}, err
		}
		result = n
	}

	for _, branch := range c.Branches {
		if _, err := ExprNullability(ctx, ictx, cols, facts, branch.Cond); err != nil {
			return ValueNullability{}, err
		}
		branchFacts := DeriveFacts(facts, branch.Cond)
		n, err := ExprNullability(ctx, ictx, cols, branchFacts, branch.Result)
		if err != nil {
			return ValueNullability{}, err
		}
		if hasElse {
			result = Disjunction(result, n)
		}
	}

	if !hasElse {
		return Scalar(true), nil
	}
	return result, nil
}

// subqueryColumn evaluates a subquery used in scalar position and requires
// it to produce exactly one column (spec.md §4.5).
func subqueryColumn(ctx context.Context, ictx *Context, sel *ast.Select, label string) (Column, error) {
	cols, err := AnalyzeSelect(ctx, ictx, sel)
	if err != nil {
		return Column{}, err
	}
	if len(cols) != 1 {
		return Column{}, &UnexpectedNumberOfColumnsError{Context: label, Expected: 1, Got: len(cols)}
	}
	return cols[0], nil
}
