// SPDX-License-Identifier: Apache-2.0

package infer

import (
	"context"
	"fmt"

	"github.com/nullaware/pgtyper/pkg/ast"
)

// Column is one output column: a name and its inferred nullability.
type Column struct {
	Name        string
	Nullability ValueNullability
}

// AnalyzeStatementColumns computes a statement's output columns (spec.md
// §4.6): the SELECT list for a SELECT, or the RETURNING list (empty if
// absent) for INSERT/UPDATE/DELETE.
func AnalyzeStatementColumns(ctx context.Context, ictx *Context, stmt ast.Statement) ([]Column, error) {
	switch v := stmt.(type) {
	case *ast.Select:
		return AnalyzeSelect(ctx, ictx, v)
	case *ast.Insert:
		return analyzeInsertColumns(ctx, ictx, v)
	case *ast.Update:
		return analyzeUpdateColumns(ctx, ictx, v)
	case *ast.Delete:
		return analyzeDeleteColumns(ctx, ictx, v)
	default:
		return nil, fmt.Errorf("infer: unhandled statement type %T", stmt)
	}
}

// AnalyzeSelect computes a SELECT's output columns, first layering in any
// WITH clause's CTEs (spec.md §4.2).
func AnalyzeSelect(ctx context.Context, ictx *Context, sel *ast.Select) ([]Column, error) {
	derived, err := ForCTEs(ctx, ictx, sel.With)
	if err != nil {
		return nil, err
	}
	if derived != nil {
		ictx = derived
	}
	return analyzeSelectBody(ctx, ictx, sel.Body)
}

func analyzeSelectBody(ctx context.Context, ictx *Context, body ast.SelectBody) ([]Column, error) {
	switch v := body.(type) {
	case *ast.SimpleSelect:
		return analyzeSimpleSelect(ctx, ictx, v)
	case *ast.SelectSetOp:
		return analyzeSetOp(ctx, ictx, v)
	default:
		return nil, fmt.Errorf("infer: unhandled select body %T", body)
	}
}

func analyzeSimpleSelect(ctx context.Context, ictx *Context, s *ast.SimpleSelect) ([]Column, error) {
	var cols SourceColumns
	if s.From != nil {
		var err error
		cols, err = ResolveFrom(ctx, ictx, s.From)
		if err != nil {
			return nil, err
		}
	}
	facts := DeriveFacts(nil, s.Where)
	facts = DeriveFacts(facts, s.Having)
	return evaluateSelectList(ctx, ictx, cols, facts, s.List)
}

// analyzeSetOp implements spec.md §4.6: UNION/INTERSECT disjoin matching
// columns' nullability; EXCEPT keeps the left side's nullability unchanged
// (tightening it by ruling out the right side's rows isn't modeled — see
// DESIGN.md). Output names always come from the left (ultimately the
// first SELECT).
func analyzeSetOp(ctx context.Context, ictx *Context, op *ast.SelectSetOp) ([]Column, error) {
	left, err := analyzeSelectBody(ctx, ictx, op.Left)
	if err != nil {
		return nil, err
	}
	right, err := analyzeSelectBody(ctx, ictx, op.Right)
	if err != nil {
		return nil, err
	}
	if len(left) != len(right) {
		return nil, &UnexpectedNumberOfColumnsError{Context: "set operation", Expected: len(left), Got: len(right)}
	}

	out := make([]Column, len(left))
	for i := range left {
		if op.Op == ast.SelectExcept {
			out[i] = left[i]
			continue
		}
		out[i] = Column{Name: left[i].Name, Nullability: Disjunction(left[i].Nullability, right[i].Nullability)}
	}
	return out, nil
}

// analyzeInsertColumns evaluates RETURNING (empty if absent) against the
// target table's own catalog columns. Per spec.md §4.6/§8, this does not
// tighten nullability using what an INSERT ... SELECT's source query
// proves about the inserted values — the target table's declared
// nullability is always used, which is sound but not maximally precise.
func analyzeInsertColumns(ctx context.Context, ictx *Context, ins *ast.Insert) ([]Column, error) {
	if len(ins.Returning) == 0 {
		return nil, nil
	}
	cols, err := resolveTargetTableColumns(ctx, ictx, ins.Table)
	if err != nil {
		return nil, err
	}
	return evaluateSelectList(ctx, ictx, cols, NewFacts(nil), ins.Returning)
}

func analyzeUpdateColumns(ctx context.Context, ictx *Context, u *ast.Update) ([]Column, error) {
	if len(u.Returning) == 0 {
		return nil, nil
	}
	target, err := resolveTargetTableColumns(ctx, ictx, u.Table)
	if err != nil {
		return nil, err
	}
	cols := target
	if u.From != nil {
		fromCols, err := ResolveFrom(ctx, ictx, u.From)
		if err != nil {
			return nil, err
		}
		cols = concatSourceColumns(target, fromCols)
	}
	facts := DeriveFacts(nil, u.Where)
	return evaluateSelectList(ctx, ictx, cols, facts, u.Returning)
}

// analyzeDeleteColumns evaluates RETURNING against only the target table's
// columns, per spec.md §4.6 ("for DELETE, only the target table"). DELETE
// ... USING is not part of this grammar (see DESIGN.md) — there is no
// second source of columns to fold in here.
func analyzeDeleteColumns(ctx context.Context, ictx *Context, d *ast.Delete) ([]Column, error) {
	if len(d.Returning) == 0 {
		return nil, nil
	}
	target, err := resolveTargetTableColumns(ctx, ictx, d.Table)
	if err != nil {
		return nil, err
	}
	facts := DeriveFacts(nil, d.Where)
	return evaluateSelectList(ctx, ictx, target, facts, d.Returning)
}

func resolveTargetTableColumns(ctx context.Context, ictx *Context, ref ast.TableRef) (SourceColumns, error) {
	return resolveTable(ctx, ictx, &ast.Table{Ref: ref})
}
