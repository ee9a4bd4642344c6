// SPDX-License-Identifier: Apache-2.0

package infer

import (
	"context"

	"github.com/nullaware/pgtyper/pkg/ast"
	"github.com/nullaware/pgtyper/pkg/catalog"
)

// InferNullableParams runs the up-front parameter-nullability pass
// (spec.md §4.8) over a parsed statement's INSERT/UPDATE forms: a
// parameter lands as nullable if it is ever written into a column the
// target table allows to be NULL.
//
// The pass looks at the top-level statement and, beyond what spec.md's
// original description covers, at each directly-declared CTE body (since
// this grammar allows a CTE to itself be an INSERT/UPDATE ... RETURNING).
// It does not recurse further into CTEs nested inside those CTE bodies or
// into FROM-subqueries, matching the pass's framing as a single shallow
// sweep rather than a full statement walk.
func InferNullableParams(ctx context.Context, client *catalog.Client, root *ast.AST) (NullableParams, error) {
	params := NullableParams{}
	if root.With != nil {
		for _, wq := range root.With.Queries {
			if err := scanStatementForParams(ctx, client, wq.Stmt, params); err != nil {
				return nil, err
			}
		}
	}
	if err := scanStatementForParams(ctx, client, root.Stmt, params); err != nil {
		return nil, err
	}
	return params, nil
}

func scanStatementForParams(ctx context.Context, client *catalog.Client, stmt ast.Statement, params NullableParams) error {
	switch v := stmt.(type) {
	case *ast.Insert:
		return scanInsertParams(ctx, client, v, params)
	case *ast.Update:
		return scanUpdateParams(ctx, client, v, params)
	default:
		return nil
	}
}

func scanInsertParams(ctx context.Context, client *catalog.Client, ins *ast.Insert, params NullableParams) error {
	targetCols, err := targetColumnsForInsert(ctx, client, ins)
	if err != nil {
		return err
	}

	switch src := ins.Source.(type) {
	case *ast.ValuesSource:
		for _, row := range src.Rows {
			for i, v := range row {
				if v.Default || v.Expr == nil || i >= len(targetCols) {
					continue
				}
				p, ok := v.Expr.(*ast.Param)
				if !ok {
					continue
				}
				if targetCols[i].Nullable {
					params[p.Index] = true
				}
			}
		}
	case *ast.SelectSource, *ast.DefaultValuesSource:
		// Contributes nothing to this pass (spec.md §4.8).
	}

	if ins.OnConflict != nil && ins.OnConflict.Action.Kind == ast.ConflictDoUpdate {
		scanAssignmentsForParams(targetCols, ins.OnConflict.Action.Assignments, params)
	}
	return nil
}

func scanUpdateParams(ctx context.Context, client *catalog.Client, u *ast.Update, params NullableParams) error {
	all, err := client.Columns(ctx, u.Table.Schema, u.Table.Name)
	if err != nil {
		return err
	}
	scanAssignmentsForParams(visibleColumns(all), u.Assignments, params)
	return nil
}

func scanAssignmentsForParams(targetCols []catalog.DatabaseColumn, assignments []ast.Assignment, params NullableParams) {
	byName := make(map[string]catalog.DatabaseColumn, len(targetCols))
	for _, c := range targetCols {
		byName[c.Name] = c
	}
	for _, a := range assignments {
		if a.Value.Default || a.Value.Expr == nil {
			continue
		}
		p, ok := a.Value.Expr.(*ast.Param)
		if !ok {
			continue
		}
		if c, ok := byName[a.Column]; ok && c.Nullable {
			params[p.Index] = true
		}
	}
}

func targetColumnsForInsert(ctx context.Context, client *catalog.Client, ins *ast.Insert) ([]catalog.DatabaseColumn, error) {
	all, err := client.Columns(ctx, ins.Table.Schema, ins.Table.Name)
	if err != nil {
		return nil, err
	}
	if len(ins.Columns) == 0 {
		return visibleColumns(all), nil
	}

	byName := make(map[string]catalog.DatabaseColumn, len(all))
	for _, c := range all {
		byName[c.Name] = c
	}
	out := make([]catalog.DatabaseColumn, len(ins.Columns))
	for i, name := range ins.Columns {
		c, ok := byName[name]
		if !ok {
			return nil, &ColumnNotFoundError{Name: name}
		}
		out[i] = c
	}
	return out, nil
}

func visibleColumns(all []catalog.DatabaseColumn) []catalog.DatabaseColumn {
	out := make([]catalog.DatabaseColumn, 0, len(all))
	for _, c := range all {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}
