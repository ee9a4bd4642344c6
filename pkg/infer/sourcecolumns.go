// SPDX-License-Identifier: Apache-2.0

package infer

import (
	"context"
	"fmt"
	"strings"

	"github.com/nullaware/pgtyper/pkg/ast"
	"github.com/nullaware/pgtyper/pkg/catalog"
)

// SourceColumn is one column visible from a FROM clause, tagged with the
// table alias it is reached through (spec.md §4.3).
type SourceColumn struct {
	TableAlias  string
	Column      string
	Nullability ValueNullability
	// Hidden marks a system column (e.g. tableoid) that base tables expose
	// to name lookups (qualified or not) but never to `*` expansion.
	Hidden bool
}

// SourceColumns is the ordered column list a FROM clause (or a statement's
// target table, for RETURNING) makes visible.
type SourceColumns []SourceColumn

// FindQualified looks up table.column. table must match the alias exactly.
func (cs SourceColumns) FindQualified(table, column string) (SourceColumn, bool) {
	for _, c := range cs {
		if c.TableAlias == table && c.Column == column {
			return c, true
		}
	}
	return SourceColumn{}, false
}

// Find looks up an unqualified column name. Spec.md §3: more than one
// match is ambiguity, reported identically to not-found.
func (cs SourceColumns) Find(column string) (SourceColumn, bool) {
	var match SourceColumn
	count := 0
	for _, c := range cs {
		if c.Column == column {
			match = c
			count++
		}
	}
	if count != 1 {
		return SourceColumn{}, false
	}
	return match, true
}

func concatSourceColumns(a, b SourceColumns) SourceColumns {
	out := make(SourceColumns, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func promoteNullable(cs SourceColumns) SourceColumns {
	out := make(SourceColumns, len(cs))
	for i, c := range cs {
		c.Nullability.Nullable = true
		out[i] = c
	}
	return out
}

func renameAlias(cs SourceColumns, alias string) SourceColumns {
	out := make(SourceColumns, len(cs))
	for i, c := range cs {
		c.TableAlias = alias
		out[i] = c
	}
	return out
}

// catalogColumnNullability maps a catalog column to a ValueNullability.
// Array-typed columns are detected by Postgres's "_"-prefixed internal
// type name convention; the catalog has no way to prove an array's
// elements are non-null, so ElemNullable conservatively defaults to true.
func catalogColumnNullability(c catalog.DatabaseColumn) ValueNullability {
	if strings.HasPrefix(c.TypeName, "_") {
		return Arr(c.Nullable, true)
	}
	return Scalar(c.Nullable)
}

// ResolveFrom computes the source columns visible from a FROM-clause tree
// (spec.md §4.3).
func ResolveFrom(ctx context.Context, ictx *Context, te ast.TableExpression) (SourceColumns, error) {
	switch v := te.(type) {
	case *ast.Table:
		return resolveTable(ctx, ictx, v)
	case *ast.SubQuery:
		return resolveSubQuery(ctx, ictx, v)
	case *ast.CrossJoin:
		left, err := ResolveFrom(ctx, ictx, v.Left)
		if err != nil {
			return nil, err
		}
		right, err := ResolveFrom(ctx, ictx, v.Right)
		if err != nil {
			return nil, err
		}
		return concatSourceColumns(left, right), nil
	case *ast.QualifiedJoin:
		return resolveQualifiedJoin(ctx, ictx, v)
	default:
		return nil, fmt.Errorf("infer: unhandled table expression %T", te)
	}
}

func resolveTable(ctx context.Context, ictx *Context, t *ast.Table) (SourceColumns, error) {
	ref := t.Ref
	alias := ref.EffectiveName()

	if ref.Schema == "" {
		if cols, ok := ictx.GetTable(ref.Name); ok {
			return renameAlias(cols, alias), nil
		}
	}

	dbCols, err := ictx.Client().Columns(ctx, ref.Schema, ref.Name)
	if err != nil {
		return nil, err
	}
	out := make(SourceColumns, len(dbCols))
	for i, c := range dbCols {
		out[i] = SourceColumn{
			TableAlias:  alias,
			Column:      c.Name,
			Nullability: catalogColumnNullability(c),
			Hidden:      c.Hidden,
		}
	}
	return out, nil
}

func resolveSubQuery(ctx context.Context, ictx *Context, sq *ast.SubQuery) (SourceColumns, error) {
	sel, ok := sq.Query.(*ast.Select)
	if !ok {
		return nil, fmt.Errorf("infer: FROM subquery must be a SELECT")
	}
	cols, err := AnalyzeSelect(ctx, ictx, sel)
	if err != nil {
		return nil, err
	}
	if len(sq.Columns) > 0 {
		if len(sq.Columns) != len(cols) {
			return nil, &UnexpectedNumberOfColumnsError{
				Context: "subquery column alias list for " + sq.Alias, Expected: len(sq.Columns), Got: len(cols),
			}
		}
		for i := range cols {
			cols[i].Name = sq.Columns[i]
		}
	}
	out := make(SourceColumns, len(cols))
	for i, c := range cols {
		out[i] = SourceColumn{TableAlias: sq.Alias, Column: c.Name, Nullability: c.Nullability}
	}
	return out, nil
}

func resolveQualifiedJoin(ctx context.Context, ictx *Context, j *ast.QualifiedJoin) (SourceColumns, error) {
	left, err := ResolveFrom(ctx, ictx, j.Left)
	if err != nil {
		return nil, err
	}
	right, err := ResolveFrom(ctx, ictx, j.Right)
	if err != nil {
		return nil, err
	}

	switch j.Type {
	case ast.JoinLeft:
		right = promoteNullable(right)
	case ast.JoinRight:
		left = promoteNullable(left)
	case ast.JoinFull:
		left = promoteNullable(left)
		right = promoteNullable(right)
	}

	switch j.Condition.Kind {
	case ast.JoinOn:
		return concatSourceColumns(left, right), nil
	case ast.JoinUsing:
		return applyUsing(left, right, j.Condition.Using), nil
	case ast.JoinNatural:
		return applyUsing(left, right, commonColumnNames(left, right)), nil
	default:
		return nil, fmt.Errorf("infer: unhandled join condition kind %v", j.Condition.Kind)
	}
}

func commonColumnNames(left, right SourceColumns) []string {
	leftNames := map[string]bool{}
	for _, c := range left {
		if !c.Hidden {
			leftNames[c.Column] = true
		}
	}
	var names []string
	seen := map[string]bool{}
	for _, c := range right {
		if c.Hidden || seen[c.Column] || !leftNames[c.Column] {
			continue
		}
		names = append(names, c.Column)
		seen[c.Column] = true
	}
	return names
}

// applyUsing emits each joined-key column once, sourced from the left side
// and forced non-null (a row only survives the join if both sides matched,
// and a matched key can't be NULL), then every other column from each side
// unchanged (spec.md §4.3).
func applyUsing(left, right SourceColumns, using []string) SourceColumns {
	usingSet := make(map[string]bool, len(using))
	for _, u := range using {
		usingSet[u] = true
	}

	out := make(SourceColumns, 0, len(left)+len(right))
	for _, u := range using {
		lc, ok := left.Find(u)
		nullability := Scalar(false)
		alias := ""
		if ok {
			alias = lc.TableAlias
			if lc.Nullability.Array {
				nullability = Arr(false, lc.Nullability.ElemNullable)
			}
		}
		out = append(out, SourceColumn{TableAlias: alias, Column: u, Nullability: nullability})
	}
	for _, c := range left {
		if !usingSet[c.Column] {
			out = append(out, c)
		}
	}
	for _, c := range right {
		if !usingSet[c.Column] {
			out = append(out, c)
		}
	}
	return out
}
