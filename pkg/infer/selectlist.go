// SPDX-License-Identifier: Apache-2.0

package infer

import (
	"context"

	"github.com/nullaware/pgtyper/pkg/ast"
)

// evaluateSelectList computes output columns for a SELECT or RETURNING
// list (spec.md §4.7): `*`/`table.*` expand to source columns (demoting
// outer nullability to non-null for any column already proven non-null),
// everything else infers its own nullability and picks a best-effort name.
func evaluateSelectList(ctx context.Context, ictx *Context, cols SourceColumns, facts *Facts, items []ast.SelectListItem) ([]Column, error) {
	var out []Column
	for _, item := range items {
		if item.Star {
			for _, c := range cols {
				if c.Hidden {
					continue
				}
				if item.StarTable != "" && c.TableAlias != item.StarTable {
					continue
				}
				n := c.Nullability
				if facts.Has(&ast.TableColumnRef{Table: c.TableAlias, Name: c.Column}) {
					n.Nullable = false
				}
				out = append(out, Column{Name: c.Column, Nullability: n})
			}
			continue
		}

		n, err := ExprNullability(ctx, ictx, cols, facts, item.Item.Expr)
		if err != nil {
			return nil, err
		}
		name := item.Item.Alias
		if name == "" {
			name = bestEffortName(item.Item.Expr)
		}
		out = append(out, Column{Name: name, Nullability: n})
	}
	return out, nil
}

func bestEffortName(e ast.Expression) string {
	switch v := e.(type) {
	case *ast.ColumnRef:
		return v.Name
	case *ast.TableColumnRef:
		return v.Name
	case *ast.FunctionCall:
		return v.Name
	default:
		return "?column?"
	}
}
