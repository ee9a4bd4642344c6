// SPDX-License-Identifier: Apache-2.0

package infer

import (
	"context"

	"github.com/nullaware/pgtyper/pkg/ast"
	"github.com/nullaware/pgtyper/pkg/catalog"
)

// Context is a scope in the analysis (spec.md §4.2): it carries a handle
// to the schema client, the statement's parameter nullability, and the CTE
// virtual tables declared at or above this point. Contexts form a tree,
// never shared across statements, and never cyclic — ForCTEs always
// allocates a fresh child.
type Context struct {
	parent *Context
	client *catalog.Client
	params NullableParams
	ctes   map[string]SourceColumns
}

// RootContext starts a Context for a whole statement.
func RootContext(client *catalog.Client, params NullableParams) *Context {
	return &Context{client: client, params: params}
}

// Client returns the schema client shared by the whole Context tree.
func (c *Context) Client() *catalog.Client {
	for n := c; n != nil; n = n.parent {
		if n.client != nil {
			return n.client
		}
	}
	return nil
}

// Params returns the statement's parameter nullability.
func (c *Context) Params() NullableParams {
	for n := c; n != nil; n = n.parent {
		if n.params != nil {
			return n.params
		}
	}
	return nil
}

// GetTable looks up an unqualified name against the CTEs visible here,
// innermost scope first. Callers must never consult this for a schema-
// qualified reference: a CTE is never shadowed by, nor shadows, a real
// schema-qualified table (spec.md §4.2).
func (c *Context) GetTable(name string) (SourceColumns, bool) {
	for n := c; n != nil; n = n.parent {
		if n.ctes != nil {
			if cols, ok := n.ctes[name]; ok {
				return cols, true
			}
		}
	}
	return nil, false
}

// ForCTEs builds a child Context for a WITH clause, analyzing each CTE in
// turn against a scope that already contains the CTEs declared earlier in
// the same WITH, so later CTEs may reference earlier ones (spec.md §4.2).
// It returns (nil, nil) when with is nil or declares no CTEs, in which
// case callers keep using parent unchanged.
func ForCTEs(ctx context.Context, parent *Context, with *ast.With) (*Context, error) {
	if with == nil || len(with.Queries) == 0 {
		return nil, nil
	}

	derived := &Context{parent: parent, ctes: map[string]SourceColumns{}}
	for _, wq := range with.Queries {
		cols, err := AnalyzeStatementColumns(ctx, derived, wq.Stmt)
		if err != nil {
			return nil, err
		}
		if len(wq.Columns) > 0 {
			if len(wq.Columns) != len(cols) {
				return nil, &UnexpectedNumberOfColumnsError{
					Context: "column alias list for CTE " + wq.Name, Expected: len(wq.Columns), Got: len(cols),
				}
			}
			for i := range cols {
				cols[i].Name = wq.Columns[i]
			}
		}

		sc := make(SourceColumns, len(cols))
		for i, col := range cols {
			sc[i] = SourceColumn{TableAlias: wq.Name, Column: col.Name, Nullability: col.Nullability}
		}
		derived.ctes[wq.Name] = sc
	}
	return derived, nil
}
