// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullaware/pgtyper/pkg/ast"
)

func TestParseSimpleSelect(t *testing.T) {
	tree, err := Parse("SELECT id, name FROM users WHERE id = $1")
	require.NoError(t, err)

	sel, ok := tree.Stmt.(*ast.Select)
	require.True(t, ok)
	body, ok := sel.Body.(*ast.SimpleSelect)
	require.True(t, ok)
	require.Len(t, body.List, 2)
	assert.Equal(t, "id", body.List[0].Item.Expr.(*ast.ColumnRef).Name)
	assert.Equal(t, "name", body.List[1].Item.Expr.(*ast.ColumnRef).Name)

	tbl, ok := body.From.(*ast.Table)
	require.True(t, ok)
	assert.Equal(t, "users", tbl.Ref.Name)

	where, ok := body.Where.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "=", where.Op)
	assert.Equal(t, 1, where.Right.(*ast.Param).Index)
}

func TestParseJoin(t *testing.T) {
	tree, err := Parse(`SELECT u.id FROM users u LEFT JOIN orders o ON u.id = o.user_id`)
	require.NoError(t, err)
	sel := tree.Stmt.(*ast.Select)
	body := sel.Body.(*ast.SimpleSelect)
	join, ok := body.From.(*ast.QualifiedJoin)
	require.True(t, ok)
	assert.Equal(t, ast.JoinLeft, join.Type)
	assert.Equal(t, ast.JoinOn, join.Condition.Kind)
}

func TestParseCTE(t *testing.T) {
	tree, err := Parse(`WITH active AS (SELECT id FROM users WHERE active) SELECT * FROM active`)
	require.NoError(t, err)
	require.NotNil(t, tree.With)
	require.Len(t, tree.With.Queries, 1)
	assert.Equal(t, "active", tree.With.Queries[0].Name)
}

func TestParseInsertReturning(t *testing.T) {
	tree, err := Parse(`INSERT INTO users (id, name) VALUES ($1, $2) RETURNING id`)
	require.NoError(t, err)
	ins, ok := tree.Stmt.(*ast.Insert)
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name"}, ins.Columns)
	src, ok := ins.Source.(*ast.ValuesSource)
	require.True(t, ok)
	require.Len(t, src.Rows, 1)
	require.Len(t, ins.Returning, 1)
}

func TestParseInsertOnConflict(t *testing.T) {
	tree, err := Parse(`INSERT INTO users (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = $2`)
	require.NoError(t, err)
	ins := tree.Stmt.(*ast.Insert)
	require.NotNil(t, ins.OnConflict)
	assert.Equal(t, ast.ConflictDoUpdate, ins.OnConflict.Action.Kind)
	assert.Equal(t, []string{"id"}, ins.OnConflict.Target.Columns)
}

func TestParseUpdateSetWhereReturning(t *testing.T) {
	tree, err := Parse(`UPDATE users SET name = $1 WHERE id = $2 RETURNING id, name`)
	require.NoError(t, err)
	upd := tree.Stmt.(*ast.Update)
	require.Len(t, upd.Assignments, 1)
	assert.Equal(t, "name", upd.Assignments[0].Column)
	require.Len(t, upd.Returning, 2)
}

func TestParseDelete(t *testing.T) {
	tree, err := Parse(`DELETE FROM users WHERE id = $1 RETURNING id`)
	require.NoError(t, err)
	del := tree.Stmt.(*ast.Delete)
	assert.Equal(t, "users", del.Table.Name)
	require.Len(t, del.Returning, 1)
}

func TestParseSetOperation(t *testing.T) {
	tree, err := Parse(`SELECT id FROM a UNION ALL SELECT id FROM b`)
	require.NoError(t, err)
	sel := tree.Stmt.(*ast.Select)
	setOp, ok := sel.Body.(*ast.SelectSetOp)
	require.True(t, ok)
	assert.Equal(t, ast.SelectUnion, setOp.Op)
	assert.Equal(t, ast.SetOpAll, setOp.Duplicates)
}

func TestParseCaseExpression(t *testing.T) {
	tree, err := Parse(`SELECT CASE WHEN id > 0 THEN 'pos' ELSE 'neg' END FROM t`)
	require.NoError(t, err)
	sel := tree.Stmt.(*ast.Select)
	body := sel.Body.(*ast.SimpleSelect)
	c, ok := body.List[0].Item.Expr.(*ast.Case)
	require.True(t, ok)
	require.Len(t, c.Branches, 1)
	require.NotNil(t, c.Else)
}

func TestParseFunctionCallWithFilterAndOver(t *testing.T) {
	tree, err := Parse(`SELECT count(*) FILTER (WHERE active) OVER (PARTITION BY dept ORDER BY id) FROM t`)
	require.NoError(t, err)
	sel := tree.Stmt.(*ast.Select)
	body := sel.Body.(*ast.SimpleSelect)
	fc, ok := body.List[0].Item.Expr.(*ast.FunctionCall)
	require.True(t, ok)
	assert.True(t, fc.Star)
	assert.NotNil(t, fc.Filter)
	require.NotNil(t, fc.Window)
	assert.Len(t, fc.Window.PartitionBy, 1)
}

func TestParseOrderByLimitOffset(t *testing.T) {
	tree, err := Parse(`SELECT id FROM t ORDER BY id DESC NULLS LAST LIMIT 10 OFFSET 5`)
	require.NoError(t, err)
	sel := tree.Stmt.(*ast.Select)
	require.Len(t, sel.OrderBy, 1)
	assert.Equal(t, ast.OrderDesc, sel.OrderBy[0].Order)
	assert.Equal(t, ast.NullsLast, sel.OrderBy[0].Nulls)
	require.NotNil(t, sel.Limit)
	assert.NotNil(t, sel.Limit.Count)
	assert.NotNil(t, sel.Limit.Offset)
}

func TestParseScalarSubqueryAndInSubquery(t *testing.T) {
	tree, err := Parse(`SELECT (SELECT max(id) FROM t) FROM u WHERE u.id IN (SELECT id FROM t)`)
	require.NoError(t, err)
	sel := tree.Stmt.(*ast.Select)
	body := sel.Body.(*ast.SimpleSelect)
	_, ok := body.List[0].Item.Expr.(*ast.ScalarSubquery)
	require.True(t, ok)
	_, ok = body.Where.(*ast.InSubquery)
	require.True(t, ok)
}

func TestParseTypeCast(t *testing.T) {
	tree, err := Parse(`SELECT id::text, CAST(name AS varchar(20)) FROM t`)
	require.NoError(t, err)
	sel := tree.Stmt.(*ast.Select)
	body := sel.Body.(*ast.SimpleSelect)
	cast1, ok := body.List[0].Item.Expr.(*ast.TypeCast)
	require.True(t, ok)
	assert.Equal(t, "text", cast1.Type)
	cast2, ok := body.List[1].Item.Expr.(*ast.TypeCast)
	require.True(t, ok)
	assert.Equal(t, "varchar", cast2.Type)
}
