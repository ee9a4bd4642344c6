// SPDX-License-Identifier: Apache-2.0

package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nullaware/pgtyper/pkg/ast"
	"github.com/nullaware/pgtyper/pkg/types"
)

func TestInferRowCountSelectNoFrom(t *testing.T) {
	tree := &ast.AST{Stmt: &ast.Select{Body: &ast.SimpleSelect{
		List: []ast.SelectListItem{{Item: ast.ExpressionAs{Expr: &ast.Constant{Kind: ast.ConstantNumber, Text: "1"}}}},
	}}}
	assert.Equal(t, types.RowCountOne, InferRowCount(tree))
}

func TestInferRowCountSelectLimitOne(t *testing.T) {
	tree := &ast.AST{Stmt: &ast.Select{
		Body:  &ast.SimpleSelect{From: &ast.Table{Ref: ast.TableRef{Name: "t"}}},
		Limit: &ast.Limit{Count: &ast.Constant{Kind: ast.ConstantNumber, Text: "1"}},
	}}
	assert.Equal(t, types.RowCountZeroOrOne, InferRowCount(tree))
}

func TestInferRowCountSelectMany(t *testing.T) {
	tree := &ast.AST{Stmt: &ast.Select{Body: &ast.SimpleSelect{From: &ast.Table{Ref: ast.TableRef{Name: "t"}}}}}
	assert.Equal(t, types.RowCountMany, InferRowCount(tree))
}

func TestInferRowCountDeleteNoReturning(t *testing.T) {
	tree := &ast.AST{Stmt: &ast.Delete{Table: ast.TableRef{Name: "t"}}}
	assert.Equal(t, types.RowCountZero, InferRowCount(tree))
}

func TestInferRowCountDeleteWithReturning(t *testing.T) {
	tree := &ast.AST{Stmt: &ast.Delete{
		Table:     ast.TableRef{Name: "t"},
		Returning: []ast.SelectListItem{{Star: true}},
	}}
	assert.Equal(t, types.RowCountMany, InferRowCount(tree))
}

func TestInferRowCountInsertDefaultValuesReturning(t *testing.T) {
	tree := &ast.AST{Stmt: &ast.Insert{
		Table:     ast.TableRef{Name: "t"},
		Source:    &ast.DefaultValuesSource{},
		Returning: []ast.SelectListItem{{Star: true}},
	}}
	assert.Equal(t, types.RowCountOne, InferRowCount(tree))
}

func TestInferRowCountInsertMultiRowValuesReturning(t *testing.T) {
	tree := &ast.AST{Stmt: &ast.Insert{
		Table: ast.TableRef{Name: "t"},
		Source: &ast.ValuesSource{Rows: [][]ast.ValuesValue{
			{{Expr: &ast.Constant{Kind: ast.ConstantNumber, Text: "1"}}},
			{{Expr: &ast.Constant{Kind: ast.ConstantNumber, Text: "2"}}},
		}},
		Returning: []ast.SelectListItem{{Star: true}},
	}}
	assert.Equal(t, types.RowCountMany, InferRowCount(tree))
}

func TestInferRowCountInsertSingleRowValuesReturning(t *testing.T) {
	tree := &ast.AST{Stmt: &ast.Insert{
		Table: ast.TableRef{Name: "t"},
		Source: &ast.ValuesSource{Rows: [][]ast.ValuesValue{
			{{Expr: &ast.Constant{Kind: ast.ConstantNumber, Text: "1"}}},
		}},
		Returning: []ast.SelectListItem{{Star: true}},
	}}
	assert.Equal(t, types.RowCountOne, InferRowCount(tree))
}

func TestInferRowCountInsertNoReturning(t *testing.T) {
	tree := &ast.AST{Stmt: &ast.Insert{
		Table:  ast.TableRef{Name: "t"},
		Source: &ast.ValuesSource{Rows: [][]ast.ValuesValue{{{Expr: &ast.Constant{Kind: ast.ConstantNumber, Text: "1"}}}}},
	}}
	assert.Equal(t, types.RowCountZero, InferRowCount(tree))
}
