// SPDX-License-Identifier: Apache-2.0

package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nullaware/pgtyper/pkg/ast"
)

func TestDeriveFactsColumnRef(t *testing.T) {
	cond := &ast.ColumnRef{Name: "x"}
	facts := DeriveFacts(nil, cond)
	assert.True(t, facts.Has(&ast.ColumnRef{Name: "x"}))
	assert.True(t, facts.Has(&ast.TableColumnRef{Table: "t", Name: "x"}), "bare and qualified refs to the same column are equal facts")
	assert.False(t, facts.Has(&ast.ColumnRef{Name: "y"}))
}

func TestDeriveFactsAndBothSides(t *testing.T) {
	cond := &ast.BinaryOp{
		Op:    "AND",
		Left:  &ast.UnaryOp{Op: "NOTNULL", Expr: &ast.ColumnRef{Name: "a"}},
		Right: &ast.UnaryOp{Op: "NOTNULL", Expr: &ast.ColumnRef{Name: "b"}},
	}
	facts := DeriveFacts(nil, cond)
	assert.True(t, facts.Has(&ast.ColumnRef{Name: "a"}))
	assert.True(t, facts.Has(&ast.ColumnRef{Name: "b"}))
}

func TestDeriveFactsNegatedAndOnlyKeepsLeft(t *testing.T) {
	inner := &ast.BinaryOp{
		Op:    "AND",
		Left:  &ast.UnaryOp{Op: "NOTNULL", Expr: &ast.ColumnRef{Name: "a"}},
		Right: &ast.UnaryOp{Op: "NOTNULL", Expr: &ast.ColumnRef{Name: "b"}},
	}
	cond := &ast.UnaryOp{Op: "NOT", Expr: inner}
	facts := DeriveFacts(nil, cond)
	assert.True(t, facts.Has(&ast.ColumnRef{Name: "a"}))
	assert.False(t, facts.Has(&ast.ColumnRef{Name: "b"}))
}

func TestDeriveFactsIsNullProducesNoColumnFact(t *testing.T) {
	cond := &ast.UnaryOp{Op: "ISNULL", Expr: &ast.ColumnRef{Name: "a"}}
	facts := DeriveFacts(nil, cond)
	assert.False(t, facts.Has(&ast.ColumnRef{Name: "a"}))
	assert.True(t, facts.Has(cond), "the IS NULL expression itself is recorded as a fact")
}

func TestDeriveFactsQualifiedRefDoesNotCrossTables(t *testing.T) {
	cond := &ast.UnaryOp{Op: "NOTNULL", Expr: &ast.TableColumnRef{Table: "a", Name: "x"}}
	facts := DeriveFacts(nil, cond)
	assert.True(t, facts.Has(&ast.TableColumnRef{Table: "a", Name: "x"}))
	assert.False(t, facts.Has(&ast.TableColumnRef{Table: "b", Name: "x"}), "a.x being proven non-null says nothing about b.x")
}

func TestFactsHasWalksParentScope(t *testing.T) {
	parent := DeriveFacts(nil, &ast.UnaryOp{Op: "NOTNULL", Expr: &ast.ColumnRef{Name: "a"}})
	child := NewFacts(parent)
	assert.True(t, child.Has(&ast.ColumnRef{Name: "a"}))
}
