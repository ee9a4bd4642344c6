// SPDX-License-Identifier: Apache-2.0

package infer

import (
	"github.com/nullaware/pgtyper/pkg/ast"
	"github.com/nullaware/pgtyper/pkg/types"
)

// InferRowCount computes a statement's row-count bound from its AST alone
// (spec.md §4.9) — no catalog or describe data is needed.
func InferRowCount(a *ast.AST) types.RowCount {
	switch v := a.Stmt.(type) {
	case *ast.Select:
		return selectRowCount(v)
	case *ast.Insert:
		return insertRowCount(v)
	case *ast.Update:
		return dmlRowCount(len(v.Returning) > 0)
	case *ast.Delete:
		return dmlRowCount(len(v.Returning) > 0)
	default:
		return types.RowCountMany
	}
}

func dmlRowCount(hasReturning bool) types.RowCount {
	if hasReturning {
		return types.RowCountMany
	}
	return types.RowCountZero
}

func selectRowCount(s *ast.Select) types.RowCount {
	if simple, ok := s.Body.(*ast.SimpleSelect); ok && simple.From == nil {
		return types.RowCountOne
	}
	if isLimitOneLiteral(s.Limit) {
		return types.RowCountZeroOrOne
	}
	return types.RowCountMany
}

func isLimitOneLiteral(l *ast.Limit) bool {
	if l == nil || l.Count == nil {
		return false
	}
	c, ok := l.Count.(*ast.Constant)
	return ok && c.Kind == ast.ConstantNumber && c.Text == "1"
}

func insertRowCount(ins *ast.Insert) types.RowCount {
	hasReturning := len(ins.Returning) > 0
	switch src := ins.Source.(type) {
	case *ast.DefaultValuesSource:
		if !hasReturning {
			return types.RowCountZero
		}
		return types.RowCountOne
	case *ast.ValuesSource:
		if !hasReturning {
			return types.RowCountZero
		}
		if len(src.Rows) == 1 {
			return types.RowCountOne
		}
		return types.RowCountMany
	case *ast.SelectSource:
		if !hasReturning {
			return types.RowCountZero
		}
		return selectRowCount(src.Select)
	default:
		return types.RowCountMany
	}
}
