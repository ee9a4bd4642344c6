// SPDX-License-Identifier: Apache-2.0

package infer

import (
	"context"
	"database/sql"

	"github.com/nullaware/pgtyper/internal/placeholder"
	"github.com/nullaware/pgtyper/pkg/catalog"
	"github.com/nullaware/pgtyper/pkg/describe"
	"github.com/nullaware/pgtyper/pkg/parser"
	"github.com/nullaware/pgtyper/pkg/types"
)

// Analyze runs the whole pipeline for one statement (spec.md §2): it
// preprocesses, describes it against db, and, if parsing and schema
// resolution succeed, refines the describe step's conservative defaults
// (params non-null, columns nullable) with the nullability and row-count
// the query's structure actually proves.
//
// Analyze never returns an error: every failure is recorded in the result's
// Status per spec.md §7, so callers analyzing a batch of statements can
// keep going past individual failures. A parse failure degrades to the
// describe-only result (still the weakest sound claim) but is reported as
// failed, since the caller asked for nullability it cannot get.
func Analyze(ctx context.Context, db *sql.DB, client *catalog.Client, sqlText string) types.StatementDescription {
	pre, err := placeholder.Preprocess(sqlText)
	if err != nil {
		return types.StatementDescription{
			SQL:      sqlText,
			RowCount: types.RowCountMany,
			Status:   types.AnalyzeStatus{Error: err.Error()},
		}
	}

	result := types.StatementDescription{SQL: pre.SQL, RowCount: types.RowCountMany}

	desc, err := describe.Statement(ctx, db, pre.SQL)
	if err != nil {
		result.Status = types.AnalyzeStatus{Error: err.Error()}
		return result
	}
	result.Params = defaultParams(desc.Params)
	result.Columns = defaultColumns(desc.Columns)

	tree, err := parser.Parse(pre.SQL)
	if err != nil {
		result.Status = types.AnalyzeStatus{Error: err.Error()}
		return result
	}

	nullableParams, err := InferNullableParams(ctx, client, tree)
	if err != nil {
		result.Status = types.AnalyzeStatus{Error: err.Error()}
		return result
	}
	for i := range result.Params {
		result.Params[i].Type.Nullable = nullableParams.IsNullable(result.Params[i].Index)
	}

	result.RowCount = InferRowCount(tree)

	ictx := RootContext(client, nullableParams)
	if derived, err := ForCTEs(ctx, ictx, tree.With); err != nil {
		result.Status = types.AnalyzeStatus{Error: err.Error()}
		return result
	} else if derived != nil {
		ictx = derived
	}
	cols, err := AnalyzeStatementColumns(ctx, ictx, tree.Stmt)
	if err != nil {
		result.Status = types.AnalyzeStatus{Error: err.Error()}
		return result
	}
	if len(cols) != len(result.Columns) {
		err := &UnexpectedNumberOfColumnsError{
			Context: "describe vs. inferred columns", Expected: len(result.Columns), Got: len(cols),
		}
		result.Status = types.AnalyzeStatus{Error: err.Error()}
		return result
	}
	for i, c := range cols {
		result.Columns[i].Type.Nullable = c.Nullability.Nullable
		result.Columns[i].Type.Array = c.Nullability.Array
		result.Columns[i].Type.ElemNullable = c.Nullability.ElemNullable
	}

	return result
}

func defaultParams(ps []describe.Param) []types.Param {
	out := make([]types.Param, len(ps))
	for i, p := range ps {
		out[i] = types.Param{Index: i + 1, Type: types.ValueType{PgType: p.TypeName, Nullable: false}}
	}
	return out
}

func defaultColumns(cs []describe.Column) []types.Column {
	out := make([]types.Column, len(cs))
	for i, c := range cs {
		out[i] = types.Column{Name: c.Name, Type: types.ValueType{PgType: c.TypeName, Nullable: true}}
	}
	return out
}
