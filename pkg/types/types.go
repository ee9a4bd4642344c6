// SPDX-License-Identifier: Apache-2.0

// Package types holds the data shapes the inference pipeline produces and
// the CLI serializes to JSON: per-statement parameter and column
// descriptions, the row-count bound, and the terminal status of analyzing
// one statement.
package types

// RowCount bounds how many rows a statement can produce, per spec.md §4.9.
type RowCount int

const (
	// RowCountMany means the statement may return any number of rows.
	RowCountMany RowCount = iota
	// RowCountZero means the statement always returns no rows (e.g. a
	// DELETE/UPDATE/INSERT with no RETURNING clause).
	RowCountZero
	// RowCountOne means the statement always returns exactly one row.
	RowCountOne
	// RowCountZeroOrOne means the statement returns at most one row.
	RowCountZeroOrOne
)

func (r RowCount) String() string {
	switch r {
	case RowCountZero:
		return "Zero"
	case RowCountOne:
		return "One"
	case RowCountZeroOrOne:
		return "ZeroOrOne"
	default:
		return "Many"
	}
}

// MarshalJSON renders RowCount as its name rather than its numeric value.
func (r RowCount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// ValueType is a value's nullability shape: a plain scalar, or an array
// whose elements carry their own nullability independent of the array
// value itself (spec.md §3).
type ValueType struct {
	// PgType is the catalog-reported Postgres type name, e.g. "int4",
	// "text", "_int4" for an array of int4.
	PgType string `json:"pg_type"`
	// Nullable is whether the value itself (the array, for an array type)
	// may be NULL.
	Nullable bool `json:"nullable"`
	// Array is true for array-typed values; ElemNullable is only
	// meaningful when Array is true.
	Array         bool `json:"array,omitempty"`
	ElemNullable  bool `json:"elem_nullable,omitempty"`
}

// Param describes one parameter of a statement, 1-based per spec.md §3.
type Param struct {
	Index int       `json:"index"`
	Type  ValueType `json:"type"`
}

// Column describes one output column of a statement.
type Column struct {
	Name string    `json:"name"`
	Type ValueType `json:"type"`
}

// AnalyzeStatus is the terminal outcome of analyzing a single statement: it
// carries either a successful description or an error message, so that one
// bad file never aborts a batch describe run (spec.md §7).
type AnalyzeStatus struct {
	Error string `json:"error,omitempty"`
}

// Success reports whether the statement was analyzed without error.
func (s AnalyzeStatus) Success() bool {
	return s.Error == ""
}

// StatementDescription is the complete static description of one analyzed
// SQL statement.
type StatementDescription struct {
	SQL       string        `json:"sql"`
	Params    []Param       `json:"params"`
	Columns   []Column      `json:"columns"`
	RowCount  RowCount      `json:"row_count"`
	Status    AnalyzeStatus `json:"status"`
}
