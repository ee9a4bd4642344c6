// SPDX-License-Identifier: Apache-2.0

package infer

import "fmt"

// ColumnNotFoundError reports an unqualified column reference that matched
// zero or more than one source column (spec.md §3: ambiguity is treated as
// not-found, never resolved by guessing).
type ColumnNotFoundError struct {
	Name string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("infer: column %q not found or ambiguous", e.Name)
}

// TableColumnNotFoundError reports a schema- or alias-qualified column
// reference (table.column) that matched no source column.
type TableColumnNotFoundError struct {
	Table  string
	Column string
}

func (e *TableColumnNotFoundError) Error() string {
	return fmt.Sprintf("infer: column %q not found on table or alias %q", e.Column, e.Table)
}

// UnexpectedNumberOfColumnsError reports a shape mismatch: a scalar
// subquery with other than one column, a set operation whose arms disagree
// on column count, or a CTE/subquery column-alias list of the wrong length.
type UnexpectedNumberOfColumnsError struct {
	Context  string
	Expected int
	Got      int
}

func (e *UnexpectedNumberOfColumnsError) Error() string {
	return fmt.Sprintf("infer: %s: expected %d column(s), got %d", e.Context, e.Expected, e.Got)
}
