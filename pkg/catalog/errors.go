// SPDX-License-Identifier: Apache-2.0

package catalog

import "fmt"

// TableNotFoundError is returned when an unqualified table name matches no
// table on the search path.
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("catalog: table %q not found on search_path", e.Table)
}

// SchemaTableNotFoundError is returned when a schema-qualified table
// reference names a schema/table pair that does not exist.
type SchemaTableNotFoundError struct {
	Schema, Table string
}

func (e *SchemaTableNotFoundError) Error() string {
	return fmt.Sprintf("catalog: table %q not found in schema %q", e.Table, e.Schema)
}

// AmbiguousTableError is returned when an unqualified table name matches
// more than one schema on the search path. Per spec.md §4.1, search-path
// order does not imply shadowing here: ambiguity is reported, not silently
// resolved to the first match.
type AmbiguousTableError struct {
	Table   string
	Schemas []string
}

func (e *AmbiguousTableError) Error() string {
	return fmt.Sprintf("catalog: table %q is ambiguous across schemas %v", e.Table, e.Schemas)
}
