// SPDX-License-Identifier: Apache-2.0

package catalog

// DatabaseColumn is a single column of a base table as reported by
// pg_attribute. Hidden system columns (attnum < 0, e.g. tableoid, ctid)
// are included so they can be filtered out wherever spec.md §4.3 requires
// "every visible column"; they never appear in `*`-expansion, but a
// reference that names one explicitly still resolves to it.
type DatabaseColumn struct {
	Name     string
	Nullable bool
	TypeOID  uint32
	TypeName string
	Hidden   bool
	// AttNum is pg_attribute.attnum. A table's Columns are already sorted
	// by it, which gives INSERT's implicit (no column list) target column
	// set its declaration order.
	AttNum int16
}

// DatabaseTable is a base table's schema and columns, as resolved from the
// catalog by table name (spec.md §4.1).
type DatabaseTable struct {
	Schema  string
	Name    string
	Columns []DatabaseColumn
}
