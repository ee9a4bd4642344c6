// SPDX-License-Identifier: Apache-2.0

package ast

// Insert is `INSERT INTO table [(cols)] source [ON CONFLICT ...] [RETURNING ...]`.
type Insert struct {
	Table TableRef
	// Columns is the explicit target column list, if any. When empty, the
	// target column set is every non-hidden column of Table in catalog
	// declaration order (spec.md §4.8).
	Columns    []string
	Source     InsertSource
	OnConflict *OnConflict
	Returning  []SelectListItem
}

// InsertSource is the sum type of what follows the target column list of
// an INSERT.
type InsertSource interface {
	insertSourceNode()
}

func (*ValuesSource) insertSourceNode()        {}
func (*SelectSource) insertSourceNode()        {}
func (*DefaultValuesSource) insertSourceNode() {}

// ValuesValue is a single cell of a VALUES row: either an expression or the
// bare DEFAULT keyword.
type ValuesValue struct {
	Default bool
	Expr    Expression // nil when Default is true
}

// ValuesSource is `VALUES (v11, v12, ...), (v21, v22, ...), ...`.
type ValuesSource struct {
	Rows [][]ValuesValue
}

// SelectSource is `INSERT INTO t SELECT ...`.
type SelectSource struct {
	Select *Select
}

// DefaultValuesSource is the bare `DEFAULT VALUES` form.
type DefaultValuesSource struct{}

// ConflictTargetKind distinguishes how an ON CONFLICT clause names the
// constraint or index it applies to.
type ConflictTargetKind int

const (
	ConflictTargetNone ConflictTargetKind = iota
	ConflictTargetColumns
	ConflictTargetConstraint
)

// ConflictTarget is the optional `(cols)` or `ON CONSTRAINT name` part of an
// ON CONFLICT clause. Neither affects nullability inference, which only
// cares about the action, but both are kept for completeness.
type ConflictTarget struct {
	Kind       ConflictTargetKind
	Columns    []string
	Constraint string
}

// ConflictActionKind distinguishes DO NOTHING from DO UPDATE SET.
type ConflictActionKind int

const (
	ConflictDoNothing ConflictActionKind = iota
	ConflictDoUpdate
)

// Assignment is a single `col = expr` term of a SET clause, shared between
// UPDATE and ON CONFLICT DO UPDATE SET.
type Assignment struct {
	Column string
	Value  ValuesValue
}

// ConflictAction is the `DO NOTHING` or `DO UPDATE SET ... [WHERE ...]` part
// of an ON CONFLICT clause.
type ConflictAction struct {
	Kind        ConflictActionKind
	Assignments []Assignment // set when Kind == ConflictDoUpdate
	Where       Expression   // set when Kind == ConflictDoUpdate and a WHERE was given
}

// OnConflict is `ON CONFLICT [target] action`.
type OnConflict struct {
	Target ConflictTarget
	Action ConflictAction
}
