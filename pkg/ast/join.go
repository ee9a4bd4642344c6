// SPDX-License-Identifier: Apache-2.0

package ast

// TableExpression is the sum type of FROM-clause items: a bare table
// reference, a parenthesized subquery, or a join of two table expressions.
type TableExpression interface {
	tableExpressionNode()
}

func (*Table) tableExpressionNode()         {}
func (*SubQuery) tableExpressionNode()      {}
func (*CrossJoin) tableExpressionNode()     {}
func (*QualifiedJoin) tableExpressionNode() {}

// Table is a bare `[schema.]name [AS] alias` FROM item.
type Table struct {
	Ref TableRef
}

// SubQuery is `(subquery) [AS] alias`.
type SubQuery struct {
	Query Statement
	Alias string
	// Columns, if non-empty, renames the subquery's output columns
	// positionally, same as a WithQuery's explicit column list.
	Columns []string
}

// CrossJoin is `left, right` or `left CROSS JOIN right`: a join with no
// condition and no nullability promotion on either side.
type CrossJoin struct {
	Left  TableExpression
	Right TableExpression
}

// JoinType is the kind of a qualified join and controls which side(s) get
// their source columns promoted to nullable before combining (spec.md
// §4.3).
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinRight
	JoinFull
)

// JoinConditionKind distinguishes the three ways a qualified join can
// specify which columns to match.
type JoinConditionKind int

const (
	JoinOn JoinConditionKind = iota
	JoinUsing
	JoinNatural
)

// JoinCondition is a qualified join's `ON expr` / `USING (cols)` / NATURAL
// condition.
type JoinCondition struct {
	Kind  JoinConditionKind
	On    Expression // set when Kind == JoinOn
	Using []string   // set when Kind == JoinUsing
}

// QualifiedJoin is `left [INNER|LEFT|RIGHT|FULL] JOIN right ON|USING|NATURAL`.
type QualifiedJoin struct {
	Left      TableExpression
	Right     TableExpression
	Type      JoinType
	Condition JoinCondition
}
