// SPDX-License-Identifier: Apache-2.0

// Package ast defines the parsed representation of a single PostgreSQL DML
// statement: SELECT, INSERT, UPDATE or DELETE, optionally preceded by a
// WITH clause. Unlike the Rust prototype this was ported from, the tree
// owns its own copies of token text throughout — Go has no borrow checker,
// so there is no value in threading lifetimes through the grammar.
package ast

// AST is a single parsed statement together with its (possibly empty)
// common table expressions.
type AST struct {
	With *With
	Stmt Statement
}

// With is a WITH clause: a list of named queries, each visible to every
// query that follows it (including later CTEs in the same WITH) and to the
// statement's main body.
type With struct {
	Recursive bool
	Queries   []WithQuery
}

// WithQuery is a single named entry of a WITH clause.
type WithQuery struct {
	Name string
	// Columns, if non-empty, is an explicit column name list that overrides
	// whatever names the inner query would otherwise produce.
	Columns []string
	Stmt    Statement
}

// Statement is the sum type of the four statement forms a CTE body or the
// top-level AST can hold.
type Statement interface {
	statementNode()
}

func (*Select) statementNode() {}
func (*Insert) statementNode() {}
func (*Update) statementNode() {}
func (*Delete) statementNode() {}
