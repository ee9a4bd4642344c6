// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"fmt"
	"strings"

	"github.com/nullaware/pgtyper/pkg/ast"
)

// Error reports a syntax error at a token position in the source text.
type Error struct {
	Pos     int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parser: %s (at offset %d)", e.Message, e.Pos)
}

type parser struct {
	toks []token
	i    int
}

// Parse parses one preprocessed SQL statement (already rewritten to use
// only positional `$n` placeholders) into an ast.AST.
func Parse(sql string) (*ast.AST, error) {
	toks, err := newLexer(sql).tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}

	var with *ast.With
	if p.atKeyword("WITH") {
		with, err = p.parseWith()
		if err != nil {
			return nil, err
		}
	}

	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	p.skipTrailingSemicolon()
	if p.cur().kind != tokEOF {
		return nil, p.errorf("unexpected trailing input %q", p.cur().text)
	}

	return &ast.AST{With: with, Stmt: stmt}, nil
}

func (p *parser) parseStatement() (ast.Statement, error) {
	switch {
	case p.atKeyword("SELECT") || p.atOp("("):
		sel, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		return sel, nil
	case p.atKeyword("INSERT"):
		return p.parseInsert()
	case p.atKeyword("UPDATE"):
		return p.parseUpdate()
	case p.atKeyword("DELETE"):
		return p.parseDelete()
	default:
		return nil, p.errorf("expected SELECT, INSERT, UPDATE or DELETE, got %q", p.cur().text)
	}
}

func (p *parser) cur() token {
	if p.i >= len(p.toks) {
		return token{kind: tokEOF}
	}
	return p.toks[p.i]
}

func (p *parser) peekAt(off int) token {
	j := p.i + off
	if j >= len(p.toks) {
		return token{kind: tokEOF}
	}
	return p.toks[j]
}

func (p *parser) advance() token {
	t := p.cur()
	if p.i < len(p.toks) {
		p.i++
	}
	return t
}

func (p *parser) atKeyword(kw string) bool {
	t := p.cur()
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

func (p *parser) atOp(op string) bool {
	t := p.cur()
	return t.kind == tokOp && t.text == op
}

func (p *parser) eatKeyword(kw string) bool {
	if p.atKeyword(kw) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) eatOp(op string) bool {
	if p.atOp(op) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expectKeyword(kw string) error {
	if !p.eatKeyword(kw) {
		return p.errorf("expected %q, got %q", kw, p.cur().text)
	}
	return nil
}

func (p *parser) expectOp(op string) error {
	if !p.eatOp(op) {
		return p.errorf("expected %q, got %q", op, p.cur().text)
	}
	return nil
}

func (p *parser) expectIdent() (string, error) {
	t := p.cur()
	if t.kind != tokIdent {
		return "", p.errorf("expected identifier, got %q", t.text)
	}
	p.advance()
	return t.text, nil
}

// isReservedKeyword lists keywords that cannot be consumed as a bare
// identifier (table/column name or alias) without quoting, so the parser
// knows where an alias list or identifier ends.
var isReservedKeyword = map[string]bool{
	"FROM": true, "WHERE": true, "GROUP": true, "HAVING": true, "ORDER": true,
	"LIMIT": true, "OFFSET": true, "UNION": true, "INTERSECT": true, "EXCEPT": true,
	"JOIN": true, "INNER": true, "LEFT": true, "RIGHT": true, "FULL": true, "CROSS": true,
	"ON": true, "USING": true, "NATURAL": true, "AS": true, "AND": true, "OR": true,
	"NOT": true, "IN": true, "IS": true, "NULL": true, "BETWEEN": true, "LIKE": true,
	"ILIKE": true, "SIMILAR": true, "CASE": true, "WHEN": true, "THEN": true, "ELSE": true,
	"END": true, "EXISTS": true, "SELECT": true, "INSERT": true, "UPDATE": true, "DELETE": true,
	"RETURNING": true, "VALUES": true, "SET": true, "INTO": true, "DEFAULT": true,
	"CONFLICT": true, "DO": true, "NOTHING": true, "WITH": true, "RECURSIVE": true,
	"WINDOW": true, "OVER": true, "FILTER": true, "DISTINCT": true, "ALL": true, "ANY": true,
	"SOME": true, "ARRAY": true, "CAST": true, "ASC": true, "DESC": true, "NULLS": true,
	"FIRST": true, "LAST": true, "PARTITION": true, "BY": true,
}

func (p *parser) canBeAlias() bool {
	t := p.cur()
	if t.kind != tokIdent {
		return false
	}
	return !isReservedKeyword[strings.ToUpper(t.text)]
}

func (p *parser) skipTrailingSemicolon() {
	p.eatOp(";")
}

func (p *parser) errorf(format string, args ...any) error {
	return &Error{Pos: p.cur().pos, Message: fmt.Sprintf(format, args...)}
}
