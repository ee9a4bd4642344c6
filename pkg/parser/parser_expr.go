// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"strconv"
	"strings"

	"github.com/nullaware/pgtyper/pkg/ast"
)

func (p *parser) parseExprList() ([]ast.Expression, error) {
	var exprs []ast.Expression
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if !p.eatOp(",") {
			break
		}
	}
	return exprs, nil
}

// parseExpr parses a full expression, OR being the lowest-precedence
// operator.
func (p *parser) parseExpr() (ast.Expression, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (ast.Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.eatKeyword("OR") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.eatKeyword("AND") {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (ast.Expression, error) {
	if p.eatKeyword("NOT") {
		e, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: "NOT", Expr: e}, nil
	}
	return p.parseComparison()
}

// parseComparison handles =, <>, !=, <, >, <=, >=, IS [NOT] ..., BETWEEN,
// IN, LIKE/ILIKE/SIMILAR TO and ANY/SOME/ALL comparisons, which in
// PostgreSQL all sit at the same non-associative precedence level just
// above the additive/multiplicative operators.
func (p *parser) parseComparison() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	switch {
	case p.atOp("=") || p.atOp("<>") || p.atOp("!=") || p.atOp("<") || p.atOp(">") || p.atOp("<=") || p.atOp(">="):
		op := p.advance().text
		if right, ok, err := p.tryParseAnySomeAll(left, op); err != nil {
			return nil, err
		} else if ok {
			return right, nil
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Op: op, Left: left, Right: right}, nil

	case p.atKeyword("IS"):
		return p.parseIsClause(left)

	case p.peekNotPrefixed("BETWEEN"):
		return p.parseBetween(left, true)

	case p.atKeyword("BETWEEN"):
		return p.parseBetween(left, false)

	case p.peekNotPrefixed("IN"):
		return p.parseIn(left, true)

	case p.atKeyword("IN"):
		return p.parseIn(left, false)

	case p.peekNotPrefixed("LIKE"):
		return p.parseLike(left, true, false)
	case p.atKeyword("LIKE"):
		return p.parseLike(left, false, false)
	case p.peekNotPrefixed("ILIKE"):
		return p.parseLike(left, true, true)
	case p.atKeyword("ILIKE"):
		return p.parseLike(left, false, true)

	case p.atKeyword("SIMILAR"):
		p.advance()
		if err := p.expectKeyword("TO"); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Op: "SIMILAR TO", Left: left, Right: right}, nil

	default:
		return left, nil
	}
}

// peekNotPrefixed reports whether the next token is NOT followed by kw,
// i.e. the input is "NOT kw ...".
func (p *parser) peekNotPrefixed(kw string) bool {
	return p.atKeyword("NOT") && p.peekAt(1).kind == tokIdent && strings.EqualFold(p.peekAt(1).text, kw)
}

func (p *parser) parseBetween(left ast.Expression, negated bool) (ast.Expression, error) {
	if negated {
		p.advance() // NOT
	}
	if err := p.expectKeyword("BETWEEN"); err != nil {
		return nil, err
	}
	p.eatKeyword("SYMMETRIC")
	p.eatKeyword("ASYMMETRIC")
	lo, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("AND"); err != nil {
		return nil, err
	}
	hi, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	e := ast.Expression(&ast.TernaryOp{Op: "BETWEEN", First: left, Second: lo, Third: hi})
	if negated {
		e = &ast.UnaryOp{Op: "NOT", Expr: e}
	}
	return e, nil
}

func (p *parser) parseIn(left ast.Expression, negated bool) (ast.Expression, error) {
	if negated {
		p.advance() // NOT
	}
	if err := p.expectKeyword("IN"); err != nil {
		return nil, err
	}
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	if p.atKeyword("SELECT") || p.atKeyword("WITH") {
		sub, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return &ast.InSubquery{Expr: left, Negated: negated, Subquery: sub}, nil
	}
	list, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return &ast.InExprList{Expr: left, Negated: negated, List: list}, nil
}

func (p *parser) parseLike(left ast.Expression, negated, ci bool) (ast.Expression, error) {
	if negated {
		p.advance() // NOT
	}
	op := "LIKE"
	if ci {
		op = "ILIKE"
	}
	p.advance() // LIKE/ILIKE
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	e := ast.Expression(&ast.BinaryOp{Op: op, Left: left, Right: right})
	if negated {
		e = &ast.UnaryOp{Op: "NOT", Expr: e}
	}
	return e, nil
}

func (p *parser) parseIsClause(left ast.Expression) (ast.Expression, error) {
	p.advance() // IS
	negated := p.eatKeyword("NOT")
	switch {
	case p.eatKeyword("NULL"):
		op := "ISNULL"
		if negated {
			op = "NOTNULL"
		}
		return &ast.UnaryOp{Op: op, Expr: left}, nil
	case p.eatKeyword("TRUE"):
		op := "IS TRUE"
		if negated {
			op = "IS NOT TRUE"
		}
		return &ast.UnaryOp{Op: op, Expr: left}, nil
	case p.eatKeyword("FALSE"):
		op := "IS FALSE"
		if negated {
			op = "IS NOT FALSE"
		}
		return &ast.UnaryOp{Op: op, Expr: left}, nil
	case p.eatKeyword("UNKNOWN"):
		op := "IS UNKNOWN"
		if negated {
			op = "IS NOT UNKNOWN"
		}
		return &ast.UnaryOp{Op: op, Expr: left}, nil
	case p.eatKeyword("DISTINCT"):
		if err := p.expectKeyword("FROM"); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		op := "IS DISTINCT FROM"
		if negated {
			op = "IS NOT DISTINCT FROM"
		}
		return &ast.BinaryOp{Op: op, Left: left, Right: right}, nil
	default:
		return nil, p.errorf("expected NULL, TRUE, FALSE, UNKNOWN or DISTINCT FROM after IS, got %q", p.cur().text)
	}
}

// tryParseAnySomeAll handles `expr op ANY|SOME|ALL (...)` forms that follow
// a comparison operator.
func (p *parser) tryParseAnySomeAll(left ast.Expression, op string) (ast.Expression, bool, error) {
	var kind ast.AnySomeAllKind
	switch {
	case p.atKeyword("ANY") || p.atKeyword("SOME"):
		p.advance()
		kind = ast.AnySome
	case p.atKeyword("ALL"):
		p.advance()
		kind = ast.All
	default:
		return nil, false, nil
	}
	if err := p.expectOp("("); err != nil {
		return nil, false, err
	}
	if p.atKeyword("SELECT") || p.atKeyword("WITH") {
		sub, err := p.parseSelect()
		if err != nil {
			return nil, false, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, false, err
		}
		return &ast.AnySomeAllSubquery{Expr: left, Op: op, Kind: kind, Subquery: sub}, true, nil
	}
	arr, err := p.parseExpr()
	if err != nil {
		return nil, false, err
	}
	if err := p.expectOp(")"); err != nil {
		return nil, false, err
	}
	return &ast.AnySomeAllArray{Expr: left, Op: op, Kind: kind, Array: arr}, true, nil
}

func (p *parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.atOp("+") || p.atOp("-") || p.atOp("||") {
		op := p.advance().text
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.atOp("*") || p.atOp("/") || p.atOp("%") {
		op := p.advance().text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Expression, error) {
	if p.atOp("-") || p.atOp("+") {
		op := p.advance().text
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: op, Expr: e}, nil
	}
	return p.parseCastPostfix()
}

// parseCastPostfix handles postfix `::type` casts and `[]` subscripting,
// which bind tighter than any prefix/infix operator.
func (p *parser) parseCastPostfix() (ast.Expression, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.eatOp("::"):
			typ, err := p.parseTypeName()
			if err != nil {
				return nil, err
			}
			e = &ast.TypeCast{Expr: e, Type: typ}
		case p.atOp("["):
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp("]"); err != nil {
				return nil, err
			}
			e = &ast.BinaryOp{Op: "[]", Left: e, Right: idx}
		default:
			return e, nil
		}
	}
}

// parseTypeName parses a (possibly schema-qualified, possibly array-suffixed)
// type name after `::` or inside CAST(... AS type).
func (p *parser) parseTypeName() (string, error) {
	var parts []string
	first, err := p.expectIdent()
	if err != nil {
		return "", err
	}
	parts = append(parts, first)
	for p.eatOp(".") {
		n, err := p.expectIdent()
		if err != nil {
			return "", err
		}
		parts = append(parts, n)
	}
	name := strings.Join(parts, ".")
	// Optional type modifiers, e.g. numeric(10,2) or varchar(255).
	if p.atOp("(") {
		p.advance()
		depth := 1
		for depth > 0 {
			t := p.advance()
			if t.kind == tokEOF {
				return "", p.errorf("unterminated type modifier")
			}
			if t.kind == tokOp && t.text == "(" {
				depth++
			}
			if t.kind == tokOp && t.text == ")" {
				depth--
			}
		}
	}
	for p.atOp("[") && p.peekAt(1).kind == tokOp && p.peekAt(1).text == "]" {
		p.advance()
		p.advance()
		name += "[]"
	}
	return name, nil
}

func (p *parser) parsePrimary() (ast.Expression, error) {
	t := p.cur()

	switch {
	case t.kind == tokParam:
		p.advance()
		idx, err := strconv.Atoi(t.text)
		if err != nil {
			return nil, p.errorf("invalid parameter index %q", t.text)
		}
		return &ast.Param{Index: idx}, nil

	case t.kind == tokNumber:
		p.advance()
		return &ast.Constant{Kind: ast.ConstantNumber, Text: t.text}, nil

	case t.kind == tokString:
		p.advance()
		return &ast.Constant{Kind: ast.ConstantString, Text: t.text}, nil

	case t.kind == tokOp && t.text == "(":
		p.advance()
		if p.atKeyword("SELECT") || p.atKeyword("WITH") {
			sub, err := p.parseSelect()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return &ast.ScalarSubquery{Subquery: sub}, nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return e, nil

	case p.atKeyword("NULL"):
		p.advance()
		return &ast.Constant{Kind: ast.ConstantNull}, nil

	case p.atKeyword("TRUE"):
		p.advance()
		return &ast.Constant{Kind: ast.ConstantBool, Text: "true"}, nil

	case p.atKeyword("FALSE"):
		p.advance()
		return &ast.Constant{Kind: ast.ConstantBool, Text: "false"}, nil

	case p.atKeyword("CASE"):
		return p.parseCase()

	case p.atKeyword("EXISTS"):
		p.advance()
		if err := p.expectOp("("); err != nil {
			return nil, err
		}
		sub, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return &ast.Exists{Subquery: sub}, nil

	case p.atKeyword("CAST"):
		p.advance()
		if err := p.expectOp("("); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("AS"); err != nil {
			return nil, err
		}
		typ, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return &ast.TypeCast{Expr: e, Type: typ}, nil

	case p.atKeyword("ARRAY"):
		p.advance()
		if p.atOp("(") {
			p.advance()
			sub, err := p.parseSelect()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return &ast.ArraySubquery{Subquery: sub}, nil
		}
		if err := p.expectOp("["); err != nil {
			return nil, err
		}
		var elems []ast.Expression
		if !p.atOp("]") {
			var err error
			elems, err = p.parseExprList()
			if err != nil {
				return nil, err
			}
		}
		if err := p.expectOp("]"); err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Name: "ARRAY", Args: elems}, nil

	case t.kind == tokIdent:
		return p.parseIdentOrCall()

	default:
		return nil, p.errorf("unexpected token %q", t.text)
	}
}

func (p *parser) parseCase() (ast.Expression, error) {
	p.advance() // CASE
	c := &ast.Case{}
	var simpleExpr ast.Expression
	if !p.atKeyword("WHEN") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		simpleExpr = e
	}
	for p.eatKeyword("WHEN") {
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if simpleExpr != nil {
			cond = &ast.BinaryOp{Op: "=", Left: simpleExpr, Right: cond}
		}
		if err := p.expectKeyword("THEN"); err != nil {
			return nil, err
		}
		result, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Branches = append(c.Branches, ast.CaseBranch{Cond: cond, Result: result})
	}
	if p.eatKeyword("ELSE") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Else = e
	}
	if err := p.expectKeyword("END"); err != nil {
		return nil, err
	}
	return c, nil
}

// parseIdentOrCall parses a column reference (`col` or `tbl.col`) or a
// function call (`name(args...)`), including the special two-and-three-
// argument forms (SUBSTRING, OVERLAY, TRIM, POSITION) that use keyword
// separators instead of commas.
func (p *parser) parseIdentOrCall() (ast.Expression, error) {
	name := p.advance().text

	if p.eatOp(".") {
		if p.atOp("*") {
			// `tbl.*` is only valid in a select list; parsePrimary is never
			// reached for it there (handled in parseSelectListItem), so
			// if it is ever hit via this path, expectIdent below rejects
			// the `*` with a parse error.
		}
		col, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.TableColumnRef{Table: name, Name: col}, nil
	}

	if !p.atOp("(") {
		return &ast.ColumnRef{Name: name}, nil
	}

	upper := strings.ToUpper(name)
	switch upper {
	case "SUBSTRING":
		return p.parseSubstringCall()
	case "OVERLAY":
		return p.parseOverlayCall()
	case "TRIM":
		return p.parseTrimCall()
	case "POSITION":
		return p.parsePositionCall()
	case "EXTRACT":
		return p.parseExtractCall()
	}

	p.advance() // (
	fc := &ast.FunctionCall{Name: name}
	if p.eatKeyword("DISTINCT") {
		fc.Distinct = true
	}
	if p.atOp("*") {
		p.advance()
		fc.Star = true
	} else if !p.atOp(")") {
		args, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		fc.Args = args
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}

	if p.eatKeyword("FILTER") {
		if err := p.expectOp("("); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("WHERE"); err != nil {
			return nil, err
		}
		filter, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fc.Filter = filter
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
	}

	if p.eatKeyword("OVER") {
		if p.atOp("(") {
			ws, err := p.parseWindowSpecBody()
			if err != nil {
				return nil, err
			}
			fc.Window = ws
		} else {
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			fc.Window = &ast.WindowSpec{Name: name}
		}
	}

	return fc, nil
}

// parseSubstringCall handles both `SUBSTRING(e FROM a FOR b)` and the
// ordinary comma-separated form `SUBSTRING(e, a, b)`.
func (p *parser) parseSubstringCall() (ast.Expression, error) {
	p.advance() // (
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	args := []ast.Expression{e}
	if p.eatOp(",") {
		rest, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		args = append(args, rest...)
	} else {
		if p.eatKeyword("FROM") {
			from, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, from)
		}
		if p.eatKeyword("FOR") {
			forLen, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, forLen)
		}
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Name: "substring", Args: args}, nil
}

func (p *parser) parseOverlayCall() (ast.Expression, error) {
	p.advance() // (
	target, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("PLACING"); err != nil {
		return nil, err
	}
	placing, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	from, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	args := []ast.Expression{target, placing, from}
	if p.eatKeyword("FOR") {
		forLen, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, forLen)
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Name: "overlay", Args: args}, nil
}

func (p *parser) parseTrimCall() (ast.Expression, error) {
	p.advance() // (
	p.eatKeyword("BOTH")
	p.eatKeyword("LEADING")
	p.eatKeyword("TRAILING")
	var args []ast.Expression
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.eatKeyword("FROM") {
		target, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = []ast.Expression{target, first}
	} else if p.eatOp(",") {
		rest, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		args = append([]ast.Expression{first}, rest...)
	} else {
		args = []ast.Expression{first}
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Name: "trim", Args: args}, nil
}

func (p *parser) parsePositionCall() (ast.Expression, error) {
	p.advance() // (
	needle, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("IN"); err != nil {
		return nil, err
	}
	haystack, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Name: "position", Args: []ast.Expression{needle, haystack}}, nil
}

func (p *parser) parseExtractCall() (ast.Expression, error) {
	p.advance() // (
	field, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	src, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Name: "extract", Args: []ast.Expression{&ast.Constant{Kind: ast.ConstantString, Text: field}, src}}, nil
}
