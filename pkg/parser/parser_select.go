// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"strings"

	"github.com/nullaware/pgtyper/pkg/ast"
)

func (p *parser) parseWith() (*ast.With, error) {
	if err := p.expectKeyword("WITH"); err != nil {
		return nil, err
	}
	w := &ast.With{}
	if p.eatKeyword("RECURSIVE") {
		w.Recursive = true
	}
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		wq := ast.WithQuery{Name: name}
		if p.atOp("(") {
			wq.Columns, err = p.parseIdentListParen()
			if err != nil {
				return nil, err
			}
		}
		if err := p.expectKeyword("AS"); err != nil {
			return nil, err
		}
		if err := p.expectOp("("); err != nil {
			return nil, err
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		wq.Stmt = stmt
		w.Queries = append(w.Queries, wq)
		if !p.eatOp(",") {
			break
		}
	}
	return w, nil
}

func (p *parser) parseIdentListParen() ([]string, error) {
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	var names []string
	for {
		n, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, n)
		if !p.eatOp(",") {
			break
		}
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return names, nil
}

func (p *parser) parseSelect() (*ast.Select, error) {
	sel := &ast.Select{}
	if p.atKeyword("WITH") {
		w, err := p.parseWith()
		if err != nil {
			return nil, err
		}
		sel.With = w
	}

	body, err := p.parseSelectBody()
	if err != nil {
		return nil, err
	}
	sel.Body = body

	if p.atKeyword("ORDER") {
		ob, err := p.parseOrderBy()
		if err != nil {
			return nil, err
		}
		sel.OrderBy = ob
	}

	if p.atKeyword("LIMIT") || p.atKeyword("OFFSET") {
		lim, err := p.parseLimit()
		if err != nil {
			return nil, err
		}
		sel.Limit = lim
	}

	return sel, nil
}

func (p *parser) parseSelectBody() (ast.SelectBody, error) {
	left, err := p.parseSelectBodyOperand()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("UNION") || p.atKeyword("INTERSECT") || p.atKeyword("EXCEPT") {
		var op ast.SelectOpType
		switch {
		case p.eatKeyword("UNION"):
			op = ast.SelectUnion
		case p.eatKeyword("INTERSECT"):
			op = ast.SelectIntersect
		case p.eatKeyword("EXCEPT"):
			op = ast.SelectExcept
		}
		dup := ast.SetOpDistinct
		if p.eatKeyword("ALL") {
			dup = ast.SetOpAll
		} else {
			p.eatKeyword("DISTINCT")
		}
		right, err := p.parseSelectBodyOperand()
		if err != nil {
			return nil, err
		}
		left = &ast.SelectSetOp{Left: left, Op: op, Duplicates: dup, Right: right}
	}
	return left, nil
}

func (p *parser) parseSelectBodyOperand() (ast.SelectBody, error) {
	if p.atOp("(") {
		p.advance()
		body, err := p.parseSelectBody()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return body, nil
	}
	return p.parseSimpleSelect()
}

func (p *parser) parseSimpleSelect() (*ast.SimpleSelect, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	ss := &ast.SimpleSelect{}

	if p.eatKeyword("DISTINCT") {
		d := &ast.Distinct{}
		if p.eatKeyword("ON") {
			if err := p.expectOp("("); err != nil {
				return nil, err
			}
			exprs, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			d.On = exprs
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
		}
		ss.Distinct = d
	} else {
		p.eatKeyword("ALL")
	}

	list, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}
	ss.List = list

	if p.eatKeyword("FROM") {
		from, err := p.parseTableExpression()
		if err != nil {
			return nil, err
		}
		ss.From = from
	}

	if p.eatKeyword("WHERE") {
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ss.Where = w
	}

	if p.eatKeyword("GROUP") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		exprs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		ss.GroupBy = exprs
	}

	if p.eatKeyword("HAVING") {
		h, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ss.Having = h
	}

	if p.eatKeyword("WINDOW") {
		for {
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			if err := p.expectKeyword("AS"); err != nil {
				return nil, err
			}
			win, err := p.parseWindowSpecBody()
			if err != nil {
				return nil, err
			}
			ss.Windows = append(ss.Windows, ast.NamedWindowDefinition{Name: name, Window: *win})
			if !p.eatOp(",") {
				break
			}
		}
	}

	return ss, nil
}

func (p *parser) parseSelectList() ([]ast.SelectListItem, error) {
	var items []ast.SelectListItem
	for {
		item, err := p.parseSelectListItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.eatOp(",") {
			break
		}
	}
	return items, nil
}

func (p *parser) parseSelectListItem() (ast.SelectListItem, error) {
	if p.atOp("*") {
		p.advance()
		return ast.SelectListItem{Star: true}, nil
	}
	if p.cur().kind == tokIdent && p.peekAt(1).kind == tokOp && p.peekAt(1).text == "." && p.peekAt(2).kind == tokOp && p.peekAt(2).text == "*" {
		tbl := p.advance().text
		p.advance() // .
		p.advance() // *
		return ast.SelectListItem{Star: true, StarTable: tbl}, nil
	}

	expr, err := p.parseExpr()
	if err != nil {
		return ast.SelectListItem{}, err
	}
	alias := ""
	if p.eatKeyword("AS") {
		alias, err = p.expectIdent()
		if err != nil {
			return ast.SelectListItem{}, err
		}
	} else if p.canBeAlias() {
		alias = p.advance().text
	}
	return ast.SelectListItem{Item: ast.ExpressionAs{Expr: expr, Alias: alias}}, nil
}

func (p *parser) parseOrderBy() ([]ast.OrderByItem, error) {
	if err := p.expectKeyword("ORDER"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("BY"); err != nil {
		return nil, err
	}
	var items []ast.OrderByItem
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		it := ast.OrderByItem{Expr: e}
		switch {
		case p.eatKeyword("ASC"):
			it.Order = ast.OrderAsc
		case p.eatKeyword("DESC"):
			it.Order = ast.OrderDesc
		}
		if p.eatKeyword("NULLS") {
			switch {
			case p.eatKeyword("FIRST"):
				it.Nulls = ast.NullsFirst
			case p.eatKeyword("LAST"):
				it.Nulls = ast.NullsLast
			default:
				return nil, p.errorf("expected FIRST or LAST after NULLS")
			}
		}
		items = append(items, it)
		if !p.eatOp(",") {
			break
		}
	}
	return items, nil
}

func (p *parser) parseLimit() (*ast.Limit, error) {
	lim := &ast.Limit{}
	if p.eatKeyword("LIMIT") {
		if !p.atKeyword("ALL") {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			lim.Count = e
		} else {
			p.advance()
		}
	}
	if p.eatKeyword("OFFSET") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		lim.Offset = e
		p.eatKeyword("ROW")
		p.eatKeyword("ROWS")
	}
	// Support OFFSET before LIMIT too (both clause orders are legal SQL).
	if lim.Count == nil && p.atKeyword("LIMIT") {
		p.advance()
		if !p.atKeyword("ALL") {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			lim.Count = e
		} else {
			p.advance()
		}
	}
	return lim, nil
}

// --- FROM clause: table references and joins ---

func (p *parser) parseTableExpression() (ast.TableExpression, error) {
	left, err := p.parseTableReference()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.atOp(","):
			p.advance()
			right, err := p.parseTableReference()
			if err != nil {
				return nil, err
			}
			left = &ast.CrossJoin{Left: left, Right: right}

		case p.eatKeyword("CROSS"):
			if err := p.expectKeyword("JOIN"); err != nil {
				return nil, err
			}
			right, err := p.parseTableReference()
			if err != nil {
				return nil, err
			}
			left = &ast.CrossJoin{Left: left, Right: right}

		case p.atKeyword("JOIN") || p.atKeyword("INNER") || p.atKeyword("LEFT") ||
			p.atKeyword("RIGHT") || p.atKeyword("FULL") || p.atKeyword("NATURAL"):
			qj, err := p.parseQualifiedJoin(left)
			if err != nil {
				return nil, err
			}
			left = qj

		default:
			return left, nil
		}
	}
}

func (p *parser) parseQualifiedJoin(left ast.TableExpression) (ast.TableExpression, error) {
	natural := p.eatKeyword("NATURAL")

	jt := ast.JoinInner
	switch {
	case p.eatKeyword("INNER"):
		jt = ast.JoinInner
	case p.eatKeyword("LEFT"):
		jt = ast.JoinLeft
		p.eatKeyword("OUTER")
	case p.eatKeyword("RIGHT"):
		jt = ast.JoinRight
		p.eatKeyword("OUTER")
	case p.eatKeyword("FULL"):
		jt = ast.JoinFull
		p.eatKeyword("OUTER")
	}

	if err := p.expectKeyword("JOIN"); err != nil {
		return nil, err
	}
	right, err := p.parseTableReference()
	if err != nil {
		return nil, err
	}

	cond := ast.JoinCondition{Kind: ast.JoinOn}
	switch {
	case natural:
		cond = ast.JoinCondition{Kind: ast.JoinNatural}
	case p.eatKeyword("ON"):
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cond = ast.JoinCondition{Kind: ast.JoinOn, On: e}
	case p.eatKeyword("USING"):
		cols, err := p.parseIdentListParen()
		if err != nil {
			return nil, err
		}
		cond = ast.JoinCondition{Kind: ast.JoinUsing, Using: cols}
	}

	return &ast.QualifiedJoin{Left: left, Right: right, Type: jt, Condition: cond}, nil
}

func (p *parser) parseTableReference() (ast.TableExpression, error) {
	if p.atOp("(") {
		p.advance()
		// Could be a parenthesized join or a subquery.
		if p.atKeyword("SELECT") || p.atKeyword("WITH") {
			sel, err := p.parseSelect()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			alias := ""
			if p.eatKeyword("AS") {
				alias, err = p.expectIdent()
				if err != nil {
					return nil, err
				}
			} else if p.canBeAlias() {
				alias = p.advance().text
			}
			var cols []string
			if alias != "" && p.atOp("(") {
				cols, err = p.parseIdentListParen()
				if err != nil {
					return nil, err
				}
			}
			return &ast.SubQuery{Query: sel, Alias: alias, Columns: cols}, nil
		}
		inner, err := p.parseTableExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return inner, nil
	}

	schema := ""
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if p.eatOp(".") {
		schema = name
		name, err = p.expectIdent()
		if err != nil {
			return nil, err
		}
	}
	alias := ""
	if p.eatKeyword("AS") {
		alias, err = p.expectIdent()
		if err != nil {
			return nil, err
		}
	} else if p.canBeAlias() {
		alias = p.advance().text
	}
	return &ast.Table{Ref: ast.TableRef{Schema: schema, Name: name, Alias: alias}}, nil
}

func (p *parser) parseWindowSpecBody() (*ast.WindowSpec, error) {
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	ws := &ast.WindowSpec{}
	if p.cur().kind == tokIdent && !p.atKeyword("PARTITION") && !p.atKeyword("ORDER") &&
		!p.atKeyword("ROWS") && !p.atKeyword("RANGE") && !p.atKeyword("GROUPS") && !p.atOp(")") {
		ws.Name = p.advance().text
	}
	if p.eatKeyword("PARTITION") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		exprs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		ws.PartitionBy = exprs
	}
	if p.atKeyword("ORDER") {
		ob, err := p.parseOrderBy()
		if err != nil {
			return nil, err
		}
		ws.OrderBy = ob
	}
	depth := 1
	var frame strings.Builder
	for depth > 0 {
		t := p.cur()
		if t.kind == tokEOF {
			return nil, p.errorf("unterminated window definition")
		}
		if t.kind == tokOp && t.text == "(" {
			depth++
		}
		if t.kind == tokOp && t.text == ")" {
			depth--
			if depth == 0 {
				p.advance()
				break
			}
		}
		frame.WriteString(t.text)
		frame.WriteString(" ")
		p.advance()
	}
	ws.Frame = strings.TrimSpace(frame.String())
	return ws, nil
}
