// SPDX-License-Identifier: Apache-2.0

package parser

import "github.com/nullaware/pgtyper/pkg/ast"

func (p *parser) parseTableRef() (ast.TableRef, error) {
	schema := ""
	name, err := p.expectIdent()
	if err != nil {
		return ast.TableRef{}, err
	}
	if p.eatOp(".") {
		schema = name
		name, err = p.expectIdent()
		if err != nil {
			return ast.TableRef{}, err
		}
	}
	alias := ""
	if p.eatKeyword("AS") {
		alias, err = p.expectIdent()
		if err != nil {
			return ast.TableRef{}, err
		}
	} else if p.canBeAlias() {
		alias = p.advance().text
	}
	return ast.TableRef{Schema: schema, Name: name, Alias: alias}, nil
}

func (p *parser) parseReturning() ([]ast.SelectListItem, error) {
	if !p.eatKeyword("RETURNING") {
		return nil, nil
	}
	return p.parseSelectList()
}

func (p *parser) parseInsert() (*ast.Insert, error) {
	if err := p.expectKeyword("INSERT"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	tbl, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}

	ins := &ast.Insert{Table: tbl}
	if p.atOp("(") {
		cols, err := p.parseIdentListParen()
		if err != nil {
			return nil, err
		}
		ins.Columns = cols
	}

	switch {
	case p.eatKeyword("DEFAULT"):
		if err := p.expectKeyword("VALUES"); err != nil {
			return nil, err
		}
		ins.Source = &ast.DefaultValuesSource{}

	case p.atKeyword("VALUES"):
		src, err := p.parseValuesSource()
		if err != nil {
			return nil, err
		}
		ins.Source = src

	case p.atKeyword("SELECT") || p.atKeyword("WITH"):
		sel, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		ins.Source = &ast.SelectSource{Select: sel}

	default:
		return nil, p.errorf("expected VALUES, DEFAULT VALUES or SELECT in INSERT, got %q", p.cur().text)
	}

	if p.eatKeyword("ON") {
		oc, err := p.parseOnConflict()
		if err != nil {
			return nil, err
		}
		ins.OnConflict = oc
	}

	ret, err := p.parseReturning()
	if err != nil {
		return nil, err
	}
	ins.Returning = ret

	return ins, nil
}

func (p *parser) parseValuesSource() (*ast.ValuesSource, error) {
	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	src := &ast.ValuesSource{}
	for {
		if err := p.expectOp("("); err != nil {
			return nil, err
		}
		var row []ast.ValuesValue
		for {
			if p.eatKeyword("DEFAULT") {
				row = append(row, ast.ValuesValue{Default: true})
			} else {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				row = append(row, ast.ValuesValue{Expr: e})
			}
			if !p.eatOp(",") {
				break
			}
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		src.Rows = append(src.Rows, row)
		if !p.eatOp(",") {
			break
		}
	}
	return src, nil
}

func (p *parser) parseOnConflict() (*ast.OnConflict, error) {
	if err := p.expectKeyword("CONFLICT"); err != nil {
		return nil, err
	}
	oc := &ast.OnConflict{}

	if p.eatKeyword("ON") {
		if err := p.expectKeyword("CONSTRAINT"); err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		oc.Target = ast.ConflictTarget{Kind: ast.ConflictTargetConstraint, Constraint: name}
	} else if p.atOp("(") {
		cols, err := p.parseIdentListParen()
		if err != nil {
			return nil, err
		}
		oc.Target = ast.ConflictTarget{Kind: ast.ConflictTargetColumns, Columns: cols}
	}

	if err := p.expectKeyword("DO"); err != nil {
		return nil, err
	}
	if p.eatKeyword("NOTHING") {
		oc.Action = ast.ConflictAction{Kind: ast.ConflictDoNothing}
		return oc, nil
	}
	if err := p.expectKeyword("UPDATE"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}
	assignments, err := p.parseAssignments()
	if err != nil {
		return nil, err
	}
	action := ast.ConflictAction{Kind: ast.ConflictDoUpdate, Assignments: assignments}
	if p.eatKeyword("WHERE") {
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		action.Where = w
	}
	oc.Action = action
	return oc, nil
}

func (p *parser) parseAssignments() ([]ast.Assignment, error) {
	var assignments []ast.Assignment
	for {
		col, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp("="); err != nil {
			return nil, err
		}
		var v ast.ValuesValue
		if p.eatKeyword("DEFAULT") {
			v = ast.ValuesValue{Default: true}
		} else {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			v = ast.ValuesValue{Expr: e}
		}
		assignments = append(assignments, ast.Assignment{Column: col, Value: v})
		if !p.eatOp(",") {
			break
		}
	}
	return assignments, nil
}

func (p *parser) parseUpdate() (*ast.Update, error) {
	if err := p.expectKeyword("UPDATE"); err != nil {
		return nil, err
	}
	tbl, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}
	assignments, err := p.parseAssignments()
	if err != nil {
		return nil, err
	}
	upd := &ast.Update{Table: tbl, Assignments: assignments}

	if p.eatKeyword("FROM") {
		from, err := p.parseTableExpression()
		if err != nil {
			return nil, err
		}
		upd.From = from
	}
	if p.eatKeyword("WHERE") {
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		upd.Where = w
	}
	ret, err := p.parseReturning()
	if err != nil {
		return nil, err
	}
	upd.Returning = ret
	return upd, nil
}

func (p *parser) parseDelete() (*ast.Delete, error) {
	if err := p.expectKeyword("DELETE"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	tbl, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	del := &ast.Delete{Table: tbl}

	if p.eatKeyword("WHERE") {
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		del.Where = w
	}
	ret, err := p.parseReturning()
	if err != nil {
		return nil, err
	}
	del.Returning = ret
	return del, nil
}
