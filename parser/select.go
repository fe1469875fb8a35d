package parser

import (
	"strconv"

	"github.com/freeeve/csvql/ast"
	"github.com/freeeve/csvql/token"
)

func (p *Parser) parseSelect() *ast.SelectStmt {
	pos := p.cur.Pos
	if !p.expect(token.SELECT) {
		return nil
	}

	stmt := ast.GetSelectStmt()
	stmt.StartPos = pos

	// Parse select expressions
	stmt.Columns = p.parseSelectExprs()
	if len(p.errors) > 0 {
		return nil
	}

	// FROM clause
	if !p.expect(token.FROM) {
		return nil
	}
	stmt.From = p.parseTableSpec()
	if stmt.From == nil {
		return nil
	}

	// JOIN clauses
	for p.curIs(token.INNER) || p.curIs(token.LEFT) {
		join := p.parseJoin()
		if join == nil {
			return nil
		}
		stmt.Joins = append(stmt.Joins, join)
	}

	// WHERE clause
	if p.curIs(token.WHERE) {
		p.advance()
		stmt.Where = p.parseExpr()
		if stmt.Where == nil {
			return nil
		}
	}

	// ORDER BY clause
	if p.curIs(token.ORDER) {
		stmt.OrderBy = p.parseOrderBy()
		if stmt.OrderBy == nil {
			return nil
		}
	}

	// LIMIT clause
	if p.curIs(token.LIMIT) {
		stmt.Limit = p.parseLimit()
		if stmt.Limit == nil {
			return nil
		}
	}

	// OFFSET clause
	if p.curIs(token.OFFSET) {
		stmt.Offset = p.parseOffset()
		if stmt.Offset == nil {
			return nil
		}
	}

	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseSelectExprs() []ast.SelectExpr {
	slicePtr := ast.GetSelectExprSlice()
	exprs := *slicePtr
	for {
		expr := p.parseSelectExpr()
		if expr == nil {
			return nil
		}
		exprs = append(exprs, expr)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance() // consume comma
	}
	return exprs
}

// parseSelectExpr parses a projection entry: either * or an expression.
func (p *Parser) parseSelectExpr() ast.SelectExpr {
	if p.curIs(token.ASTERISK) {
		pos := p.cur.Pos
		p.advance()
		return &ast.StarExpr{StartPos: pos, EndPos: pos}
	}
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseTableSpec() *ast.TableSpec {
	pos := p.cur.Pos
	name, ok := p.expectIdent("table name")
	if !ok {
		return nil
	}
	spec := &ast.TableSpec{StartPos: pos, Name: name}
	if p.curIs(token.AS) {
		p.advance()
		alias, ok := p.expectIdent("table alias")
		if !ok {
			return nil
		}
		spec.Alias = alias
	}
	spec.EndPos = p.cur.Pos
	return spec
}

func (p *Parser) parseJoin() *ast.JoinClause {
	pos := p.cur.Pos
	join := &ast.JoinClause{StartPos: pos}
	switch p.cur.Type {
	case token.INNER:
		join.Type = ast.JoinInner
	case token.LEFT:
		join.Type = ast.JoinLeft
	}
	p.advance()
	if !p.expect(token.JOIN) {
		return nil
	}
	join.Table = p.parseTableSpec()
	if join.Table == nil {
		return nil
	}
	if !p.expect(token.ON) {
		return nil
	}
	join.On = p.parseExpr()
	if join.On == nil {
		return nil
	}
	join.EndPos = p.cur.Pos
	return join
}

func (p *Parser) parseOrderBy() *ast.OrderByExpr {
	pos := p.cur.Pos
	p.advance() // consume ORDER
	if !p.expect(token.BY) {
		return nil
	}
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	ob := &ast.OrderByExpr{StartPos: pos, Expr: expr}
	switch p.cur.Type {
	case token.ASC:
		p.advance()
	case token.DESC:
		ob.Desc = true
		p.advance()
	}
	ob.EndPos = p.cur.Pos
	return ob
}

func (p *Parser) parseLimit() *ast.Limit {
	pos := p.cur.Pos
	p.advance() // consume LIMIT
	count, ok := p.parseInt("LIMIT count")
	if !ok {
		return nil
	}
	return &ast.Limit{StartPos: pos, EndPos: p.cur.Pos, Count: count}
}

func (p *Parser) parseOffset() *ast.Offset {
	pos := p.cur.Pos
	p.advance() // consume OFFSET
	count, ok := p.parseInt("OFFSET count")
	if !ok {
		return nil
	}
	return &ast.Offset{StartPos: pos, EndPos: p.cur.Pos, Count: count}
}

func (p *Parser) parseInt(what string) (int, bool) {
	if !p.curIs(token.INT) {
		p.errorf("expected %s, got %s", what, p.describeCur())
		return 0, false
	}
	n, err := strconv.Atoi(p.cur.Value)
	if err != nil {
		p.errorf("invalid %s %q", what, p.cur.Value)
		return 0, false
	}
	p.advance()
	return n, true
}
