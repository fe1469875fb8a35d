package parser

import (
	"strconv"

	"github.com/freeeve/csvql/ast"
	"github.com/freeeve/csvql/token"
)

// Expression grammar, loosest binding first:
//
//	expr    := cmp ((AND | OR) cmp)*        AND and OR share one level
//	cmp     := add ((= | <> | < | > | <= | >=) add)?
//	add     := mul ((+ | -) mul)*
//	mul     := unary ((* | /) unary)*
//	unary   := NOT unary | primary
//	primary := ( expr ) | string | func call | column ref | integer
//
// A comparison is not associative: at most one comparison operator per
// level, so a = b = c does not parse.

func (p *Parser) parseExpr() ast.Expr {
	if p.depth >= maxExprDepth {
		p.errorf("expression is nested too deeply")
		return nil
	}
	p.depth++
	defer func() { p.depth-- }()

	left := p.parseCmpExpr()
	if left == nil {
		return nil
	}
	for p.curIs(token.AND) || p.curIs(token.OR) {
		op := p.cur.Type
		p.advance()
		right := p.parseCmpExpr()
		if right == nil {
			return nil
		}
		bin := ast.GetBinaryExpr()
		bin.StartPos = left.Pos()
		bin.EndPos = right.End()
		bin.Op = op
		bin.Left = left
		bin.Right = right
		left = bin
	}
	return left
}

func (p *Parser) parseCmpExpr() ast.Expr {
	left := p.parseAddExpr()
	if left == nil {
		return nil
	}
	switch p.cur.Type {
	case token.EQ, token.NEQ, token.LT, token.GT, token.LTE, token.GTE:
		op := p.cur.Type
		p.advance()
		right := p.parseAddExpr()
		if right == nil {
			return nil
		}
		bin := ast.GetBinaryExpr()
		bin.StartPos = left.Pos()
		bin.EndPos = right.End()
		bin.Op = op
		bin.Left = left
		bin.Right = right
		return bin
	}
	return left
}

func (p *Parser) parseAddExpr() ast.Expr {
	left := p.parseMulExpr()
	if left == nil {
		return nil
	}
	for p.curIs(token.PLUS) || p.curIs(token.MINUS) {
		op := p.cur.Type
		p.advance()
		right := p.parseMulExpr()
		if right == nil {
			return nil
		}
		bin := ast.GetBinaryExpr()
		bin.StartPos = left.Pos()
		bin.EndPos = right.End()
		bin.Op = op
		bin.Left = left
		bin.Right = right
		left = bin
	}
	return left
}

func (p *Parser) parseMulExpr() ast.Expr {
	left := p.parseUnaryExpr()
	if left == nil {
		return nil
	}
	for p.curIs(token.ASTERISK) || p.curIs(token.SLASH) {
		op := p.cur.Type
		p.advance()
		right := p.parseUnaryExpr()
		if right == nil {
			return nil
		}
		bin := ast.GetBinaryExpr()
		bin.StartPos = left.Pos()
		bin.EndPos = right.End()
		bin.Op = op
		bin.Left = left
		bin.Right = right
		left = bin
	}
	return left
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	if p.curIs(token.NOT) {
		if p.depth >= maxExprDepth {
			p.errorf("expression is nested too deeply")
			return nil
		}
		p.depth++
		defer func() { p.depth-- }()

		pos := p.cur.Pos
		p.advance()
		operand := p.parseUnaryExpr()
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{
			StartPos: pos,
			EndPos:   operand.End(),
			Op:       token.NOT,
			Operand:  operand,
		}
	}
	return p.parsePrimaryExpr()
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	pos := p.cur.Pos

	switch p.cur.Type {
	case token.LPAREN:
		p.advance()
		inner := p.parseExpr()
		if inner == nil {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return &ast.ParenExpr{StartPos: pos, EndPos: p.cur.Pos, Expr: inner}

	case token.STRING:
		val := p.cur.Value
		p.advance()
		return &ast.StrLiteral{StartPos: pos, EndPos: p.cur.Pos, Value: val}

	case token.INT:
		n, err := strconv.Atoi(p.cur.Value)
		if err != nil {
			p.errorf("invalid integer %q", p.cur.Value)
			return nil
		}
		p.advance()
		return &ast.ColIdx{StartPos: pos, EndPos: p.cur.Pos, Idx: n}

	case token.IDENT:
		name := p.cur.Value
		p.advance()
		if p.curIs(token.LPAREN) {
			return p.parseFuncCall(pos, name)
		}
		return p.parseColumnRef(pos, name)
	}

	p.errorf("expected expression, got %s", p.describeCur())
	return nil
}

// parseColumnRef parses a column reference; name has already been
// consumed. A dot extends it to a table-qualified reference.
func (p *Parser) parseColumnRef(pos token.Pos, name string) ast.Expr {
	col := ast.GetColName()
	col.StartPos = pos
	if p.curIs(token.DOT) {
		p.advance()
		colName, ok := p.expectIdent("column name")
		if !ok {
			return nil
		}
		col.Table = name
		col.Name = colName
	} else {
		col.Name = name
	}
	col.EndPos = p.cur.Pos
	return col
}

// parseFuncCall parses a function call; the name has been consumed and
// the current token is the opening parenthesis. Arguments are
// expressions, or a bare * (only count accepts it).
func (p *Parser) parseFuncCall(pos token.Pos, name string) ast.Expr {
	p.advance() // consume (
	fn := ast.GetFuncExpr()
	fn.StartPos = pos
	fn.Name = name
	fn.ID = p.funcID
	p.funcID++
	for {
		var arg ast.SelectExpr
		if p.curIs(token.ASTERISK) {
			starPos := p.cur.Pos
			p.advance()
			arg = &ast.StarExpr{StartPos: starPos, EndPos: starPos}
		} else {
			expr := p.parseExpr()
			if expr == nil {
				return nil
			}
			arg = expr
		}
		fn.Args = append(fn.Args, arg)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	fn.EndPos = p.cur.Pos
	return fn
}
