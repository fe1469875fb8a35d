package ast

import "github.com/freeeve/csvql/token"

// StarExpr represents a bare * in a projection list or as the sole
// argument of count(*).
type StarExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
}

func (*StarExpr) selectExprNode()  {}
func (s *StarExpr) Pos() token.Pos { return s.StartPos }
func (s *StarExpr) End() token.Pos { return s.EndPos }

// ColName represents a column reference with an optional table qualifier.
type ColName struct {
	StartPos token.Pos
	EndPos   token.Pos
	Table    string // empty if unqualified
	Name     string
}

func (*ColName) exprNode()        {}
func (*ColName) selectExprNode()  {}
func (c *ColName) Pos() token.Pos { return c.StartPos }
func (c *ColName) End() token.Pos { return c.EndPos }

// ColIdx is a 1-based reference to a projected expression, as in
// ORDER BY 2.
type ColIdx struct {
	StartPos token.Pos
	EndPos   token.Pos
	Idx      int
}

func (*ColIdx) exprNode()        {}
func (*ColIdx) selectExprNode()  {}
func (c *ColIdx) Pos() token.Pos { return c.StartPos }
func (c *ColIdx) End() token.Pos { return c.EndPos }

// StrLiteral represents a single-quoted string literal.
type StrLiteral struct {
	StartPos token.Pos
	EndPos   token.Pos
	Value    string
}

func (*StrLiteral) exprNode()        {}
func (*StrLiteral) selectExprNode()  {}
func (s *StrLiteral) Pos() token.Pos { return s.StartPos }
func (s *StrLiteral) End() token.Pos { return s.EndPos }

// BinaryExpr represents a binary operation. Op is one of PLUS, MINUS,
// ASTERISK, SLASH, EQ, NEQ, LT, GT, LTE, GTE, AND, OR.
type BinaryExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Op       token.Token
	Left     Expr
	Right    Expr
}

func (*BinaryExpr) exprNode()        {}
func (*BinaryExpr) selectExprNode()  {}
func (b *BinaryExpr) Pos() token.Pos { return b.StartPos }
func (b *BinaryExpr) End() token.Pos { return b.EndPos }

// UnaryExpr represents a unary operation. Op is NOT.
type UnaryExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Op       token.Token
	Operand  Expr
}

func (*UnaryExpr) exprNode()        {}
func (*UnaryExpr) selectExprNode()  {}
func (u *UnaryExpr) Pos() token.Pos { return u.StartPos }
func (u *UnaryExpr) End() token.Pos { return u.EndPos }

// ParenExpr represents a parenthesized expression.
type ParenExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Expr     Expr
}

func (*ParenExpr) exprNode()        {}
func (*ParenExpr) selectExprNode()  {}
func (p *ParenExpr) Pos() token.Pos { return p.StartPos }
func (p *ParenExpr) End() token.Pos { return p.EndPos }

// FuncExpr represents a function call: a scalar function (length, upper,
// lower) or an aggregate (count, sum, avg, min, max). Args entries are
// expressions, except count which may take a single *.
//
// ID is assigned by the parser and is unique within one statement. The
// engine keys aggregate accumulators by it, so the same call site folds
// into the same slot on every row regardless of how the statement is
// copied or re-projected.
type FuncExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	ID       int
	Name     string
	Args     []SelectExpr
}

func (*FuncExpr) exprNode()        {}
func (*FuncExpr) selectExprNode()  {}
func (f *FuncExpr) Pos() token.Pos { return f.StartPos }
func (f *FuncExpr) End() token.Pos { return f.EndPos }
