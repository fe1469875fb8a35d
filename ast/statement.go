package ast

import "github.com/freeeve/csvql/token"

// SelectStmt represents a SELECT statement.
type SelectStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Columns  []SelectExpr  // SELECT expressions
	From     *TableSpec    // FROM table
	Joins    []*JoinClause // JOIN clauses, in source order
	Where    Expr          // WHERE clause (optional)
	OrderBy  *OrderByExpr  // ORDER BY clause (optional)
	Limit    *Limit        // LIMIT clause (optional)
	Offset   *Offset       // OFFSET clause (optional)
}

func (*SelectStmt) statementNode()   {}
func (s *SelectStmt) Pos() token.Pos { return s.StartPos }
func (s *SelectStmt) End() token.Pos { return s.EndPos }

// TableSpec represents a table reference with optional alias.
type TableSpec struct {
	StartPos token.Pos
	EndPos   token.Pos
	Name     string
	Alias    string // empty if no AS clause
}

func (t *TableSpec) Pos() token.Pos { return t.StartPos }
func (t *TableSpec) End() token.Pos { return t.EndPos }

// JoinType indicates the type of join.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
)

func (j JoinType) String() string {
	switch j {
	case JoinInner:
		return "INNER"
	case JoinLeft:
		return "LEFT"
	default:
		return "UNKNOWN"
	}
}

// JoinClause represents an INNER or LEFT JOIN with its ON condition.
type JoinClause struct {
	StartPos token.Pos
	EndPos   token.Pos
	Type     JoinType
	Table    *TableSpec
	On       Expr
}

func (j *JoinClause) Pos() token.Pos { return j.StartPos }
func (j *JoinClause) End() token.Pos { return j.EndPos }

// OrderByExpr represents the ORDER BY clause.
type OrderByExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Expr     Expr
	Desc     bool
}

func (o *OrderByExpr) Pos() token.Pos { return o.StartPos }
func (o *OrderByExpr) End() token.Pos { return o.EndPos }

// Limit represents the LIMIT clause.
type Limit struct {
	StartPos token.Pos
	EndPos   token.Pos
	Count    int
}

func (l *Limit) Pos() token.Pos { return l.StartPos }
func (l *Limit) End() token.Pos { return l.EndPos }

// Offset represents the OFFSET clause.
type Offset struct {
	StartPos token.Pos
	EndPos   token.Pos
	Count    int
}

func (o *Offset) Pos() token.Pos { return o.StartPos }
func (o *Offset) End() token.Pos { return o.EndPos }
