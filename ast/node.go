// Package ast defines the abstract syntax tree for SQL statements.
package ast

import "github.com/freeeve/csvql/token"

// Node is the base interface for all AST nodes.
type Node interface {
	Pos() token.Pos
	End() token.Pos
}

// Statement represents a SQL statement.
type Statement interface {
	Node
	statementNode()
}

// Expr represents an expression.
type Expr interface {
	Node
	exprNode()
	selectExprNode()
}

// SelectExpr represents a projection entry or a function argument:
// either a bare * or an expression. Every Expr is a SelectExpr.
type SelectExpr interface {
	Node
	selectExprNode()
}
