// Package visitor provides AST traversal utilities.
package visitor

import "github.com/freeeve/csvql/ast"

// Visitor is the interface for AST traversal.
type Visitor interface {
	Visit(node ast.Node) Visitor
}

// Walk traverses an AST in depth-first order.
func Walk(v Visitor, node ast.Node) {
	if node == nil {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}
	walkChildren(v, node)
}

func walkChildren(v Visitor, node ast.Node) {
	switch n := node.(type) {
	case *ast.SelectStmt:
		for _, col := range n.Columns {
			Walk(v, col)
		}
		if n.From != nil {
			Walk(v, n.From)
		}
		for _, join := range n.Joins {
			Walk(v, join)
		}
		if n.Where != nil {
			Walk(v, n.Where)
		}
		if n.OrderBy != nil {
			Walk(v, n.OrderBy)
		}

	case *ast.JoinClause:
		if n.Table != nil {
			Walk(v, n.Table)
		}
		Walk(v, n.On)

	case *ast.OrderByExpr:
		Walk(v, n.Expr)

	case *ast.BinaryExpr:
		Walk(v, n.Left)
		Walk(v, n.Right)

	case *ast.UnaryExpr:
		Walk(v, n.Operand)

	case *ast.ParenExpr:
		Walk(v, n.Expr)

	case *ast.FuncExpr:
		for _, arg := range n.Args {
			Walk(v, arg)
		}
	}
}

// inspector adapts a function to the Visitor interface.
type inspector func(ast.Node) bool

func (f inspector) Visit(node ast.Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses an AST in depth-first order, calling f for each node.
// If f returns false, children of the node are skipped.
func Inspect(node ast.Node, f func(ast.Node) bool) {
	Walk(inspector(f), node)
}
