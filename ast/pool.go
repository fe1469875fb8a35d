package ast

import "sync"

// Node pools for reducing allocations during parsing.
// Use Get* functions to obtain nodes and ReleaseAST to return a whole
// statement tree.

var (
	selectStmtPool = sync.Pool{
		New: func() any { return &SelectStmt{} },
	}
	colNamePool = sync.Pool{
		New: func() any { return &ColName{} },
	}
	binaryExprPool = sync.Pool{
		New: func() any { return &BinaryExpr{} },
	}
	funcExprPool = sync.Pool{
		New: func() any { return &FuncExpr{} },
	}
	selectExprSlicePool = sync.Pool{
		New: func() any {
			s := make([]SelectExpr, 0, 8)
			return &s
		},
	}
)

// GetSelectStmt returns a zeroed SelectStmt from the pool.
func GetSelectStmt() *SelectStmt {
	s := selectStmtPool.Get().(*SelectStmt)
	*s = SelectStmt{}
	return s
}

// GetColName returns a zeroed ColName from the pool.
func GetColName() *ColName {
	c := colNamePool.Get().(*ColName)
	*c = ColName{}
	return c
}

// GetBinaryExpr returns a zeroed BinaryExpr from the pool.
func GetBinaryExpr() *BinaryExpr {
	b := binaryExprPool.Get().(*BinaryExpr)
	*b = BinaryExpr{}
	return b
}

// GetFuncExpr returns a zeroed FuncExpr from the pool.
func GetFuncExpr() *FuncExpr {
	f := funcExprPool.Get().(*FuncExpr)
	*f = FuncExpr{}
	return f
}

// GetSelectExprSlice returns a []SelectExpr from the pool.
func GetSelectExprSlice() *[]SelectExpr {
	return selectExprSlicePool.Get().(*[]SelectExpr)
}

// ReleaseAST returns a statement tree's pooled nodes to their pools.
// Optional: statements that are never released are garbage collected
// normally. The statement must not be used after release.
func ReleaseAST(stmt Statement) {
	sel, ok := stmt.(*SelectStmt)
	if !ok {
		return
	}
	for _, col := range sel.Columns {
		releaseSelectExpr(col)
	}
	if cap(sel.Columns) > 0 {
		cols := sel.Columns[:0]
		selectExprSlicePool.Put(&cols)
	}
	for _, join := range sel.Joins {
		releaseExpr(join.On)
	}
	releaseExpr(sel.Where)
	if sel.OrderBy != nil {
		releaseExpr(sel.OrderBy.Expr)
	}
	selectStmtPool.Put(sel)
}

func releaseSelectExpr(se SelectExpr) {
	if e, ok := se.(Expr); ok {
		releaseExpr(e)
	}
}

func releaseExpr(e Expr) {
	switch n := e.(type) {
	case *ColName:
		colNamePool.Put(n)
	case *BinaryExpr:
		releaseExpr(n.Left)
		releaseExpr(n.Right)
		binaryExprPool.Put(n)
	case *UnaryExpr:
		releaseExpr(n.Operand)
	case *ParenExpr:
		releaseExpr(n.Expr)
	case *FuncExpr:
		for _, arg := range n.Args {
			releaseSelectExpr(arg)
		}
		funcExprPool.Put(n)
	}
}
