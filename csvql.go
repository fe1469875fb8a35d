// Package csvql provides a SQL query engine for read-only tabular data
// sourced from CSV files. A single SELECT statement is parsed into a
// typed statement tree and executed against an in-memory catalog of
// tables, with multi-way joins, WHERE filtering, ORDER BY, LIMIT/OFFSET
// and aggregation.
//
// Basic usage:
//
//	cat, err := catalog.LoadDir("./data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := csvql.RenderQuery(cat, "SELECT id, name FROM authors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(out)
//
// The parser is usable on its own:
//
//	stmt, err := csvql.Parse("SELECT * FROM phonebook LIMIT 10")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(csvql.String(stmt))
package csvql

import (
	"github.com/freeeve/csvql/ast"
	"github.com/freeeve/csvql/catalog"
	"github.com/freeeve/csvql/engine"
	"github.com/freeeve/csvql/format"
	"github.com/freeeve/csvql/output"
	"github.com/freeeve/csvql/parser"
	"github.com/freeeve/csvql/visitor"
)

// Statement is an alias for ast.Statement.
type Statement = ast.Statement

// Node is an alias for ast.Node.
type Node = ast.Node

// Parse parses a single SELECT statement.
// The parser uses internal pooling for efficiency. For maximum
// performance when parsing many queries, call Repool(stmt) when done
// with the statement (optional, see Repool).
func Parse(sql string) (ast.Statement, error) {
	p := parser.Get(sql)
	stmt, err := p.Parse()
	parser.Put(p)
	return stmt, err
}

// Repool returns AST nodes to internal pools for reuse.
// This is optional - if not called, nodes are garbage collected
// normally. The statement must not be used after Repool.
func Repool(stmt Statement) {
	ast.ReleaseAST(stmt)
}

// String formats an AST node back to SQL.
func String(node ast.Node) string {
	return format.String(node)
}

// Inspect traverses an AST in depth-first order, calling f for each
// node. If f returns false, children of the node are skipped.
func Inspect(node ast.Node, f func(ast.Node) bool) {
	visitor.Inspect(node, f)
}

// Query parses src and executes it against cat, streaming the header
// and result rows into sink.
func Query(sink output.Sink, cat catalog.Catalog, src string) error {
	stmt, err := Parse(src)
	if err != nil {
		return err
	}
	return engine.ExecSelect(sink, cat, stmt.(*ast.SelectStmt))
}

// RenderQuery parses src, executes it against cat and returns the
// fixed-width tabular rendering of the result.
func RenderQuery(cat catalog.Catalog, src string) (string, error) {
	buf := output.NewBufferSink()
	if err := Query(buf, cat, src); err != nil {
		return "", err
	}
	return output.RenderTable(buf.Rows), nil
}
