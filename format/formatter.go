// Package format provides SQL generation from AST nodes.
package format

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/freeeve/csvql/ast"
	"github.com/freeeve/csvql/token"
)

// Options controls formatting behavior.
type Options struct {
	Uppercase bool // Uppercase keywords
}

// DefaultOptions are the default formatting options.
var DefaultOptions = Options{
	Uppercase: true,
}

// Formatter generates SQL from AST nodes.
type Formatter struct {
	buf  bytes.Buffer
	opts Options
}

// New creates a new formatter with the given options.
func New(opts Options) *Formatter {
	return &Formatter{opts: opts}
}

// String formats an AST node to a SQL string.
func String(node ast.Node) string {
	f := New(DefaultOptions)
	f.Format(node)
	return f.String()
}

// Format formats a node to the internal buffer.
func (f *Formatter) Format(node ast.Node) {
	if node == nil {
		return
	}

	switch n := node.(type) {
	case *ast.SelectStmt:
		f.formatSelect(n)
	case *ast.StarExpr:
		f.write("*")
	case *ast.ColName:
		f.formatColName(n)
	case *ast.ColIdx:
		f.write(strconv.Itoa(n.Idx))
	case *ast.StrLiteral:
		f.write("'")
		f.write(n.Value)
		f.write("'")
	case *ast.BinaryExpr:
		f.formatBinaryExpr(n)
	case *ast.UnaryExpr:
		f.keyword("NOT")
		f.write(" ")
		f.Format(n.Operand)
	case *ast.ParenExpr:
		f.write("(")
		f.Format(n.Expr)
		f.write(")")
	case *ast.FuncExpr:
		f.formatFuncExpr(n)
	case *ast.TableSpec:
		f.formatTableSpec(n)
	case *ast.JoinClause:
		f.formatJoin(n)
	case *ast.OrderByExpr:
		f.keyword("ORDER BY")
		f.write(" ")
		f.Format(n.Expr)
		if n.Desc {
			f.write(" ")
			f.keyword("DESC")
		}
	}
}

// String returns the formatted SQL.
func (f *Formatter) String() string {
	return f.buf.String()
}

// Reset clears the internal buffer for reuse.
func (f *Formatter) Reset() {
	f.buf.Reset()
}

func (f *Formatter) formatSelect(s *ast.SelectStmt) {
	f.keyword("SELECT")
	f.write(" ")
	for i, col := range s.Columns {
		if i > 0 {
			f.write(", ")
		}
		f.Format(col)
	}
	f.write(" ")
	f.keyword("FROM")
	f.write(" ")
	f.Format(s.From)
	for _, join := range s.Joins {
		f.write(" ")
		f.Format(join)
	}
	if s.Where != nil {
		f.write(" ")
		f.keyword("WHERE")
		f.write(" ")
		f.Format(s.Where)
	}
	if s.OrderBy != nil {
		f.write(" ")
		f.Format(s.OrderBy)
	}
	if s.Limit != nil {
		f.write(" ")
		f.keyword("LIMIT")
		f.write(" ")
		f.write(strconv.Itoa(s.Limit.Count))
	}
	if s.Offset != nil {
		f.write(" ")
		f.keyword("OFFSET")
		f.write(" ")
		f.write(strconv.Itoa(s.Offset.Count))
	}
}

func (f *Formatter) formatTableSpec(t *ast.TableSpec) {
	f.write(t.Name)
	if t.Alias != "" {
		f.write(" ")
		f.keyword("AS")
		f.write(" ")
		f.write(t.Alias)
	}
}

func (f *Formatter) formatJoin(j *ast.JoinClause) {
	if j.Type == ast.JoinLeft {
		f.keyword("LEFT")
	} else {
		f.keyword("INNER")
	}
	f.write(" ")
	f.keyword("JOIN")
	f.write(" ")
	f.Format(j.Table)
	f.write(" ")
	f.keyword("ON")
	f.write(" ")
	f.Format(j.On)
}

func (f *Formatter) formatColName(c *ast.ColName) {
	if c.Table != "" {
		f.write(c.Table)
		f.write(".")
	}
	f.write(c.Name)
}

func (f *Formatter) formatBinaryExpr(b *ast.BinaryExpr) {
	f.Format(b.Left)
	f.write(" ")
	switch b.Op {
	case token.AND:
		f.keyword("AND")
	case token.OR:
		f.keyword("OR")
	default:
		f.write(b.Op.String())
	}
	f.write(" ")
	f.Format(b.Right)
}

func (f *Formatter) formatFuncExpr(fn *ast.FuncExpr) {
	f.write(fn.Name)
	f.write("(")
	for i, arg := range fn.Args {
		if i > 0 {
			f.write(", ")
		}
		f.Format(arg)
	}
	f.write(")")
}

func (f *Formatter) write(s string) {
	f.buf.WriteString(s)
}

func (f *Formatter) keyword(s string) {
	if f.opts.Uppercase {
		f.buf.WriteString(s)
	} else {
		f.buf.WriteString(strings.ToLower(s))
	}
}
