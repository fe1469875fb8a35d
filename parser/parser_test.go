package parser

import (
	"strings"
	"testing"

	"github.com/freeeve/csvql/ast"
	"github.com/freeeve/csvql/format"
	"github.com/freeeve/csvql/token"
)

func parse(t *testing.T, input string) *ast.SelectStmt {
	t.Helper()
	p := New(input)
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return stmt.(*ast.SelectStmt)
}

func TestParseAndFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string // empty means input == expected
	}{
		{
			name:  "simple select",
			input: "SELECT * FROM users",
		},
		{
			name:  "select with where",
			input: "SELECT id, name FROM users WHERE status = 'active'",
		},
		{
			name:  "select with inner join",
			input: "SELECT a.id, b.name FROM a INNER JOIN b ON a.id = b.a_id",
		},
		{
			name:  "select with left join",
			input: "SELECT * FROM a LEFT JOIN b ON a.id = b.a_id",
		},
		{
			name:  "multiple joins",
			input: "SELECT * FROM a INNER JOIN b ON a.id = b.a_id LEFT JOIN c ON b.id = c.b_id",
		},
		{
			name:  "table alias",
			input: "SELECT a.name FROM authors AS a",
		},
		{
			name:  "order by",
			input: "SELECT name FROM users ORDER BY name",
		},
		{
			name:  "order by desc with limit and offset",
			input: "SELECT name FROM users ORDER BY name DESC LIMIT 10 OFFSET 5",
		},
		{
			name:  "order by position",
			input: "SELECT id, name FROM users ORDER BY 2",
		},
		{
			name:  "aggregate",
			input: "SELECT count(*), sum(amount) FROM sales",
		},
		{
			name:  "scalar functions",
			input: "SELECT upper(name), length(name) FROM users",
		},
		{
			name:  "arithmetic and comparison",
			input: "SELECT * FROM t WHERE a + b * c >= d",
		},
		{
			name:  "parenthesized expression",
			input: "SELECT * FROM t WHERE (a + b) * c = d",
		},
		{
			name:  "not",
			input: "SELECT * FROM t WHERE NOT a = b",
		},
		{
			name:  "and or chain",
			input: "SELECT * FROM t WHERE a = '1' AND b = '2' OR c = '3'",
		},
		{
			name:  "star mixed with expressions",
			input: "SELECT *, count(*) FROM t",
		},
		{
			name:     "keyword case normalized",
			input:    "select id from users where id <> '1'",
			expected: "SELECT id FROM users WHERE id <> '1'",
		},
		{
			name:     "whitespace normalized",
			input:    "SELECT   id ,name\nFROM users",
			expected: "SELECT id, name FROM users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := parse(t, tt.input)
			expected := tt.expected
			if expected == "" {
				expected = tt.input
			}
			formatted := format.String(stmt)
			if formatted != expected {
				t.Fatalf("format = %q, want %q", formatted, expected)
			}

			// Formatting must be a fixed point of parse+format.
			again := parse(t, formatted)
			if reformatted := format.String(again); reformatted != formatted {
				t.Fatalf("reparse format = %q, want %q", reformatted, formatted)
			}
		})
	}
}

func TestParseStatementShape(t *testing.T) {
	stmt := parse(t, "SELECT authors.name, count(*) FROM authors AS a LEFT JOIN books ON authors.id = books.author_id WHERE a.name <> '' ORDER BY 1 DESC LIMIT 3 OFFSET 1")

	if len(stmt.Columns) != 2 {
		t.Fatalf("columns = %d, want 2", len(stmt.Columns))
	}
	col, ok := stmt.Columns[0].(*ast.ColName)
	if !ok || col.Table != "authors" || col.Name != "name" {
		t.Fatalf("columns[0] = %#v", stmt.Columns[0])
	}
	fn, ok := stmt.Columns[1].(*ast.FuncExpr)
	if !ok || fn.Name != "count" || len(fn.Args) != 1 {
		t.Fatalf("columns[1] = %#v", stmt.Columns[1])
	}
	if _, ok := fn.Args[0].(*ast.StarExpr); !ok {
		t.Fatalf("count arg = %#v", fn.Args[0])
	}
	if stmt.From.Name != "authors" || stmt.From.Alias != "a" {
		t.Fatalf("from = %+v", stmt.From)
	}
	if len(stmt.Joins) != 1 || stmt.Joins[0].Type != ast.JoinLeft {
		t.Fatalf("joins = %#v", stmt.Joins)
	}
	if stmt.Where == nil {
		t.Fatal("where missing")
	}
	if stmt.OrderBy == nil || !stmt.OrderBy.Desc {
		t.Fatalf("order by = %#v", stmt.OrderBy)
	}
	idx, ok := stmt.OrderBy.Expr.(*ast.ColIdx)
	if !ok || idx.Idx != 1 {
		t.Fatalf("order by expr = %#v", stmt.OrderBy.Expr)
	}
	if stmt.Limit == nil || stmt.Limit.Count != 3 {
		t.Fatalf("limit = %#v", stmt.Limit)
	}
	if stmt.Offset == nil || stmt.Offset.Count != 1 {
		t.Fatalf("offset = %#v", stmt.Offset)
	}
}

func TestParseFuncIDsUnique(t *testing.T) {
	stmt := parse(t, "SELECT count(*), sum(x), count(*) FROM t")
	seen := map[int]bool{}
	for _, col := range stmt.Columns {
		fn := col.(*ast.FuncExpr)
		if seen[fn.ID] {
			t.Fatalf("duplicate func id %d", fn.ID)
		}
		seen[fn.ID] = true
	}
}

func TestParsePrecedence(t *testing.T) {
	// a + b * c parses as a + (b * c)
	stmt := parse(t, "SELECT * FROM t WHERE a + b * c = d")
	cmp := stmt.Where.(*ast.BinaryExpr)
	if cmp.Op != token.EQ {
		t.Fatalf("top op = %v", cmp.Op)
	}
	add := cmp.Left.(*ast.BinaryExpr)
	if add.Op != token.PLUS {
		t.Fatalf("left op = %v", add.Op)
	}
	mul := add.Right.(*ast.BinaryExpr)
	if mul.Op != token.ASTERISK {
		t.Fatalf("right op = %v", mul.Op)
	}

	// AND and OR share one level, left-associative.
	stmt = parse(t, "SELECT * FROM t WHERE a OR b AND c")
	and := stmt.Where.(*ast.BinaryExpr)
	if and.Op != token.AND {
		t.Fatalf("top op = %v, want AND", and.Op)
	}
	or := and.Left.(*ast.BinaryExpr)
	if or.Op != token.OR {
		t.Fatalf("left op = %v, want OR", or.Op)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // substring of the error message
	}{
		{"misspelled select", "SELOCT id FROM t", "expected SELECT"},
		{"missing from", "SELECT id", "expected FROM"},
		{"from is reserved", "SELECT FROM FROM t", "expected expression"},
		{"missing table", "SELECT id FROM", "expected table name"},
		{"keyword as table", "SELECT id FROM where", "expected table name"},
		{"trailing input", "SELECT id FROM t garbage", "after statement"},
		{"join without on", "SELECT * FROM a INNER JOIN b", "expected ON"},
		{"bare join keyword", "SELECT * FROM a JOIN b ON a.x = b.x", "after statement"},
		{"double comparison", "SELECT * FROM t WHERE a = b = c", "after statement"},
		{"limit needs integer", "SELECT * FROM t LIMIT x", "LIMIT count"},
		{"empty input", "", "expected SELECT"},
		{"unterminated string", "SELECT * FROM t WHERE a = 'x", "illegal token"},
		{"empty function call", "SELECT count() FROM t", "expected expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.input)
			_, err := p.Parse()
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.input)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParseErrorRemainder(t *testing.T) {
	p := New("SELECT id FROM t garbage here")
	_, err := p.Parse()
	if err == nil {
		t.Fatal("want error")
	}
	perr, ok := err.(ParseError)
	if !ok {
		t.Fatalf("error type %T", err)
	}
	if perr.Remainder != "garbage here" {
		t.Fatalf("remainder = %q", perr.Remainder)
	}
}

func TestParsePooled(t *testing.T) {
	// Pooled parsers must behave identically across reuse.
	for i := 0; i < 10; i++ {
		p := Get("SELECT id, count(*) FROM t WHERE a = 'b'")
		stmt, err := p.Parse()
		Put(p)
		if err != nil {
			t.Fatal(err)
		}
		sel := stmt.(*ast.SelectStmt)
		if len(sel.Columns) != 2 {
			t.Fatalf("columns = %d", len(sel.Columns))
		}
		ast.ReleaseAST(stmt)
	}
}
