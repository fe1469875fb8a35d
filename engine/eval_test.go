package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/csvql/ast"
	"github.com/freeeve/csvql/catalog"
	"github.com/freeeve/csvql/parser"
)

// parseWhere extracts the WHERE expression of a parsed statement so
// tests can evaluate arbitrary expressions.
func parseWhere(t *testing.T, cond string) (*ast.SelectStmt, ast.Expr) {
	t.Helper()
	p := parser.New("SELECT * FROM t WHERE " + cond)
	stmt, err := p.Parse()
	require.NoError(t, err)
	sel := stmt.(*ast.SelectStmt)
	return sel, sel.Where
}

func evalEnvFor(t *testing.T, stmt *ast.SelectStmt) *evalEnv {
	t.Helper()
	table, err := catalog.MakeTable("t", "id,name,flag\n1, Asimov, true\n2, Heinlein, 0\n")
	require.NoError(t, err)
	ctx, err := NewQueryContext(catalog.Catalog{"t": table}, stmt)
	require.NoError(t, err)
	return &evalEnv{
		ctx:     ctx,
		cursors: []RowCursor{{Row: 0}},
		aggs:    AggregateResult{},
	}
}

func evalString(t *testing.T, cond string) (string, error) {
	t.Helper()
	stmt, expr := parseWhere(t, cond)
	env := evalEnvFor(t, stmt)
	return evalExpr(expr, env)
}

func TestEvalColumnAndLiteral(t *testing.T) {
	val, err := evalString(t, "name")
	require.NoError(t, err)
	assert.Equal(t, "Asimov", val)

	val, err = evalString(t, "'lit'")
	require.NoError(t, err)
	assert.Equal(t, "lit", val)

	val, err = evalString(t, "t.id")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
}

func TestEvalComparisons(t *testing.T) {
	tests := []struct {
		cond string
		want string
	}{
		{"name = 'Asimov'", "1"},
		{"name = 'nope'", "0"},
		{"name <> 'nope'", "1"},
		{"id < '2'", "1"},
		{"id > '2'", "0"},
		{"id <= '1'", "1"},
		{"id >= '2'", "0"},
		// Comparison is lexicographic over strings.
		{"'10' < '9'", "1"},
	}
	for _, tt := range tests {
		val, err := evalString(t, tt.cond)
		require.NoError(t, err, tt.cond)
		assert.Equal(t, tt.want, val, tt.cond)
	}
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		cond string
		want string
	}{
		{"id + '1'", "2"},
		{"id - '3'", "-2"},
		{"id * '4'", "4"},
		{"id / '2'", "0.5"},
		{"('2' + '1') * '2'", "6"},
	}
	for _, tt := range tests {
		val, err := evalString(t, tt.cond)
		require.NoError(t, err, tt.cond)
		assert.Equal(t, tt.want, val, tt.cond)
	}

	_, err := evalString(t, "name + '1'")
	var coerce *CoerceError
	require.ErrorAs(t, err, &coerce)
}

func TestEvalLogic(t *testing.T) {
	tests := []struct {
		cond string
		want string
	}{
		{"flag AND '1'", "1"},
		{"flag AND '0'", "0"},
		{"'0' OR 'true'", "1"},
		{"NOT flag", "0"},
		{"NOT NOT flag", "1"},
		{"NOT 'anything'", "1"},
	}
	for _, tt := range tests {
		val, err := evalString(t, tt.cond)
		require.NoError(t, err, tt.cond)
		assert.Equal(t, tt.want, val, tt.cond)
	}
}

func TestEvalScalarFunctions(t *testing.T) {
	tests := []struct {
		cond string
		want string
	}{
		{"upper(name)", "ASIMOV"},
		{"lower('MiXeD')", "mixed"},
		{"length(name)", "6"},
		{"length(upper(name))", "6"},
	}
	for _, tt := range tests {
		val, err := evalString(t, tt.cond)
		require.NoError(t, err, tt.cond)
		assert.Equal(t, tt.want, val, tt.cond)
	}
}

func TestEvalErrors(t *testing.T) {
	_, err := evalString(t, "missing")
	var notFound *ColumnNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Name)

	_, err = evalString(t, "nosuch(name)")
	var unknown *UnknownFunctionError
	require.ErrorAs(t, err, &unknown)

	// Aggregates without a prior fold fail in scalar context.
	_, err = evalString(t, "count(*)")
	var agg *AggregateCallError
	require.ErrorAs(t, err, &agg)

	// * is only valid for count.
	stmt, expr := parseWhere(t, "sum(*)")
	env := evalEnvFor(t, stmt)
	err = aggregateExpr(expr, env)
	var wild *DisallowedWildcardError
	require.ErrorAs(t, err, &wild)
}

func TestEvalPaddedCursor(t *testing.T) {
	stmt, expr := parseWhere(t, "name")
	env := evalEnvFor(t, stmt)
	env.cursors[0].Row = PadRow
	_, err := evalExpr(expr, env)
	var none *CursorNoneError
	require.True(t, errors.As(err, &none))
	assert.Equal(t, 0, none.TablePos)
}

func TestEvalColIdx(t *testing.T) {
	p := parser.New("SELECT name FROM t ORDER BY 1")
	stmt, err := p.Parse()
	require.NoError(t, err)
	sel := stmt.(*ast.SelectStmt)

	env := evalEnvFor(t, sel)
	env.cols = []ast.Expr{sel.Columns[0].(ast.Expr)}

	val, err := evalExpr(sel.OrderBy.Expr, env)
	require.NoError(t, err)
	assert.Equal(t, "Asimov", val)

	// Out-of-range positions do not resolve.
	env.cols = nil
	_, err = evalExpr(sel.OrderBy.Expr, env)
	var notFound *ColumnNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestAggregateFold(t *testing.T) {
	p := parser.New("SELECT count(*), sum(id), avg(id), min(id), max(id) FROM t")
	stmt, err := p.Parse()
	require.NoError(t, err)
	sel := stmt.(*ast.SelectStmt)

	env := evalEnvFor(t, sel)
	for _, col := range sel.Columns {
		env.cols = append(env.cols, col.(ast.Expr))
		findAggregates(col, env.aggs)
	}

	// Fold both rows.
	for row := 0; row < 2; row++ {
		env.cursors[0].Row = row
		for _, col := range env.cols {
			require.NoError(t, aggregateExpr(col, env))
		}
	}

	want := []string{"2", "3", "1.5", "1", "2"}
	for i, col := range env.cols {
		val, err := evalExpr(col, env)
		require.NoError(t, err)
		assert.Equal(t, want[i], val)
	}
}

func TestAggregateEmptyFold(t *testing.T) {
	p := parser.New("SELECT count(*), sum(id), avg(id), min(id), max(id) FROM t")
	stmt, err := p.Parse()
	require.NoError(t, err)
	sel := stmt.(*ast.SelectStmt)

	env := evalEnvFor(t, sel)
	for _, col := range sel.Columns {
		env.cols = append(env.cols, col.(ast.Expr))
		findAggregates(col, env.aggs)
	}

	// No rows folded: count and sum render zero, the rest are empty.
	want := []string{"0", "0", "", "", ""}
	for i, col := range env.cols {
		val, err := evalExpr(col, env)
		require.NoError(t, err)
		assert.Equal(t, want[i], val, i)
	}
}

func TestFindColAmbiguous(t *testing.T) {
	a, err := catalog.MakeTable("a", "id,x\n")
	require.NoError(t, err)
	b, err := catalog.MakeTable("b", "id,y\n")
	require.NoError(t, err)
	cat := catalog.Catalog{"a": a, "b": b}

	p := parser.New("SELECT id FROM a INNER JOIN b ON a.id = b.id")
	stmt, err := p.Parse()
	require.NoError(t, err)
	ctx, err := NewQueryContext(cat, stmt.(*ast.SelectStmt))
	require.NoError(t, err)

	_, err = ctx.FindCol(&ast.ColName{Name: "id"})
	var ambiguous *AmbiguousColumnError
	require.ErrorAs(t, err, &ambiguous)

	ref, err := ctx.FindCol(&ast.ColName{Table: "b", Name: "id"})
	require.NoError(t, err)
	assert.Equal(t, ColRef{TablePos: 1, Col: 0}, ref)

	ref, err = ctx.FindCol(&ast.ColName{Name: "y"})
	require.NoError(t, err)
	assert.Equal(t, ColRef{TablePos: 1, Col: 1}, ref)
}

func TestFindColAlias(t *testing.T) {
	table, err := catalog.MakeTable("authors", "id,name\n")
	require.NoError(t, err)
	cat := catalog.Catalog{"authors": table}

	p := parser.New("SELECT a.name FROM authors AS a")
	stmt, err := p.Parse()
	require.NoError(t, err)
	ctx, err := NewQueryContext(cat, stmt.(*ast.SelectStmt))
	require.NoError(t, err)

	ref, err := ctx.FindCol(&ast.ColName{Table: "a", Name: "name"})
	require.NoError(t, err)
	assert.Equal(t, ColRef{TablePos: 0, Col: 1}, ref)
}
