package engine

import (
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/freeeve/csvql/ast"
	"github.com/freeeve/csvql/catalog"
	"github.com/freeeve/csvql/format"
	"github.com/freeeve/csvql/output"
)

// ExecSelect runs a SELECT statement against the catalog, streaming the
// header and result rows into sink. Errors abort the query; rows
// already streamed are not rolled back.
func ExecSelect(sink output.Sink, cat catalog.Catalog, stmt *ast.SelectStmt) error {
	ctx, err := NewQueryContext(cat, stmt)
	if err != nil {
		return err
	}
	projs, headers := expandColumns(ctx, stmt)
	if err := sink.Output(headers); err != nil {
		return err
	}
	slog.Debug("executing query", "sql", format.String(stmt), "tables", len(ctx.Tables))
	if stmt.OrderBy != nil {
		return execOrdered(sink, cat, stmt)
	}
	return execLoop(sink, ctx, stmt, projs)
}

// expandColumns expands the projection list: each * becomes one column
// reference per (table, schema column) in participating-table order.
// The second return value is the header row: the bare column name for
// column references, the rendered expression otherwise.
func expandColumns(ctx *QueryContext, stmt *ast.SelectStmt) ([]ast.Expr, []string) {
	var projs []ast.Expr
	var headers []string
	for _, col := range stmt.Columns {
		switch c := col.(type) {
		case *ast.StarExpr:
			for pos, table := range ctx.Tables {
				qual := tableQualifier(stmt, pos)
				for _, schemaCol := range table.Schema {
					projs = append(projs, &ast.ColName{Table: qual, Name: schemaCol.Name})
					headers = append(headers, schemaCol.Name)
				}
			}
		case ast.Expr:
			projs = append(projs, c)
			headers = append(headers, headerName(c))
		}
	}
	return projs, headers
}

// tableQualifier names the table at pos the way expressions should
// reference it: its alias if one is registered, its name otherwise.
func tableQualifier(stmt *ast.SelectStmt, pos int) string {
	spec := stmt.From
	if pos > 0 {
		spec = stmt.Joins[pos-1].Table
	}
	if spec.Alias != "" {
		return spec.Alias
	}
	return spec.Name
}

func headerName(e ast.Expr) string {
	if col, ok := e.(*ast.ColName); ok {
		return col.Name
	}
	return format.String(e)
}

// execOrdered routes the query through a buffering sink: the statement
// re-executes with the ORDER BY expression appended as a synthetic
// trailing projection and ordering/limit/offset cleared, the buffered
// rows are stable-sorted on that synthetic column, offset and limit
// apply to the sorted rows, and the rows stream out without the
// synthetic column. The inner statement shares this statement's
// expression nodes, so aggregate accumulator keys stay valid.
func execOrdered(sink output.Sink, cat catalog.Catalog, stmt *ast.SelectStmt) error {
	inner := *stmt
	cols := make([]ast.SelectExpr, len(stmt.Columns), len(stmt.Columns)+1)
	copy(cols, stmt.Columns)
	inner.Columns = append(cols, stmt.OrderBy.Expr)
	inner.OrderBy = nil
	inner.Limit = nil
	inner.Offset = nil

	buf := output.NewBufferSink()
	if err := ExecSelect(buf, cat, &inner); err != nil {
		return err
	}

	rows := buf.Rows
	if len(rows) > 0 {
		rows = rows[1:] // drop the inner header row
	}
	desc := stmt.OrderBy.Desc
	slices.SortStableFunc(rows, func(a, b []string) int {
		cmp := strings.Compare(a[len(a)-1], b[len(b)-1])
		if desc {
			return -cmp
		}
		return cmp
	})

	if stmt.Offset != nil {
		if stmt.Offset.Count < len(rows) {
			rows = rows[stmt.Offset.Count:]
		} else {
			rows = nil
		}
	}
	if stmt.Limit != nil && stmt.Limit.Count < len(rows) {
		rows = rows[:stmt.Limit.Count]
	}

	for _, row := range rows {
		if err := sink.Output(row[:len(row)-1]); err != nil {
			return err
		}
	}
	return nil
}

// execLoop drives the cursor space over the joined tables, applying the
// join and WHERE predicates to every combination. Non-aggregated
// queries emit one row per passing combination; aggregated queries fold
// passing rows into accumulators and emit a single row at the end.
func execLoop(sink output.Sink, ctx *QueryContext, stmt *ast.SelectStmt, projs []ast.Expr) error {
	counts := make([]int, len(ctx.Tables))
	padded := make([]bool, len(ctx.Tables))
	for i, table := range ctx.Tables {
		counts[i] = table.Rows()
		if i > 0 {
			padded[i] = stmt.Joins[i-1].Type == ast.JoinLeft
		}
	}
	cs := newCursorSpace(counts, padded)
	env := &evalEnv{cols: projs, ctx: ctx, cursors: cs.cursors, aggs: AggregateResult{}}

	aggregated := false
	for _, proj := range projs {
		if hasAggregate(proj) {
			aggregated = true
			findAggregates(proj, env.aggs)
		}
	}

	offset := 0
	if stmt.Offset != nil {
		offset = stmt.Offset.Count
	}
	hasLimit := stmt.Limit != nil
	limit := 0
	if hasLimit {
		limit = stmt.Limit.Count
	}

	passed := 0
	emitted := 0
	folded := false
	var lastCursors []RowCursor

	if !cs.empty() {
		for {
			ok, err := passes(stmt, env, cs)
			if err != nil {
				return err
			}
			if ok {
				cs.markShown()
				if aggregated {
					for _, proj := range projs {
						if err := foldRow(proj, env); err != nil {
							return err
						}
					}
					lastCursors = append(lastCursors[:0], cs.cursors...)
					folded = true
				} else {
					passed++
					if passed > offset {
						if hasLimit && emitted >= limit {
							break
						}
						row, err := emitRow(projs, env)
						if err != nil {
							return err
						}
						if err := sink.Output(row); err != nil {
							return err
						}
						emitted++
					}
				}
			}
			if !cs.advance() {
				break
			}
		}
	}

	if aggregated {
		// Plain projections in an aggregated query read the last row
		// that passed the predicate; with no passing row their cells
		// are empty.
		if folded {
			copy(env.cursors, lastCursors)
		} else {
			for i := range env.cursors {
				env.cursors[i].Row = PadRow
			}
		}
		if offset >= 1 || (hasLimit && limit < 1) {
			return nil
		}
		row, err := emitRow(projs, env)
		if err != nil {
			return err
		}
		return sink.Output(row)
	}
	return nil
}

// passes evaluates every join condition and the WHERE clause for the
// current cursor combination. A join whose own table is padded skips
// its condition: the padded combination gates on the LEFT kind and the
// outer side's Shown flag instead. A CursorNoneError from a condition
// that reads some other padded table gates the same way; from WHERE it
// fails the predicate.
func passes(stmt *ast.SelectStmt, env *evalEnv, cs *cursorSpace) (bool, error) {
	for j, join := range stmt.Joins {
		if cs.cursors[j+1].Row == PadRow {
			if padAdmitted(stmt, cs, j+1) {
				continue
			}
			return false, nil
		}
		val, err := evalExpr(join.On, env)
		if err != nil {
			var cn *CursorNoneError
			if errors.As(err, &cn) {
				if padAdmitted(stmt, cs, cn.TablePos) {
					continue
				}
				return false, nil
			}
			return false, err
		}
		if !coerceBool(val) {
			return false, nil
		}
	}
	if stmt.Where != nil {
		val, err := evalExpr(stmt.Where, env)
		if err != nil {
			var cn *CursorNoneError
			if errors.As(err, &cn) {
				return false, nil
			}
			return false, err
		}
		return coerceBool(val), nil
	}
	return true, nil
}

// padAdmitted reports whether reading the padded cursor at pos gates
// the combination in: the join that binds that table is LEFT, and the
// outer side has not emitted for its current row.
func padAdmitted(stmt *ast.SelectStmt, cs *cursorSpace, pos int) bool {
	if pos < 1 || pos > len(stmt.Joins) {
		return false
	}
	if stmt.Joins[pos-1].Type != ast.JoinLeft {
		return false
	}
	return !cs.cursors[pos-1].Shown
}

// foldRow advances accumulators for one qualifying row. Padded cells
// contribute nothing.
func foldRow(proj ast.Expr, env *evalEnv) error {
	if err := aggregateExpr(proj, env); err != nil {
		var cn *CursorNoneError
		if errors.As(err, &cn) {
			return nil
		}
		return err
	}
	return nil
}

// emitRow evaluates every projection for the current cursors. Padded
// cells render empty.
func emitRow(projs []ast.Expr, env *evalEnv) ([]string, error) {
	row := make([]string, len(projs))
	for i, proj := range projs {
		val, err := evalExpr(proj, env)
		if err != nil {
			var cn *CursorNoneError
			if errors.As(err, &cn) {
				val = ""
			} else {
				return nil, err
			}
		}
		row[i] = val
	}
	return row, nil
}
