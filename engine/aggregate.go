package engine

import (
	"strconv"
	"strings"

	"github.com/freeeve/csvql/ast"
	"github.com/freeeve/csvql/visitor"
)

// AggregateResult maps a FuncExpr's parser-assigned id to its
// accumulated state. Keying by id keeps two aggregates in one
// projection apart, and survives re-projection of the statement.
type AggregateResult map[int]*AggregateEntry

// AggregateEntry is the running state for one aggregate call site.
type AggregateEntry struct {
	Count   int
	Sum     float64
	Min     float64
	Max     float64
	HasData bool
}

// fold adds one numeric observation.
func (e *AggregateEntry) fold(val float64) {
	e.Count++
	e.Sum += val
	if !e.HasData || val < e.Min {
		e.Min = val
	}
	if !e.HasData || val > e.Max {
		e.Max = val
	}
	e.HasData = true
}

// render produces the final cell for the named aggregate. With no
// qualifying rows, count and sum render their zero values; avg, min and
// max render the empty string.
func (e *AggregateEntry) render(name string) string {
	switch name {
	case "count":
		return strconv.Itoa(e.Count)
	case "sum":
		return formatNum(e.Sum)
	case "avg":
		if e.Count == 0 {
			return ""
		}
		return formatNum(e.Sum / float64(e.Count))
	case "min":
		if !e.HasData {
			return ""
		}
		return formatNum(e.Min)
	default: // max
		if !e.HasData {
			return ""
		}
		return formatNum(e.Max)
	}
}

// isAggregateName reports whether name (lowercased) is a true
// aggregate, as opposed to a scalar function.
func isAggregateName(name string) bool {
	switch name {
	case "count", "sum", "avg", "min", "max":
		return true
	}
	return false
}

// findAggregates collects every aggregate call site under node, keyed
// by id. The executor pre-registers them so aggregates over zero rows
// render their empty state instead of failing.
func findAggregates(node ast.Node, aggs AggregateResult) {
	visitor.Inspect(node, func(n ast.Node) bool {
		if fn, ok := n.(*ast.FuncExpr); ok {
			if isAggregateName(strings.ToLower(fn.Name)) {
				if _, exists := aggs[fn.ID]; !exists {
					aggs[fn.ID] = &AggregateEntry{}
				}
			}
		}
		return true
	})
}

// hasAggregate reports whether any aggregate call appears under node.
func hasAggregate(node ast.Node) bool {
	found := false
	visitor.Inspect(node, func(n ast.Node) bool {
		if fn, ok := n.(*ast.FuncExpr); ok && isAggregateName(strings.ToLower(fn.Name)) {
			found = true
		}
		return !found
	})
	return found
}

// entry returns the accumulator for an aggregate call site, creating
// it on first use.
func (env *evalEnv) entry(id int) *AggregateEntry {
	e, ok := env.aggs[id]
	if !ok {
		e = &AggregateEntry{}
		env.aggs[id] = e
	}
	return e
}

// aggregateExpr walks an expression for one qualifying row, advancing
// the accumulator of every aggregate call site it contains. Non-
// aggregate subtrees are not evaluated here; they are evaluated once
// against the final cursor snapshot when the single result row is
// emitted.
func aggregateExpr(expr ast.Expr, env *evalEnv) error {
	switch e := expr.(type) {
	case *ast.ColIdx:
		// The referenced projection folds on its own; folding it here
		// too would advance its accumulators twice per row.
		return nil

	case *ast.ParenExpr:
		return aggregateExpr(e.Expr, env)

	case *ast.BinaryExpr:
		if err := aggregateExpr(e.Left, env); err != nil {
			return err
		}
		return aggregateExpr(e.Right, env)

	case *ast.UnaryExpr:
		return aggregateExpr(e.Operand, env)

	case *ast.FuncExpr:
		return aggregateFunc(e, env)
	}
	return nil
}

func aggregateFunc(fn *ast.FuncExpr, env *evalEnv) error {
	name := strings.ToLower(fn.Name)
	switch name {
	case "count":
		// count(*) and count(expr) both count qualifying rows.
		if len(fn.Args) < 1 {
			return &InsufficientArgsError{Name: name}
		}
		env.entry(fn.ID).Count++
		return nil

	case "sum", "avg", "min", "max":
		arg, err := scalarArg(fn, name)
		if err != nil {
			return err
		}
		val, err := evalExpr(arg, env)
		if err != nil {
			return err
		}
		f, err := coerceF64(val)
		if err != nil {
			return err
		}
		env.entry(fn.ID).fold(f)
		return nil

	case "length", "upper", "lower":
		// Scalar functions carry no state; their arguments may still
		// contain aggregates.
		for _, arg := range fn.Args {
			if expr, ok := arg.(ast.Expr); ok {
				if err := aggregateExpr(expr, env); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return &UnknownFunctionError{Name: fn.Name}
}
