package engine

import (
	"strconv"
	"strings"

	"github.com/freeeve/csvql/ast"
	"github.com/freeeve/csvql/token"
)

// evalEnv carries everything expression evaluation needs: the expanded
// projection list (for ColIdx), the name-resolution context, the live
// cursors and the aggregate accumulators.
type evalEnv struct {
	cols    []ast.Expr
	ctx     *QueryContext
	cursors []RowCursor
	aggs    AggregateResult
	depth   int
}

// maxEvalDepth bounds ColIdx recursion so mutually referencing
// positions fail instead of recursing forever.
const maxEvalDepth = 32

// evalExpr evaluates an expression for the current cursor combination
// into a string. Boolean results render as "1"/"0".
func evalExpr(expr ast.Expr, env *evalEnv) (string, error) {
	switch e := expr.(type) {
	case *ast.ColName:
		ref, err := env.ctx.FindCol(e)
		if err != nil {
			return "", err
		}
		cursor := env.cursors[ref.TablePos]
		if cursor.Row == PadRow {
			return "", &CursorNoneError{TablePos: ref.TablePos}
		}
		cell, ok := env.ctx.Tables[ref.TablePos].Get(cursor.Row, ref.Col)
		if !ok {
			return "", &RowNotFoundError{Row: cursor.Row}
		}
		return cell, nil

	case *ast.ColIdx:
		col, err := env.projection(e)
		if err != nil {
			return "", err
		}
		env.depth++
		defer func() { env.depth-- }()
		return evalExpr(col, env)

	case *ast.StrLiteral:
		return e.Value, nil

	case *ast.ParenExpr:
		return evalExpr(e.Expr, env)

	case *ast.BinaryExpr:
		lhs, err := evalExpr(e.Left, env)
		if err != nil {
			return "", err
		}
		rhs, err := evalExpr(e.Right, env)
		if err != nil {
			return "", err
		}
		return applyBinary(e.Op, lhs, rhs)

	case *ast.UnaryExpr:
		val, err := evalExpr(e.Operand, env)
		if err != nil {
			return "", err
		}
		return boolStr(!coerceBool(val)), nil

	case *ast.FuncExpr:
		return evalFunc(e, env)
	}
	return "", &ColumnNotFoundError{Name: "?"}
}

// projection resolves a 1-based ColIdx against the expanded projection
// list.
func (env *evalEnv) projection(e *ast.ColIdx) (ast.Expr, error) {
	if e.Idx < 1 || e.Idx > len(env.cols) {
		return nil, &ColumnNotFoundError{Name: strconv.Itoa(e.Idx)}
	}
	if env.depth >= maxEvalDepth {
		return nil, &ColumnNotFoundError{Name: strconv.Itoa(e.Idx)}
	}
	return env.cols[e.Idx-1], nil
}

func applyBinary(op token.Token, lhs, rhs string) (string, error) {
	switch op {
	case token.PLUS, token.MINUS, token.ASTERISK, token.SLASH:
		l, err := coerceF64(lhs)
		if err != nil {
			return "", err
		}
		r, err := coerceF64(rhs)
		if err != nil {
			return "", err
		}
		var res float64
		switch op {
		case token.PLUS:
			res = l + r
		case token.MINUS:
			res = l - r
		case token.ASTERISK:
			res = l * r
		case token.SLASH:
			res = l / r
		}
		return formatNum(res), nil
	case token.EQ:
		return boolStr(lhs == rhs), nil
	case token.NEQ:
		return boolStr(lhs != rhs), nil
	case token.LT:
		return boolStr(lhs < rhs), nil
	case token.GT:
		return boolStr(lhs > rhs), nil
	case token.LTE:
		return boolStr(lhs <= rhs), nil
	case token.GTE:
		return boolStr(lhs >= rhs), nil
	case token.AND:
		return boolStr(coerceBool(lhs) && coerceBool(rhs)), nil
	case token.OR:
		return boolStr(coerceBool(lhs) || coerceBool(rhs)), nil
	}
	return "", &UnknownFunctionError{Name: op.String()}
}

// evalFunc evaluates a function call in scalar context. Aggregates read
// their accumulated state; calling one with no accumulated state is an
// error.
func evalFunc(fn *ast.FuncExpr, env *evalEnv) (string, error) {
	name := strings.ToLower(fn.Name)
	switch name {
	case "length", "upper", "lower":
		arg, err := scalarArg(fn, name)
		if err != nil {
			return "", err
		}
		val, err := evalExpr(arg, env)
		if err != nil {
			return "", err
		}
		switch name {
		case "length":
			return strconv.Itoa(len(val)), nil
		case "upper":
			return strings.ToUpper(val), nil
		default:
			return strings.ToLower(val), nil
		}

	case "count", "sum", "avg", "min", "max":
		entry, ok := env.aggs[fn.ID]
		if !ok {
			return "", &AggregateCallError{Name: name}
		}
		return entry.render(name), nil
	}
	return "", &UnknownFunctionError{Name: fn.Name}
}

// scalarArg returns the single expression argument of a scalar
// function.
func scalarArg(fn *ast.FuncExpr, name string) (ast.Expr, error) {
	if len(fn.Args) < 1 {
		return nil, &InsufficientArgsError{Name: name}
	}
	arg, ok := fn.Args[0].(ast.Expr)
	if !ok {
		return nil, &DisallowedWildcardError{Name: name}
	}
	return arg, nil
}

// coerceBool interprets a cell as a boolean: "1" and any casing of
// "true" are true, everything else is false.
func coerceBool(val string) bool {
	return val == "1" || strings.EqualFold(val, "true")
}

// coerceF64 interprets a cell as a number.
func coerceF64(val string) (float64, error) {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, &CoerceError{From: "string", To: "number"}
	}
	return f, nil
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
