package engine

import (
	"github.com/freeeve/csvql/ast"
	"github.com/freeeve/csvql/catalog"
)

// ColRef locates a column as (participating table position, column
// index). It is the canonical row-lookup token: cells are read as
// tables[TablePos].Get(cursor row, Col).
type ColRef struct {
	TablePos int
	Col      int
}

// QueryContext holds the tables participating in a query: the FROM
// table at position 0, then each joined table in source order, plus the
// alias registrations.
type QueryContext struct {
	Tables  []*catalog.Table
	aliases map[string]int
}

// NewQueryContext resolves the FROM and JOIN tables of stmt against the
// catalog and registers their aliases.
func NewQueryContext(cat catalog.Catalog, stmt *ast.SelectStmt) (*QueryContext, error) {
	ctx := &QueryContext{aliases: map[string]int{}}
	if err := ctx.addTable(cat, stmt.From); err != nil {
		return nil, err
	}
	for _, join := range stmt.Joins {
		if err := ctx.addTable(cat, join.Table); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

func (ctx *QueryContext) addTable(cat catalog.Catalog, spec *ast.TableSpec) error {
	table, ok := cat[spec.Name]
	if !ok {
		return &TableNotFoundError{Name: spec.Name}
	}
	ctx.Tables = append(ctx.Tables, table)
	if spec.Alias != "" {
		ctx.aliases[spec.Alias] = len(ctx.Tables) - 1
	}
	return nil
}

// FindCol resolves a column reference. A qualifier resolves first as an
// alias, then as a table name. Unqualified names must match exactly one
// participating table.
func (ctx *QueryContext) FindCol(col *ast.ColName) (ColRef, error) {
	if col.Table != "" {
		pos, ok := ctx.aliases[col.Table]
		if !ok {
			pos = -1
			for i, table := range ctx.Tables {
				if table.Name == col.Table {
					pos = i
					break
				}
			}
			if pos < 0 {
				return ColRef{}, &ColumnNotFoundError{Name: col.Table + "." + col.Name}
			}
		}
		idx := ctx.Tables[pos].ColumnIndex(col.Name)
		if idx < 0 {
			return ColRef{}, &ColumnNotFoundError{Name: col.Table + "." + col.Name}
		}
		return ColRef{TablePos: pos, Col: idx}, nil
	}

	found := ColRef{TablePos: -1}
	for pos, table := range ctx.Tables {
		if idx := table.ColumnIndex(col.Name); idx >= 0 {
			if found.TablePos >= 0 {
				return ColRef{}, &AmbiguousColumnError{Name: col.Name}
			}
			found = ColRef{TablePos: pos, Col: idx}
		}
	}
	if found.TablePos < 0 {
		return ColRef{}, &ColumnNotFoundError{Name: col.Name}
	}
	return found, nil
}
