// Package catalog holds tables materialized from CSV sources and the
// name lookup used during query execution.
package catalog

import (
	"fmt"
	"strings"
)

// Column describes one column of a table schema.
type Column struct {
	Name string
}

// Table is an immutable named table. Data is row-major: the cell at
// (row, col) lives at data[col + row*len(schema)].
type Table struct {
	Name   string
	Schema []Column
	Data   []string
}

// Rows returns the number of data rows.
func (t *Table) Rows() int {
	if len(t.Schema) == 0 {
		return 0
	}
	return len(t.Data) / len(t.Schema)
}

// Get returns the cell at (row, col), or false if the flat index
// col + row*len(Schema) falls outside Data. col is not checked against
// the schema width on its own.
func (t *Table) Get(row, col int) (string, bool) {
	idx := col + row*len(t.Schema)
	if idx < 0 || idx >= len(t.Data) {
		return "", false
	}
	return t.Data[idx], true
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Schema {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// MakeTable parses CSV source text into a table. The first non-empty
// line is the header; later empty lines are skipped; every data line
// must have the same cell count as the header. Cells are stored trimmed.
func MakeTable(name, src string) (*Table, error) {
	records, err := parseCSV(src)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV needs at least 1 line for the header")
	}
	schema := make([]Column, len(records[0]))
	for i, cell := range records[0] {
		schema[i] = Column{Name: cell}
	}
	var data []string
	for _, record := range records[1:] {
		if len(record) != len(schema) {
			return nil, fmt.Errorf("CSV needs the same number of columns as the header")
		}
		data = append(data, record...)
	}
	return &Table{Name: name, Schema: schema, Data: data}, nil
}

// parseCSV splits src into records. Lines are separated by \n; cells by
// commas with optional surrounding whitespace. A cell is either bare
// (containing no quote, comma or newline) or quoted with "…" (which may
// contain commas but not quotes or newlines). Empty lines yield no
// record.
func parseCSV(src string) ([][]string, error) {
	var records [][]string
	for lineNo, line := range strings.Split(src, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		record, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func parseLine(line string) ([]string, error) {
	var cells []string
	pos := 0
	for {
		cell, next, err := parseCell(line, pos)
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell)
		if next >= len(line) {
			return cells, nil
		}
		if line[next] != ',' {
			return nil, fmt.Errorf("unexpected character %q after cell", line[next])
		}
		pos = next + 1
	}
}

// parseCell scans one cell starting at pos and returns the trimmed cell
// value plus the position of the following separator (or end of line).
func parseCell(line string, pos int) (string, int, error) {
	for pos < len(line) && (line[pos] == ' ' || line[pos] == '\t') {
		pos++
	}
	if pos < len(line) && line[pos] == '"' {
		end := strings.IndexByte(line[pos+1:], '"')
		if end < 0 {
			return "", 0, fmt.Errorf("unterminated quoted cell")
		}
		cell := line[pos+1 : pos+1+end]
		pos += end + 2
		for pos < len(line) && (line[pos] == ' ' || line[pos] == '\t') {
			pos++
		}
		return strings.TrimSpace(cell), pos, nil
	}
	end := strings.IndexByte(line[pos:], ',')
	if end < 0 {
		return strings.TrimSpace(line[pos:]), len(line), nil
	}
	return strings.TrimSpace(line[pos : pos+end]), pos + end, nil
}
