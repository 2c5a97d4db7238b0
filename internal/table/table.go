package table

import (
	"fmt"
	"slices"
)

// Delimiter separates cells within a row.
const Delimiter = ","

// LineBreak separates rows.
const LineBreak = "\n"

// Table is an immutable header row plus ordered data rows. Every data row has
// exactly as many cells as the header.
//
// The zero Table has no header; it is valid to hold but cannot be exported.
type Table struct {
	header []string
	rows   [][]string
}

// New builds a Table from a header and data rows. The input slices are copied.
func New(header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, ErrEmptyTable
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d",
				ErrMalformedInput, i+1, len(row), len(header))
		}
	}

	t := &Table{
		header: slices.Clone(header),
		rows:   make([][]string, len(rows)),
	}
	for i, row := range rows {
		t.rows[i] = slices.Clone(row)
	}
	return t, nil
}

// withRows returns a table sharing t's header with rows taken as-is.
// Callers must not retain rows.
func (t *Table) withRows(rows [][]string) *Table {
	return &Table{header: t.header, rows: rows}
}

// HasHeader reports whether the table carries a header row.
func (t *Table) HasHeader() bool {
	return t != nil && len(t.header) > 0
}

// Header returns a copy of the header row.
func (t *Table) Header() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.header)
}

// NumColumns returns the number of header cells.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.header)
}

// NumRows returns the number of data rows, excluding the header.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns a copy of data row i (0-based, header excluded).
func (t *Table) Row(i int) []string {
	return slices.Clone(t.rows[i])
}

// Rows returns a copy of all data rows.
func (t *Table) Rows() [][]string {
	if t == nil {
		return nil
	}
	return cloneRows(t.rows)
}

// Records returns the header followed by every data row.
func (t *Table) Records() [][]string {
	if !t.HasHeader() {
		return nil
	}
	out := make([][]string, 0, len(t.rows)+1)
	out = append(out, slices.Clone(t.header))
	return append(out, cloneRows(t.rows)...)
}

// Cell returns the value at data row i, column col, or "" when col is outside
// the row.
func (t *Table) Cell(i, col int) string {
	row := t.rows[i]
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = slices.Clone(row)
	}
	return out
}
