package table

import (
	"fmt"
	"slices"
	"strings"
)

// Sort returns a copy of t with data rows ordered by column col. Comparison
// is case-insensitive on the cell string. The sort is stable in both
// directions: rows that compare equal keep their relative order. The header
// is never moved and t is not modified.
func Sort(t *Table, col int, ascending bool) (*Table, error) {
	if !t.HasHeader() {
		return nil, ErrEmptyTable
	}
	if col < 0 || col >= t.NumColumns() {
		return nil, fmt.Errorf("%w: column %d, table has %d columns",
			ErrIndexOutOfRange, col, t.NumColumns())
	}

	type keyed struct {
		key string
		row []string
	}
	items := make([]keyed, len(t.rows))
	for i, row := range t.rows {
		items[i] = keyed{key: sortKey(row, col), row: slices.Clone(row)}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		if ascending {
			return strings.Compare(a.key, b.key)
		}
		return strings.Compare(b.key, a.key)
	})

	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = it.row
	}
	return t.withRows(rows), nil
}

// sortKey is the lower-cased cell value, or "" when the row is short.
func sortKey(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.ToLower(row[col])
}

// SortState records the column and direction of the last sort. The zero
// value means the table has not been sorted.
type SortState struct {
	Column    int  `json:"column"`
	Ascending bool `json:"ascending"`
	Active    bool `json:"active"`
}

// Next returns the state after the user selects col: re-selecting the active
// column flips the direction, any other column starts ascending.
func (s SortState) Next(col int) SortState {
	if s.Active && s.Column == col {
		return SortState{Column: col, Ascending: !s.Ascending, Active: true}
	}
	return SortState{Column: col, Ascending: true, Active: true}
}

// Indicator returns the header marker for col.
func (s SortState) Indicator(col int) string {
	if !s.Active || s.Column != col {
		return ""
	}
	if s.Ascending {
		return "▲"
	}
	return "▼"
}

// Direction returns "asc" or "desc", or "" when inactive.
func (s SortState) Direction() string {
	switch {
	case !s.Active:
		return ""
	case s.Ascending:
		return "asc"
	default:
		return "desc"
	}
}
