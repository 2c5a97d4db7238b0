package table

import (
	"fmt"
	"strings"
)

// Parse converts raw delimited text into a Table. The first line is the
// header; every following line is a data row.
//
// Parsing is strict: a row whose cell count differs from the header's is
// rejected with ErrMalformedInput instead of being padded or truncated.
// Leading and trailing blank lines, including lines of only whitespace, are
// dropped. Cells are not trimmed and quoting is not interpreted. Line numbers
// in errors refer to the raw text.
func Parse(raw string) (*Table, error) {
	lines, first := splitLines(raw)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no lines", ErrMalformedInput)
	}

	header := strings.Split(lines[0], Delimiter)
	rows := make([][]string, 0, len(lines)-1)
	for i, line := range lines[1:] {
		cells := strings.Split(line, Delimiter)
		if len(cells) != len(header) {
			return nil, fmt.Errorf("%w: line %d has %d cells, header has %d",
				ErrMalformedInput, first+i+1, len(cells), len(header))
		}
		rows = append(rows, cells)
	}

	return &Table{header: header, rows: rows}, nil
}

// splitLines splits on LineBreak, treating CRLF as a single break, and trims
// blank lines from both ends. It returns the 1-based number of the first kept
// line.
func splitLines(raw string) ([]string, int) {
	lines := strings.Split(raw, LineBreak)
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	start, end := 0, len(lines)
	for start < end && isBlank(lines[start]) {
		start++
	}
	for end > start && isBlank(lines[end-1]) {
		end--
	}
	return lines[start:end], start + 1
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
