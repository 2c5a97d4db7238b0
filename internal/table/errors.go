package table

import "errors"

var (
	// ErrMalformedInput is returned when raw text is empty or a row's cell
	// count differs from the header's.
	ErrMalformedInput = errors.New("malformed input")

	// ErrIndexOutOfRange is returned when a sort column does not exist.
	ErrIndexOutOfRange = errors.New("column index out of range")

	// ErrEmptyTable is returned when a table has no header row.
	ErrEmptyTable = errors.New("empty table: header row is missing")

	// ErrInvalidPageSize is returned when a page size is not positive.
	ErrInvalidPageSize = errors.New("page size must be positive")

	// ErrUnknownFormat is returned for an unsupported export format.
	ErrUnknownFormat = errors.New("unknown export format")

	// ErrNoTable is returned by Engine operations before any table is loaded.
	ErrNoTable = errors.New("no table loaded")
)
