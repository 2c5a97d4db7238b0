// Package table is the tabular data engine behind the track exporter.
//
// It turns raw delimited text into an immutable [Table], re-orders it with a
// stable column sort, slices it into pages and serializes it into the
// supported download formats. Nothing in this package performs I/O or logs;
// every operation is a pure transformation that returns a new value.
//
// # Pipeline
//
// The data flow is fixed:
//
//	current := Sort(Parse(raw))   // replaced wholesale on every fetch or sort
//	view    := Paginate(current)  // always computed over the sorted table
//	file    := Export(current)    // full table, current order, never a page
//
// [Engine] holds one current table together with its sort and pagination
// state and applies these steps in order.
//
// # Errors
//
// Failures are reported as wrapped sentinel errors so callers can use
// errors.Is:
//
//   - [ErrMalformedInput]: empty or ragged raw text
//   - [ErrIndexOutOfRange]: sort column outside the header
//   - [ErrEmptyTable]: a table without a header row
//
// # Delimiters
//
// Cells are split on a bare comma. Quoting is not supported, so round-trip
// fidelity only holds for cells without commas or line breaks.
package table
