package table

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the single worksheet in exported workbooks.
const SheetName = "Tracks"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// workbookEncoder writes the table as an xlsx workbook with one sheet.
// Every cell is stored as a string; no type inference is applied.
type workbookEncoder struct{}

func (workbookEncoder) Encode(t *Table) ([]byte, error) {
	if !t.HasHeader() {
		return nil, ErrEmptyTable
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return nil, fmt.Errorf("open stream writer: %w", err)
	}

	writeRow := func(idx int, cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, idx)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(cells))
		for i, c := range cells {
			values[i] = c
		}
		return sw.SetRow(cell, values)
	}

	if err := writeRow(1, t.header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.rows {
		if err := writeRow(i+2, row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (workbookEncoder) Extension() string   { return "xlsx" }
func (workbookEncoder) ContentType() string { return xlsxContentType }
