package frame

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX decodes the first worksheet of an Office Open XML workbook.
// The first row is the header.
func ReadXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return tableFromRows(sheets[0], rows)
}

// ReadXLS decodes the first worksheet of a legacy BIFF workbook. encoding
// is passed to the reader for string cells; empty means UTF-8.
func ReadXLS(data []byte, encoding string) (*Table, error) {
	if encoding == "" {
		encoding = "utf-8"
	}

	wb, err := xls.OpenReader(bytes.NewReader(data), encoding)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if wb == nil {
		return nil, errors.New("open workbook: no workbook stream")
	}
	if wb.NumSheets() == 0 {
		return nil, ErrEmpty
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrEmpty
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		width := row.LastCol()
		if width == 0 && len(rows) > 0 {
			// Rows without a ROW record carry no extent; assume the header width.
			width = len(rows[0])
		}
		cells := make([]string, width)
		for c := range cells {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}
	return tableFromRows(sheet.Name, rows)
}

// sheetRow returns nil for rows the sheet never defined. WorkSheet.Row
// dereferences the row before checking that it exists.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

func tableFromRows(name string, rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	return &Table{Name: name, Columns: rows[0], Rows: rows[1:]}, nil
}
