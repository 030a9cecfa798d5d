package frame

import (
	"testing"

	"github.com/gobeaver/datafy/internal/biff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	data := workbook(t, [][]any{
		{"station", "level"},
		{"A1", 3},
		{"B2", 4.5},
	})

	table, err := ReadXLSX(data)
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", table.Name)
	assert.Equal(t, []string{"station", "level"}, table.Columns)
	assert.Equal(t, [][]string{{"A1", "3"}, {"B2", "4.5"}}, table.Rows)
}

func TestReadXLSX_EmptySheet(t *testing.T) {
	_, err := ReadXLSX(workbook(t, nil))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestReadXLSX_NotAWorkbook(t *testing.T) {
	_, err := ReadXLSX([]byte("id,name\n1,a\n"))
	assert.Error(t, err)
}

func legacyWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	data, err := biff.Workbook("Levels", rows)
	require.NoError(t, err)
	return data
}

func TestReadXLS(t *testing.T) {
	data := legacyWorkbook(t, [][]any{
		{"station", "level"},
		{"A1", 3},
		{"B2", 4.5},
	})

	table, err := ReadXLS(data, "")
	require.NoError(t, err)
	assert.Equal(t, "Levels", table.Name)
	assert.Equal(t, []string{"station", "level"}, table.Columns)
	assert.Equal(t, [][]string{{"A1", "3"}, {"B2", "4.5"}}, table.Rows)
}

func TestReadXLS_MissingRow(t *testing.T) {
	data := legacyWorkbook(t, [][]any{
		{"station", "level"},
		{},
		{"C3", 7},
	})

	table, err := ReadXLS(data, "utf-8")
	require.NoError(t, err)
	assert.Equal(t, []string{"station", "level"}, table.Columns)
	assert.Equal(t, [][]string{nil, {"C3", "7"}}, table.Rows)
}

func TestReadXLS_NotAWorkbook(t *testing.T) {
	_, err := ReadXLS([]byte("id,name\n1,a\n"), "")
	assert.Error(t, err)
}
