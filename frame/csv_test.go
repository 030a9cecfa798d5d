package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		encoding string
		columns  []string
		rows     [][]string
	}{
		{
			name:    "header and records",
			data:    []byte("id,name\n1,Alpha\n2,Beta\n"),
			columns: []string{"id", "name"},
			rows:    [][]string{{"1", "Alpha"}, {"2", "Beta"}},
		},
		{
			name:    "byte order mark",
			data:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("id\n7\n")...),
			columns: []string{"id"},
			rows:    [][]string{{"7"}},
		},
		{
			name:    "ragged records",
			data:    []byte("a,b,c\n1,2\n1,2,3,4\n"),
			columns: []string{"a", "b", "c"},
			rows:    [][]string{{"1", "2"}, {"1", "2", "3", "4"}},
		},
		{
			name:    "header only",
			data:    []byte("a,b\n"),
			columns: []string{"a", "b"},
		},
		{
			name:     "latin1",
			data:     []byte("city\nS\xe3o Paulo\n"),
			encoding: "latin1",
			columns:  []string{"city"},
			rows:     [][]string{{"São Paulo"}},
		},
		{
			name:     "explicit utf-8",
			data:     []byte("city\nMünchen\n"),
			encoding: "UTF-8",
			columns:  []string{"city"},
			rows:     [][]string{{"München"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadCSV(tt.data, tt.encoding)
			require.NoError(t, err)
			assert.Equal(t, KindTable, table.Kind())
			assert.Equal(t, tt.columns, table.Columns)
			assert.Equal(t, tt.rows, table.Rows)
			assert.Equal(t, len(tt.rows), table.Len())
		})
	}
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(nil, "")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = ReadCSV([]byte("a\n1\n"), "no-such-charset")
	assert.Error(t, err)
}

func TestTable_Column(t *testing.T) {
	table, err := ReadCSV([]byte("id,name\n1,Alpha\n2\n"), "")
	require.NoError(t, err)

	names, ok := table.Column("name")
	require.True(t, ok)
	assert.Equal(t, []string{"Alpha", ""}, names)

	_, ok = table.Column("missing")
	assert.False(t, ok)
}
