package tabular

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseReadsHeaderAndRows(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"District", "Date", "Assets", "Liabilities"},
		{"District1", "2024-01-31", "1000", "400"},
		{"District1", "2024-02-29", "1100", "450"},
	})

	table, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"District", "Date", "Assets", "Liabilities"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "1000", table.Rows[0]["Assets"])
	assert.Equal(t, "2024-02-29", table.Rows[1]["Date"])
}

func TestParseSkipsEmptyRowsAndPadsShortOnes(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"District", "Date", "Revenue"},
		{"Sodo", "2024-01-31"},
		{"", "", ""},
		{"Sodo", "2024-02-29", "900"},
	})

	table, err := Parse(buf)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "", table.Rows[0]["Revenue"])
	assert.Equal(t, "900", table.Rows[1]["Revenue"])
}

func TestMissingColumns(t *testing.T) {
	table := &Table{Columns: []string{"District", "Date", "Extra"}}
	missing := table.MissingColumns([]string{"District", "Date", "Assets", "Equity"})
	assert.Equal(t, []string{"Assets", "Equity"}, missing)

	assert.Nil(t, table.MissingColumns([]string{"District"}))
}

func TestValues(t *testing.T) {
	table := &Table{Rows: []map[string]string{
		{"District": "Dilla"},
		{"District": ""},
		{"District": "Dilla"},
	}}
	assert.Equal(t, []string{"Dilla", "Dilla"}, table.Values("District"))
}
