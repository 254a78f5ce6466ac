package tabular

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table holds the parsed content of one worksheet: the header row in its
// original order and the data rows as ordered column→value maps.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// Parse reads the first worksheet of an xlsx workbook. The first row is
// treated as the header; rows with no values at all are skipped.
func Parse(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	columns := make([]string, 0, len(rows[0]))
	for _, cell := range rows[0] {
		columns = append(columns, strings.TrimSpace(cell))
	}

	table := &Table{Columns: columns}
	for _, raw := range rows[1:] {
		if isEmptyRow(raw) {
			continue
		}
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			if i < len(raw) {
				row[col] = strings.TrimSpace(raw[i])
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// MissingColumns returns the required columns absent from the table, in the
// required order. Extra columns are tolerated.
func (t *Table) MissingColumns(required []string) []string {
	present := make(map[string]struct{}, len(t.Columns))
	for _, col := range t.Columns {
		present[col] = struct{}{}
	}
	var missing []string
	for _, col := range required {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// Values returns the distinct non-empty values of a column, in row order.
func (t *Table) Values(column string) []string {
	var values []string
	for _, row := range t.Rows {
		if v := row[column]; v != "" {
			values = append(values, v)
		}
	}
	return values
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
