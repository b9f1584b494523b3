package geoprep

import (
	"encoding/csv"
	"io"
	"strconv"
)

// A Value is a table cell. Missing values have Valid set to false.
type Value struct {
	Float64 float64
	Valid   bool
}

// A Table is a column-oriented table of values.
type Table struct {
	columns     []string
	columnIndex map[string]int
	values      [][]Value
	rows        int
}

func newTable(rows int) *Table {
	return &Table{
		columnIndex: make(map[string]int),
		rows:        rows,
	}
}

// Columns returns the column names of t in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows in t.
func (t *Table) Len() int {
	return t.rows
}

// Column returns the values of the column called name.
func (t *Table) Column(name string) ([]Value, bool) {
	index, ok := t.columnIndex[name]
	if !ok {
		return nil, false
	}
	return t.values[index], true
}

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for j := range t.columns {
		row[j] = t.values[j][i]
	}
	return row
}

// setColumn sets the column called name, replacing any existing column with
// the same name in place.
func (t *Table) setColumn(name string, values []Value) {
	if index, ok := t.columnIndex[name]; ok {
		t.values[index] = values
		return
	}
	t.columnIndex[name] = len(t.columns)
	t.columns = append(t.columns, name)
	t.values = append(t.values, values)
}

// replace marks every value in the column called name that is equal to one
// of sentinels as missing.
func (t *Table) replace(name string, sentinels []float64) {
	values, ok := t.Column(name)
	if !ok {
		return
	}
	for i, value := range values {
		if !value.Valid {
			continue
		}
		for _, sentinel := range sentinels {
			if value.Float64 == sentinel {
				values[i] = Value{}
				break
			}
		}
	}
}

// WriteCSV writes t to w as CSV with a header row. Missing values are written
// as empty fields.
func (t *Table) WriteCSV(w io.Writer) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(t.columns); err != nil {
		return err
	}
	record := make([]string, len(t.columns))
	for i := range t.rows {
		for j, value := range t.Row(i) {
			if value.Valid {
				record[j] = strconv.FormatFloat(value.Float64, 'g', -1, 64)
			} else {
				record[j] = ""
			}
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}
