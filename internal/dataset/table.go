package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// StationColumn holds the monitoring station name in every data file.
const StationColumn = "station"

// NumericalColumns are the measured quantities in each station file.
var NumericalColumns = []string{"PM2.5", "PM10", "SO2", "NO2", "CO", "O3", "TEMP", "PRES", "DEWP", "RAIN", "WSPM"}

// Row maps column name to the raw cell value.
type Row map[string]string

// Table is one station's time series, loaded once and never mutated.
type Table struct {
	file    string
	header  []string
	records [][]string
	columns map[string]int
	frame   dataframe.DataFrame
}

func readTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseTable(filepath.Base(path), f)
}

func parseTable(name string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrMissingHeader
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[col] = i
	}
	stationIdx, ok := columns[StationColumn]
	if !ok {
		return nil, ErrMissingStationColumn
	}

	t := &Table{
		file:    name,
		header:  header,
		records: records[1:],
		columns: columns,
	}
	if len(t.records) == 0 {
		return t, nil
	}
	if strings.TrimSpace(t.records[0][stationIdx]) == "" {
		return nil, ErrBlankStation
	}

	types := make(map[string]series.Type)
	for _, col := range NumericalColumns {
		if _, ok := columns[col]; ok {
			types[col] = series.Float
		}
	}
	t.frame = dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(types),
	)
	if t.frame.Err != nil {
		return nil, fmt.Errorf("build frame: %w", t.frame.Err)
	}
	return t, nil
}

// File is the base name of the CSV file the table was read from.
func (t *Table) File() string {
	return t.file
}

// Header returns a copy of the column names in file order.
func (t *Table) Header() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.records)
}

// Row returns row i keyed by column name. ok is false when i is out of range.
func (t *Table) Row(i int) (Row, bool) {
	if i < 0 || i >= len(t.records) {
		return nil, false
	}
	row := make(Row, len(t.header))
	for j, col := range t.header {
		row[col] = t.records[i][j]
	}
	return row, true
}

// Head returns up to n leading rows.
func (t *Table) Head(n int) []Row {
	n = min(max(n, 0), len(t.records))
	rows := make([]Row, 0, n)
	for i := range n {
		row, _ := t.Row(i)
		rows = append(rows, row)
	}
	return rows
}

// HeadRecords returns up to n leading rows as cells in header order.
func (t *Table) HeadRecords(n int) [][]string {
	n = min(max(n, 0), len(t.records))
	out := make([][]string, n)
	for i := range n {
		out[i] = append([]string(nil), t.records[i]...)
	}
	return out
}

// Station returns the station value of the first row. ok is false when the
// table has no rows.
func (t *Table) Station() (string, bool) {
	if len(t.records) == 0 {
		return "", false
	}
	return t.records[0][t.columns[StationColumn]], true
}

// Floats returns a numerical column with missing cells as NaN.
func (t *Table) Floats(column string) ([]float64, error) {
	if !t.HasColumn(column) {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	if len(t.records) == 0 {
		return nil, nil
	}
	col := t.frame.Col(column)
	if col.Err != nil {
		return nil, fmt.Errorf("column %q: %w", column, col.Err)
	}
	return col.Float(), nil
}
