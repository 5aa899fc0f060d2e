// Package tsplot renders columns of a time series table into labeled line
// charts.
package tsplot

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
)

// ErrUnknownColumn is returned when a requested column is not in the table.
var ErrUnknownColumn = errors.New("unknown column")

// NaN is a float64 not-a-number constant. It marks a missing value.
var NaN = math.NaN()

// missingMarkers contains the cell strings that are read as a missing value.
var missingMarkers = map[string]struct{}{
	"":     {},
	"nan":  {},
	"na":   {},
	"n/a":  {},
	"null": {},
	"none": {},
}

// Table is a set of named series sharing one index. Rows are kept in insertion
// order, which is assumed to be chronological.
type Table struct {
	// Index contains the raw row labels, usually dates.
	Index []string
	// Columns contains the column names in file order.
	Columns []string
	// Values contains one slice per column. Every slice has len(Index)
	// values. Missing values are NaN.
	Values [][]float64
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{
		Columns: columns,
		Values:  make([][]float64, len(columns)),
	}
}

// Append appends a row. The number of values must match the number of columns.
func (t *Table) Append(label string, values ...float64) error {
	if len(values) != len(t.Columns) {
		return errors.Errorf(
			"row %q has %d values, expected %d", label, len(values), len(t.Columns))
	}

	t.Index = append(t.Index, label)
	for i, v := range values {
		t.Values[i] = append(t.Values[i], v)
	}

	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Index) }

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Column returns the values of the named column. The returned slice belongs to
// the table and must not be modified.
func (t *Table) Column(name string) ([]float64, error) {
	i := t.ColumnIndex(name)
	if i == -1 {
		return nil, errors.Wrapf(ErrUnknownColumn, "%q", name)
	}
	return t.Values[i], nil
}

// Times parses every index label as a date. Ambiguous numeric dates are read
// month first.
func (t *Table) Times() ([]time.Time, error) {
	times := make([]time.Time, len(t.Index))

	for i, label := range t.Index {
		tm, err := dateparse.ParseIn(strings.TrimSpace(label), time.UTC)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: invalid date %q", i, label)
		}
		times[i] = tm
	}

	return times, nil
}

// Table implements Source.
func (t *Table) Table() (*Table, error) { return t, nil }

// ReadCSV reads a table from comma-separated text. The first column is the
// index and the header row names the columns.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("missing header")
		}
		return nil, errors.Wrap(err, "failed to read header")
	}
	if len(header) < 2 {
		return nil, errors.Errorf("header has %d fields, need an index and a column", len(header))
	}

	columns := make([]string, len(header)-1)
	for i, name := range header[1:] {
		columns[i] = strings.TrimSpace(name)
	}

	t := NewTable(columns...)
	values := make([]float64, len(columns))

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "line %d", line)
		}

		for i, cell := range record[1:] {
			v, err := parseCell(cell)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d, column %q", line, columns[i])
			}
			values[i] = v
		}

		if err := t.Append(record[0], values...); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
	}

	return t, nil
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if _, ok := missingMarkers[strings.ToLower(cell)]; ok {
		return NaN, nil
	}

	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, errors.Errorf("invalid number %q", cell)
	}

	return v, nil
}

// CSVFile is a path to a CSV file. It implements Source.
type CSVFile string

// Table opens and reads the file.
func (path CSVFile) Table() (*Table, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open table")
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", string(path))
	}

	return t, nil
}

// Source is anything a table can be loaded from.
type Source interface {
	Table() (*Table, error)
}
