package tsplot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
)

const testCSV = `date,A,B
2021-03-01,1,5
2021-03-02,,5
2021-03-03,NaN,5
2021-03-04,4.5,n/a
`

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(testCSV))
	if err != nil {
		t.Fatal("failed to read:", err)
	}

	if tbl.Len() != 4 {
		t.Fatalf("expected 4 rows, got %d", tbl.Len())
	}

	if cols := strings.Join(tbl.Columns, ","); cols != "A,B" {
		t.Fatalf("unexpected columns %q", cols)
	}

	a, err := tbl.Column("A")
	if err != nil {
		t.Fatal("failed to get A:", err)
	}

	for i, expect := range []float64{1, NaN, NaN, 4.5} {
		if !sameValue(a[i], expect) {
			t.Errorf("A[%d]: expected %v, got %v", i, expect, a[i])
		}
	}

	if _, err := tbl.Column("C"); errors.Cause(err) != ErrUnknownColumn {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestReadCSVErrors(t *testing.T) {
	type test struct {
		name  string
		input string
		match string
	}

	var tests = []test{
		{"empty", "", "missing header"},
		{"index only", "date\n2021-01-01\n", "header"},
		{"bad number", "date,A\n2021-01-01,abc\n", `invalid number "abc"`},
		{"short row", "date,A,B\n2021-01-01,1\n", "line 2"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(test.input))
			if err == nil {
				t.Fatal("unexpected nil error")
			}
			if !strings.Contains(err.Error(), test.match) {
				t.Fatalf("error %q does not contain %q", err, test.match)
			}
		})
	}
}

func TestTableTimes(t *testing.T) {
	tbl := NewTable("A")
	tbl.Append("2021-03-01", 1)
	tbl.Append("3/2/2021", 2)

	times, err := tbl.Times()
	if err != nil {
		t.Fatal("failed to parse times:", err)
	}

	expect := []time.Time{
		time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC),
	}

	for i := range expect {
		if !times[i].Equal(expect[i]) {
			t.Errorf("row %d: expected %v, got %v", i, expect[i], times[i])
		}
	}

	tbl.Append("not a date", 3)
	if _, err := tbl.Times(); err == nil {
		t.Fatal("expected an error for a malformed date")
	}
}

func TestTableAppend(t *testing.T) {
	tbl := NewTable("A", "B")
	if err := tbl.Append("x", 1); err == nil {
		t.Fatal("expected an error for a short row")
	}
	if tbl.Len() != 0 {
		t.Fatal("short row was appended")
	}
}

func TestCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0644); err != nil {
		t.Fatal("failed to write csv:", err)
	}

	tbl, err := CSVFile(path).Table()
	if err != nil {
		t.Fatal("failed to load:", err)
	}
	if tbl.Len() != 4 {
		t.Fatalf("expected 4 rows, got %d", tbl.Len())
	}

	if _, err := CSVFile(path + ".missing").Table(); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
