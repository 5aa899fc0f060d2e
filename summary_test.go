package tsplot

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	tbl := NewTable("A", "B")
	tbl.Append("2021-01-01", 1, NaN)
	tbl.Append("2021-01-02", 7, math.Inf(1))
	tbl.Append("2021-01-03", 3, NaN)

	s := Summarize(tbl)

	if s.Rows != 3 || s.First != "2021-01-01" || s.Last != "2021-01-03" {
		t.Fatalf("unexpected summary %+v", s)
	}

	a := s.Series[0]
	if a.Name != "A" || a.Latest != 3 || a.Max != 7 || a.Missing != 0 {
		t.Fatalf("unexpected A %+v", a)
	}

	b := s.Series[1]
	if !math.IsNaN(b.Latest) || !math.IsNaN(b.Max) || b.Missing != 3 {
		t.Fatalf("unexpected B %+v", b)
	}
}
