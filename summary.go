package tsplot

import "math"

// Summary describes a table.
type Summary struct {
	Rows   int             `json:"rows"`
	First  string          `json:"first,omitempty"`
	Last   string          `json:"last,omitempty"`
	Series []SeriesSummary `json:"series"`
}

// SeriesSummary describes a column of a table. Latest and Max are NaN if the
// column has no values.
type SeriesSummary struct {
	Name string `json:"name"`
	// Latest is the last non-missing value.
	Latest float64 `json:"-"`
	Max    float64 `json:"-"`
	// Missing is the number of missing or infinite values.
	Missing int `json:"missing"`
}

// Summarize summarizes the table.
func Summarize(t *Table) Summary {
	s := Summary{
		Rows:   t.Len(),
		Series: make([]SeriesSummary, len(t.Columns)),
	}

	if t.Len() > 0 {
		s.First = t.Index[0]
		s.Last = t.Index[t.Len()-1]
	}

	for i, name := range t.Columns {
		values := cleanInf(t.Values[i], false)

		series := SeriesSummary{
			Name:   name,
			Latest: NaN,
			Max:    maxValue(values),
		}

		for _, v := range values {
			if math.IsNaN(v) {
				series.Missing++
				continue
			}
			series.Latest = v
		}

		s.Series[i] = series
	}

	return s
}
