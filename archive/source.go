package archive

import (
	"math"
	"time"

	"git.unix.lgbt/diamondburned/tsplot"
	"github.com/pkg/errors"
)

// Import stores every row of the table. The index labels are parsed as dates
// and missing values are skipped.
func (db *Database) Import(t *tsplot.Table) error {
	times, err := t.Times()
	if err != nil {
		return errors.Wrap(err, "failed to parse index")
	}

	rows := make([]Row, len(times))

	for i, tm := range times {
		values := make(map[string]float64, len(t.Columns))
		for j, col := range t.Columns {
			if v := t.Values[j][i]; !math.IsNaN(v) {
				values[col] = v
			}
		}

		rows[i] = NewRow(tm, values)
	}

	return db.Put(rows...)
}

// Source reads a range of the archive as a table. It implements tsplot.Source.
type Source struct {
	DB   *Database
	Opts IteratorOpts
	// Prec, if non-zero, averages rows into buckets of this length. Buckets
	// without rows are kept as missing values.
	Prec time.Duration
	// Layout is the time layout of the index labels. It defaults to
	// time.RFC3339.
	Layout string
}

// Table reads the rows into a table whose columns are the row keys in the order
// they are first seen.
func (s Source) Table() (*tsplot.Table, error) {
	it, err := s.DB.Iterator(s.Opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create iterator")
	}
	defer it.Close()

	rows := it.ReadAll()
	if err := it.Err(); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrUninitialized
	}

	if s.Prec > 0 {
		rows, err = bucketRows(rows, s.Prec)
		if err != nil {
			return nil, err
		}
	}

	layout := s.Layout
	if layout == "" {
		layout = time.RFC3339
	}

	var columns []string
	seen := map[string]int{}

	for _, row := range rows {
		for _, k := range row.Keys() {
			if _, ok := seen[k]; !ok {
				seen[k] = len(columns)
				columns = append(columns, k)
			}
		}
	}

	t := tsplot.NewTable(columns...)
	values := make([]float64, len(columns))

	for _, row := range rows {
		for i := range values {
			values[i] = tsplot.NaN
		}
		for k, v := range row.Values {
			values[seen[k]] = v
		}

		if err := t.Append(row.Time().Format(layout), values...); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// MaxBuckets is the number of buckets bucketRows always allows. Past that,
// it allows up to bucketsPerRow buckets for every row.
const (
	MaxBuckets    = 1 << 16
	bucketsPerRow = 4
)

// ErrTooManyBuckets is returned if the precision is too fine for the time span
// of the rows.
var ErrTooManyBuckets = errors.New("precision too fine for time span")

// bucketRows averages chronological rows into buckets of prec, starting at the
// first row. Each bucket is stamped with its start time.
func bucketRows(rows []Row, prec time.Duration) ([]Row, error) {
	sec := uint32(prec / time.Second)
	if sec == 0 {
		sec = 1
	}

	start := rows[0].time
	blen := int((rows[len(rows)-1].time-start)/sec) + 1

	limit := MaxBuckets
	if n := len(rows) * bucketsPerRow; n > limit {
		limit = n
	}
	if blen > limit {
		return nil, errors.Wrapf(ErrTooManyBuckets, "%s over %d rows needs %d buckets", prec, len(rows), blen)
	}

	sums := make([]map[string]float64, blen)
	counts := make([]map[string]int, blen)

	for _, row := range rows {
		ix := int((row.time - start) / sec)
		if sums[ix] == nil {
			sums[ix] = map[string]float64{}
			counts[ix] = map[string]int{}
		}
		for k, v := range row.Values {
			sums[ix][k] += v
			counts[ix][k]++
		}
	}

	buckets := make([]Row, blen)
	for i := range buckets {
		buckets[i].time = start + uint32(i)*sec

		if sums[i] == nil {
			continue
		}

		values := make(map[string]float64, len(sums[i]))
		for k, sum := range sums[i] {
			values[k] = sum / float64(counts[i][k])
		}
		buckets[i].Values = values
	}

	return buckets, nil
}
