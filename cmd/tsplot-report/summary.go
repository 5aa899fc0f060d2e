package main

import (
	"io"
	"math"
	"strconv"

	"git.unix.lgbt/diamondburned/tsplot"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return humanize.CommafWithDigits(v, 2)
}

// writeSummary writes one line per series of the table.
func writeSummary(w io.Writer, t *tsplot.Table) error {
	s := tsplot.Summarize(t)

	table := tablewriter.NewWriter(w)
	defer table.Close()

	table.Header("Series", "Latest", "Max", "Missing")
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	rows := make([][]string, len(s.Series))
	for i, series := range s.Series {
		rows[i] = []string{
			series.Name,
			formatValue(series.Latest),
			formatValue(series.Max),
			strconv.Itoa(series.Missing),
		}
	}

	if err := table.Bulk(rows); err != nil {
		return err
	}

	return table.Render()
}
