package frontend

import (
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"io/fs"
	"log"
	"math"
	"net/http"

	"git.unix.lgbt/diamondburned/tsplot"
	"github.com/diamondburned/tmplutil"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

//go:embed static pages
var webFS embed.FS

var Templater = tmplutil.Templater{
	FileSystem: webFS,
	Includes: map[string]string{
		"rawcss": "static/style.css",
	},
	Functions: template.FuncMap{
		"number": formatNumber,
	},
}

func init() {
	tmplutil.Preregister(&Templater)
}

// MountStatic mounts a static HTTP handler.
func MountStatic() http.Handler {
	sub, err := fs.Sub(webFS, "static")
	if err != nil {
		log.Panicln("failed to get static:", err)
	}

	return http.FileServer(http.FS(sub))
}

// formatNumber formats a value with thousands separators, or a dash if it is
// missing.
func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return "–"
	}
	return humanize.CommafWithDigits(v, 2)
}

// Summarize loads the table from the source and summarizes it.
func Summarize(src tsplot.Source) (tsplot.Summary, error) {
	t, err := src.Table()
	if err != nil {
		return tsplot.Summary{}, errors.Wrap(err, "failed to load table")
	}

	return tsplot.Summarize(t), nil
}

// jsonSummary is Summary with missing values as null.
type jsonSummary struct {
	tsplot.Summary
	Series []jsonSeries `json:"series"`
}

type jsonSeries struct {
	Name    string   `json:"name"`
	Latest  *float64 `json:"latest"`
	Max     *float64 `json:"max"`
	Missing int      `json:"missing"`
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// WriteJSON writes the table summary as JSON. Errors are logged into stderr.
func WriteJSON(w io.Writer, src tsplot.Source) {
	s, err := Summarize(src)
	if err != nil {
		log.Println("failed to write JSON:", err)
		return
	}

	out := jsonSummary{
		Summary: s,
		Series:  make([]jsonSeries, len(s.Series)),
	}
	for i, series := range s.Series {
		out.Series[i] = jsonSeries{
			Name:    series.Name,
			Latest:  nullable(series.Latest),
			Max:     nullable(series.Max),
			Missing: series.Missing,
		}
	}

	json.NewEncoder(w).Encode(out)
}
