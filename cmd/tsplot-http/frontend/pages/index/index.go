package index

import (
	"io"
	"net/url"

	"git.unix.lgbt/diamondburned/tsplot"
	"git.unix.lgbt/diamondburned/tsplot/cmd/tsplot-http/frontend"
)

var index = frontend.Templater.Register("index", "pages/index/index.html")

// Options describes what the index page shows.
type Options struct {
	Title  string
	Source tsplot.Source
	Charts []tsplot.Request
	Config tsplot.Config
}

type renderData struct {
	Options
	Summary tsplot.Summary
	Error   error
}

// Width returns the width of a chart on the page.
func (r *renderData) Width() int { return int(r.Config.FigureWidth * 60) }

// Height returns the height of a chart on the page.
func (r *renderData) Height() int { return int(r.Config.FigureHeight * 60) }

// ChartURLs returns the chart URLs.
func (r *renderData) ChartURLs() []string {
	urls := make([]string, len(r.Options.Charts))
	for i, req := range r.Options.Charts {
		urls[i] = "chart.png?" + ChartQuery(req).Encode()
	}
	return urls
}

// ChartQuery encodes the request as chart.png parameters.
func ChartQuery(req tsplot.Request) url.Values {
	v := url.Values{"col": req.Columns}
	if req.Title != "" {
		v.Set("title", req.Title)
	}
	if req.YLabel != "" {
		v.Set("ylabel", req.YLabel)
	}
	if req.Log {
		v.Set("log", "1")
	}
	return v
}

// Render renders the index page.
func Render(w io.Writer, opts Options) {
	data := renderData{Options: opts}
	data.Summary, data.Error = frontend.Summarize(opts.Source)

	index.Execute(w, &data)
}
