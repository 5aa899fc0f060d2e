package handler

import (
	"bytes"
	"encoding/json"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"git.unix.lgbt/diamondburned/tsplot"
	"git.unix.lgbt/diamondburned/tsplot/cache"
	"git.unix.lgbt/diamondburned/tsplot/cmd/tsplot-http/frontend"
	"git.unix.lgbt/diamondburned/tsplot/cmd/tsplot-http/frontend/pages/errpage"
	"git.unix.lgbt/diamondburned/tsplot/cmd/tsplot-http/frontend/pages/index"
	"github.com/diamondburned/tmplutil"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
)

var minifier = minify.New()

func init() {
	minifier.Add("text/html", html.DefaultMinifier)
	minifier.AddFunc("text/css", css.Minify)
}

// Options configures the handler.
type Options struct {
	Title  string
	Source tsplot.Source
	// Charts are the charts linked from the index page.
	Charts []tsplot.Request
	// Cache is optional.
	Cache  *cache.Cache
	Config tsplot.Config
}

type handler struct {
	Options
	renderer *tsplot.Renderer
}

func New(opts Options) http.Handler {
	h := handler{
		Options:  opts,
		renderer: tsplot.NewRenderer(opts.Config),
	}

	r := chi.NewRouter()
	r.Mount("/static", http.StripPrefix("/static", frontend.MountStatic()))
	r.Group(func(r chi.Router) {
		r.Use(tmplutil.AlwaysFlush)
		r.Use(middleware.NoCache)
		r.Use(middleware.Compress(5))

		r.Get("/", h.root)
	})
	r.Get("/chart.png", h.chart)

	return r
}

type jsonError struct {
	Error string
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	for _, accept := range strings.Split(r.Header.Get("Accept"), ",") {
		switch strings.TrimSpace(accept) {
		case "application/json":
			w.Header().Set("Content-Type", "application/json; charset=UTF-8")
			frontend.WriteJSON(w, h.Source)
			return

		case "text/html":
			fallthrough
		default:
			w.Header().Set("Content-Type", "text/html; charset=UTF-8")

			w := minifier.Writer("text/html", w)
			defer w.Close()

			index.Render(w, index.Options{
				Title:  h.Title,
				Source: h.Source,
				Charts: h.Charts,
				Config: h.Config,
			})
			return
		}
	}
}

func (h *handler) chart(w http.ResponseWriter, r *http.Request) {
	req, err := ParseChartQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	req.Source = h.Source

	b, err := h.render(req, r.URL.Query())
	if err != nil {
		code := http.StatusInternalServerError
		switch errors.Cause(err) {
		case tsplot.ErrUnknownColumn, tsplot.ErrNoColumns:
			code = http.StatusBadRequest
		case tsplot.ErrNoData:
			code = http.StatusNotFound
		default:
			log.Println("failed to render chart:", err)
		}

		writeError(w, r, code, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.Write(b)
}

func (h *handler) render(req tsplot.Request, query url.Values) ([]byte, error) {
	if h.Cache != nil {
		key := cache.Key(h.sourceVersion(), query.Encode())
		return h.Cache.Render(h.renderer, key, req)
	}

	img, err := h.renderer.Render(req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "failed to encode")
	}

	return buf.Bytes(), nil
}

// sourceVersion returns a string that changes whenever the source's data may
// have changed.
func (h *handler) sourceVersion() string {
	if path, ok := h.Source.(tsplot.CSVFile); ok {
		if s, err := os.Stat(string(path)); err == nil {
			return string(path) + "@" + strconv.FormatInt(s.ModTime().UnixNano(), 10)
		}
	}
	return "static"
}

func writeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(jsonError{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=UTF-8")
	errpage.Respond(w, code, err)
}

// ParseChartQuery parses chart.png parameters. Columns are given as repeated or
// comma-separated col values.
func ParseChartQuery(q url.Values) (tsplot.Request, error) {
	var req tsplot.Request

	for _, col := range q["col"] {
		for _, name := range strings.Split(col, ",") {
			if name = strings.TrimSpace(name); name != "" {
				req.Columns = append(req.Columns, name)
			}
		}
	}

	if len(req.Columns) == 0 {
		return req, tsplot.ErrNoColumns
	}

	req.Title = q.Get("title")
	req.YLabel = q.Get("ylabel")

	if l := q.Get("log"); l != "" {
		v, err := strconv.ParseBool(l)
		if err != nil {
			return req, errors.Wrap(err, "invalid log")
		}
		req.Log = v
	}

	return req, nil
}
