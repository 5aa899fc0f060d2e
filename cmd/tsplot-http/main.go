package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"git.unix.lgbt/diamondburned/tsplot"
	"git.unix.lgbt/diamondburned/tsplot/cache"
	"git.unix.lgbt/diamondburned/tsplot/cmd/tsplot-http/handler"
	"github.com/pkg/errors"
	"maze.io/x/duration"
)

// chartFlags collects repeated -chart flags.
type chartFlags []string

func (c *chartFlags) String() string { return strings.Join(*c, " ") }

func (c *chartFlags) Set(v string) error {
	*c = append(*c, v)
	return nil
}

var (
	csvPath   string
	cachePath string
	cacheAge  = "7d"
	title     string
	charts    chartFlags
)

func init() {
	p := func(v ...interface{}) { fmt.Fprintln(flag.CommandLine.Output(), v...) }
	flag.Usage = func() {
		p("Usage:")
		p("  tsplot-http -csv <table path> [-chart spec...] <http address>")
		p("")
		p("Flags:")
		flag.PrintDefaults()
	}

	flag.StringVar(&csvPath, "csv", csvPath, "CSV table to serve")
	flag.StringVar(&cachePath, "cache", cachePath, "bbolt database to cache charts in")
	flag.StringVar(&cacheAge, "cache-age", cacheAge, "drop cached charts older than this on startup")
	flag.StringVar(&title, "title", title, "page title, defaults to the table name")
	flag.Var(&charts, "chart", "chart spec shown on the index page, may be repeated")
	flag.Parse()
}

func main() {
	if csvPath == "" {
		log.Fatalln("missing -csv flag, see -h")
	}

	listen := flag.Arg(0)
	if listen == "" {
		log.Fatalln("missing listen addr, see -h")
	}

	opts := handler.Options{
		Title:  title,
		Source: tsplot.CSVFile(csvPath),
		Config: tsplot.DefaultConfig(),
	}

	if opts.Title == "" {
		opts.Title = strings.TrimSuffix(filepath.Base(csvPath), filepath.Ext(csvPath))
	}

	for _, spec := range charts {
		req, err := tsplot.ParseRequest(spec)
		if err != nil {
			log.Fatalln("invalid -chart:", err)
		}
		opts.Charts = append(opts.Charts, req)
	}

	if cachePath != "" {
		c, err := openCache(cachePath, cacheAge)
		if err != nil {
			log.Fatalln(err)
		}
		opts.Cache = c
	}

	err := http.ListenAndServe(listen, handler.New(opts))

	if opts.Cache != nil {
		opts.Cache.Close()
	}

	log.Fatalln("failed to serve:", err)
}

func openCache(path, age string) (*cache.Cache, error) {
	d, err := duration.ParseDuration(age)
	if err != nil {
		return nil, errors.Wrap(err, "invalid -cache-age")
	}

	c, err := cache.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open cache")
	}

	if err := c.GC(time.Duration(d)); err != nil {
		log.Println("failed to clean cache:", err)
	}

	return c, nil
}
