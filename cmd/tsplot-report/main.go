package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.unix.lgbt/diamondburned/tsplot"
	"git.unix.lgbt/diamondburned/tsplot/archive"
	"git.unix.lgbt/diamondburned/tsplot/report"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"maze.io/x/duration"
)

// chartFlags collects repeated -chart flags.
type chartFlags []string

func (c *chartFlags) String() string { return strings.Join(*c, " ") }

func (c *chartFlags) Set(v string) error {
	*c = append(*c, v)
	return nil
}

func main() {
	var (
		csvPath  string
		dbPath   string
		since    string
		prec     string
		outDir   = "."
		htmlName = report.DefaultHTMLName
		minify   bool
		summary  bool
		charts   chartFlags
	)

	flag.Usage = func() {
		p := func(v ...interface{}) { fmt.Fprintln(flag.CommandLine.Output(), v...) }
		p("Usage:")
		p("  "+filepath.Base(os.Args[0]), "(-csv file | -db path) -chart spec [-chart spec...] [flags...]")
		p("")
		p("Chart specs are written as cols[;title=Title][;ylabel=Label][;log], where")
		p("cols is a comma-separated list of columns.")
		p("")
		p("Flags:")
		flag.PrintDefaults()
	}

	flag.StringVar(&csvPath, "csv", csvPath, "CSV table to read")
	flag.StringVar(&dbPath, "db", dbPath, "badgerdb archive to read instead of a CSV table")
	flag.StringVar(&since, "since", since, "only read archive rows this long ago, e.g. 1w")
	flag.StringVar(&prec, "prec", prec, "average archive rows over this duration, e.g. 1d")
	flag.StringVar(&outDir, "out", outDir, "output directory")
	flag.StringVar(&htmlName, "html", htmlName, "name of the HTML page")
	flag.BoolVar(&minify, "minify", minify, "minify the HTML page")
	flag.BoolVar(&summary, "summary", summary, "print a summary of every series to stdout")
	flag.Var(&charts, "chart", "chart spec, may be repeated")
	flag.Parse()

	if (csvPath == "") == (dbPath == "") {
		log.Fatalln("exactly one of -csv or -db is required; refer to -h.")
	}

	if len(charts) == 0 {
		log.Fatalln("missing -chart flag; refer to -h.")
	}

	var err error
	if csvPath != "" {
		err = run(tsplot.CSVFile(csvPath), charts, outDir, htmlName, minify, summary)
	} else {
		err = runArchive(dbPath, since, prec, charts, outDir, htmlName, minify, summary)
	}

	if err != nil {
		log.Fatalln("unexpected error:", err)
	}
}

// runArchive runs on the archive at dbPath. The archive is closed before
// returning.
func runArchive(dbPath, since, prec string, specs []string, outDir, htmlName string, minify, summary bool) error {
	d, err := archive.Open(dbPath, false)
	if err != nil {
		return errors.Wrap(err, "failed to open archive")
	}
	defer d.Close()

	src, err := archiveSource(d, since, prec)
	if err != nil {
		return err
	}

	return run(src, specs, outDir, htmlName, minify, summary)
}

func archiveSource(d *archive.Database, since, prec string) (archive.Source, error) {
	src := archive.Source{DB: d}

	if since != "" {
		dura, err := duration.ParseDuration(since)
		if err != nil {
			return src, errors.Wrap(err, "invalid -since")
		}
		src.Opts.To = time.Now().Add(-time.Duration(dura))
	}

	if prec != "" {
		dura, err := duration.ParseDuration(prec)
		if err != nil {
			return src, errors.Wrap(err, "invalid -prec")
		}
		src.Prec = time.Duration(dura)
	}

	return src, nil
}

func run(src tsplot.Source, specs []string, outDir, htmlName string, minify, summary bool) error {
	// Load the table once for all charts.
	t, err := src.Table()
	if err != nil {
		return errors.Wrap(err, "failed to load table")
	}

	if summary {
		if err := writeSummary(os.Stdout, t); err != nil {
			return errors.Wrap(err, "failed to write summary")
		}
	}

	cfg := tsplot.DefaultConfig()
	r := tsplot.NewRenderer(cfg)

	images := make([]image.Image, len(specs))

	for i, spec := range specs {
		req, err := tsplot.ParseRequest(spec)
		if err != nil {
			return err
		}
		req.Source = t

		img, err := r.Render(req)
		if err != nil {
			return errors.Wrapf(err, "failed to render chart %q", spec)
		}

		images[i] = img
		log.Println("rendered", spec)
	}

	w := report.NewWriter(afero.NewOsFs(), outDir, cfg)
	w.HTMLName = htmlName
	w.Minify = minify

	if err := w.Write(images...); err != nil {
		return errors.Wrap(err, "failed to write report")
	}

	log.Println("wrote", filepath.Join(outDir, htmlName))
	return nil
}
