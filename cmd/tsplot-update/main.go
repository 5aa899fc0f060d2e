package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"git.unix.lgbt/diamondburned/tsplot"
	"git.unix.lgbt/diamondburned/tsplot/archive"
	"git.unix.lgbt/diamondburned/tsplot/collect"
	"git.unix.lgbt/diamondburned/tsplot/internal/badgerlog"
	"github.com/pkg/errors"
	"maze.io/x/duration"
)

func main() {
	var (
		dbPath     string
		gcAge      string
		importPath string
		logLevel   = badgerlog.DefaultLevel.String()
	)

	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(),
			"Usage:")
		fmt.Fprintln(flag.CommandLine.Output(),
			"  "+filepath.Base(os.Args[0]), "-db path [flags...]")
		fmt.Fprintln(flag.CommandLine.Output(),
			"")
		fmt.Fprintln(flag.CommandLine.Output(),
			"Without -gc or -import, a sample of the host is added to the archive.")
		fmt.Fprintln(flag.CommandLine.Output(),
			"")
		fmt.Fprintln(flag.CommandLine.Output(),
			"Flags:")
		flag.PrintDefaults()
	}

	flag.StringVar(&gcAge, "gc", gcAge, "delete rows older than this, e.g. 30d")
	flag.StringVar(&importPath, "import", importPath, "import a CSV table into the archive")
	flag.StringVar(&dbPath, "db", dbPath, "badgerdb path")
	flag.StringVar(&logLevel, "badger-log", logLevel, "badger log level: none, error, warning, info or debug")
	flag.Parse()

	if dbPath == "" {
		log.Fatalln("missing -db flag; refer to -h.")
	}

	level, err := badgerlog.ParseLevel(logLevel)
	if err != nil {
		log.Fatalln(err)
	}
	badgerlog.DefaultLevel = level

	switch {
	case gcAge != "":
		err = gc(dbPath, gcAge)
	case importPath != "":
		err = importCSV(dbPath, importPath)
	default:
		err = update(dbPath)
	}

	if err != nil {
		log.Fatalln("unexpected error:", err)
	}
}

func update(dbPath string) error {
	row, err := collect.Sample()
	if err != nil {
		return errors.Wrap(err, "failed to take sample")
	}

	return withDB(dbPath, func(d *archive.Database) error {
		return errors.Wrap(d.Put(row), "failed to update")
	})
}

func importCSV(dbPath, csvPath string) error {
	t, err := tsplot.CSVFile(csvPath).Table()
	if err != nil {
		return err
	}

	return withDB(dbPath, func(d *archive.Database) error {
		if err := d.Import(t); err != nil {
			return errors.Wrap(err, "failed to import")
		}

		log.Println("imported", t.Len(), "rows")
		return nil
	})
}

func gc(dbPath, age string) error {
	d, err := duration.ParseDuration(age)
	if err != nil {
		return errors.Wrap(err, "invalid -gc")
	}

	return withDB(dbPath, func(db *archive.Database) error {
		return errors.Wrap(db.GC(time.Duration(d)), "failed to GC")
	})
}

func withDB(dbPath string, fn func(*archive.Database) error) error {
	d, err := archive.Open(dbPath, true)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}

	if err := fn(d); err != nil {
		d.Close()
		return err
	}

	if err := d.Close(); err != nil {
		return errors.Wrap(err, "failed to close")
	}

	return nil
}
