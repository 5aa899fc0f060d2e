// Package report writes rendered charts as PNG files together with a static
// HTML page that shows them in order.
package report

import (
	"bytes"
	"html/template"
	"image"
	"image/png"
	"os"
	"path"
	"strconv"

	"git.unix.lgbt/diamondburned/tsplot"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

// ImagesDir is the directory inside the output directory that holds the
// charts.
const ImagesDir = "images"

// DefaultHTMLName is the default name of the HTML page.
const DefaultHTMLName = "report.html"

// DefaultScale is the number of HTML pixels per figure inch.
const DefaultScale = 40

var pageTemplate = template.Must(template.New("report").Parse(
	`<html><body>
{{range .Images}}<div><img src="{{.}}" width="{{$.Width}}" height="{{$.Height}}"></div>
{{end}}</body></html>`,
))

var minifier = minify.New()

func init() {
	minifier.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
	})
}

// Writer writes reports into a directory.
type Writer struct {
	Fs  afero.Fs
	Dir string
	// HTMLName is the name of the page inside Dir.
	HTMLName string
	// Width and Height are the image size on the page.
	Width  int
	Height int
	// Minify minifies the page.
	Minify bool
}

// NewWriter creates a writer for charts rendered with the given configuration.
func NewWriter(fs afero.Fs, dir string, cfg tsplot.Config) *Writer {
	return &Writer{
		Fs:       fs,
		Dir:      dir,
		HTMLName: DefaultHTMLName,
		Width:    int(cfg.FigureWidth * DefaultScale),
		Height:   int(cfg.FigureHeight * DefaultScale),
	}
}

type pageData struct {
	Images []string
	Width  int
	Height int
}

// Write replaces the images directory with the given charts, named by their
// position, and overwrites the page. The page may be left partially written if
// writing it fails.
func (w *Writer) Write(charts ...image.Image) error {
	imgDir := path.Join(w.Dir, ImagesDir)

	if err := w.Fs.RemoveAll(imgDir); err != nil {
		return errors.Wrap(err, "failed to clear images")
	}

	if err := w.Fs.MkdirAll(imgDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "failed to create images directory")
	}

	data := pageData{
		Images: make([]string, len(charts)),
		Width:  w.Width,
		Height: w.Height,
	}

	for i, chart := range charts {
		name := strconv.Itoa(i) + ".png"

		if err := w.writePNG(path.Join(imgDir, name), chart); err != nil {
			return errors.Wrapf(err, "chart %d", i)
		}

		data.Images[i] = ImagesDir + "/" + name
	}

	if err := w.writePage(data); err != nil {
		return errors.Wrap(err, "failed to write page")
	}

	return nil
}

func (w *Writer) writePNG(name string, img image.Image) error {
	f, err := w.Fs.Create(name)
	if err != nil {
		return errors.Wrap(err, "failed to create")
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrap(err, "failed to encode")
	}

	return f.Close()
}

func (w *Writer) writePage(data pageData) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return errors.Wrap(err, "failed to render")
	}

	page := buf.Bytes()

	if w.Minify {
		b, err := minifier.Bytes("text/html", page)
		if err != nil {
			return errors.Wrap(err, "failed to minify")
		}
		page = b
	}

	name := w.HTMLName
	if name == "" {
		name = DefaultHTMLName
	}

	return afero.WriteFile(w.Fs, path.Join(w.Dir, name), page, 0644)
}
