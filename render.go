package tsplot

import (
	"image"
	"image/color"
	stddraw "image/draw"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	// ErrNoColumns is returned when a request names no columns.
	ErrNoColumns = errors.New("no columns requested")
	// ErrNoData is returned when the requested columns have no valid value.
	ErrNoData = errors.New("no valid data")
)

// Request describes a single chart.
type Request struct {
	Source  Source
	Columns []string
	// Title defaults to the column name if only one column is requested.
	Title  string
	YLabel string
	Log    bool
	// Style is the line style. The zero value uses DefaultStyle.
	Style Style
}

// Renderer draws charts into images.
type Renderer struct {
	cfg Config
}

// NewRenderer creates a new renderer with the given configuration.
func NewRenderer(cfg Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// Config returns the renderer's configuration.
func (r *Renderer) Config() Config { return r.cfg }

// chart holds everything computed from a request before drawing.
type chart struct {
	title  string
	ylabel string
	plot   *plot.Plot
}

// Render draws the requested chart into an RGBA image.
func (r *Renderer) Render(req Request) (*image.RGBA, error) {
	c, err := r.prepare(req)
	if err != nil {
		return nil, err
	}

	return r.rasterize(c), nil
}

func (r *Renderer) prepare(req Request) (*chart, error) {
	req.Columns = Columns(req.Columns...)
	if len(req.Columns) == 0 {
		return nil, ErrNoColumns
	}
	if req.Source == nil {
		return nil, errors.New("missing source")
	}

	style := req.Style.withDefaults()

	title := req.Title
	if title == "" && len(req.Columns) == 1 {
		title = req.Columns[0]
	}

	t, err := req.Source.Table()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load table")
	}

	series := make([][]float64, len(req.Columns))
	for i, name := range req.Columns {
		values, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		series[i] = cleanInf(values, false)
	}

	first := firstValid(series...)
	if first == -1 {
		return nil, errors.Wrapf(ErrNoData, "columns %q", req.Columns)
	}

	xticks, err := r.xTicks(t)
	if err != nil {
		return nil, errors.Wrap(err, "failed to make tick labels")
	}

	drawn := series
	if req.Log {
		drawn = make([][]float64, len(series))
		for i, values := range series {
			drawn[i] = cleanInf(values, true)
		}
	}

	n := t.Len()
	xmin := float64(first) - 0.5
	xmax := float64(n-1) + 0.5
	pct := Percentile(r.cfg.BandPercentile, series...)

	var ymin, ymax float64
	if req.Log {
		lo := minPositive(drawn...)
		hi := maxValue(drawn...)
		if math.IsNaN(lo) {
			return nil, errors.Wrap(ErrNoData, "no positive values for log scale")
		}
		span := math.Pow(hi/lo, r.cfg.LogSpan)
		if span <= 1 {
			span = 2
		}
		ymin, ymax = lo/span, hi*span
	} else {
		top := math.Max(maxValue(series...), pct)
		if math.IsNaN(top) || top <= 0 {
			top = 1
		}
		ymin, ymax = 0, top*1.05
	}

	p := plot.New()
	r.styleAxes(p)

	if pct > ymin {
		band, err := plotter.NewPolygon(plotter.XYs{
			{X: xmin, Y: ymin},
			{X: xmax, Y: ymin},
			{X: xmax, Y: pct},
			{X: xmin, Y: pct},
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to make band")
		}
		band.Color = r.cfg.BandColor
		band.LineStyle.Width = 0
		p.Add(band)
	}

	colors := r.colors(len(req.Columns), style)

	for i, values := range drawn {
		lineStyle := style.WithColor(colors[i])

		for _, seg := range segments(values) {
			line, err := plotter.NewLine(seg)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to draw %q", req.Columns[i])
			}
			line.LineStyle = draw.LineStyle{
				Color: lineStyle.LineColor,
				Width: lineStyle.LineWidth,
			}
			p.Add(line)
		}
	}

	if len(req.Columns) > 1 {
		labels, err := r.endLabels(req.Columns, drawn, colors, ymax-ymin)
		if err != nil {
			return nil, err
		}
		if labels != nil {
			p.Add(labels)
		}
	}

	// Axis limits are set last, since Add widens them to fit the data.
	p.X.Min, p.X.Max = xmin, xmax
	p.X.Tick.Marker = plot.ConstantTicks(xticks)
	p.Y.Min, p.Y.Max = ymin, ymax

	if req.Log {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	} else {
		p.Y.Tick.Marker = plot.ConstantTicks(integerTicks(ymax))
	}

	return &chart{
		title:  title,
		ylabel: req.YLabel,
		plot:   p,
	}, nil
}

// colors returns the line color of each series. A single series uses the
// style's color.
func (r *Renderer) colors(n int, style Style) []color.Color {
	if n == 1 {
		return []color.Color{style.LineColor}
	}

	return Cubehelix{
		Lo: r.cfg.ColorRange[0],
		Hi: r.cfg.ColorRange[1],
		N:  n,
	}.Colors()
}

func (r *Renderer) styleAxes(p *plot.Plot) {
	tickFont := font.From(r.cfg.Font, r.cfg.TickSize)

	for _, axis := range []*plot.Axis{&p.X, &p.Y} {
		axis.Tick.Label.Font = tickFont
		axis.Tick.Length = r.cfg.TickLength
	}

	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

// xTicks labels every row with its date.
func (r *Renderer) xTicks(t *Table) ([]plot.Tick, error) {
	times, err := t.Times()
	if err != nil {
		return nil, err
	}

	ticks := make([]plot.Tick, len(times))
	for i, tm := range times {
		ticks[i] = plot.Tick{
			Value: float64(i),
			Label: tm.Format(r.cfg.TickLayout),
		}
	}

	return ticks, nil
}

// endLabels places a label at the end of every line whose last value is set.
// Positions are chosen in column order so that no two labels are closer than
// the configured fraction of yrange.
func (r *Renderer) endLabels(
	names []string, series [][]float64, colors []color.Color, yrange float64) (*plotter.Labels, error) {

	placer := DefaultPlacer()
	placer.MinDist = r.cfg.LabelSeparation * math.Abs(yrange)
	placer.Inc = placer.MinDist / 100

	var (
		xys    plotter.XYs
		labels []string
		styles []text.Style
		priors []float64
	)

	for i, values := range series {
		last := len(values) - 1
		if last < 0 || math.IsNaN(values[last]) {
			continue
		}

		y := placer.Choose(values[last], priors)
		priors = append(priors, y)

		xys = append(xys, plotter.XY{X: float64(last) + 0.1, Y: y})
		labels = append(labels, names[i])
		styles = append(styles, text.Style{
			Color:   colors[i],
			Font:    font.From(r.cfg.Font, r.cfg.LabelSize),
			XAlign:  draw.XLeft,
			YAlign:  draw.YCenter,
			Handler: plot.DefaultTextHandler,
		})
	}

	if len(xys) == 0 {
		return nil, nil
	}

	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, errors.Wrap(err, "failed to make line labels")
	}
	l.TextStyle = styles

	return l, nil
}

// rasterize draws the chart onto a new image. The data area is fitted to the
// configured axes box; title and y-axis label are placed relative to it.
func (r *Renderer) rasterize(c *chart) *image.RGBA {
	w := vg.Length(r.cfg.FigureWidth) * vg.Inch
	h := vg.Length(r.cfg.FigureHeight) * vg.Inch

	canvas := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(r.cfg.DPI))
	fig := draw.New(canvas)

	axes := fitAxes(c.plot, fig, r.cfg.AxesBox)
	c.plot.Draw(axes)

	data := c.plot.DataCanvas(axes)

	if c.title != "" {
		fig.FillText(text.Style{
			Color:   color.Black,
			Font:    boldFont(font.From(r.cfg.Font, r.cfg.TitleSize)),
			XAlign:  draw.XLeft,
			YAlign:  draw.YCenter,
			Handler: plot.DefaultTextHandler,
		}, relPoint(data, r.cfg.TitlePos), c.title)
	}

	if c.ylabel != "" {
		fig.FillText(text.Style{
			Color:   color.Black,
			Font:    font.From(r.cfg.Font, r.cfg.LabelSize),
			XAlign:  draw.XCenter,
			YAlign:  draw.YCenter,
			Handler: plot.DefaultTextHandler,
		}, relPoint(data, r.cfg.YLabelPos), c.ylabel)
	}

	return toRGBA(canvas.Image())
}

// fitAxes returns the canvas that the plot should be drawn on for its data area
// to cover the box, given in fractions of the figure. The canvas never extends
// past the figure.
func fitAxes(p *plot.Plot, fig draw.Canvas, box [4]float64) draw.Canvas {
	size := fig.Size()

	inner := draw.Crop(fig,
		vg.Length(box[0])*size.X,
		-vg.Length(1-box[0]-box[2])*size.X,
		vg.Length(box[1])*size.Y,
		-vg.Length(1-box[1]-box[3])*size.Y,
	)

	// The axes take up the space between the canvas edge and the data area.
	data := p.DataCanvas(inner)
	outer := draw.Crop(inner,
		-(data.Min.X - inner.Min.X),
		inner.Max.X-data.Max.X,
		-(data.Min.Y - inner.Min.Y),
		inner.Max.Y-data.Max.Y,
	)

	outer.Min.X = vg.Length(math.Max(float64(outer.Min.X), float64(fig.Min.X)))
	outer.Min.Y = vg.Length(math.Max(float64(outer.Min.Y), float64(fig.Min.Y)))
	outer.Max.X = vg.Length(math.Min(float64(outer.Max.X), float64(fig.Max.X)))
	outer.Max.Y = vg.Length(math.Min(float64(outer.Max.Y), float64(fig.Max.Y)))

	return outer
}

func relPoint(c draw.Canvas, pos [2]float64) vg.Point {
	return vg.Point{
		X: c.Min.X + vg.Length(pos[0])*(c.Max.X-c.Min.X),
		Y: c.Min.Y + vg.Length(pos[1])*(c.Max.Y-c.Min.Y),
	}
}

func boldFont(f font.Font) font.Font {
	f.Weight = xfont.WeightBold
	return f
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}

	rgba := image.NewRGBA(img.Bounds())
	stddraw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, stddraw.Src)
	return rgba
}

// segments splits values into runs of consecutive non-NaN points, indexed by
// row. Runs of a single point are dropped, since a line needs two.
func segments(values []float64) []plotter.XYs {
	var segs []plotter.XYs
	var cur plotter.XYs

	for i, v := range values {
		if math.IsNaN(v) {
			if len(cur) > 1 {
				segs = append(segs, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, plotter.XY{X: float64(i), Y: v})
	}

	if len(cur) > 1 {
		segs = append(segs, cur)
	}

	return segs
}

// maxIntegerTicks caps the number of ticks integerTicks returns.
const maxIntegerTicks = 100

// integerTicks returns integer ticks from 0 up to the rounded top tick that
// covers max. The step is 2 if that tick is below 10, otherwise 5, scaled by
// powers of 10 until at most maxIntegerTicks remain.
func integerTicks(max float64) []plot.Tick {
	var majors []float64
	for _, t := range (plot.DefaultTicks{}).Ticks(0, max) {
		if !t.IsMinor() {
			majors = append(majors, t.Value)
		}
	}

	var top float64
	if len(majors) > 0 {
		top = majors[len(majors)-1]
	}
	if len(majors) > 1 && top < max {
		top += majors[1] - majors[0]
	}

	limit := math.Ceil(top)
	step := 5.0
	if limit < 10 {
		step = 2
	}
	for limit/step > maxIntegerTicks {
		step *= 10
	}

	var ticks []plot.Tick
	for v := 0.0; v < limit; v += step {
		ticks = append(ticks, plot.Tick{
			Value: v,
			Label: humanize.Comma(int64(v)),
		})
	}

	return ticks
}
