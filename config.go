package tsplot

import (
	"image/color"

	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
)

// Config describes the figure layout. It is shared by every chart a Renderer
// draws and is never modified while rendering.
type Config struct {
	// FigureWidth and FigureHeight are the figure size in inches.
	FigureWidth  float64
	FigureHeight float64
	// DPI is the raster resolution in dots per inch.
	DPI int
	// AxesBox is the left, bottom, width and height of the data area as
	// fractions of the figure.
	AxesBox [4]float64

	// Font is the typeface used for all text.
	Font      font.Font
	TitleSize vg.Length
	LabelSize vg.Length
	TickSize  vg.Length
	// TickLength is the length of the tick marks.
	TickLength vg.Length

	// TitlePos and YLabelPos are positions in fractions of the data area.
	TitlePos  [2]float64
	YLabelPos [2]float64

	// BandPercentile is the percentile the reference band is shaded up to.
	BandPercentile float64
	BandColor      color.Color
	// LabelSeparation is the minimum distance between two end-of-line labels
	// as a fraction of the y-axis range.
	LabelSeparation float64
	// ColorRange is the range of the cubehelix palette that multiple series
	// are colored from.
	ColorRange [2]float64
	// TickLayout is the time layout of the x tick labels.
	TickLayout string
	// LogSpan is the log-space margin added around the data in log scale.
	LogSpan float64
}

// DefaultConfig returns the default 16x9 inch figure configuration.
func DefaultConfig() Config {
	return Config{
		FigureWidth:  16,
		FigureHeight: 9,
		DPI:          100,
		AxesBox:      [4]float64{0.25, 0.1, 0.65, 0.8},

		Font:       font.Font{Typeface: "Liberation", Variant: "Sans"},
		TitleSize:  vg.Points(25),
		LabelSize:  vg.Points(20),
		TickSize:   vg.Points(15),
		TickLength: vg.Points(10),

		TitlePos:  [2]float64{0.05, 0.94},
		YLabelPos: [2]float64{-0.2, 0.5},

		BandPercentile:  90,
		BandColor:       color.NRGBA{R: 0xD3, G: 0xD3, B: 0xD3, A: 0x59}, // lightgrey, 35%
		LabelSeparation: 0.05,
		ColorRange:      [2]float64{0.05, 0.76},
		TickLayout:      "1/02",
		LogSpan:         0.05,
	}
}

// PixelSize returns the size of the rendered image.
func (c Config) PixelSize() (w, h int) {
	return int(c.FigureWidth*float64(c.DPI) + 0.5), int(c.FigureHeight*float64(c.DPI) + 0.5)
}

// Style is the line style of a chart. It is passed by value with every
// request; unset fields fall back to DefaultStyle.
type Style struct {
	LineWidth vg.Length
	LineColor color.Color
}

// DefaultStyle returns a 4pt dark slate blue line.
func DefaultStyle() Style {
	return Style{
		LineWidth: vg.Points(4),
		LineColor: color.RGBA{R: 0x48, G: 0x3D, B: 0x8B, A: 0xFF},
	}
}

// withDefaults fills the unset fields from DefaultStyle.
func (s Style) withDefaults() Style {
	def := DefaultStyle()
	if s.LineWidth == 0 {
		s.LineWidth = def.LineWidth
	}
	if s.LineColor == nil {
		s.LineColor = def.LineColor
	}
	return s
}

// WithColor returns a copy of the style with the given color.
func (s Style) WithColor(c color.Color) Style {
	s.LineColor = c
	return s
}
