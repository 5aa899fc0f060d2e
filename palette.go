package tsplot

import (
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
)

// Cubehelix is a palette of N colors sampled evenly from Lo to Hi (both within
// [0, 1]) along Dave Green's cubehelix scheme, using the same parameters as
// matplotlib's "cubehelix" colormap.
type Cubehelix struct {
	Lo, Hi float64
	N      int
}

var _ palette.Palette = Cubehelix{}

const (
	helixStart    = 0.5
	helixRot      = -1.5
	helixHue      = 1.0
	helixGamma    = 1.0
	helixMaxValue = 255
)

// Colors implements palette.Palette.
func (h Cubehelix) Colors() []color.Color {
	if h.N <= 0 {
		return nil
	}

	colors := make([]color.Color, h.N)
	for i := range colors {
		x := h.Lo
		if h.N > 1 {
			x += (h.Hi - h.Lo) * float64(i) / float64(h.N-1)
		}
		colors[i] = helixAt(x)
	}

	return colors
}

func helixAt(x float64) color.RGBA {
	xg := math.Pow(x, helixGamma)
	a := helixHue * xg * (1 - xg) / 2
	phi := 2 * math.Pi * (helixStart/3 + helixRot*x)
	cos, sin := math.Cos(phi), math.Sin(phi)

	return color.RGBA{
		R: helixChannel(xg + a*(-0.14861*cos+1.78277*sin)),
		G: helixChannel(xg + a*(-0.29227*cos-0.90649*sin)),
		B: helixChannel(xg + a*(1.97294*cos)),
		A: helixMaxValue,
	}
}

func helixChannel(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	return uint8(math.Round(v * helixMaxValue))
}
