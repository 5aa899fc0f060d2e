package tsplot

import "math"

// Placer nudges label positions apart so that no two labels are closer than
// MinDist.
type Placer struct {
	// MinDist is the minimum distance between two positions.
	MinDist float64
	// Inc is the step the position is moved by on every iteration. A zero Inc
	// is a hundredth of MinDist.
	Inc float64
	// MaxIter caps the number of steps. The last candidate is returned once it
	// is reached. A zero MaxIter allows enough steps to clear every prior.
	MaxIter int
}

// DefaultPlacer returns a Placer with a minimum distance of 0.3 and a step of
// 0.01.
func DefaultPlacer() Placer {
	return Placer{
		MinDist: 0.3,
		Inc:     0.01,
		MaxIter: 100000,
	}
}

// ChooseY returns a position at least minDist away from every prior, starting
// from pos and using the default step.
func ChooseY(pos float64, priors []float64, minDist float64) float64 {
	p := DefaultPlacer()
	p.MinDist = minDist
	return p.Choose(pos, priors)
}

// Choose returns pos moved away from the closest prior until it is at least
// MinDist away from all priors. pos is returned unchanged if there are no
// priors or if it is NaN.
func (p Placer) Choose(pos float64, priors []float64) float64 {
	if len(priors) == 0 || math.IsNaN(pos) {
		return pos
	}

	closest, closestIx := nearest(pos, priors)
	if closestIx == -1 {
		return pos
	}

	inc := p.Inc
	if inc <= 0 {
		inc = p.MinDist / 100
	}
	if inc <= 0 {
		return pos
	}

	maxIter := p.MaxIter
	if maxIter <= 0 {
		// Moving one way, pos passes at most 2*MinDist per prior.
		maxIter = int(math.Ceil(float64(2*len(priors)+1)*p.MinDist/inc)) + 1
	}

	// The direction is fixed by the prior closest to the target. A target
	// sitting exactly on a prior is moved upwards.
	dir := 1.0
	if pos < priors[closestIx] {
		dir = -1
	}

	for i := 0; closest < p.MinDist && i < maxIter; i++ {
		pos += inc * dir
		closest, _ = nearest(pos, priors)
	}

	return pos
}

// nearest returns the distance to and the index of the prior closest to pos.
// NaN priors are skipped; -1 is returned if all priors are NaN.
func nearest(pos float64, priors []float64) (float64, int) {
	dist := math.Inf(1)
	ix := -1

	for i, prior := range priors {
		if d := math.Abs(pos - prior); d < dist {
			dist = d
			ix = i
		}
	}

	return dist, ix
}
