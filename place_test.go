package tsplot

import (
	"math"
	"testing"
)

func TestChooseY(t *testing.T) {
	type test struct {
		name    string
		pos     float64
		priors  []float64
		minDist float64
		expect  float64 // NaN means check distance only
		dir     float64
	}

	var tests = []test{
		{
			name:    "no priors",
			pos:     4.2,
			minDist: 0.3,
			expect:  4.2,
		},
		{
			name:    "already far",
			pos:     5,
			priors:  []float64{1, 2, 9},
			minDist: 0.3,
			expect:  5,
		},
		{
			name:    "move up",
			pos:     5.1,
			priors:  []float64{5},
			minDist: 0.3,
			expect:  NaN,
			dir:     1,
		},
		{
			name:    "move down",
			pos:     4.9,
			priors:  []float64{5},
			minDist: 0.3,
			expect:  NaN,
			dir:     -1,
		},
		{
			name:    "on prior",
			pos:     5,
			priors:  []float64{5},
			minDist: 0.5,
			expect:  NaN,
			dir:     1,
		},
		{
			name:    "pushed past a second prior",
			pos:     5,
			priors:  []float64{5, 5.2},
			minDist: 0.3,
			expect:  NaN,
			dir:     1,
		},
		{
			name:    "nan target",
			pos:     NaN,
			priors:  []float64{1},
			minDist: 0.3,
			expect:  NaN,
		},
	}

	const inc = 0.01

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			y := ChooseY(test.pos, test.priors, test.minDist)

			if !math.IsNaN(test.expect) {
				if y != test.expect {
					t.Fatalf("expected %v, got %v", test.expect, y)
				}
				return
			}

			if math.IsNaN(test.pos) {
				if !math.IsNaN(y) {
					t.Fatalf("expected NaN, got %v", y)
				}
				return
			}

			for _, prior := range test.priors {
				if d := math.Abs(y - prior); d < test.minDist-inc {
					t.Errorf("%v is %v from prior %v, below %v", y, d, prior, test.minDist)
				}
			}

			if moved := y - test.pos; moved*test.dir < 0 {
				t.Errorf("moved in the wrong direction: %v -> %v", test.pos, y)
			}
		})
	}
}

func TestPlacerMaxIter(t *testing.T) {
	p := Placer{MinDist: 1000, Inc: 1, MaxIter: 10}

	y := p.Choose(0, []float64{0})
	if y != 10 {
		t.Fatalf("expected the search to stop at 10, got %v", y)
	}
}

func TestPlacerSequence(t *testing.T) {
	p := DefaultPlacer()
	p.MinDist = 0.5

	var priors []float64
	for i := 0; i < 5; i++ {
		priors = append(priors, p.Choose(3, priors))
	}

	for i, a := range priors {
		for _, b := range priors[i+1:] {
			if math.Abs(a-b) < p.MinDist-p.Inc {
				t.Fatalf("labels %v and %v overlap in %v", a, b, priors)
			}
		}
	}
}

func TestPlacerZeroValue(t *testing.T) {
	type test struct {
		name    string
		minDist float64
		priors  []float64
	}

	var tests = []test{
		{"small", 0.3, []float64{1}},
		{"large", 5000, []float64{1e5}},
		{"stacked", 5000, []float64{1e5, 1e5 + 5000, 1e5 + 10000}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := Placer{MinDist: test.minDist}
			inc := test.minDist / 100

			y := p.Choose(test.priors[0], test.priors)

			for _, prior := range test.priors {
				if d := math.Abs(y - prior); d < test.minDist-inc {
					t.Fatalf("%v is %v from prior %v, below %v", y, d, prior, test.minDist)
				}
			}
		})
	}
}

func TestPlacerZeroDist(t *testing.T) {
	var p Placer

	if y := p.Choose(3, []float64{3}); y != 3 {
		t.Fatalf("expected 3 to stay put, got %v", y)
	}
}
