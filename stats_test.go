package tsplot

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	type test struct {
		name   string
		p      float64
		sets   [][]float64
		expect float64
	}

	var tests = []test{
		{
			name:   "constant",
			p:      90,
			sets:   [][]float64{{5, 5, 5}, {5, 5}},
			expect: 5,
		},
		{
			name:   "interpolated",
			p:      90,
			sets:   [][]float64{{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
			expect: 9.1,
		},
		{
			name:   "missing skipped",
			p:      50,
			sets:   [][]float64{{NaN, 1, 3}, {NaN}},
			expect: 2,
		},
		{
			name:   "max",
			p:      100,
			sets:   [][]float64{{3, 1, 2}},
			expect: 3,
		},
		{
			name:   "min",
			p:      0,
			sets:   [][]float64{{3, 1, 2}},
			expect: 1,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v := Percentile(test.p, test.sets...)
			if math.Abs(v-test.expect) > 1e-9 {
				t.Fatalf("expected %v, got %v", test.expect, v)
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		if v := Percentile(90, []float64{NaN}); !math.IsNaN(v) {
			t.Fatalf("expected NaN, got %v", v)
		}
	})
}

func TestFirstValid(t *testing.T) {
	type test struct {
		name   string
		sets   [][]float64
		expect int
	}

	var tests = []test{
		{"none", [][]float64{{NaN, NaN}, {NaN, NaN}}, -1},
		{"no sets", nil, -1},
		{"first", [][]float64{{1, NaN}}, 0},
		{"second set", [][]float64{{NaN, NaN, 1}, {NaN, 2, NaN}}, 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if i := firstValid(test.sets...); i != test.expect {
				t.Fatalf("expected %d, got %d", test.expect, i)
			}
		})
	}
}

func TestCleanInf(t *testing.T) {
	in := []float64{1, math.Inf(1), -2, math.Inf(-1), 0}

	clean := cleanInf(in, false)
	if !math.IsInf(in[1], 1) {
		t.Fatal("input was modified")
	}
	for i, expect := range []float64{1, NaN, -2, NaN, 0} {
		if !sameValue(clean[i], expect) {
			t.Errorf("value %d: expected %v, got %v", i, expect, clean[i])
		}
	}

	positive := cleanInf(in, true)
	for i, expect := range []float64{1, NaN, NaN, NaN, NaN} {
		if !sameValue(positive[i], expect) {
			t.Errorf("positive value %d: expected %v, got %v", i, expect, positive[i])
		}
	}
}

func sameValue(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}
