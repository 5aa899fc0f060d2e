package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"git.unix.lgbt/diamondburned/tsplot"
	"git.unix.lgbt/diamondburned/tsplot/cmd/tsplot-http/frontend/pages/index"
)

func testTable() *tsplot.Table {
	t := tsplot.NewTable("A", "B")
	for i := 0; i < 7; i++ {
		t.Append(fmt.Sprintf("2021-07-%02d", i+1), float64(i), float64(10-i))
	}
	return t
}

func TestParseChartQuery(t *testing.T) {
	type test struct {
		query  string
		cols   string
		log    bool
		hasErr bool
	}

	var tests = []test{
		{query: "col=A", cols: "[A]"},
		{query: "col=A,B&log=1", cols: "[A B]", log: true},
		{query: "col=A&col=B&title=x", cols: "[A B]"},
		{query: "title=x", hasErr: true},
		{query: "col=A&log=maybe", hasErr: true},
	}

	for _, test := range tests {
		t.Run(test.query, func(t *testing.T) {
			q, _ := url.ParseQuery(test.query)

			req, err := ParseChartQuery(q)
			if test.hasErr {
				if err == nil {
					t.Fatal("unexpected nil error")
				}
				return
			}
			if err != nil {
				t.Fatal("failed to parse:", err)
			}

			if cols := fmt.Sprint(req.Columns); cols != test.cols {
				t.Fatalf("expected columns %s, got %s", test.cols, cols)
			}
			if req.Log != test.log {
				t.Fatalf("expected log %v, got %v", test.log, req.Log)
			}
		})
	}

	t.Run("round trip", func(t *testing.T) {
		in := tsplot.Request{Columns: []string{"A", "B"}, Title: "T", YLabel: "Y", Log: true}

		out, err := ParseChartQuery(index.ChartQuery(in))
		if err != nil {
			t.Fatal("failed to parse:", err)
		}
		if fmt.Sprint(out) != fmt.Sprint(in) {
			t.Fatalf("expected %v, got %v", in, out)
		}
	})
}

func TestChart(t *testing.T) {
	h := New(Options{
		Source: testTable(),
		Config: tsplot.DefaultConfig(),
	})

	type test struct {
		query string
		code  int
	}

	var tests = []test{
		{"col=A,B&title=Both", http.StatusOK},
		{"col=C", http.StatusBadRequest},
		{"", http.StatusBadRequest},
	}

	for _, test := range tests {
		t.Run(test.query, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/chart.png?"+test.query, nil)
			r.Header.Set("Accept", "application/json")
			w := httptest.NewRecorder()

			h.ServeHTTP(w, r)

			if w.Code != test.code {
				t.Fatalf("expected status %d, got %d: %s", test.code, w.Code, w.Body)
			}

			if test.code != http.StatusOK {
				return
			}

			if _, err := png.Decode(bytes.NewReader(w.Body.Bytes())); err != nil {
				t.Fatal("response is not a PNG:", err)
			}
		})
	}
}

func TestRootJSON(t *testing.T) {
	h := New(Options{
		Source: testTable(),
		Config: tsplot.DefaultConfig(),
	})

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)

	var summary struct {
		Rows   int
		Series []struct {
			Name   string
			Latest *float64
		}
	}

	if err := json.NewDecoder(w.Body).Decode(&summary); err != nil {
		t.Fatal("failed to decode:", err)
	}

	if summary.Rows != 7 || len(summary.Series) != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	if b := summary.Series[1]; b.Name != "B" || b.Latest == nil || *b.Latest != 4 {
		t.Fatalf("unexpected series B %+v", b)
	}
}
