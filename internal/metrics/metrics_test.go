package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSummarize(t *testing.T) {
	disp := []r3.Vec{{X: 3, Y: 4}, {}, {Z: 1}, {Z: -2}}
	s, _ := Summarize(disp, nil)

	if s.Max != 5 {
		t.Errorf("max = %v, want 5", s.Max)
	}
	if math.Abs(s.Mean-2) > 1e-12 {
		t.Errorf("mean = %v, want 2", s.Mean)
	}
	if math.Abs(s.Energy-30) > 1e-12 {
		t.Errorf("energy = %v, want 30", s.Energy)
	}
	if s.StdDev <= 0 {
		t.Errorf("stddev = %v, want positive", s.StdDev)
	}
}

func TestSummarizeEmptyAndSingle(t *testing.T) {
	if s, _ := Summarize(nil, nil); s != (Summary{}) {
		t.Errorf("empty summary = %+v", s)
	}
	s, _ := Summarize([]r3.Vec{{X: 0.5}}, nil)
	if s.Max != 0.5 || s.Mean != 0.5 || s.StdDev != 0 {
		t.Errorf("single summary = %+v", s)
	}
}

func TestSummarizeReusesScratch(t *testing.T) {
	scratch := make([]float64, 8)
	_, out := Summarize([]r3.Vec{{X: 1}, {Y: 1}}, scratch)
	if &out[0] != &scratch[0] {
		t.Error("scratch buffer was not reused")
	}
}

func TestMetricsObserveAndReset(t *testing.T) {
	samples := []Sample{
		{Step: 0, Displacement: []r3.Vec{{X: 0.1}, {}}, Engaged: 3, Hovering: true},
		{Step: 1, Displacement: []r3.Vec{{X: 0.3}, {Y: 0.1}}, Engaged: 7, Hovering: true},
		{Step: 2, Displacement: []r3.Vec{{X: 0.2}, {}}, Engaged: 0, Hovering: false},
	}

	tests := []struct {
		m    Metric
		want float64
	}{
		{NewPeakDisplacement(), 0.3},
		{NewMeanDisplacement(), (0.05 + 0.2 + 0.1) / 3},
		{NewEnergy(), 0.04},
		{NewEngaged(), 7},
		{NewHoverRatio(), 2.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.m.Name(), func(t *testing.T) {
			for _, s := range samples {
				tt.m.Observe(s)
			}
			if got := tt.m.Value(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("value = %v, want %v", got, tt.want)
			}
			tt.m.Reset()
			if got := tt.m.Value(); got != 0 {
				t.Errorf("value after reset = %v", got)
			}
		})
	}
}

func TestDefaultsUniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Defaults() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}
