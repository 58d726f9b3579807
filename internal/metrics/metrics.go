// Package metrics summarises the displacement field after each step.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Sample is what a metric sees after one step.
type Sample struct {
	Step         int
	Displacement []r3.Vec
	Engaged      int
	Hovering     bool
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Summary describes displacement magnitudes at one instant.
type Summary struct {
	Max    float64
	Mean   float64
	StdDev float64
	Energy float64 // sum of squared magnitudes
}

// Summarize computes a Summary; scratch is reused when large enough.
func Summarize(disp []r3.Vec, scratch []float64) (Summary, []float64) {
	if len(disp) == 0 {
		return Summary{}, scratch
	}
	if cap(scratch) < len(disp) {
		scratch = make([]float64, len(disp))
	}
	mags := scratch[:len(disp)]

	var s Summary
	for i, d := range disp {
		n2 := r3.Norm2(d)
		s.Energy += n2
		mags[i] = math.Sqrt(n2)
		if mags[i] > s.Max {
			s.Max = mags[i]
		}
	}
	s.Mean, s.StdDev = stat.MeanStdDev(mags, nil)
	if len(mags) < 2 {
		s.StdDev = 0
	}
	return s, scratch
}

// PeakDisplacement tracks the largest magnitude seen.
type PeakDisplacement struct {
	peak float64
}

func NewPeakDisplacement() *PeakDisplacement { return &PeakDisplacement{} }

func (m *PeakDisplacement) Name() string { return "peak_displacement" }

func (m *PeakDisplacement) Observe(s Sample) {
	for _, d := range s.Displacement {
		if n := r3.Norm(d); n > m.peak {
			m.peak = n
		}
	}
}

func (m *PeakDisplacement) Value() float64 { return m.peak }
func (m *PeakDisplacement) Reset()         { m.peak = 0 }

// MeanDisplacement averages the per-step mean magnitude.
type MeanDisplacement struct {
	means   []float64
	scratch []float64
}

func NewMeanDisplacement() *MeanDisplacement { return &MeanDisplacement{} }

func (m *MeanDisplacement) Name() string { return "mean_displacement" }

func (m *MeanDisplacement) Observe(s Sample) {
	var sum Summary
	sum, m.scratch = Summarize(s.Displacement, m.scratch)
	m.means = append(m.means, sum.Mean)
}

func (m *MeanDisplacement) Value() float64 {
	if len(m.means) == 0 {
		return 0
	}
	return stat.Mean(m.means, nil)
}

func (m *MeanDisplacement) Reset() { m.means = m.means[:0] }

// Energy reports the sum of squared displacements at the last step.
type Energy struct {
	last float64
}

func NewEnergy() *Energy { return &Energy{} }

func (m *Energy) Name() string { return "displacement_energy" }

func (m *Energy) Observe(s Sample) {
	e := 0.0
	for _, d := range s.Displacement {
		e += r3.Norm2(d)
	}
	m.last = e
}

func (m *Energy) Value() float64 { return m.last }
func (m *Energy) Reset()         { m.last = 0 }

// Engaged tracks the most particles inside the interaction radius at once.
type Engaged struct {
	peak int
}

func NewEngaged() *Engaged { return &Engaged{} }

func (m *Engaged) Name() string { return "peak_engaged" }

func (m *Engaged) Observe(s Sample) {
	if s.Engaged > m.peak {
		m.peak = s.Engaged
	}
}

func (m *Engaged) Value() float64 { return float64(m.peak) }
func (m *Engaged) Reset()         { m.peak = 0 }

// HoverRatio is the fraction of observed steps with an interaction point.
type HoverRatio struct {
	steps, hovered int
}

func NewHoverRatio() *HoverRatio { return &HoverRatio{} }

func (m *HoverRatio) Name() string { return "hover_ratio" }

func (m *HoverRatio) Observe(s Sample) {
	m.steps++
	if s.Hovering {
		m.hovered++
	}
}

func (m *HoverRatio) Value() float64 {
	if m.steps == 0 {
		return 0
	}
	return float64(m.hovered) / float64(m.steps)
}

func (m *HoverRatio) Reset() { m.steps, m.hovered = 0, 0 }

// Defaults returns a fresh set of every metric.
func Defaults() []Metric {
	return []Metric{
		NewPeakDisplacement(),
		NewMeanDisplacement(),
		NewEnergy(),
		NewEngaged(),
		NewHoverRatio(),
	}
}
