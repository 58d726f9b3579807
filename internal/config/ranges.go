package config

// Range is an adjustment band for an interactive control. Values outside
// a range are still valid; ranges only guide stepping in a control panel.
type Range struct {
	Min, Max, Step float64
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Nudge moves v by n steps, stopping at the bound it moves toward. A value
// already past that bound is left as it is, so a decrease never raises v
// and an increase never lowers it.
func (r Range) Nudge(v float64, n int) float64 {
	next := v + float64(n)*r.Step
	switch {
	case n > 0:
		return max(v, min(next, r.Max))
	case n < 0:
		return min(v, max(next, r.Min))
	}
	return v
}

var Ranges = struct {
	Count, DotSize, Radius, Strength, RotateSpeed, Decay Range
}{
	Count:       Range{Min: 800, Max: 12000, Step: 200},
	DotSize:     Range{Min: 0.006, Max: 0.03, Step: 0.002},
	Radius:      Range{Min: 0.15, Max: 0.8, Step: 0.01},
	Strength:    Range{Min: 0.004, Max: 0.05, Step: 0.001},
	RotateSpeed: Range{Min: 0.1, Max: 3, Step: 0.1},
	Decay:       Range{Min: 0.5, Max: 0.99, Step: 0.01},
}
