package globe

import (
	"time"

	"github.com/san-kum/dotglobe/internal/metrics"
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame is the per-step record of a headless run.
type Frame struct {
	Step     int     `csv:"step" json:"step"`
	Max      float64 `csv:"max" json:"max"`
	Mean     float64 `csv:"mean" json:"mean"`
	StdDev   float64 `csv:"stddev" json:"stddev"`
	Energy   float64 `csv:"energy" json:"energy"`
	Engaged  int     `csv:"engaged" json:"engaged"`
	Hovering bool    `csv:"hovering" json:"hovering"`
	HoverX   float64 `csv:"hover_x" json:"hover_x"`
	HoverY   float64 `csv:"hover_y" json:"hover_y"`
	HoverZ   float64 `csv:"hover_z" json:"hover_z"`
}

func newFrame(step int, s metrics.Summary, engaged int, hover *r3.Vec) Frame {
	f := Frame{
		Step:    step,
		Max:     s.Max,
		Mean:    s.Mean,
		StdDev:  s.StdDev,
		Energy:  s.Energy,
		Engaged: engaged,
	}
	if hover != nil {
		f.Hovering = true
		f.HoverX, f.HoverY, f.HoverZ = hover.X, hover.Y, hover.Z
	}
	return f
}

type Result struct {
	Frames  []Frame
	Metrics map[string]float64
	Elapsed time.Duration
}
