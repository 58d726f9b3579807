// Package sphere distributes points evenly over the unit sphere.
//
// Points follow a golden-angle (Fibonacci) spiral running from the north
// pole (y = 1) to the south pole (y = -1). The output depends only on the
// requested count; there is no seed and no hidden state.
package sphere

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Phi is the golden ratio.
var Phi = (1 + math.Sqrt(5)) / 2

// GoldenAngle is the azimuth increment between consecutive points.
var GoldenAngle = 2 * math.Pi / Phi

// Pole is where a single point is placed.
var Pole = r3.Vec{X: 0, Y: 1, Z: 0}

// Generate returns count points on the unit sphere in generation order.
// It returns nil for count < 1.
func Generate(count int) []r3.Vec {
	if count < 1 {
		return nil
	}
	pts := make([]r3.Vec, count)
	Fill(pts)
	return pts
}

// Fill writes len(dst) spiral points into dst.
func Fill(dst []r3.Vec) {
	n := len(dst)
	if n == 0 {
		return
	}
	if n == 1 {
		dst[0] = Pole
		return
	}

	last := float64(n - 1)
	for i := range dst {
		t := float64(i) / last
		y := 1 - 2*t
		r := math.Sqrt(math.Max(0, 1-y*y))
		phi := float64(i) * GoldenAngle
		dst[i] = r3.Vec{X: math.Cos(phi) * r, Y: y, Z: math.Sin(phi) * r}
	}
}

// Flatten packs points into an xyz-interleaved slice, the layout
// renderers usually upload.
func Flatten(pts []r3.Vec) []float64 {
	out := make([]float64, 3*len(pts))
	for i, p := range pts {
		out[i*3] = p.X
		out[i*3+1] = p.Y
		out[i*3+2] = p.Z
	}
	return out
}
