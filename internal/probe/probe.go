// Package probe supplies interaction points on the unit sphere.
//
// A real host derives the interaction point from pointer hit testing. The
// sources here script it instead, for headless runs, benchmarks and the
// terminal viewer.
package probe

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Source yields the interaction point for a given step, or false when
// nothing is hovering.
type Source interface {
	Next(step int) (r3.Vec, bool)
}

// None never hovers.
type None struct{}

func (None) Next(int) (r3.Vec, bool) { return r3.Vec{}, false }

// Fixed always hovers at Point.
type Fixed struct {
	Point r3.Vec
}

func (f Fixed) Next(int) (r3.Vec, bool) { return f.Point, true }

// Orbit circles the sphere along a line of latitude (radians).
type Orbit struct {
	Latitude float64
	Speed    float64 // radians per step
}

func (o Orbit) Next(step int) (r3.Vec, bool) {
	return FromLatLon(o.Latitude, o.Speed*float64(step)), true
}

// Sweep travels pole to pole along a meridian and back, taking Period steps
// per round trip.
type Sweep struct {
	Longitude float64
	Period    int
}

func (s Sweep) Next(step int) (r3.Vec, bool) {
	period := s.Period
	if period < 2 {
		period = 2
	}
	phase := float64(step%period) / float64(period)
	lat := math.Pi/2 - 2*math.Pi*phase
	if phase > 0.5 {
		lat = -math.Pi/2 + 2*math.Pi*(phase-0.5)
	}
	return FromLatLon(lat, s.Longitude), true
}

// Intermittent hovers with Inner for On steps, then rests for Off steps.
type Intermittent struct {
	Inner   Source
	On, Off int
}

func (s Intermittent) Next(step int) (r3.Vec, bool) {
	cycle := s.On + s.Off
	if cycle <= 0 || step%cycle >= s.On {
		return r3.Vec{}, false
	}
	return s.Inner.Next(step)
}

// FromLatLon maps latitude and longitude (radians) to a unit vector with
// +y as north.
func FromLatLon(lat, lon float64) r3.Vec {
	c := math.Cos(lat)
	return r3.Vec{
		X: c * math.Cos(lon),
		Y: math.Sin(lat),
		Z: c * math.Sin(lon),
	}
}

// ToLatLon is the inverse of FromLatLon for a non-zero vector.
func ToLatLon(p r3.Vec) (lat, lon float64) {
	u := r3.Unit(p)
	return math.Asin(math.Max(-1, math.Min(1, u.Y))), math.Atan2(u.Z, u.X)
}

// Parse builds a source from a CLI name.
func Parse(name string) (Source, error) {
	switch name {
	case "", "none":
		return None{}, nil
	case "fixed":
		return Fixed{Point: r3.Vec{X: 1}}, nil
	case "orbit":
		return Orbit{Latitude: 0.3, Speed: 0.02}, nil
	case "sweep":
		return Sweep{Period: 600}, nil
	case "pulse":
		return Intermittent{Inner: Fixed{Point: r3.Vec{X: 1}}, On: 60, Off: 120}, nil
	}
	return nil, fmt.Errorf("unknown probe: %s", name)
}

func Names() []string { return []string{"none", "fixed", "orbit", "sweep", "pulse"} }
