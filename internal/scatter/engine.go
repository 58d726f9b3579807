package scatter

import (
	"math"
	"sync/atomic"

	"github.com/san-kum/dotglobe/internal/field"
	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the squared norm below which a vector has no usable direction.
const Epsilon = 1e-6

// Params are the physics tunables read on every step.
type Params struct {
	Radius   float64
	Strength float64
	Decay    float64
}

// Engine steps a field. The zero value runs sequentially.
type Engine struct {
	// Workers above 1 splits each step across goroutines once the field
	// holds more than MinChunk particles per worker.
	Workers  int
	MinChunk int
}

func NewEngine() *Engine {
	return &Engine{Workers: 1, MinChunk: 2048}
}

// NewParallelEngine returns an engine that fans each step out to workers goroutines.
func NewParallelEngine(workers int) *Engine {
	return &Engine{Workers: workers, MinChunk: 2048}
}

// Falloff is the repulsion intensity at distance d: 1 at d = 0, falling
// quadratically to 0 at d = radius and staying 0 beyond.
func Falloff(d, radius float64) float64 {
	if d >= radius {
		return 0
	}
	k := 1 - d/radius
	return k * k
}

// Push returns the displacement increment a particle resting at base
// receives from an interaction point at hover, and whether it was in range.
//
// A particle sitting on the point itself has no direction away from it; it
// is pushed along its own outward normal instead.
func Push(base, hover r3.Vec, radius, strength float64) (r3.Vec, bool) {
	delta := r3.Sub(base, hover)
	d2 := r3.Norm2(delta)
	if d2 >= radius*radius {
		return r3.Vec{}, false
	}

	d := math.Sqrt(d2)
	s := strength * Falloff(d, radius)
	if d2 == 0 {
		return r3.Scale(s, outward(base)), true
	}
	return r3.Scale(s/d, delta), true
}

func outward(p r3.Vec) r3.Vec {
	if r3.Norm2(p) <= Epsilon {
		return r3.Vec{Y: 1}
	}
	return r3.Unit(p)
}

// Step applies one repulsion pass (if hover is non-nil) and one relaxation
// pass to f, then refreshes its positions. It returns how many particles
// were inside the interaction radius.
func (e *Engine) Step(f *field.Field, hover *r3.Vec, p Params) int {
	b := f.Buffers()
	n := b.Len()
	if n == 0 {
		return 0
	}

	var engaged atomic.Int64
	run := func(start, end int) {
		c := e.stepRange(b, start, end, hover, p)
		if c > 0 {
			engaged.Add(int64(c))
		}
	}

	workers := e.Workers
	if workers <= 1 {
		run(0, n)
	} else {
		ParallelFor(n, workers, e.MinChunk, run)
	}
	return int(engaged.Load())
}

func (e *Engine) stepRange(b *field.Buffers, start, end int, hover *r3.Vec, p Params) int {
	engaged := 0
	if hover != nil && p.Strength > 0 {
		h := *hover
		for i := start; i < end; i++ {
			if push, ok := Push(b.Base[i], h, p.Radius, p.Strength); ok {
				b.Displacement[i] = r3.Add(b.Displacement[i], push)
				engaged++
			}
		}
	}

	for i := start; i < end; i++ {
		b.Displacement[i] = r3.Scale(p.Decay, b.Displacement[i])
	}
	b.Refresh(start, end)
	return engaged
}

// Relax applies only the relaxation pass, steps times.
func (e *Engine) Relax(f *field.Field, decay float64, steps int) {
	for i := 0; i < steps; i++ {
		e.Step(f, nil, Params{Decay: decay})
	}
}
