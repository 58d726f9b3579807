package scatter

import (
	"math"
	"testing"

	"github.com/san-kum/dotglobe/internal/field"
	"github.com/san-kum/dotglobe/internal/sphere"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestFalloff(t *testing.T) {
	tests := []struct {
		d, radius, want float64
	}{
		{0, 0.35, 1},
		{0.175, 0.35, 0.25},
		{0.35, 0.35, 0},
		{0.5, 0.35, 0},
		{1, 2, 0.25},
	}

	for _, tt := range tests {
		if got := Falloff(tt.d, tt.radius); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Falloff(%v, %v) = %v, want %v", tt.d, tt.radius, got, tt.want)
		}
	}
}

func TestPushMonotonic(t *testing.T) {
	const radius, strength = 0.35, 0.015
	hover := r3.Vec{X: 1}

	prev := math.Inf(1)
	for k := 0; k <= 400; k++ {
		d := radius * float64(k) / 400
		base := r3.Add(hover, r3.Vec{Y: d})
		push, ok := Push(base, hover, radius, strength)
		mag := r3.Norm(push)

		if d >= radius {
			if ok || mag != 0 {
				t.Fatalf("d=%v at radius: got push %v (ok=%v), want none", d, push, ok)
			}
			continue
		}
		if mag > prev {
			t.Fatalf("push magnitude grew from %v to %v at d=%v", prev, mag, d)
		}
		prev = mag
	}

	for _, d := range []float64{0.35, 0.36, 1, 2} {
		if push, ok := Push(r3.Add(hover, r3.Vec{Z: d}), hover, radius, strength); ok || push != (r3.Vec{}) {
			t.Errorf("d=%v: expected no push, got %v", d, push)
		}
	}
}

func TestPushDirection(t *testing.T) {
	hover := r3.Vec{X: 1}
	base := r3.Vec{X: 1, Y: 0.1}
	push, ok := Push(base, hover, 0.35, 0.02)
	if !ok {
		t.Fatal("expected particle in range")
	}
	if push.X != 0 || push.Z != 0 || push.Y <= 0 {
		t.Errorf("push %v should point away from the hover point along +y", push)
	}
	want := 0.02 * Falloff(0.1, 0.35)
	if math.Abs(r3.Norm(push)-want) > 1e-12 {
		t.Errorf("push magnitude = %v, want %v", r3.Norm(push), want)
	}
}

func TestPushCoincident(t *testing.T) {
	push, ok := Push(r3.Vec{X: 1}, r3.Vec{X: 1}, 0.35, 0.015)
	if !ok {
		t.Fatal("coincident particle should be in range")
	}
	if math.Abs(push.X-0.015) > 1e-12 || push.Y != 0 || push.Z != 0 {
		t.Errorf("push = %v, want (0.015, 0, 0)", push)
	}

	push, _ = Push(r3.Vec{}, r3.Vec{}, 0.35, 0.015)
	if math.IsNaN(push.X) || math.IsNaN(push.Y) || math.IsNaN(push.Z) {
		t.Errorf("degenerate origin push produced NaN: %v", push)
	}
}

func TestPushNearCoincident(t *testing.T) {
	base := r3.Vec{X: 1}
	hover := r3.Vec{X: 1, Y: 0.0005}

	push, ok := Push(base, hover, 0.35, 0.015)
	if !ok {
		t.Fatal("near-coincident particle should be in range")
	}
	if push.Y >= 0 || math.Abs(push.X) > 1e-15 || push.Z != 0 {
		t.Errorf("push = %v, want it directed along -y away from the hover point", push)
	}
	want := 0.015 * Falloff(0.0005, 0.35)
	if math.Abs(r3.Norm(push)-want) > 1e-12 {
		t.Errorf("push magnitude = %v, want %v", r3.Norm(push), want)
	}
}

func TestStepSingleHover(t *testing.T) {
	f := field.New([]r3.Vec{{X: 1}, {X: -1}})
	hover := r3.Vec{X: 1}

	engaged := NewEngine().Step(f, &hover, Params{Radius: 0.35, Strength: 0.015, Decay: 0.92})

	if engaged != 1 {
		t.Errorf("engaged = %d, want 1", engaged)
	}
	d := f.Displacement()[0]
	if math.Abs(d.X-0.0138) > 1e-12 || d.Y != 0 || d.Z != 0 {
		t.Errorf("displacement = %v, want (0.0138, 0, 0)", d)
	}
	if f.Displacement()[1] != (r3.Vec{}) {
		t.Errorf("far particle moved: %v", f.Displacement()[1])
	}
	if p := f.Positions()[0]; math.Abs(p.X-1.0138) > 1e-12 {
		t.Errorf("position = %v, want x=1.0138", p)
	}
}

func TestStepPureRelaxation(t *testing.T) {
	f := field.New(sphere.Generate(64))
	for i := 0; i < f.Len(); i++ {
		f.Displace(i, r3.Vec{X: 0.01 * float64(i), Y: -0.02, Z: 0.003 * float64(i%7)})
	}
	start := append([]r3.Vec(nil), f.Displacement()...)

	const decay, steps = 0.85, 30
	eng := NewEngine()
	for i := 0; i < steps; i++ {
		eng.Step(f, nil, Params{Radius: 0.35, Strength: 0.015, Decay: decay})
	}

	k := math.Pow(decay, steps)
	for i, d := range f.Displacement() {
		want := r3.Scale(k, start[i])
		if r3.Norm(r3.Sub(d, want)) > 1e-12 {
			t.Errorf("particle %d: got %v, want %v", i, d, want)
		}
		if r3.Norm(r3.Sub(f.Positions()[i], r3.Add(f.Base()[i], d))) > 1e-15 {
			t.Errorf("particle %d: position not base + displacement", i)
		}
	}
}

func TestStepRelaxFiftySteps(t *testing.T) {
	f := field.New([]r3.Vec{{Y: 1}})
	f.Displace(0, r3.Vec{X: 0.1})

	NewEngine().Relax(f, 0.92, 50)

	got := r3.Norm(f.Displacement()[0])
	want := 0.1 * math.Pow(0.92, 50)
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("magnitude after 50 steps = %v, want ~%v", got, want)
	}
}

func TestStepZeroStrengthStillRelaxes(t *testing.T) {
	f := field.New([]r3.Vec{{X: 1}})
	f.Displace(0, r3.Vec{X: 0.2})
	hover := r3.Vec{X: 1}

	engaged := NewEngine().Step(f, &hover, Params{Radius: 0.35, Strength: 0, Decay: 0.5})
	if engaged != 0 {
		t.Errorf("engaged = %d with zero strength", engaged)
	}
	if got := f.Displacement()[0].X; math.Abs(got-0.1) > 1e-15 {
		t.Errorf("displacement = %v, want 0.1", got)
	}
}

func TestStepSteadyState(t *testing.T) {
	// sustained hover converges to push * decay / (1 - decay)
	f := field.New([]r3.Vec{{X: 1}})
	hover := r3.Vec{X: 1}
	p := Params{Radius: 0.35, Strength: 0.015, Decay: 0.92}

	eng := NewEngine()
	prev := 0.0
	for i := 0; i < 400; i++ {
		eng.Step(f, &hover, p)
		cur := f.Displacement()[0].X
		if cur < prev {
			t.Fatalf("displacement shrank under sustained hover at step %d", i)
		}
		prev = cur
	}

	want := p.Strength * p.Decay / (1 - p.Decay)
	if math.Abs(prev-want) > 1e-9 {
		t.Errorf("steady state = %v, want %v", prev, want)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	base := sphere.Generate(5000)
	seq := field.New(base)
	par := field.New(base)

	p := Params{Radius: 0.5, Strength: 0.03, Decay: 0.9}
	hovers := []r3.Vec{{X: 1}, {Y: 1}, {Z: -1}, r3.Unit(r3.Vec{X: 1, Y: 1, Z: 1})}

	s := NewEngine()
	pe := &Engine{Workers: 4, MinChunk: 256}
	for step := 0; step < 20; step++ {
		h := hovers[step%len(hovers)]
		ns := s.Step(seq, &h, p)
		np := pe.Step(par, &h, p)
		if ns != np {
			t.Fatalf("step %d: engaged %d vs %d", step, ns, np)
		}
	}

	for i := range base {
		if seq.Displacement()[i] != par.Displacement()[i] {
			t.Fatalf("particle %d diverged: %v vs %v", i, seq.Displacement()[i], par.Displacement()[i])
		}
	}
}

func TestStepEmptyField(t *testing.T) {
	f := field.New(nil)
	hover := r3.Vec{X: 1}
	if n := NewEngine().Step(f, &hover, Params{Radius: 1, Strength: 1, Decay: 0.5}); n != 0 {
		t.Errorf("engaged = %d on empty field", n)
	}
}

func TestParallelForCoversRange(t *testing.T) {
	tests := []struct {
		n, workers, minChunk int
	}{
		{0, 4, 10},
		{5, 4, 10},
		{100, 4, 10},
		{1001, 3, 7},
		{64, 8, 1},
	}

	for _, tt := range tests {
		seen := make([]int32, tt.n)
		ParallelFor(tt.n, tt.workers, tt.minChunk, func(start, end int) {
			for i := start; i < end; i++ {
				seen[i]++
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Errorf("n=%d: index %d visited %d times", tt.n, i, c)
			}
		}
	}
}
