// Package field holds the per-particle rest positions and displacements of
// a particle set.
//
// A Field exposes one immutable-length Buffers value at a time. Rebuild
// prepares a complete replacement off to the side and publishes it with a
// single atomic swap, so a reader holding the previous Buffers keeps a
// consistent (if stale) view and never sees a half-built pair.
package field

import (
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"
)

// Buffers is one generation of a particle set. All three slices share the
// same length. Base is never written after publication.
type Buffers struct {
	Base         []r3.Vec
	Displacement []r3.Vec
	Position     []r3.Vec
	Generation   uint64
}

// Len returns the number of particles.
func (b *Buffers) Len() int { return len(b.Base) }

// Refresh recomputes Position[i] = Base[i] + Displacement[i] for i in [start, end).
func (b *Buffers) Refresh(start, end int) {
	for i := start; i < end; i++ {
		b.Position[i] = r3.Add(b.Base[i], b.Displacement[i])
	}
}

type Field struct {
	cur atomic.Pointer[Buffers]
	gen atomic.Uint64
}

// New returns a field at rest over a copy of base.
func New(base []r3.Vec) *Field {
	f := &Field{}
	f.Rebuild(base)
	return f
}

// Rebuild replaces the particle set with a copy of base and zero displacement.
func (f *Field) Rebuild(base []r3.Vec) {
	n := len(base)
	next := &Buffers{
		Base:         make([]r3.Vec, n),
		Displacement: make([]r3.Vec, n),
		Position:     make([]r3.Vec, n),
		Generation:   f.gen.Add(1),
	}
	copy(next.Base, base)
	copy(next.Position, base)
	f.cur.Store(next)
}

// Clear zeroes every displacement in place. Positions equal base afterwards.
func (f *Field) Clear() {
	b := f.cur.Load()
	clear(b.Displacement)
	copy(b.Position, b.Base)
}

// Displace adds d to particle i's displacement and refreshes its position.
func (f *Field) Displace(i int, d r3.Vec) {
	b := f.cur.Load()
	b.Displacement[i] = r3.Add(b.Displacement[i], d)
	b.Position[i] = r3.Add(b.Base[i], b.Displacement[i])
}

// Update recomputes every current position from base and displacement.
func (f *Field) Update() {
	b := f.cur.Load()
	b.Refresh(0, b.Len())
}

// Buffers returns the published generation. Callers must not retain it
// across a Rebuild if they need the live set.
func (f *Field) Buffers() *Buffers { return f.cur.Load() }

func (f *Field) Len() int               { return f.cur.Load().Len() }
func (f *Field) Generation() uint64     { return f.cur.Load().Generation }
func (f *Field) Base() []r3.Vec         { return f.cur.Load().Base }
func (f *Field) Displacement() []r3.Vec { return f.cur.Load().Displacement }
func (f *Field) Positions() []r3.Vec    { return f.cur.Load().Position }

// Snapshot copies the current positions into dst, growing it if needed.
func (f *Field) Snapshot(dst []r3.Vec) []r3.Vec {
	b := f.cur.Load()
	if cap(dst) < b.Len() {
		dst = make([]r3.Vec, b.Len())
	}
	dst = dst[:b.Len()]
	copy(dst, b.Position)
	return dst
}
