// Package globe runs one dot-globe simulation session.
//
// A [Globe] owns the validated configuration, the displacement field and
// the scatter engine. Configuration changes are routed one of two ways:
//
//   - Rebuild: a new particle count regenerates rest positions and replaces
//     the field wholesale, zeroing all displacement.
//   - Live: scatter, decay and cosmetic values are stored and picked up by
//     the next [Globe.Step]; nothing is reallocated.
//
// Invalid values are rejected with an error wrapping
// [config.ErrInvalidConfiguration] and the previous configuration stays in
// effect.
//
// # Thread Safety
//
// A Globe is driven from one goroutine. Readers on other goroutines may
// call [Globe.Buffers] and read the returned generation between steps; a
// rebuild publishes new buffers atomically and never resizes old ones.
package globe
