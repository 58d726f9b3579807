// Package scatter advances a particle field by one simulation step.
//
// A step has two passes over every particle:
//
//   - Repulsion: only when an interaction point is present. Particles whose
//     rest position lies within Radius of the point are pushed away from it
//     with magnitude Strength * (1 - d/Radius)^2. Pushes accumulate across
//     steps.
//   - Relaxation: always. Every displacement is multiplied by Decay.
//
// Current positions are refreshed afterwards. Both passes are independent
// per particle, so the engine may split the particle range across workers
// without changing the result.
//
// # Example
//
//	eng := scatter.NewEngine()
//	hover := r3.Vec{X: 1}
//	eng.Step(f, &hover, scatter.Params{Radius: 0.35, Strength: 0.015, Decay: 0.92})
package scatter
