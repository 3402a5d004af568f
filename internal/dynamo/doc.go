// Package dynamo provides core simulation primitives shared by the
// reaction-diffusion engine and its drivers.
//
//   - domain errors ([ErrInvalidDimensions], [ErrDegenerateTimestep], ...)
//     and [SimulationError] for step context
//   - [Configurable]: name-based parameter access for UI and scenario layers
//   - [Stepper] and [Observer]: what a driver loop needs from a model
//   - [ParallelFor]: row fan-out used by the stencil and the reaction update
//
// # Thread Safety
//
// Models are NOT thread-safe. A single driver goroutine owns each model;
// [ParallelFor] joins all of its workers before returning, so callers never
// observe a partially updated field.
package dynamo
