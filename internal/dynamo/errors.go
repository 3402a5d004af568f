package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidDimensions indicates a non-positive grid height or width.
	ErrInvalidDimensions = errors.New("dynamo: grid dimensions must be positive")

	// ErrInvalidShape indicates a field that is not a non-empty rectangular 2D grid,
	// or a destination buffer whose shape differs from its source.
	ErrInvalidShape = errors.New("dynamo: field must be a non-empty 2D grid")

	// ErrUnsupportedBoundary indicates a boundary condition other than periodic.
	ErrUnsupportedBoundary = errors.New("dynamo: unsupported boundary condition")

	// ErrDegenerateTimestep indicates max(Du, Dv) <= 0, so no stable timestep exists.
	ErrDegenerateTimestep = errors.New("dynamo: degenerate timestep (max(Du, Dv) must be positive)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnstable indicates the simulation became numerically unstable.
	ErrUnstable = errors.New("dynamo: simulation unstable (NaN or Inf in field)")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
